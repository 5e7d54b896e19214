package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
	"github.com/volleyhq/volley/pkg/vars"
)

// buildScope assembles the resolution scope for one execution. An
// explicitly named environment or collection must exist. When no
// environment is named, the active selection is used, and a stale active
// pointer degrades to an environment-less scope rather than failing the
// execution
func (e *Engine) buildScope(
	ctx context.Context, envID, colID api.ID,
) (*vars.Scope, error) {
	env, err := e.loadEnvironment(ctx, envID)
	if err != nil {
		return nil, err
	}
	var col *api.Collection
	if !colID.IsEmpty() {
		if col, err = e.stores.Collections.Get(ctx, colID); err != nil {
			return nil, err
		}
	}
	envSecrets, colSecrets, err := e.loadSecrets(ctx, env, col)
	if err != nil {
		return nil, err
	}
	return vars.NewScope(env, col).WithSecrets(envSecrets, colSecrets), nil
}

func (e *Engine) loadEnvironment(
	ctx context.Context, envID api.ID,
) (*api.Environment, error) {
	if !envID.IsEmpty() {
		return e.stores.Environments.Get(ctx, envID)
	}
	active, err := e.stores.Settings.ActiveEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	if active.IsEmpty() {
		return nil, nil
	}
	env, err := e.stores.Environments.Get(ctx, active)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("Active environment no longer exists",
				log.EnvironmentID(active))
			return nil, nil
		}
		return nil, err
	}
	return env, nil
}

func (e *Engine) loadSecrets(
	ctx context.Context, env *api.Environment, col *api.Collection,
) (map[string]string, map[string]string, error) {
	var envSecrets, colSecrets map[string]string
	var err error
	if env != nil {
		envSecrets, err = e.stores.Secrets.Secrets(
			ctx, store.KindEnvironment, env.ID,
		)
		if err != nil {
			return nil, nil, err
		}
	}
	if col != nil {
		colSecrets, err = e.stores.Secrets.Secrets(
			ctx, store.KindCollection, col.ID,
		)
		if err != nil {
			return nil, nil, err
		}
	}
	return envSecrets, colSecrets, nil
}

// persistScope writes the scope's environment and collection records back
// to their repositories, making variable mutations durable
func (e *Engine) persistScope(ctx context.Context, s *vars.Scope) error {
	if env := s.Environment(); env != nil {
		if err := e.stores.Environments.Update(ctx, env); err != nil {
			return err
		}
	}
	if col := s.Collection(); col != nil {
		if err := e.stores.Collections.Update(ctx, col); err != nil {
			return err
		}
	}
	return nil
}
