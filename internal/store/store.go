// Package store persists workbench entities. Two implementations are
// provided: an in-process memory store used by default and a Redis-backed
// store for shared deployments. Both hand out deep copies so callers can
// never mutate persisted state through a returned pointer.
package store

import (
	"context"
	"errors"

	"github.com/volleyhq/volley/pkg/api"
)

type (
	// Entity constrains repositories to types that expose identity and deep
	// copying
	Entity[T any] interface {
		Key() api.ID
		Clone() T
	}

	// Repository provides keyed CRUD over one entity kind
	Repository[T Entity[T]] interface {
		Get(ctx context.Context, id api.ID) (T, error)
		GetMany(ctx context.Context, ids []api.ID) ([]T, error)
		List(ctx context.Context) ([]T, error)
		Add(ctx context.Context, item T) error
		Update(ctx context.Context, item T) error
		Delete(ctx context.Context, id api.ID) error
	}

	// SecretStore keeps secret variable values in a namespace separate from
	// entity records, keyed by the owning entity
	SecretStore interface {
		Secrets(ctx context.Context, kind string, id api.ID) (
			map[string]string, error,
		)
		SaveSecrets(ctx context.Context, kind string, id api.ID,
			values map[string]string,
		) error
		DeleteSecrets(ctx context.Context, kind string, id api.ID) error
	}

	// Settings holds the small amount of mutable workbench state that is not
	// an entity, such as which environment is active
	Settings interface {
		ActiveEnvironment(ctx context.Context) (api.ID, error)
		SetActiveEnvironment(ctx context.Context, id api.ID) error
	}

	// Stores bundles every persistence concern behind one handle
	Stores struct {
		Environments Repository[*api.Environment]
		Collections  Repository[*api.Collection]
		Requests     Repository[*api.Request]
		Flows        Repository[*api.Flow]
		Secrets      SecretStore
		Settings     Settings
	}
)

// Entity kind names, used in Redis keys and secret ownership
const (
	KindEnvironment = "environment"
	KindCollection  = "collection"
	KindRequest     = "request"
	KindFlow        = "flow"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("id already in use")
	ErrEmptyKey  = errors.New("entity id empty")
)
