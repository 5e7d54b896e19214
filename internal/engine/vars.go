package engine

import (
	"context"

	"github.com/volleyhq/volley/pkg/api"
)

// ResolveText previews placeholder resolution against the selected scope,
// reporting which names had no value
func (e *Engine) ResolveText(
	ctx context.Context, text string, envID, colID api.ID,
) (*api.ResolveResponse, error) {
	scope, err := e.buildScope(ctx, envID, colID)
	if err != nil {
		return nil, err
	}
	resolved, unresolved := scope.ResolveTracked(text)
	return &api.ResolveResponse{
		Text:       resolved,
		Unresolved: unresolved,
	}, nil
}

// VariableValue looks a single variable up with full scope precedence,
// secrets included
func (e *Engine) VariableValue(
	ctx context.Context, name string, envID, colID api.ID,
) (*api.VariableResponse, error) {
	scope, err := e.buildScope(ctx, envID, colID)
	if err != nil {
		return nil, err
	}
	value, found := scope.Lookup(name)
	return &api.VariableResponse{
		Name:  name,
		Value: value,
		Found: found,
	}, nil
}

// SetVariableValue writes a variable into the chosen scope and persists
// the owning record
func (e *Engine) SetVariableValue(
	ctx context.Context, name, value string, envID, colID api.ID,
	toCollection bool,
) error {
	scope, err := e.buildScope(ctx, envID, colID)
	if err != nil {
		return err
	}
	if err := scope.Set(name, value, toCollection); err != nil {
		return err
	}
	return e.persistScope(ctx, scope)
}
