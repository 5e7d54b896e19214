package engine

import (
	"context"
	"log/slog"

	"github.com/volleyhq/volley/internal/extract"
	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
	"github.com/volleyhq/volley/pkg/vars"
)

// ExecuteRequest clones the supplied request, resolves it against the
// selected scope, dispatches it, and applies its extraction rules. The
// returned response reports transport failures in-band; an error means
// the execution could not be attempted at all
func (e *Engine) ExecuteRequest(
	ctx context.Context, req *api.Request, envID, colID api.ID,
) (*api.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if colID.IsEmpty() {
		colID = req.CollectionID
	}
	scope, err := e.buildScope(ctx, envID, colID)
	if err != nil {
		return nil, err
	}

	resolved := req.Clone()
	vars.ResolveRequest(scope, resolved)

	resp, err := e.dispatcher.Dispatch(ctx, resolved)
	if err != nil {
		return nil, err
	}
	slog.Info("Request executed",
		log.RequestID(req.ID),
		log.Kind(req.Kind),
		slog.Int("status_code", resp.StatusCode),
		slog.Int64("duration_ms", resp.DurationMs))

	if !resp.Failed() {
		if extracted := e.applyExtractions(scope, resolved, resp); len(extracted) > 0 {
			if err := e.persistScope(ctx, scope); err != nil {
				slog.Warn("Extracted variables not persisted",
					log.RequestID(req.ID), log.Error(err))
			}
		}
	}
	return resp, nil
}

// ExecuteStoredRequest loads a request template by id and executes it
func (e *Engine) ExecuteStoredRequest(
	ctx context.Context, id, envID, colID api.ID,
) (*api.RequestResponse, error) {
	req, err := e.stores.Requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.ExecuteRequest(ctx, req, envID, colID)
}

// applyExtractions evaluates the request's enabled extraction rules
// against the response body and writes hits into the scope. A rule that
// matches nothing is skipped, and the caller never sees an extraction
// failure
func (e *Engine) applyExtractions(
	scope *vars.Scope, req *api.Request, resp *api.RequestResponse,
) map[string]string {
	rules := req.EnabledExtractions()
	if len(rules) == 0 {
		return nil
	}
	contentType := resp.ContentType()
	extracted := map[string]string{}
	for _, rule := range rules {
		value, ok := extract.Value(resp.Body, rule.Path, contentType)
		if !ok {
			slog.Debug("Extraction path matched nothing",
				log.RequestID(req.ID),
				log.Variable(rule.Variable),
				slog.String("path", rule.Path))
			continue
		}
		err := scope.Set(rule.Variable, value, rule.SaveToCollection)
		if err != nil {
			slog.Warn("Extracted variable not writable",
				log.RequestID(req.ID),
				log.Variable(rule.Variable),
				log.Error(err))
			continue
		}
		extracted[rule.Variable] = value
	}
	return extracted
}
