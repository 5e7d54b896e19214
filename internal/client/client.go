// Package client executes resolved requests against their targets. One
// executor exists per request kind; all of them share the same contract:
// Execute never returns an error, it reports transport failures as a
// response with status code zero and the failure text as body.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/pkg/api"
)

type (
	// Executor runs one protocol variant of a request
	Executor interface {
		CanExecute(*api.Request) bool
		Execute(context.Context, *api.Request) *api.RequestResponse
	}

	// Dispatcher selects and runs the executor for a request. The only
	// error it can return is a configuration one: no executor recognizes
	// the request
	Dispatcher interface {
		Dispatch(context.Context, *api.Request) (*api.RequestResponse, error)
	}

	// Factory owns the executor set and the transport they share
	Factory struct {
		executors []Executor
	}

	// transport carries the HTTP client and WebSocket dialer shared by all
	// executors
	transport struct {
		httpClient *http.Client
		dialer     *websocket.Dialer
		idle       time.Duration
	}
)

var ErrNoExecutor = errors.New("no executor for request kind")

var _ Dispatcher = (*Factory)(nil)

// NewFactory creates the standard executor set for REST, GraphQL, and
// WebSocket requests
func NewFactory(cfg *config.Config) *Factory {
	shared := newTransport(cfg)
	return &Factory{
		executors: []Executor{
			NewRESTExecutor(shared),
			NewGraphQLExecutor(shared),
			NewSocketExecutor(shared),
		},
	}
}

// For returns the executor that recognizes the request, or ErrNoExecutor
// when none does
func (f *Factory) For(r *api.Request) (Executor, error) {
	for _, ex := range f.executors {
		if ex.CanExecute(r) {
			return ex, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoExecutor, r.Kind)
}

// Dispatch runs the request on its executor
func (f *Factory) Dispatch(
	ctx context.Context, r *api.Request,
) (*api.RequestResponse, error) {
	ex, err := f.For(r)
	if err != nil {
		return nil, err
	}
	return ex.Execute(ctx, r), nil
}

func newTransport(cfg *config.Config) *transport {
	return &transport{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		idle: cfg.StreamIdleTimeout,
	}
}

// failed converts a transport error into the zero-status response every
// executor reports instead of raising
func failed(
	start time.Time, sent *api.SentRequest, err error,
) *api.RequestResponse {
	return &api.RequestResponse{
		StatusCode: 0,
		Body:       err.Error(),
		SizeBytes:  len(err.Error()),
		DurationMs: time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
		Sent:       sent,
	}
}
