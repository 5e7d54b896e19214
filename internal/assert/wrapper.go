package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/pkg/api"
)

// Wrapper wraps testify assertions with Volley-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 25 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus Volley-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// RequestValid asserts that a request passes validation and carries the
// variant config its kind requires
func (w *Wrapper) RequestValid(r *api.Request) {
	w.Helper()
	w.NoError(r.Validate())
	w.NotEmpty(r.URL)

	switch r.Kind {
	case api.KindREST:
		w.NotNil(r.REST, "REST requests should have RESTConfig")
	case api.KindGraphQL:
		w.NotNil(r.GraphQL, "GraphQL requests should have GraphQLConfig")
	case api.KindWebSocket:
		w.NotNil(r.WebSocket,
			"WebSocket requests should have WebSocketConfig")
	}
}

// RequestInvalid asserts that a request fails validation and returns the
// validation error
func (w *Wrapper) RequestInvalid(
	r *api.Request, expectedErrorContains string,
) error {
	w.Helper()
	err := r.Validate()
	w.Error(err)
	if err != nil && expectedErrorContains != "" {
		w.Contains(err.Error(), expectedErrorContains)
	}
	return err
}

// RunStatus asserts the status of a flow run
func (w *Wrapper) RunStatus(res *api.FlowResult, expected api.RunStatus) {
	w.Helper()
	w.Equal(expected, res.Status)
}

// StepStatus asserts the status of the step at the given position
func (w *Wrapper) StepStatus(
	res *api.FlowResult, i int, expected api.StepStatus,
) {
	w.Helper()
	w.Require.Less(i, len(res.Steps))
	w.Equal(expected, res.Steps[i].Status)
}

// ResponseFailed asserts that a response records a transport failure whose
// body mentions the given text
func (w *Wrapper) ResponseFailed(
	resp *api.RequestResponse, contains string,
) {
	w.Helper()
	w.Require.NotNil(resp)
	w.True(resp.Failed())
	if contains != "" {
		w.Contains(resp.Body, contains)
	}
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.RequestTimeout > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}

// EventuallyWithError runs a condition that returns an error until it succeeds
// or times out
func (w *Wrapper) EventuallyWithError(
	condition func() error, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		err := condition()
		if err == nil {
			return
		}
		lastErr = err
		time.Sleep(DefaultRetryInterval)
	}
	if lastErr != nil {
		w.Fail(msg+": last error: "+lastErr.Error(), args...)
		return
	}
	w.Fail(msg, args...)
}
