package helpers

import (
	"context"
	"sync"
	"time"

	"github.com/volleyhq/volley/internal/client"
	"github.com/volleyhq/volley/pkg/api"
)

// MockDispatcher is a mock implementation of client.Dispatcher for testing.
// It records every dispatched request and returns configured outcomes
// without touching the network
type MockDispatcher struct {
	responses map[api.ID]*api.RequestResponse
	errors    map[api.ID]error
	delays    map[api.ID]time.Duration
	calls     []api.ID
	resolved  map[api.ID][]*api.Request
	calledCh  map[api.ID]chan struct{}
	mu        sync.Mutex
}

var _ client.Dispatcher = (*MockDispatcher)(nil)

// NewMockDispatcher creates a mock dispatcher that allows setting responses,
// errors, and artificial latency for specific request IDs
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{
		responses: map[api.ID]*api.RequestResponse{},
		errors:    map[api.ID]error{},
		delays:    map[api.ID]time.Duration{},
		calls:     []api.ID{},
		resolved:  map[api.ID][]*api.Request{},
		calledCh:  map[api.ID]chan struct{}{},
	}
}

// Dispatch records the call and returns the configured outcome.
// Unconfigured requests succeed with an empty JSON object body
func (d *MockDispatcher) Dispatch(
	ctx context.Context, r *api.Request,
) (*api.RequestResponse, error) {
	d.mu.Lock()
	d.calls = append(d.calls, r.ID)
	d.resolved[r.ID] = append(d.resolved[r.ID], r)
	if ch, ok := d.calledCh[r.ID]; ok {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	err := d.errors[r.ID]
	resp := d.responses[r.ID]
	delay := d.delays[r.ID]
	d.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return FailedResponse(ctx.Err().Error()), nil
		}
	}

	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = OKResponse(`{}`)
	}
	return resp, nil
}

// SetResponse configures the response returned for a request ID
func (d *MockDispatcher) SetResponse(id api.ID, resp *api.RequestResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[id] = resp
}

// SetFailure configures the request to fail at the transport level, the
// way executors report connection problems
func (d *MockDispatcher) SetFailure(id api.ID, errText string) {
	d.SetResponse(id, FailedResponse(errText))
}

// SetError configures Dispatch to return a configuration error
func (d *MockDispatcher) SetError(id api.ID, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors[id] = err
}

// SetDelay makes dispatches of the request take a while, for cancellation
// tests. A dispatch interrupted mid-delay reports a transport failure
func (d *MockDispatcher) SetDelay(id api.ID, delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delays[id] = delay
}

// Calls returns the dispatched request IDs in order
func (d *MockDispatcher) Calls() []api.ID {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]api.ID, len(d.calls))
	copy(result, d.calls)
	return result
}

// CallCount returns how many times a request was dispatched
func (d *MockDispatcher) CallCount(id api.ID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, call := range d.calls {
		if call == id {
			n++
		}
	}
	return n
}

// WasCalled returns whether a specific request was dispatched
func (d *MockDispatcher) WasCalled(id api.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wasCalledLocked(id)
}

// LastDispatched returns the most recent resolved request dispatched for an
// ID, letting tests inspect placeholder substitution
func (d *MockDispatcher) LastDispatched(id api.ID) *api.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.resolved[id]
	if len(entries) == 0 {
		return nil
	}
	return entries[len(entries)-1]
}

// WaitForCall blocks until a request is dispatched or the timeout expires
func (d *MockDispatcher) WaitForCall(
	id api.ID, timeout time.Duration,
) bool {
	d.mu.Lock()
	if d.wasCalledLocked(id) {
		d.mu.Unlock()
		return true
	}
	ch, ok := d.calledCh[id]
	if !ok {
		ch = make(chan struct{}, 1)
		d.calledCh[id] = ch
	}
	d.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return d.WasCalled(id)
	}
}

func (d *MockDispatcher) wasCalledLocked(id api.ID) bool {
	for _, call := range d.calls {
		if call == id {
			return true
		}
	}
	return false
}

// OKResponse builds a successful JSON response for mock configuration
func OKResponse(body string) *api.RequestResponse {
	return &api.RequestResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
		SizeBytes:  len(body),
		DurationMs: 1,
		Timestamp:  time.Now(),
	}
}

// FailedResponse builds the zero-status response executors report for
// transport failures
func FailedResponse(errText string) *api.RequestResponse {
	return &api.RequestResponse{
		StatusCode: 0,
		Body:       errText,
		SizeBytes:  len(errText),
		Timestamp:  time.Now(),
	}
}
