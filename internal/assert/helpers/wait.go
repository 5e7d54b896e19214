package helpers

import (
	"testing"
	"time"

	"github.com/volleyhq/volley/internal/engine/event"
	"github.com/volleyhq/volley/pkg/api"
)

// RunWaiter waits for run events matching a filter. Create before
// triggering the action
type RunWaiter struct {
	consumer event.Consumer
	filter   func(*api.RunEvent) bool
	desc     string // for error messages
}

// Wait blocks until a matching event arrives and returns it
func (w *RunWaiter) Wait(t *testing.T, timeout time.Duration) *api.RunEvent {
	t.Helper()
	defer w.consumer.Close()

	deadline := time.After(timeout)
	for {
		select {
		case ev := <-w.consumer.Receive():
			if ev != nil && w.filter(ev) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", w.desc)
			return nil
		}
	}
}

// SubscribeToRunFinished creates a waiter for a flow's run completion
func (env *TestEnv) SubscribeToRunFinished(flowID api.ID) *RunWaiter {
	return &RunWaiter{
		consumer: env.Hub.NewConsumer(),
		filter: func(ev *api.RunEvent) bool {
			return ev.Type == api.EventTypeRunFinished &&
				ev.FlowID == flowID
		},
		desc: "run finished for flow " + string(flowID),
	}
}

// SubscribeToStepStarted creates a waiter for one request's step start
func (env *TestEnv) SubscribeToStepStarted(
	flowID, requestID api.ID,
) *RunWaiter {
	return &RunWaiter{
		consumer: env.Hub.NewConsumer(),
		filter: func(ev *api.RunEvent) bool {
			return ev.Type == api.EventTypeStepStarted &&
				ev.FlowID == flowID && ev.RequestID == requestID
		},
		desc: "step started for request " + string(requestID),
	}
}

// SubscribeToStepFinished creates a waiter for one request's step
// settlement, whether executed or skipped
func (env *TestEnv) SubscribeToStepFinished(
	flowID, requestID api.ID,
) *RunWaiter {
	return &RunWaiter{
		consumer: env.Hub.NewConsumer(),
		filter: func(ev *api.RunEvent) bool {
			return ev.Type == api.EventTypeStepFinished &&
				ev.FlowID == flowID && ev.RequestID == requestID
		},
		desc: "step finished for request " + string(requestID),
	}
}

// RunEventLog accumulates a flow's run events until the run finishes.
// Create before starting the run
type RunEventLog struct {
	consumer event.Consumer
	flowID   api.ID
}

// SubscribeToFlow creates an event log for every event the flow's next
// run emits
func (env *TestEnv) SubscribeToFlow(flowID api.ID) *RunEventLog {
	return &RunEventLog{
		consumer: env.Hub.NewConsumer(),
		flowID:   flowID,
	}
}

// Collect blocks until the run finishes and returns its events in arrival
// order
func (l *RunEventLog) Collect(
	t *testing.T, timeout time.Duration,
) []*api.RunEvent {
	t.Helper()
	defer l.consumer.Close()

	var seen []*api.RunEvent
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-l.consumer.Receive():
			if ev == nil || ev.FlowID != l.flowID {
				continue
			}
			seen = append(seen, ev)
			if ev.Type == api.EventTypeRunFinished {
				return seen
			}
		case <-deadline:
			t.Fatalf("timeout collecting events for flow %s", l.flowID)
			return nil
		}
	}
}
