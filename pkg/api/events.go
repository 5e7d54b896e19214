package api

import "time"

type (
	// EventType classifies run progress events
	EventType string

	// RunEvent reports flow run progress to subscribers. Step fields are
	// populated only for step-level events
	RunEvent struct {
		Type      EventType `json:"type"`
		RunID     ID        `json:"run_id"`
		FlowID    ID        `json:"flow_id"`
		RequestID ID        `json:"request_id,omitempty"`
		StepOrder int       `json:"step_order,omitempty"`
		Status    string    `json:"status,omitempty"`
		Error     string    `json:"error,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	// SubscribeRequest is sent by WebSocket clients to filter which run
	// events they receive
	SubscribeRequest struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}

	// ClientSubscription configures which events a WebSocket client receives.
	// Empty fields match everything
	ClientSubscription struct {
		RunID      ID          `json:"run_id,omitempty"`
		FlowID     ID          `json:"flow_id,omitempty"`
		EventTypes []EventType `json:"event_types,omitempty"`
	}

	// SubscribedResult confirms an applied subscription back to the client
	SubscribedResult struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}
)

const (
	EventTypeRunStarted   EventType = "run_started"
	EventTypeStepStarted  EventType = "step_started"
	EventTypeStepFinished EventType = "step_finished"
	EventTypeRunFinished  EventType = "run_finished"
)

// Matches returns true when the event passes the subscription filter
func (s *ClientSubscription) Matches(ev *RunEvent) bool {
	if !s.RunID.IsEmpty() && s.RunID != ev.RunID {
		return false
	}
	if !s.FlowID.IsEmpty() && s.FlowID != ev.FlowID {
		return false
	}
	if len(s.EventTypes) == 0 {
		return true
	}
	for _, t := range s.EventTypes {
		if t == ev.Type {
			return true
		}
	}
	return false
}
