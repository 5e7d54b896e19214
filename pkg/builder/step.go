package builder

import (
	"time"

	"github.com/volleyhq/volley/pkg/api"
)

// Step builds one flow step. Steps start enabled with no delay
type Step struct {
	requestID api.ID
	order     int
	enabled   bool
	cont      bool
	delay     time.Duration
}

// NewStep creates a step builder for the given stored request
func NewStep(requestID api.ID) *Step {
	return &Step{
		requestID: requestID,
		enabled:   true,
	}
}

func (s *Step) WithOrder(order int) *Step {
	res := *s
	res.order = order
	return &res
}

// WithDelay pauses the flow for the given duration before the step runs
func (s *Step) WithDelay(d time.Duration) *Step {
	res := *s
	res.delay = d
	return &res
}

// ContinueOnError lets the flow proceed past this step when it fails
func (s *Step) ContinueOnError() *Step {
	res := *s
	res.cont = true
	return &res
}

// Disabled keeps the step in the flow but skips it at execution
func (s *Step) Disabled() *Step {
	res := *s
	res.enabled = false
	return &res
}

func (s *Step) Build() *api.FlowStep {
	return &api.FlowStep{
		RequestID:       s.requestID,
		Order:           s.order,
		Enabled:         s.enabled,
		ContinueOnError: s.cont,
		DelayMs:         s.delay.Milliseconds(),
	}
}
