package api

import (
	"cmp"
	"errors"
	"slices"
)

type (
	// FlowStep binds a stored request into a flow sequence. Order controls
	// position, DelayMs is an optional pause applied before execution, and
	// ContinueOnError lets the flow proceed past a failed call
	FlowStep struct {
		RequestID       ID    `json:"request_id"`
		Order           int   `json:"order"`
		Enabled         bool  `json:"enabled"`
		ContinueOnError bool  `json:"continue_on_error,omitempty"`
		DelayMs         int64 `json:"delay_ms,omitempty"`
	}

	// Flow is an ordered sequence of request steps executed strictly one
	// after another
	Flow struct {
		ID           ID          `json:"id"`
		Name         string      `json:"name"`
		CollectionID ID          `json:"collection_id,omitempty"`
		Steps        []*FlowStep `json:"steps"`
	}
)

var (
	ErrFlowNameEmpty    = errors.New("flow name empty")
	ErrStepRequestEmpty = errors.New("flow step request id empty")
	ErrStepDelayInvalid = errors.New("flow step delay cannot be negative")
)

// Key returns the identifier repositories store this flow under
func (f *Flow) Key() ID {
	return f.ID
}

func (f *Flow) Validate() error {
	if f.Name == "" {
		return ErrFlowNameEmpty
	}
	for _, s := range f.Steps {
		if s.RequestID.IsEmpty() {
			return ErrStepRequestEmpty
		}
		if s.DelayMs < 0 {
			return ErrStepDelayInvalid
		}
	}
	return nil
}

// SortedSteps returns the steps in execution order without modifying the
// stored slice. Steps sharing an Order value keep their relative position
func (f *Flow) SortedSteps() []*FlowStep {
	steps := slices.Clone(f.Steps)
	slices.SortStableFunc(steps, func(a, b *FlowStep) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return steps
}

// RequestIDs returns the distinct request identifiers referenced by the
// flow's steps, in first-appearance order
func (f *Flow) RequestIDs() []ID {
	var ids []ID
	seen := map[ID]bool{}
	for _, s := range f.SortedSteps() {
		if !seen[s.RequestID] {
			seen[s.RequestID] = true
			ids = append(ids, s.RequestID)
		}
	}
	return ids
}
