package engine

import (
	"fmt"

	"github.com/volleyhq/volley/internal/util"
	"github.com/volleyhq/volley/pkg/api"
)

// Transition tables for run and step statuses. Steps left pending by a
// cancelled run never transition; skipping goes straight from pending
var (
	runTransitions = util.StateTransitions[api.RunStatus]{
		api.RunActive: util.SetOf(
			api.RunCompleted,
			api.RunFailed,
			api.RunCancelled,
		),
		api.RunCompleted: {},
		api.RunFailed:    {},
		api.RunCancelled: {},
	}

	stepTransitions = util.StateTransitions[api.StepStatus]{
		api.StepPending: util.SetOf(
			api.StepActive,
			api.StepSkipped,
		),
		api.StepActive: util.SetOf(
			api.StepSuccess,
			api.StepFailedContinued,
			api.StepFailed,
		),
		api.StepSuccess:         {},
		api.StepFailedContinued: {},
		api.StepFailed:          {},
		api.StepSkipped:         {},
	}
)

// transitionRun returns a copy of the run record in the new status, or
// ErrInvalidTransition when the change is not in the table
func transitionRun(
	fr *api.FlowResult, to api.RunStatus,
) (*api.FlowResult, error) {
	if !runTransitions.CanTransition(fr.Status, to) {
		return nil, fmt.Errorf(
			"%w: %s to %s", ErrInvalidTransition, fr.Status, to,
		)
	}
	return fr.SetStatus(to), nil
}

// transitionStep returns a copy of the step record in the new status, or
// ErrInvalidTransition when the change is not in the table
func transitionStep(
	sr *api.StepResult, to api.StepStatus,
) (*api.StepResult, error) {
	if !stepTransitions.CanTransition(sr.Status, to) {
		return nil, fmt.Errorf(
			"%w: %s to %s", ErrInvalidTransition, sr.Status, to,
		)
	}
	return sr.SetStatus(to), nil
}
