package api

import (
	"maps"
	"slices"
	"time"
)

type (
	// RunStatus represents the overall state of a flow run
	RunStatus string

	// StepStatus represents the state of a single step within a run
	StepStatus string

	// StepResult records the outcome of one flow step
	StepResult struct {
		RequestID   ID                `json:"request_id"`
		RequestName string            `json:"request_name,omitempty"`
		Order       int               `json:"order"`
		Status      StepStatus        `json:"status"`
		StartedAt   time.Time         `json:"started_at,omitempty"`
		CompletedAt time.Time         `json:"completed_at,omitempty"`
		Duration    int64             `json:"duration,omitempty"`
		Response    *RequestResponse  `json:"response,omitempty"`
		Extracted   map[string]string `json:"extracted,omitempty"`
		Error       string            `json:"error,omitempty"`
	}

	// FlowResult records a complete flow run with its per-step breakdown.
	// Values are immutable; setters return updated copies so a result can
	// be shared across goroutines while a run is in progress
	FlowResult struct {
		ID          ID            `json:"id"`
		FlowID      ID            `json:"flow_id"`
		FlowName    string        `json:"flow_name"`
		Status      RunStatus     `json:"status"`
		StartedAt   time.Time     `json:"started_at"`
		CompletedAt time.Time     `json:"completed_at,omitempty"`
		Duration    int64         `json:"duration,omitempty"`
		Steps       []*StepResult `json:"steps"`
		Error       string        `json:"error,omitempty"`
	}
)

const (
	RunActive    RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

const (
	StepPending         StepStatus = "pending"
	StepActive          StepStatus = "running"
	StepSuccess         StepStatus = "success"
	StepFailedContinued StepStatus = "failed_continued"
	StepFailed          StepStatus = "failed"
	StepSkipped         StepStatus = "skipped"
)

// NewFlowResult creates the initial record for a run, with every step
// pending in execution order. Request names are resolved from the supplied
// templates when available
func NewFlowResult(id ID, flow *Flow, requests map[ID]*Request) *FlowResult {
	steps := flow.SortedSteps()
	results := make([]*StepResult, 0, len(steps))
	for _, s := range steps {
		sr := &StepResult{
			RequestID: s.RequestID,
			Order:     s.Order,
			Status:    StepPending,
		}
		if req, ok := requests[s.RequestID]; ok {
			sr.RequestName = req.Name
		}
		results = append(results, sr)
	}
	return &FlowResult{
		ID:        id,
		FlowID:    flow.ID,
		FlowName:  flow.Name,
		Status:    RunActive,
		StartedAt: time.Now(),
		Steps:     results,
	}
}

// DurationMs returns the step's wall-clock time in milliseconds, or zero
// while the step has not completed
func (sr *StepResult) DurationMs() int64 {
	return durationBetween(sr.StartedAt, sr.CompletedAt)
}

// TotalDurationMs returns the run's wall-clock time in milliseconds, or
// zero while the run has not completed
func (fr *FlowResult) TotalDurationMs() int64 {
	return durationBetween(fr.StartedAt, fr.CompletedAt)
}

// Finished returns true once the run has reached a terminal status
func (fr *FlowResult) Finished() bool {
	return fr.Status != RunActive
}

// SetStatus returns a new FlowResult with the updated status
func (fr *FlowResult) SetStatus(s RunStatus) *FlowResult {
	res := *fr
	res.Status = s
	return &res
}

// SetCompletedAt returns a new FlowResult with the completion timestamp and
// derived duration set
func (fr *FlowResult) SetCompletedAt(t time.Time) *FlowResult {
	res := *fr
	res.CompletedAt = t
	res.Duration = durationBetween(res.StartedAt, t)
	return &res
}

// SetError returns a new FlowResult with the error message set
func (fr *FlowResult) SetError(err string) *FlowResult {
	res := *fr
	res.Error = err
	return &res
}

// SetStep returns a new FlowResult with the indexed step result replaced
func (fr *FlowResult) SetStep(i int, sr *StepResult) *FlowResult {
	res := *fr
	res.Steps = slices.Clone(fr.Steps)
	res.Steps[i] = sr
	return &res
}

// SetStatus returns a new StepResult with the updated status
func (sr *StepResult) SetStatus(s StepStatus) *StepResult {
	res := *sr
	res.Status = s
	return &res
}

// SetStartedAt returns a new StepResult with the start timestamp set
func (sr *StepResult) SetStartedAt(t time.Time) *StepResult {
	res := *sr
	res.StartedAt = t
	return &res
}

// SetCompletedAt returns a new StepResult with the completion timestamp and
// derived duration set
func (sr *StepResult) SetCompletedAt(t time.Time) *StepResult {
	res := *sr
	res.CompletedAt = t
	res.Duration = durationBetween(res.StartedAt, t)
	return &res
}

// SetResponse returns a new StepResult with the response attached
func (sr *StepResult) SetResponse(r *RequestResponse) *StepResult {
	res := *sr
	res.Response = r
	return &res
}

// SetExtracted returns a new StepResult with an extracted value recorded
func (sr *StepResult) SetExtracted(name, value string) *StepResult {
	res := *sr
	res.Extracted = maps.Clone(sr.Extracted)
	if res.Extracted == nil {
		res.Extracted = map[string]string{}
	}
	res.Extracted[name] = value
	return &res
}

// SetError returns a new StepResult with the error message set
func (sr *StepResult) SetError(err string) *StepResult {
	res := *sr
	res.Error = err
	return &res
}

func durationBetween(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start).Milliseconds()
}
