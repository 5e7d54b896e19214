package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
	"github.com/volleyhq/volley/pkg/vars"
)

// flowRunner drives one run of a flow through its step sequence. Every
// state change is committed to the run registry as a fresh immutable
// snapshot, so concurrent readers always observe a coherent record
type flowRunner struct {
	eng   *Engine
	flow  *api.Flow
	steps []*api.FlowStep
	reqs  map[api.ID]*api.Request
	scope *vars.Scope
	res   *api.FlowResult
	dirty bool
}

// ExecuteFlow runs a flow synchronously and returns its settled result.
// The returned error covers load and configuration problems only; step
// failures are reported inside the result
func (e *Engine) ExecuteFlow(
	ctx context.Context, flowID api.ID,
) (*api.FlowResult, error) {
	r, err := e.prepareRun(ctx, flowID)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.runs.add(r.res, cancel)
	return r.run(runCtx), nil
}

// StartRun launches a flow asynchronously and returns the initial run
// record. Progress is observable through GetRun and the event hub
func (e *Engine) StartRun(
	ctx context.Context, flowID api.ID,
) (*api.FlowResult, error) {
	r, err := e.prepareRun(ctx, flowID)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(context.Background())
	e.runs.add(r.res, cancel)
	e.wg.Go(func() {
		defer cancel()
		r.run(runCtx)
	})
	return r.res, nil
}

// prepareRun loads everything a run needs up front. A flow referencing a
// missing request never starts
func (e *Engine) prepareRun(
	ctx context.Context, flowID api.ID,
) (*flowRunner, error) {
	flow, err := e.stores.Flows.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	reqs := map[api.ID]*api.Request{}
	if ids := flow.RequestIDs(); len(ids) > 0 {
		loaded, err := e.stores.Requests.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, req := range loaded {
			reqs[req.ID] = req
		}
	}
	scope, err := e.buildScope(ctx, "", flow.CollectionID)
	if err != nil {
		return nil, err
	}
	return &flowRunner{
		eng:   e,
		flow:  flow,
		steps: flow.SortedSteps(),
		reqs:  reqs,
		scope: scope,
		res:   api.NewFlowResult(api.NewID(), flow, reqs),
	}, nil
}

func (r *flowRunner) run(ctx context.Context) *api.FlowResult {
	slog.Info("Flow run started",
		log.RunID(r.res.ID),
		log.FlowID(r.flow.ID),
		slog.Int("steps", len(r.steps)))
	r.eng.emit(&api.RunEvent{
		Type:   api.EventTypeRunStarted,
		RunID:  r.res.ID,
		FlowID: r.flow.ID,
		Status: string(api.RunActive),
	})

	var halted, cancelled bool
	for i, step := range r.steps {
		if !step.Enabled || halted {
			r.skipStep(i, step)
			continue
		}
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if !r.delay(ctx, step.DelayMs) {
			cancelled = true
			break
		}
		if failed := r.executeStep(ctx, i, step); failed {
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			if !step.ContinueOnError {
				halted = true
			}
		}
	}
	return r.finish(halted, cancelled)
}

// skipStep settles a step that will not execute, either because it is
// disabled or because an earlier failure halted the flow
func (r *flowRunner) skipStep(i int, step *api.FlowStep) {
	sr, err := transitionStep(r.res.Steps[i], api.StepSkipped)
	if err != nil {
		slog.Error("Step skip rejected",
			log.RunID(r.res.ID), log.Error(err))
		return
	}
	r.commit(r.res.SetStep(i, sr))
	r.eng.emit(&api.RunEvent{
		Type:      api.EventTypeStepFinished,
		RunID:     r.res.ID,
		FlowID:    r.flow.ID,
		RequestID: step.RequestID,
		StepOrder: i,
		Status:    string(api.StepSkipped),
	})
}

// delay honors a step's configured pause, returning false when the run is
// cancelled while waiting
func (r *flowRunner) delay(ctx context.Context, ms int64) bool {
	if ms <= 0 {
		return true
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *flowRunner) executeStep(
	ctx context.Context, i int, step *api.FlowStep,
) bool {
	sr, err := transitionStep(r.res.Steps[i], api.StepActive)
	if err != nil {
		slog.Error("Step activation rejected",
			log.RunID(r.res.ID), log.Error(err))
		return true
	}
	sr = sr.SetStartedAt(time.Now())
	r.commit(r.res.SetStep(i, sr))
	r.eng.emit(&api.RunEvent{
		Type:      api.EventTypeStepStarted,
		RunID:     r.res.ID,
		FlowID:    r.flow.ID,
		RequestID: step.RequestID,
		StepOrder: i,
		Status:    string(api.StepActive),
	})

	resolved := r.reqs[step.RequestID].Clone()
	vars.ResolveRequest(r.scope, resolved)

	var failed bool
	resp, err := r.eng.dispatcher.Dispatch(ctx, resolved)
	switch {
	case err != nil:
		sr = sr.SetError(err.Error())
		failed = true
	case resp.Failed():
		sr = sr.SetResponse(resp).SetError(resp.Body)
		failed = true
	default:
		sr = sr.SetResponse(resp)
		for name, value := range r.eng.applyExtractions(r.scope, resolved, resp) {
			sr = sr.SetExtracted(name, value)
			r.dirty = true
		}
	}

	status := api.StepSuccess
	switch {
	case !failed:
	case step.ContinueOnError && ctx.Err() == nil:
		status = api.StepFailedContinued
	default:
		status = api.StepFailed
	}
	done, err := transitionStep(sr, status)
	if err != nil {
		slog.Error("Step completion rejected",
			log.RunID(r.res.ID), log.Error(err))
		return failed
	}
	done = done.SetCompletedAt(time.Now())
	r.commit(r.res.SetStep(i, done))
	r.eng.emit(&api.RunEvent{
		Type:      api.EventTypeStepFinished,
		RunID:     r.res.ID,
		FlowID:    r.flow.ID,
		RequestID: step.RequestID,
		StepOrder: i,
		Status:    string(status),
		Error:     done.Error,
	})

	if failed {
		slog.Warn("Flow step failed",
			log.RunID(r.res.ID),
			log.RequestID(step.RequestID),
			slog.Int("step", i),
			log.ErrorString(done.Error))
	} else {
		slog.Debug("Flow step completed",
			log.RunID(r.res.ID),
			log.RequestID(step.RequestID),
			slog.Int("step", i),
			slog.Int64("duration_ms", done.Duration))
	}
	return failed
}

// finish settles the run record, persists any variables the run wrote,
// hands the result to the archive writer, and announces completion
func (r *flowRunner) finish(halted, cancelled bool) *api.FlowResult {
	status := api.RunCompleted
	switch {
	case cancelled:
		status = api.RunCancelled
	case halted:
		status = api.RunFailed
	}
	res, err := transitionRun(r.res, status)
	if err != nil {
		slog.Error("Run completion rejected",
			log.RunID(r.res.ID), log.Error(err))
		res = r.res
	} else {
		res = res.SetCompletedAt(time.Now())
		if status == api.RunFailed {
			res = res.SetError(firstFailure(res.Steps))
		}
	}
	r.commit(res)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if r.dirty {
		if err := r.eng.persistScope(ctx, r.scope); err != nil {
			slog.Warn("Run variables not persisted",
				log.RunID(res.ID), log.Error(err))
		}
	}
	r.eng.archiveRun(res)
	r.eng.emit(&api.RunEvent{
		Type:   api.EventTypeRunFinished,
		RunID:  res.ID,
		FlowID: res.FlowID,
		Status: string(status),
		Error:  res.Error,
	})

	slog.Info("Flow run finished",
		log.RunID(res.ID),
		log.FlowID(res.FlowID),
		log.Status(status),
		slog.Int64("duration_ms", res.Duration))
	return res
}

// commit publishes a new run snapshot to the registry
func (r *flowRunner) commit(res *api.FlowResult) {
	r.res = res
	r.eng.runs.update(res)
}

func firstFailure(steps []*api.StepResult) string {
	for _, s := range steps {
		if s.Status != api.StepFailed {
			continue
		}
		if s.Error != "" {
			return fmt.Sprintf("step %d failed: %s", s.Order, s.Error)
		}
		return fmt.Sprintf("step %d failed", s.Order)
	}
	return "step failed"
}
