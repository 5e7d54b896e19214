package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/volleyhq/volley/pkg/api"
)

type (
	// runRegistry tracks every run the engine has started, active or
	// settled, along with the cancel function for in-flight ones
	runRegistry struct {
		mu      sync.RWMutex
		entries map[api.ID]*runEntry
	}

	runEntry struct {
		res    *api.FlowResult
		cancel context.CancelFunc
	}
)

// maxSettledRuns caps how many settled runs stay queryable in memory.
// Active runs are never evicted; the archive keeps the full history
const maxSettledRuns = 100

func newRunRegistry() *runRegistry {
	return &runRegistry{
		entries: map[api.ID]*runEntry{},
	}
}

func (r *runRegistry) add(res *api.FlowResult, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[res.ID] = &runEntry{
		res:    res,
		cancel: cancel,
	}
	r.pruneLocked()
}

func (r *runRegistry) update(res *api.FlowResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[res.ID]; ok {
		entry.res = res
	}
}

func (r *runRegistry) get(id api.ID) (*api.FlowResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return entry.res, true
}

func (r *runRegistry) list() []*api.FlowResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*api.FlowResult, 0, len(r.entries))
	for _, entry := range r.entries {
		res = append(res, entry.res)
	}
	slices.SortFunc(res, func(a, b *api.FlowResult) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return res
}

func (r *runRegistry) cancel(id api.ID) error {
	r.mu.RLock()
	entry, ok := r.entries[id]
	var finished bool
	if ok {
		finished = entry.res.Finished()
	}
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if finished {
		return fmt.Errorf("%w: %s", ErrRunFinished, id)
	}
	entry.cancel()
	return nil
}

func (r *runRegistry) cancelAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		if !entry.res.Finished() {
			entry.cancel()
		}
	}
}

func (r *runRegistry) pruneLocked() {
	var settled []*api.FlowResult
	for _, entry := range r.entries {
		if entry.res.Finished() {
			settled = append(settled, entry.res)
		}
	}
	if len(settled) <= maxSettledRuns {
		return
	}
	slices.SortFunc(settled, func(a, b *api.FlowResult) int {
		return a.CompletedAt.Compare(b.CompletedAt)
	})
	for _, res := range settled[:len(settled)-maxSettledRuns] {
		delete(r.entries, res.ID)
	}
}

// GetRun returns the current snapshot of a run
func (e *Engine) GetRun(runID api.ID) (*api.FlowResult, error) {
	res, ok := e.runs.get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return res, nil
}

// ListRuns returns every run the engine still tracks, most recent first
func (e *Engine) ListRuns() []*api.FlowResult {
	return e.runs.list()
}

// CancelRun requests cooperative cancellation of an active run. The run
// settles asynchronously; observe completion through GetRun or the event
// hub
func (e *Engine) CancelRun(runID api.ID) error {
	return e.runs.cancel(runID)
}
