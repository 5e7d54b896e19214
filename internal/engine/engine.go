// Package engine orchestrates request execution and flow runs. It assembles
// the variable scope for each execution, dispatches resolved requests to
// their protocol executors, applies response extractions, and sequences
// flow steps under the run state machine.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/volleyhq/volley/internal/archive"
	"github.com/volleyhq/volley/internal/client"
	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/internal/engine/event"
	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/pkg/api"
)

// Engine is the core execution engine
type Engine struct {
	stores     *store.Stores
	dispatcher client.Dispatcher
	hub        *event.Hub
	archive    *archive.Writer
	config     *config.Config
	runs       *runRegistry
	wg         sync.WaitGroup
}

var (
	ErrShutdownTimeout   = errors.New("shutdown timeout exceeded")
	ErrRunNotFound       = errors.New("run not found")
	ErrRunFinished       = errors.New("run already finished")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// persistTimeout bounds the store writes performed while a run settles,
// which happen outside the run's own context
const persistTimeout = 5 * time.Second

// New creates an engine over the given stores, dispatcher, and event hub.
// The archive writer may be nil when run archiving is disabled
func New(
	stores *store.Stores, dispatcher client.Dispatcher, hub *event.Hub,
	writer *archive.Writer, cfg *config.Config,
) *Engine {
	return &Engine{
		stores:     stores,
		dispatcher: dispatcher,
		hub:        hub,
		archive:    writer,
		config:     cfg,
		runs:       newRunRegistry(),
	}
}

// Close cancels active runs, waits for them to settle, and shuts down the
// event hub
func (e *Engine) Close() error {
	e.runs.cancelAll()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.hub.Close()
		slog.Info("Engine stopped")
		return nil
	case <-time.After(e.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

func (e *Engine) emit(ev *api.RunEvent) {
	ev.Timestamp = time.Now()
	e.hub.Publish(ev)
}

func (e *Engine) archiveRun(res *api.FlowResult) {
	if e.archive == nil {
		return
	}
	e.archive.Enqueue(res)
}
