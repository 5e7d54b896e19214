package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
)

type (
	// Writer archives completed runs in the background so a slow bucket
	// never delays run completion. Failed writes are retried before being
	// dropped
	Writer struct {
		prod        topic.Producer[*api.FlowResult]
		cons        topic.Consumer[*api.FlowResult]
		save        SaveFunc
		stop        chan struct{}
		wg          sync.WaitGroup
		startOnce   sync.Once
		stopOnce    sync.Once
		cleanupOnce sync.Once
	}

	// SaveFunc stores one completed run
	SaveFunc func(*api.FlowResult) error
)

var ErrSavePanicked = errors.New("archive save panicked")

const (
	maxRetries = 3
	retryDelay = 100 * time.Millisecond
)

// NewWriter creates a background archive writer
func NewWriter(save SaveFunc) *Writer {
	queue := caravan.NewTopic[*api.FlowResult]()
	return &Writer{
		prod: queue.NewProducer(),
		cons: queue.NewConsumer(),
		save: save,
		stop: make(chan struct{}),
	}
}

// Start begins draining queued run results
func (w *Writer) Start() {
	w.startOnce.Do(func() {
		w.wg.Go(func() {
			for {
				select {
				case <-w.stop:
					return
				case res, ok := <-w.cons.Receive():
					if !ok {
						return
					}
					w.write(res)
				}
			}
		})
	})
}

// Enqueue schedules a run result for archiving
func (w *Writer) Enqueue(res *api.FlowResult) {
	if res == nil {
		return
	}
	message.Send(w.prod, res)
}

// Flush archives everything still queued and stops the writer
func (w *Writer) Flush() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	w.wg.Wait()
	w.cleanupOnce.Do(w.drain)
}

// Cancel stops the writer without archiving queued results
func (w *Writer) Cancel() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	w.wg.Wait()
	w.cleanupOnce.Do(w.close)
}

func (w *Writer) drain() {
	for {
		select {
		case res, ok := <-w.cons.Receive():
			if !ok {
				w.close()
				return
			}
			w.write(res)
		default:
			w.close()
			return
		}
	}
}

func (w *Writer) close() {
	w.prod.Close()
	w.cons.Close()
}

func (w *Writer) write(res *api.FlowResult) {
	for attempt := range maxRetries {
		err := w.trySave(res)
		if err == nil {
			return
		}
		slog.Error("Run archive failed",
			log.RunID(res.ID),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries),
			log.Error(err))
		if attempt < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	slog.Error("Run archive permanently failed",
		log.RunID(res.ID),
		log.FlowID(res.FlowID))
}

func (w *Writer) trySave(res *api.FlowResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSavePanicked, r)
		}
	}()
	return w.save(res)
}
