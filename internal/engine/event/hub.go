// Package event fans flow run progress out to live subscribers. The engine
// publishes one envelope per run and step transition; WebSocket clients and
// tests attach consumers and receive every event published while attached.
package event

import (
	"sync"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/volleyhq/volley/pkg/api"
)

type (
	// Hub broadcasts run events to any number of attached consumers
	Hub struct {
		topic     topic.Topic[*api.RunEvent]
		prod      topic.Producer[*api.RunEvent]
		closeOnce sync.Once
	}

	// Consumer receives published run events until closed
	Consumer = topic.Consumer[*api.RunEvent]
)

// NewHub creates a run event hub
func NewHub() *Hub {
	t := caravan.NewTopic[*api.RunEvent]()
	return &Hub{
		topic: t,
		prod:  t.NewProducer(),
	}
}

// Publish broadcasts a run event to all attached consumers
func (h *Hub) Publish(ev *api.RunEvent) {
	if ev == nil {
		return
	}
	message.Send(h.prod, ev)
}

// NewConsumer attaches a subscriber to the hub. The caller must close the
// consumer when it is done receiving
func (h *Hub) NewConsumer() Consumer {
	return h.topic.NewConsumer()
}

// Close stops the hub producer
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.prod.Close()
	})
}
