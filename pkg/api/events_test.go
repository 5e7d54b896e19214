package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/pkg/api"
)

func TestSubscriptionMatches(t *testing.T) {
	ev := &api.RunEvent{
		Type:   api.EventTypeStepStarted,
		RunID:  "run-1",
		FlowID: "flow-1",
	}

	t.Run("empty filter matches all", func(t *testing.T) {
		sub := &api.ClientSubscription{}
		assert.True(t, sub.Matches(ev))
	})

	t.Run("run filter", func(t *testing.T) {
		assert.True(
			t, (&api.ClientSubscription{RunID: "run-1"}).Matches(ev),
		)
		assert.False(
			t, (&api.ClientSubscription{RunID: "run-2"}).Matches(ev),
		)
	})

	t.Run("flow filter", func(t *testing.T) {
		assert.True(
			t, (&api.ClientSubscription{FlowID: "flow-1"}).Matches(ev),
		)
		assert.False(
			t, (&api.ClientSubscription{FlowID: "flow-9"}).Matches(ev),
		)
	})

	t.Run("event type filter", func(t *testing.T) {
		sub := &api.ClientSubscription{
			EventTypes: []api.EventType{api.EventTypeRunFinished},
		}
		assert.False(t, sub.Matches(ev))

		sub.EventTypes = append(sub.EventTypes, api.EventTypeStepStarted)
		assert.True(t, sub.Matches(ev))
	})
}

func TestNewID(t *testing.T) {
	a := api.NewID()
	b := api.NewID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsEmpty())
	assert.Len(t, string(a), 36)
}
