package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/pkg/api"
)

func TestFlowValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		flow := &api.Flow{
			Name: "signup",
			Steps: []*api.FlowStep{
				{RequestID: "r1", Order: 1, Enabled: true, DelayMs: 250},
			},
		}
		assert.NoError(t, flow.Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		flow := &api.Flow{}
		assert.ErrorIs(t, flow.Validate(), api.ErrFlowNameEmpty)
	})

	t.Run("step without request", func(t *testing.T) {
		flow := &api.Flow{
			Name:  "signup",
			Steps: []*api.FlowStep{{Order: 1}},
		}
		assert.ErrorIs(t, flow.Validate(), api.ErrStepRequestEmpty)
	})

	t.Run("negative delay", func(t *testing.T) {
		flow := &api.Flow{
			Name: "signup",
			Steps: []*api.FlowStep{
				{RequestID: "r1", DelayMs: -1},
			},
		}
		assert.ErrorIs(t, flow.Validate(), api.ErrStepDelayInvalid)
	})
}

func TestSortedSteps(t *testing.T) {
	flow := &api.Flow{
		Name: "ordering",
		Steps: []*api.FlowStep{
			{RequestID: "c", Order: 3},
			{RequestID: "a", Order: 1},
			{RequestID: "b1", Order: 2},
			{RequestID: "b2", Order: 2},
		},
	}

	steps := flow.SortedSteps()
	assert.Equal(t, api.ID("a"), steps[0].RequestID)
	assert.Equal(t, api.ID("b1"), steps[1].RequestID)
	assert.Equal(t, api.ID("b2"), steps[2].RequestID)
	assert.Equal(t, api.ID("c"), steps[3].RequestID)

	// stored order untouched
	assert.Equal(t, api.ID("c"), flow.Steps[0].RequestID)
}

func TestFlowRequestIDs(t *testing.T) {
	flow := &api.Flow{
		Name: "dedupe",
		Steps: []*api.FlowStep{
			{RequestID: "r2", Order: 2},
			{RequestID: "r1", Order: 1},
			{RequestID: "r1", Order: 3},
		},
	}

	assert.Equal(t, []api.ID{"r1", "r2"}, flow.RequestIDs())
}
