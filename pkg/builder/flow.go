package builder

import (
	"slices"

	"github.com/volleyhq/volley/pkg/api"
)

// Flow builds an ordered request sequence
type Flow struct {
	id           api.ID
	name         string
	collectionID api.ID
	steps        []*api.FlowStep
}

// NewFlow creates a flow builder with a generated ID
func NewFlow(name string) *Flow {
	return &Flow{
		id:   api.NewID(),
		name: name,
	}
}

func (f *Flow) WithID(id api.ID) *Flow {
	res := *f
	res.id = id
	return &res
}

func (f *Flow) WithCollection(id api.ID) *Flow {
	res := *f
	res.collectionID = id
	return &res
}

// WithRequest appends a default step for the request, ordered after the
// steps already present
func (f *Flow) WithRequest(requestID api.ID) *Flow {
	return f.WithStep(NewStep(requestID).WithOrder(len(f.steps)).Build())
}

// WithStep appends a step built elsewhere, keeping its configured order
func (f *Flow) WithStep(step *api.FlowStep) *Flow {
	res := *f
	res.steps = slices.Clone(f.steps)
	res.steps = append(res.steps, step)
	return &res
}

// Build assembles and validates the flow
func (f *Flow) Build() (*api.Flow, error) {
	flow := &api.Flow{
		ID:           f.id,
		Name:         f.name,
		CollectionID: f.collectionID,
		Steps:        slices.Clone(f.steps),
	}
	if err := flow.Validate(); err != nil {
		return nil, err
	}
	return flow, nil
}
