package builder

import (
	"maps"
	"slices"

	"github.com/volleyhq/volley/pkg/api"
)

// Collection builds request groupings with their own variable scope
type Collection struct {
	id       api.ID
	name     string
	parentID api.ID
	vars     map[string]string
	secrets  map[string]bool
	dynamic  []*api.DynamicVar
}

// NewCollection creates a collection builder with a generated ID
func NewCollection(name string) *Collection {
	return &Collection{
		id:      api.NewID(),
		name:    name,
		vars:    map[string]string{},
		secrets: map[string]bool{},
	}
}

func (c *Collection) WithID(id api.ID) *Collection {
	res := *c
	res.id = id
	return &res
}

func (c *Collection) WithParent(id api.ID) *Collection {
	res := *c
	res.parentID = id
	return &res
}

func (c *Collection) WithVariable(name, value string) *Collection {
	res := *c
	res.vars = maps.Clone(c.vars)
	res.vars[name] = value
	return &res
}

// WithSecretName marks a variable name as secret. The value itself is
// stored separately through the secrets endpoint
func (c *Collection) WithSecretName(name string) *Collection {
	res := *c
	res.secrets = maps.Clone(c.secrets)
	res.secrets[name] = true
	return &res
}

// WithDynamic declares a generated variable; see UUIDVar and friends
func (c *Collection) WithDynamic(d *api.DynamicVar) *Collection {
	res := *c
	res.dynamic = slices.Clone(c.dynamic)
	res.dynamic = append(res.dynamic, d)
	return &res
}

// Build assembles and validates the collection
func (c *Collection) Build() (*api.Collection, error) {
	col := &api.Collection{
		ID:          c.id,
		Name:        c.name,
		ParentID:    c.parentID,
		Variables:   maps.Clone(c.vars),
		SecretNames: maps.Clone(c.secrets),
		Dynamic:     slices.Clone(c.dynamic),
	}
	if err := col.Validate(); err != nil {
		return nil, err
	}
	return col, nil
}
