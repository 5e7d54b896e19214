package builder

import (
	"maps"
	"slices"

	"github.com/volleyhq/volley/pkg/api"
)

// Environment builds named variable sets
type Environment struct {
	id      api.ID
	name    string
	vars    map[string]string
	secrets map[string]bool
	dynamic []*api.DynamicVar
}

// NewEnvironment creates an environment builder with a generated ID
func NewEnvironment(name string) *Environment {
	return &Environment{
		id:      api.NewID(),
		name:    name,
		vars:    map[string]string{},
		secrets: map[string]bool{},
	}
}

func (e *Environment) WithID(id api.ID) *Environment {
	res := *e
	res.id = id
	return &res
}

func (e *Environment) WithVariable(name, value string) *Environment {
	res := *e
	res.vars = maps.Clone(e.vars)
	res.vars[name] = value
	return &res
}

// WithSecretName marks a variable name as secret. The value itself is
// stored separately through the secrets endpoint
func (e *Environment) WithSecretName(name string) *Environment {
	res := *e
	res.secrets = maps.Clone(e.secrets)
	res.secrets[name] = true
	return &res
}

// WithDynamic declares a generated variable; see UUIDVar and friends
func (e *Environment) WithDynamic(d *api.DynamicVar) *Environment {
	res := *e
	res.dynamic = slices.Clone(e.dynamic)
	res.dynamic = append(res.dynamic, d)
	return &res
}

// Build assembles and validates the environment
func (e *Environment) Build() (*api.Environment, error) {
	env := &api.Environment{
		ID:          e.id,
		Name:        e.name,
		Variables:   maps.Clone(e.vars),
		SecretNames: maps.Clone(e.secrets),
		Dynamic:     slices.Clone(e.dynamic),
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// UUIDVar declares a variable generated as a fresh UUID per resolution
func UUIDVar(name string) *api.DynamicVar {
	return &api.DynamicVar{Name: name, Kind: api.DynamicUUID}
}

// TimestampVar declares a variable generated as the current time in the
// given format, or RFC 3339 when the format is empty
func TimestampVar(name, format string) *api.DynamicVar {
	return &api.DynamicVar{
		Name:   name,
		Kind:   api.DynamicTimestamp,
		Format: format,
	}
}

// UnixMilliVar declares a variable generated as the current Unix time in
// milliseconds
func UnixMilliVar(name string) *api.DynamicVar {
	return &api.DynamicVar{Name: name, Kind: api.DynamicUnixMilli}
}

// RandomIntVar declares a variable generated in the inclusive range
func RandomIntVar(name string, min, max int64) *api.DynamicVar {
	return &api.DynamicVar{
		Name: name,
		Kind: api.DynamicRandomInt,
		Min:  min,
		Max:  max,
	}
}

// RandomHexVar declares a variable generated as random hex of the given
// length
func RandomHexVar(name string, length int) *api.DynamicVar {
	return &api.DynamicVar{
		Name:   name,
		Kind:   api.DynamicRandomHex,
		Length: length,
	}
}
