// Package vars resolves {{ name }} placeholders against the active
// environment and collection scopes
//
// Lookup precedence is collection variables, then environment variables,
// then collection dynamic generators, then environment dynamic generators.
// Secret values are overlaid onto their owner's variables in memory only;
// they are never written back to the owning record
package vars

import (
	"errors"
	"maps"

	"github.com/volleyhq/volley/pkg/api"
)

// Scope is one resolution view over an environment and an optional
// collection. Build it per execution; Set mutates the underlying records
// so later steps in a flow observe earlier writes
type Scope struct {
	env       *api.Environment
	col       *api.Collection
	envMerged map[string]string
	colMerged map[string]string
}

var (
	ErrNoScope     = errors.New("no scope for variable write")
	ErrInvalidName = errors.New("invalid variable name")
)

// NewScope creates a resolution scope. Either argument may be nil, in which
// case its tier contributes nothing
func NewScope(env *api.Environment, col *api.Collection) *Scope {
	s := &Scope{env: env, col: col}
	if env != nil {
		s.envMerged = maps.Clone(env.Variables)
	}
	if col != nil {
		s.colMerged = maps.Clone(col.Variables)
	}
	return s
}

// WithSecrets returns a scope with secret values overlaid onto their
// owning tier. A secret wins over a stored variable of the same name
func (s *Scope) WithSecrets(envSecrets, colSecrets map[string]string) *Scope {
	res := *s
	if len(envSecrets) > 0 {
		res.envMerged = maps.Clone(s.envMerged)
		if res.envMerged == nil {
			res.envMerged = map[string]string{}
		}
		maps.Copy(res.envMerged, envSecrets)
	}
	if len(colSecrets) > 0 {
		res.colMerged = maps.Clone(s.colMerged)
		if res.colMerged == nil {
			res.colMerged = map[string]string{}
		}
		maps.Copy(res.colMerged, colSecrets)
	}
	return &res
}

// Environment returns the environment backing this scope, if any
func (s *Scope) Environment() *api.Environment {
	return s.env
}

// Collection returns the collection backing this scope, if any
func (s *Scope) Collection() *api.Collection {
	return s.col
}

// Lookup resolves one variable name through the precedence chain. Dynamic
// generators produce a fresh value on every call
func (s *Scope) Lookup(name string) (string, bool) {
	if v, ok := s.colMerged[name]; ok {
		return v, true
	}
	if v, ok := s.envMerged[name]; ok {
		return v, true
	}
	if s.col != nil {
		if v, ok := evalDynamic(s.col.Dynamic, name); ok {
			return v, true
		}
	}
	if s.env != nil {
		if v, ok := evalDynamic(s.env.Dynamic, name); ok {
			return v, true
		}
	}
	return "", false
}

// Set writes a variable into the collection or environment tier. A
// collection write falls back to the environment when no collection is in
// scope, so flow extractions still land somewhere useful
func (s *Scope) Set(name, value string, toCollection bool) error {
	if !api.VarName.MatchString(name) {
		return ErrInvalidName
	}
	if toCollection && s.col != nil {
		if s.col.Variables == nil {
			s.col.Variables = map[string]string{}
		}
		s.col.Variables[name] = value
		if s.colMerged == nil {
			s.colMerged = map[string]string{}
		}
		s.colMerged[name] = value
		return nil
	}
	if s.env != nil {
		if s.env.Variables == nil {
			s.env.Variables = map[string]string{}
		}
		s.env.Variables[name] = value
		if s.envMerged == nil {
			s.envMerged = map[string]string{}
		}
		s.envMerged[name] = value
		return nil
	}
	return ErrNoScope
}
