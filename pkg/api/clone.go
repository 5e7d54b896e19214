package api

import (
	"maps"
	"slices"
)

// Clone returns a deep, independent copy of the request. Resolution always
// runs against a clone so the stored template is never mutated
func (r *Request) Clone() *Request {
	res := *r
	res.Headers = maps.Clone(r.Headers)
	res.DisabledHeaders = maps.Clone(r.DisabledHeaders)
	if r.Auth != nil {
		auth := *r.Auth
		res.Auth = &auth
	}
	if r.Extractions != nil {
		res.Extractions = make([]*ExtractionRule, len(r.Extractions))
		for i, rule := range r.Extractions {
			c := *rule
			res.Extractions[i] = &c
		}
	}
	if r.REST != nil {
		c := *r.REST
		c.Query = maps.Clone(r.REST.Query)
		res.REST = &c
	}
	if r.GraphQL != nil {
		c := *r.GraphQL
		res.GraphQL = &c
	}
	if r.WebSocket != nil {
		c := *r.WebSocket
		c.Subprotocols = slices.Clone(r.WebSocket.Subprotocols)
		res.WebSocket = &c
	}
	return &res
}

// Clone returns a deep copy of the environment
func (e *Environment) Clone() *Environment {
	res := *e
	res.Variables = maps.Clone(e.Variables)
	res.SecretNames = maps.Clone(e.SecretNames)
	res.Dynamic = cloneDynamic(e.Dynamic)
	return &res
}

// Clone returns a deep copy of the collection
func (c *Collection) Clone() *Collection {
	res := *c
	res.Variables = maps.Clone(c.Variables)
	res.SecretNames = maps.Clone(c.SecretNames)
	res.Dynamic = cloneDynamic(c.Dynamic)
	res.ChildIDs = slices.Clone(c.ChildIDs)
	res.RequestIDs = slices.Clone(c.RequestIDs)
	return &res
}

// Clone returns a deep copy of the flow
func (f *Flow) Clone() *Flow {
	res := *f
	if f.Steps != nil {
		res.Steps = make([]*FlowStep, len(f.Steps))
		for i, s := range f.Steps {
			c := *s
			res.Steps[i] = &c
		}
	}
	return &res
}

func cloneDynamic(vars []*DynamicVar) []*DynamicVar {
	if vars == nil {
		return nil
	}
	res := make([]*DynamicVar, len(vars))
	for i, d := range vars {
		c := *d
		res[i] = &c
	}
	return res
}
