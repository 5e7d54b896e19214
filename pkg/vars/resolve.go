package vars

import (
	"regexp"

	"github.com/volleyhq/volley/internal/util"
	"github.com/volleyhq/volley/pkg/api"
)

// placeholder matches {{ name }} with optional inner whitespace. Text that
// merely resembles a placeholder but carries an invalid name is not matched
// and therefore passes through resolution untouched
var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Resolve substitutes every resolvable placeholder and leaves unresolved
// ones verbatim. A dynamic name evaluates once per call so repeated uses
// inside one text agree; separate calls re-evaluate
func (s *Scope) Resolve(text string) string {
	res, _ := s.ResolveTracked(text)
	return res
}

// ResolveTracked resolves like Resolve and also reports the placeholder
// names that had no value in scope, in first-appearance order
func (s *Scope) ResolveTracked(text string) (string, []string) {
	if text == "" {
		return text, nil
	}

	var unresolved []string
	seen := util.Set[string]{}
	memo := map[string]string{}

	res := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := memo[name]; ok {
			return v
		}
		if v, ok := s.Lookup(name); ok {
			memo[name] = v
			return v
		}
		if !seen.Contains(name) {
			seen.Add(name)
			unresolved = append(unresolved, name)
		}
		return m
	})
	return res, unresolved
}

// ContainsVariables reports whether the text holds at least one recognized
// placeholder
func ContainsVariables(text string) bool {
	return placeholder.MatchString(text)
}

// ExtractNames returns the distinct placeholder names referenced by the
// text, in first-appearance order
func ExtractNames(text string) []string {
	var names []string
	seen := util.Set[string]{}
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if !seen.Contains(name) {
			seen.Add(name)
			names = append(names, name)
		}
	}
	return names
}

// ResolveRequest resolves every textual field of a request in place. The
// request must already be a clone; stored templates are never resolved
// directly
func ResolveRequest(s *Scope, r *api.Request) {
	r.URL = s.Resolve(r.URL)
	for k, v := range r.Headers {
		r.Headers[k] = s.Resolve(v)
	}
	if r.Auth != nil {
		r.Auth.Username = s.Resolve(r.Auth.Username)
		r.Auth.Password = s.Resolve(r.Auth.Password)
		r.Auth.Token = s.Resolve(r.Auth.Token)
	}
	if r.REST != nil {
		r.REST.Body = s.Resolve(r.REST.Body)
		for k, v := range r.REST.Query {
			r.REST.Query[k] = s.Resolve(v)
		}
	}
	if r.GraphQL != nil {
		r.GraphQL.Query = s.Resolve(r.GraphQL.Query)
		r.GraphQL.Variables = s.Resolve(r.GraphQL.Variables)
		r.GraphQL.OperationName = s.Resolve(r.GraphQL.OperationName)
	}
	if r.WebSocket != nil {
		r.WebSocket.Message = s.Resolve(r.WebSocket.Message)
	}
}
