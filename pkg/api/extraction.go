package api

import "fmt"

// ExtractionRule captures a value from a response body into a variable.
// Path is a JSON path for JSON and GraphQL payloads or an XPath expression
// for XML ones; the branch is chosen by the response content type. When
// SaveToCollection is set the value lands in the collection scope, otherwise
// in the environment scope
type ExtractionRule struct {
	ID               ID     `json:"id"`
	Label            string `json:"label,omitempty"`
	Path             string `json:"path"`
	Variable         string `json:"variable"`
	SaveToCollection bool   `json:"save_to_collection,omitempty"`
	Enabled          bool   `json:"enabled"`
}

func (r *ExtractionRule) Validate() error {
	if r.Path == "" {
		return ErrExtractPathEmpty
	}
	if !VarName.MatchString(r.Variable) {
		return fmt.Errorf("%w: %q", ErrExtractVariableEmpty, r.Variable)
	}
	return nil
}
