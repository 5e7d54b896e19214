package api

import "github.com/google/uuid"

// ID is an opaque unique identifier for a workbench entity. IDs carry no
// structure; entities are keyed and compared by ID only
type ID string

// NewID returns a new random 128-bit identifier
func NewID() ID {
	return ID(uuid.NewString())
}

// IsEmpty returns true if the ID has no value
func (id ID) IsEmpty() bool {
	return id == ""
}
