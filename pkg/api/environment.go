package api

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/volleyhq/volley/internal/util"
)

type (
	// DynamicKind identifies a built-in value generator
	DynamicKind string

	// DynamicVar declares a variable whose value is produced on demand by a
	// built-in generator rather than read from a stored mapping
	DynamicVar struct {
		Name   string      `json:"name"`
		Kind   DynamicKind `json:"kind"`
		Format string      `json:"format,omitempty"`
		Min    int64       `json:"min,omitempty"`
		Max    int64       `json:"max,omitempty"`
		Length int         `json:"length,omitempty"`
	}

	// Environment is a named set of variables selectable as the active
	// resolution scope. Names listed in SecretNames have their values stored
	// apart from the environment record
	Environment struct {
		ID          ID                `json:"id"`
		Name        string            `json:"name"`
		Variables   map[string]string `json:"variables"`
		SecretNames map[string]bool   `json:"secret_names,omitempty"`
		Dynamic     []*DynamicVar     `json:"dynamic,omitempty"`
	}

	// Collection groups requests and carries its own variable scope. The
	// scope is the collection itself; ancestor collections do not contribute
	Collection struct {
		ID          ID                `json:"id"`
		Name        string            `json:"name"`
		ParentID    ID                `json:"parent_id,omitempty"`
		Variables   map[string]string `json:"variables"`
		SecretNames map[string]bool   `json:"secret_names,omitempty"`
		Dynamic     []*DynamicVar     `json:"dynamic,omitempty"`
		ChildIDs    []ID              `json:"child_ids,omitempty"`
		RequestIDs  []ID              `json:"request_ids,omitempty"`
	}
)

const (
	DynamicUUID      DynamicKind = "uuid"
	DynamicTimestamp DynamicKind = "timestamp"
	DynamicUnixMilli DynamicKind = "unix_milli"
	DynamicRandomInt DynamicKind = "random_int"
	DynamicRandomHex DynamicKind = "random_hex"
)

// DefaultHexLength is the generated length when a random_hex variable does
// not declare one
const DefaultHexLength = 16

var (
	ErrEnvironmentNameEmpty = errors.New("environment name empty")
	ErrCollectionNameEmpty  = errors.New("collection name empty")
	ErrDynamicNameInvalid   = errors.New("invalid dynamic variable name")
	ErrInvalidDynamicKind   = errors.New("invalid dynamic variable kind")
	ErrDynamicRangeInvalid  = errors.New("random_int min exceeds max")
	ErrDynamicLengthInvalid = errors.New("random_hex length cannot be negative")
)

// VarName matches valid variable names. Placeholders referencing names
// outside this shape are never recognized by the resolver
var VarName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var validDynamicKinds = util.SetOf(
	DynamicUUID,
	DynamicTimestamp,
	DynamicUnixMilli,
	DynamicRandomInt,
	DynamicRandomHex,
)

// Key returns the identifier repositories store this environment under
func (e *Environment) Key() ID {
	return e.ID
}

func (e *Environment) Validate() error {
	if e.Name == "" {
		return ErrEnvironmentNameEmpty
	}
	return validateDynamic(e.Dynamic)
}

// Key returns the identifier repositories store this collection under
func (c *Collection) Key() ID {
	return c.ID
}

func (c *Collection) Validate() error {
	if c.Name == "" {
		return ErrCollectionNameEmpty
	}
	return validateDynamic(c.Dynamic)
}

func (d *DynamicVar) Validate() error {
	if !VarName.MatchString(d.Name) {
		return fmt.Errorf("%w: %q", ErrDynamicNameInvalid, d.Name)
	}
	if !validDynamicKinds.Contains(d.Kind) {
		return fmt.Errorf("%w: %s", ErrInvalidDynamicKind, d.Kind)
	}
	switch d.Kind {
	case DynamicRandomInt:
		if d.Min > d.Max {
			return ErrDynamicRangeInvalid
		}
	case DynamicRandomHex:
		if d.Length < 0 {
			return ErrDynamicLengthInvalid
		}
	}
	return nil
}

func validateDynamic(vars []*DynamicVar) error {
	for _, d := range vars {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
