package builder_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/pkg/builder"
)

func TestPrefixedID(t *testing.T) {
	id := builder.PrefixedID("smoke-flow")

	assert.True(t, strings.HasPrefix(string(id), "smoke-flow-"))

	suffix := string(id)[len("smoke-flow-"):]
	assert.Regexp(t, "^[0-9a-f]{6}$", suffix)
}

func TestPrefixedIDUniqueness(t *testing.T) {
	id1 := builder.PrefixedID("test")
	id2 := builder.PrefixedID("test")

	assert.NotEqual(t, id1, id2)
}

func TestPrefixedIDSanitization(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple", "simple-"},
		{"With Spaces", "with-spaces-"},
		{"UPPERCASE", "uppercase-"},
		{"snake_case_name", "snake-case-name-"},
		{"  padded  ", "padded-"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id := builder.PrefixedID(tt.input)
			assert.True(t, strings.HasPrefix(string(id), tt.expected),
				"got %s", id)
		})
	}
}
