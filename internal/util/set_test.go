package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptySet(t *testing.T) {
	s := Set[string]{}
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("rest"))
}

func TestSetOf(t *testing.T) {
	s := SetOf("rest", "graphql", "websocket", "rest")
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("rest"))
	assert.True(t, s.Contains("graphql"))
	assert.True(t, s.Contains("websocket"))
	assert.False(t, s.Contains("grpc"))
}

func TestSetAddRemove(t *testing.T) {
	s := Set[int]{}
	s.Add(1)
	s.Add(2)
	s.Add(1)
	assert.Equal(t, 2, s.Len())

	s.Remove(1)
	assert.False(t, s.Contains(1))

	s.Remove(99)
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.IsEmpty())
}
