package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/pkg/api"
)

func TestEnvironmentValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		env := &api.Environment{
			Name:      "production",
			Variables: map[string]string{"base_url": "https://example.com"},
			Dynamic: []*api.DynamicVar{
				{Name: "request_id", Kind: api.DynamicUUID},
				{Name: "roll", Kind: api.DynamicRandomInt, Min: 1, Max: 6},
			},
		}
		assert.NoError(t, env.Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		env := &api.Environment{}
		assert.ErrorIs(t, env.Validate(), api.ErrEnvironmentNameEmpty)
	})

	t.Run("bad dynamic name", func(t *testing.T) {
		env := &api.Environment{
			Name: "production",
			Dynamic: []*api.DynamicVar{
				{Name: "9lives", Kind: api.DynamicUUID},
			},
		}
		assert.ErrorIs(t, env.Validate(), api.ErrDynamicNameInvalid)
	})

	t.Run("bad dynamic kind", func(t *testing.T) {
		env := &api.Environment{
			Name: "production",
			Dynamic: []*api.DynamicVar{
				{Name: "x", Kind: "loadavg"},
			},
		}
		assert.ErrorIs(t, env.Validate(), api.ErrInvalidDynamicKind)
	})

	t.Run("bad random range", func(t *testing.T) {
		env := &api.Environment{
			Name: "production",
			Dynamic: []*api.DynamicVar{
				{Name: "n", Kind: api.DynamicRandomInt, Min: 6, Max: 1},
			},
		}
		assert.ErrorIs(t, env.Validate(), api.ErrDynamicRangeInvalid)
	})
}

func TestCollectionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		col := &api.Collection{Name: "Users API"}
		assert.NoError(t, col.Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		col := &api.Collection{}
		assert.ErrorIs(t, col.Validate(), api.ErrCollectionNameEmpty)
	})
}

func TestVarName(t *testing.T) {
	assert.True(t, api.VarName.MatchString("base_url"))
	assert.True(t, api.VarName.MatchString("_private"))
	assert.True(t, api.VarName.MatchString("Token2"))
	assert.False(t, api.VarName.MatchString("2legit"))
	assert.False(t, api.VarName.MatchString("has space"))
	assert.False(t, api.VarName.MatchString("dash-ed"))
	assert.False(t, api.VarName.MatchString(""))
}
