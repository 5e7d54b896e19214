package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/internal/assert/helpers"
	"github.com/volleyhq/volley/internal/store"
	"github.com/volleyhq/volley/pkg/vars"
)

func TestResolveTextPreview(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		e := helpers.NewTestEnvironment(map[string]string{
			"base_url": "https://api.example.com",
		})
		env.Seed(t, e)
		env.Activate(t, e.ID)

		res, err := env.Engine.ResolveText(
			context.Background(), "GET {{base_url}}/v1/{{missing}}", "", "",
		)
		assert.NoError(t, err)
		assert.Equal(t, "GET https://api.example.com/v1/{{missing}}", res.Text)
		assert.Equal(t, []string{"missing"}, res.Unresolved)
	})
}

func TestResolveTextCollectionPrecedence(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		e := helpers.NewTestEnvironment(map[string]string{
			"host": "from-env",
		})
		col := helpers.NewTestCollection(map[string]string{
			"host": "from-collection",
		})
		env.Seed(t, e, col)
		env.Activate(t, e.ID)

		res, err := env.Engine.ResolveText(
			context.Background(), "{{host}}", "", col.ID,
		)
		assert.NoError(t, err)
		assert.Equal(t, "from-collection", res.Text)
	})
}

func TestVariableValueIncludesSecrets(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		e := helpers.NewTestEnvironment(map[string]string{})
		env.Seed(t, e)
		env.Activate(t, e.ID)

		err := env.Stores.Secrets.SaveSecrets(
			ctx, store.KindEnvironment, e.ID,
			map[string]string{"api_key": "s3cr3t"},
		)
		assert.NoError(t, err)

		res, err := env.Engine.VariableValue(ctx, "api_key", "", "")
		assert.NoError(t, err)
		assert.True(t, res.Found)
		assert.Equal(t, "s3cr3t", res.Value)

		missing, err := env.Engine.VariableValue(ctx, "nope", "", "")
		assert.NoError(t, err)
		assert.False(t, missing.Found)
		assert.Empty(t, missing.Value)
	})
}

func TestSetVariableValuePersists(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		e := helpers.NewTestEnvironment(map[string]string{})
		env.Seed(t, e)

		err := env.Engine.SetVariableValue(
			ctx, "region", "eu-west-1", e.ID, "", false,
		)
		assert.NoError(t, err)

		stored, err := env.Stores.Environments.Get(ctx, e.ID)
		assert.NoError(t, err)
		assert.Equal(t, "eu-west-1", stored.Variables["region"])
	})
}

func TestSetVariableValueToCollection(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		ctx := context.Background()
		col := helpers.NewTestCollection(map[string]string{})
		env.Seed(t, col)

		err := env.Engine.SetVariableValue(
			ctx, "cursor", "page-2", "", col.ID, true,
		)
		assert.NoError(t, err)

		stored, err := env.Stores.Collections.Get(ctx, col.ID)
		assert.NoError(t, err)
		assert.Equal(t, "page-2", stored.Variables["cursor"])
	})
}

func TestSetVariableValueNoScope(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		err := env.Engine.SetVariableValue(
			context.Background(), "region", "eu-west-1", "", "", false,
		)
		assert.ErrorIs(t, err, vars.ErrNoScope)
	})
}

func TestSetVariableValueInvalidName(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		e := helpers.NewTestEnvironment(map[string]string{})
		env.Seed(t, e)

		err := env.Engine.SetVariableValue(
			context.Background(), "9bad name", "x", e.ID, "", false,
		)
		assert.ErrorIs(t, err, vars.ErrInvalidName)
	})
}
