package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/builder"
)

func TestNewEnvironment(t *testing.T) {
	env, err := builder.NewEnvironment("Staging").
		WithVariable("base_url", "https://staging.test").
		WithVariable("tenant", "acme").
		WithSecretName("api_key").
		Build()

	require.NoError(t, err)
	assert.False(t, env.ID.IsEmpty())
	assert.Equal(t, "Staging", env.Name)
	assert.Equal(t, "https://staging.test", env.Variables["base_url"])
	assert.Equal(t, "acme", env.Variables["tenant"])
	assert.True(t, env.SecretNames["api_key"])
}

func TestEnvironmentValidationError(t *testing.T) {
	_, err := builder.NewEnvironment("").Build()
	assert.ErrorIs(t, err, api.ErrEnvironmentNameEmpty)
}

func TestEnvironmentDynamic(t *testing.T) {
	env, err := builder.NewEnvironment("Generated").
		WithDynamic(builder.UUIDVar("trace_id")).
		WithDynamic(builder.TimestampVar("issued_at", "")).
		WithDynamic(builder.UnixMilliVar("epoch_ms")).
		WithDynamic(builder.RandomIntVar("port", 1024, 65535)).
		WithDynamic(builder.RandomHexVar("nonce", 8)).
		Build()

	require.NoError(t, err)
	require.Len(t, env.Dynamic, 5)
	assert.Equal(t, api.DynamicUUID, env.Dynamic[0].Kind)
	assert.Equal(t, api.DynamicTimestamp, env.Dynamic[1].Kind)
	assert.Equal(t, api.DynamicUnixMilli, env.Dynamic[2].Kind)
	assert.Equal(t, int64(1024), env.Dynamic[3].Min)
	assert.Equal(t, 8, env.Dynamic[4].Length)
}

func TestEnvironmentDynamicValidation(t *testing.T) {
	_, err := builder.NewEnvironment("Bad Range").
		WithDynamic(builder.RandomIntVar("n", 10, 1)).
		Build()
	assert.ErrorIs(t, err, api.ErrDynamicRangeInvalid)
}

func TestNewCollection(t *testing.T) {
	col, err := builder.NewCollection("Payments").
		WithParent("col-root").
		WithVariable("currency", "EUR").
		WithSecretName("merchant_key").
		WithDynamic(builder.UUIDVar("idempotency_key")).
		Build()

	require.NoError(t, err)
	assert.False(t, col.ID.IsEmpty())
	assert.Equal(t, api.ID("col-root"), col.ParentID)
	assert.Equal(t, "EUR", col.Variables["currency"])
	assert.True(t, col.SecretNames["merchant_key"])
	require.Len(t, col.Dynamic, 1)
}

func TestCollectionValidationError(t *testing.T) {
	_, err := builder.NewCollection("").Build()
	assert.ErrorIs(t, err, api.ErrCollectionNameEmpty)
}

func TestEnvironmentBuilderImmutable(t *testing.T) {
	base := builder.NewEnvironment("Base").
		WithVariable("shared", "yes")

	eu, err := base.WithVariable("region", "eu").Build()
	require.NoError(t, err)
	us, err := base.WithVariable("region", "us").Build()
	require.NoError(t, err)

	assert.Equal(t, "eu", eu.Variables["region"])
	assert.Equal(t, "us", us.Variables["region"])
	assert.Equal(t, "yes", eu.Variables["shared"])
	assert.Equal(t, "yes", us.Variables["shared"])
}
