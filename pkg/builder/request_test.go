package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/builder"
)

func TestNewRequest(t *testing.T) {
	req, err := builder.NewRequest("Get Users").
		WithURL("https://api.test/users").
		Build()

	require.NoError(t, err)
	assert.False(t, req.ID.IsEmpty())
	assert.Equal(t, "Get Users", req.Name)
	assert.Equal(t, api.KindREST, req.Kind)
	assert.Equal(t, "GET", req.REST.Method)
	assert.Equal(t, api.BodyNone, req.REST.BodyType)
}

func TestRequestRESTPost(t *testing.T) {
	req, err := builder.NewRequest("Create User").
		WithURL("https://api.test/users").
		WithMethod("POST").
		WithJSONBody(`{"name":"ana"}`).
		WithHeader("X-Trace", "1").
		WithQuery("notify", "true").
		Build()

	require.NoError(t, err)
	assert.Equal(t, "POST", req.REST.Method)
	assert.Equal(t, api.BodyJSON, req.REST.BodyType)
	assert.Equal(t, `{"name":"ana"}`, req.REST.Body)
	assert.Equal(t, "1", req.Headers["X-Trace"])
	assert.Equal(t, "true", req.REST.Query["notify"])
}

func TestRequestValidationError(t *testing.T) {
	_, err := builder.NewRequest("No URL").Build()
	assert.ErrorIs(t, err, api.ErrRequestURLEmpty)
}

func TestRequestGraphQL(t *testing.T) {
	req, err := builder.NewRequest("Create Order").
		WithURL("https://api.test/graphql").
		WithGraphQL(`mutation($in:OrderInput!){createOrder(input:$in){id}}`).
		WithGraphQLVariables(`{"in":{"sku":"A1"}}`).
		WithOperationName("CreateOrder").
		WithMutation().
		Build()

	require.NoError(t, err)
	assert.Equal(t, api.KindGraphQL, req.Kind)
	require.NotNil(t, req.GraphQL)
	assert.Nil(t, req.REST)
	assert.Equal(t, api.OperationMutation, req.GraphQL.OperationType)
	assert.Equal(t, "CreateOrder", req.GraphQL.OperationName)
	assert.Equal(t, api.SubprotocolGraphQLWS, req.GraphQL.SubscriptionProtocol)
}

func TestRequestSocket(t *testing.T) {
	req, err := builder.NewRequest("Price Feed").
		WithURL("wss://feed.test/prices").
		WithSocketMessage(`{"subscribe":"BTC"}`).
		WithSubprotocols("v1.feed").
		Build()

	require.NoError(t, err)
	assert.Equal(t, api.KindWebSocket, req.Kind)
	require.NotNil(t, req.WebSocket)
	assert.Equal(t, api.SocketStandard, req.WebSocket.Kind)
	assert.Equal(t, []string{"v1.feed"}, req.WebSocket.Subprotocols)
}

func TestRequestGraphQLSocket(t *testing.T) {
	req, err := builder.NewRequest("Order Updates").
		WithURL("wss://api.test/graphql").
		WithSocketMessage(`{"query":"subscription{orderUpdated{id}}"}`).
		WithGraphQLSocket().
		Build()

	require.NoError(t, err)
	assert.Equal(t, api.SocketGraphQL, req.WebSocket.Kind)
}

// The protocol variant follows the most recent variant call, and configs
// from abandoned variants never leak into the built request
func TestRequestVariantSwitch(t *testing.T) {
	req, err := builder.NewRequest("Switched").
		WithURL("https://api.test/graphql").
		WithGraphQL(`{health}`).
		WithMethod("POST").
		Build()

	require.NoError(t, err)
	assert.Equal(t, api.KindREST, req.Kind)
	assert.Nil(t, req.GraphQL)
	require.NotNil(t, req.REST)
}

func TestRequestAuth(t *testing.T) {
	basic, err := builder.NewRequest("Basic").
		WithURL("https://api.test").
		WithBasicAuth("ana", "hunter2").
		Build()
	require.NoError(t, err)
	assert.Equal(t, api.AuthBasic, basic.Auth.Mode)
	assert.Equal(t, "ana", basic.Auth.Username)

	bearer, err := builder.NewRequest("Bearer").
		WithURL("https://api.test").
		WithBearerToken("tok-123").
		Build()
	require.NoError(t, err)
	assert.Equal(t, api.AuthBearer, bearer.Auth.Mode)
	assert.Equal(t, "tok-123", bearer.Auth.Token)
}

func TestRequestExtractions(t *testing.T) {
	req, err := builder.NewRequest("Login").
		WithURL("https://api.test/login").
		WithMethod("POST").
		WithExtraction("$.token", "auth_token").
		WithCollectionExtraction("$.account.id", "account_id").
		Build()

	require.NoError(t, err)
	require.Len(t, req.Extractions, 2)
	assert.True(t, req.Extractions[0].Enabled)
	assert.False(t, req.Extractions[0].SaveToCollection)
	assert.Equal(t, "auth_token", req.Extractions[0].Variable)
	assert.True(t, req.Extractions[1].SaveToCollection)
	assert.NotEqual(t, req.Extractions[0].ID, req.Extractions[1].ID)
}

func TestRequestExtractionValidation(t *testing.T) {
	_, err := builder.NewRequest("Bad Rule").
		WithURL("https://api.test").
		WithExtraction("$.token", "9starts-with-digit").
		Build()
	assert.ErrorIs(t, err, api.ErrExtractVariableEmpty)
}

func TestRequestDisabledHeader(t *testing.T) {
	req, err := builder.NewRequest("Headers").
		WithURL("https://api.test").
		WithHeader("Accept", "application/json").
		WithDisabledHeader("X-Debug", "on").
		Build()

	require.NoError(t, err)
	assert.Equal(t, "on", req.Headers["X-Debug"])
	assert.True(t, req.DisabledHeaders["X-Debug"])
	assert.False(t, req.DisabledHeaders["Accept"])
}

// A builder can be used as a prototype; derived requests never share
// mutable state with it or each other
func TestRequestBuilderImmutable(t *testing.T) {
	base := builder.NewRequest("Base").
		WithURL("https://api.test")

	first, err := base.WithHeader("X-Variant", "first").Build()
	require.NoError(t, err)
	second, err := base.WithHeader("X-Variant", "second").Build()
	require.NoError(t, err)
	plain, err := base.Build()
	require.NoError(t, err)

	assert.Equal(t, "first", first.Headers["X-Variant"])
	assert.Equal(t, "second", second.Headers["X-Variant"])
	assert.Empty(t, plain.Headers)

	// derived requests inherit the prototype's ID until WithID overrides
	assert.Equal(t, first.ID, second.ID)
	renamed, err := base.WithID("custom").Build()
	require.NoError(t, err)
	assert.Equal(t, api.ID("custom"), renamed.ID)
}
