package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleyhq/volley/internal/assert/helpers"
	"github.com/volleyhq/volley/internal/client"
	"github.com/volleyhq/volley/pkg/api"
)

func TestCreateRequest(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do("POST", "/api/requests", &api.Request{
		Name: "List Users",
		Kind: api.KindREST,
		URL:  "https://api.test/users",
		REST: &api.RESTConfig{Method: "GET"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	created := decode[api.Request](t, w)
	assert.False(t, created.ID.IsEmpty())

	stored, err := env.Stores.Requests.Get(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "List Users", stored.Name)
}

func TestCreateRequestValidationError(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do("POST", "/api/requests", &api.Request{
		Name: "No URL",
		Kind: api.KindREST,
		REST: &api.RESTConfig{Method: "GET"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestLifecycle(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	seeded := helpers.NewRESTRequest("https://api.test/orders")
	env.Seed(t, seeded)
	path := "/api/requests/" + string(seeded.ID)

	w := env.do("GET", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	got := decode[api.Request](t, w)
	assert.Equal(t, seeded.ID, got.ID)

	got.Name = "Renamed"
	w = env.do("PUT", path, got)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/api/requests", nil)
	list := decode[api.RequestsListResponse](t, w)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "Renamed", list.Requests[0].Name)

	w = env.do("DELETE", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecuteStoredRequest(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	scope := helpers.NewTestEnvironment(map[string]string{
		"host": "api.test",
	})
	req := helpers.NewRESTRequest("https://{{ host }}/users")
	env.Seed(t, scope, req)
	env.Activate(t, scope.ID)

	w := env.do("POST", "/api/requests/"+string(req.ID)+"/execute", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.RequestResponse](t, w)
	assert.Equal(t, 200, resp.StatusCode)

	sent := env.Dispatcher.LastDispatched(req.ID)
	assert.NotNil(t, sent)
	assert.Equal(t, "https://api.test/users", sent.URL)
}

func TestExecuteStoredRequestWithOverrides(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	active := helpers.NewTestEnvironment(map[string]string{
		"host": "active.test",
	})
	other := helpers.NewTestEnvironment(map[string]string{
		"host": "other.test",
	})
	req := helpers.NewRESTRequest("https://{{ host }}/users")
	env.Seed(t, active, other, req)
	env.Activate(t, active.ID)

	w := env.do("POST", "/api/requests/"+string(req.ID)+"/execute",
		&api.ExecuteRequestBody{EnvironmentID: other.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	sent := env.Dispatcher.LastDispatched(req.ID)
	assert.Equal(t, "https://other.test/users", sent.URL)
}

func TestExecuteStoredRequestNotFound(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do("POST", "/api/requests/no-such-req/execute", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecuteStoredRequestTransportFailure(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	req := helpers.NewRESTRequest("https://down.test/users")
	env.Seed(t, req)
	env.Dispatcher.SetFailure(req.ID, "connection refused")

	w := env.do("POST", "/api/requests/"+string(req.ID)+"/execute", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.RequestResponse](t, w)
	assert.Equal(t, 0, resp.StatusCode)
	assert.Contains(t, resp.Body, "connection refused")
}

func TestExecuteStoredRequestDispatchError(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	req := helpers.NewRESTRequest("https://api.test/users")
	env.Seed(t, req)
	env.Dispatcher.SetError(req.ID, client.ErrNoExecutor)

	w := env.do("POST", "/api/requests/"+string(req.ID)+"/execute", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteAdHocRequest(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	req := helpers.NewRESTRequest("https://api.test/ping")

	w := env.do("POST", "/api/requests/execute",
		&api.ExecuteRequestBody{Request: req})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.RequestResponse](t, w)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, env.Dispatcher.WasCalled(req.ID))

	// Ad-hoc executions never touch the request store
	list, err := env.Stores.Requests.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestExecuteAdHocStoredFallback(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	req := helpers.NewRESTRequest("https://api.test/ping")
	env.Seed(t, req)

	w := env.do("POST", "/api/requests/execute",
		&api.ExecuteRequestBody{RequestID: req.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Dispatcher.WasCalled(req.ID))
}

func TestExecuteAdHocNoRequest(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do("POST", "/api/requests/execute", &api.ExecuteRequestBody{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConvertRequest(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	seeded := helpers.NewRESTRequest("https://api.test/graphql")
	env.Seed(t, seeded)

	w := env.do("POST", "/api/requests/"+string(seeded.ID)+"/convert",
		&api.ConvertRequestBody{Kind: api.KindGraphQL})
	assert.Equal(t, http.StatusOK, w.Code)

	converted := decode[api.Request](t, w)
	assert.Equal(t, api.KindGraphQL, converted.Kind)
	assert.NotEqual(t, seeded.ID, converted.ID)
	assert.NotNil(t, converted.GraphQL)

	// The stored template keeps its original kind
	stored, err := env.Stores.Requests.Get(context.Background(), seeded.ID)
	assert.NoError(t, err)
	assert.Equal(t, api.KindREST, stored.Kind)
}

func TestConvertRequestInvalidKind(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	seeded := helpers.NewRESTRequest("https://api.test/thing")
	env.Seed(t, seeded)

	w := env.do("POST", "/api/requests/"+string(seeded.ID)+"/convert",
		&api.ConvertRequestBody{Kind: "soap"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConvertRequestNotFound(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	w := env.do("POST", "/api/requests/no-such-req/convert",
		&api.ConvertRequestBody{Kind: api.KindREST})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
