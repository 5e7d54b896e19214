package helpers

import (
	"github.com/google/uuid"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/pkg/api"
)

// NewTestConfig creates a basic configuration for testing
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	return cfg
}

// NewRESTRequest creates a basic GET request for testing
func NewRESTRequest(url string) *api.Request {
	return &api.Request{
		ID:   testID("req"),
		Name: "Test Request",
		Kind: api.KindREST,
		URL:  url,
		REST: &api.RESTConfig{
			Method: "GET",
		},
	}
}

// NewGraphQLRequest creates a GraphQL query request for testing
func NewGraphQLRequest(url, query string) *api.Request {
	return &api.Request{
		ID:   testID("gql"),
		Name: "Test Query",
		Kind: api.KindGraphQL,
		URL:  url,
		GraphQL: &api.GraphQLConfig{
			Query:         query,
			OperationType: api.OperationQuery,
		},
	}
}

// NewSocketRequest creates a raw WebSocket request for testing
func NewSocketRequest(url, message string) *api.Request {
	return &api.Request{
		ID:   testID("ws"),
		Name: "Test Socket",
		Kind: api.KindWebSocket,
		URL:  url,
		WebSocket: &api.WebSocketConfig{
			Message: message,
			Kind:    api.SocketStandard,
		},
	}
}

// NewTestEnvironment creates an environment with the given variables
func NewTestEnvironment(vars map[string]string) *api.Environment {
	return &api.Environment{
		ID:        testID("env"),
		Name:      "Test Environment",
		Variables: vars,
	}
}

// NewTestCollection creates a collection with the given variables
func NewTestCollection(vars map[string]string) *api.Collection {
	return &api.Collection{
		ID:        testID("col"),
		Name:      "Test Collection",
		Variables: vars,
	}
}

// NewTestFlow creates a flow whose steps run the given requests in order
func NewTestFlow(requests ...*api.Request) *api.Flow {
	flow := &api.Flow{
		ID:   testID("flow"),
		Name: "Test Flow",
	}
	for i, r := range requests {
		flow.Steps = append(flow.Steps, &api.FlowStep{
			RequestID: r.ID,
			Order:     i,
			Enabled:   true,
		})
	}
	return flow
}

func testID(prefix string) api.ID {
	return api.ID("test-" + prefix + "-" + uuid.New().String()[:8])
}
