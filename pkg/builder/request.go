package builder

import (
	"maps"
	"slices"

	"github.com/volleyhq/volley/pkg/api"
)

// Request builds stored request templates. The protocol variant follows
// the most recent variant-specific call; a builder that never makes one
// builds as a plain REST GET
type Request struct {
	id           api.ID
	name         string
	url          string
	kind         api.RequestKind
	headers      map[string]string
	disabled     map[string]bool
	auth         *api.AuthConfig
	collectionID api.ID
	rest         *api.RESTConfig
	graphql      *api.GraphQLConfig
	socket       *api.WebSocketConfig
	extractions  []*api.ExtractionRule
}

// NewRequest creates a request builder with a generated ID
func NewRequest(name string) *Request {
	return &Request{
		id:       api.NewID(),
		name:     name,
		kind:     api.KindREST,
		headers:  map[string]string{},
		disabled: map[string]bool{},
	}
}

func (r *Request) WithID(id api.ID) *Request {
	res := *r
	res.id = id
	return &res
}

func (r *Request) WithURL(url string) *Request {
	res := *r
	res.url = url
	return &res
}

func (r *Request) WithHeader(name, value string) *Request {
	res := *r
	res.headers = maps.Clone(r.headers)
	res.headers[name] = value
	return &res
}

// WithDisabledHeader keeps a header on the template but excludes it from
// execution
func (r *Request) WithDisabledHeader(name, value string) *Request {
	res := r.WithHeader(name, value)
	res.disabled = maps.Clone(r.disabled)
	res.disabled[name] = true
	return res
}

func (r *Request) WithCollection(id api.ID) *Request {
	res := *r
	res.collectionID = id
	return &res
}

func (r *Request) WithBasicAuth(username, password string) *Request {
	res := *r
	res.auth = &api.AuthConfig{
		Mode:     api.AuthBasic,
		Username: username,
		Password: password,
	}
	return &res
}

func (r *Request) WithBearerToken(token string) *Request {
	res := *r
	res.auth = &api.AuthConfig{
		Mode:  api.AuthBearer,
		Token: token,
	}
	return &res
}

func (r *Request) WithMethod(method string) *Request {
	return r.withREST(func(cfg *api.RESTConfig) {
		cfg.Method = method
	})
}

func (r *Request) WithBody(body string, bodyType api.BodyType) *Request {
	return r.withREST(func(cfg *api.RESTConfig) {
		cfg.Body = body
		cfg.BodyType = bodyType
	})
}

func (r *Request) WithJSONBody(body string) *Request {
	return r.WithBody(body, api.BodyJSON)
}

func (r *Request) WithXMLBody(body string) *Request {
	return r.WithBody(body, api.BodyXML)
}

// WithQuery adds a URL query parameter appended at execution
func (r *Request) WithQuery(name, value string) *Request {
	return r.withREST(func(cfg *api.RESTConfig) {
		if cfg.Query == nil {
			cfg.Query = map[string]string{}
		}
		cfg.Query[name] = value
	})
}

func (r *Request) WithGraphQL(query string) *Request {
	return r.withGraphQL(func(cfg *api.GraphQLConfig) {
		cfg.Query = query
	})
}

func (r *Request) WithGraphQLVariables(variables string) *Request {
	return r.withGraphQL(func(cfg *api.GraphQLConfig) {
		cfg.Variables = variables
	})
}

func (r *Request) WithOperationName(name string) *Request {
	return r.withGraphQL(func(cfg *api.GraphQLConfig) {
		cfg.OperationName = name
	})
}

func (r *Request) WithOperationType(t api.OperationType) *Request {
	return r.withGraphQL(func(cfg *api.GraphQLConfig) {
		cfg.OperationType = t
	})
}

func (r *Request) WithMutation() *Request {
	return r.WithOperationType(api.OperationMutation)
}

func (r *Request) WithSocketMessage(message string) *Request {
	return r.withSocket(func(cfg *api.WebSocketConfig) {
		cfg.Message = message
	})
}

func (r *Request) WithSubprotocols(protocols ...string) *Request {
	return r.withSocket(func(cfg *api.WebSocketConfig) {
		cfg.Subprotocols = slices.Clone(protocols)
	})
}

// WithGraphQLSocket marks the socket as a GraphQL subscription transport
func (r *Request) WithGraphQLSocket() *Request {
	return r.withSocket(func(cfg *api.WebSocketConfig) {
		cfg.Kind = api.SocketGraphQL
	})
}

// WithExtraction captures a response value into an environment variable
func (r *Request) WithExtraction(path, variable string) *Request {
	return r.withExtraction(&api.ExtractionRule{
		ID:       api.NewID(),
		Path:     path,
		Variable: variable,
		Enabled:  true,
	})
}

// WithCollectionExtraction captures a response value into the collection
// scope instead of the environment
func (r *Request) WithCollectionExtraction(path, variable string) *Request {
	return r.withExtraction(&api.ExtractionRule{
		ID:               api.NewID(),
		Path:             path,
		Variable:         variable,
		SaveToCollection: true,
		Enabled:          true,
	})
}

// Build assembles and validates the request template
func (r *Request) Build() (*api.Request, error) {
	req := &api.Request{
		ID:              r.id,
		Name:            r.name,
		Kind:            r.kind,
		URL:             r.url,
		Headers:         maps.Clone(r.headers),
		DisabledHeaders: maps.Clone(r.disabled),
		Auth:            r.auth,
		CollectionID:    r.collectionID,
		Extractions:     slices.Clone(r.extractions),
	}

	switch r.kind {
	case api.KindREST:
		cfg := api.RESTConfig{}
		if r.rest != nil {
			cfg = *r.rest
			cfg.Query = maps.Clone(r.rest.Query)
		}
		req.REST = &cfg
	case api.KindGraphQL:
		cfg := *r.graphql
		req.GraphQL = &cfg
	case api.KindWebSocket:
		cfg := *r.socket
		cfg.Subprotocols = slices.Clone(r.socket.Subprotocols)
		req.WebSocket = &cfg
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Request) withREST(f func(*api.RESTConfig)) *Request {
	res := *r
	res.kind = api.KindREST
	res.graphql = nil
	res.socket = nil
	cfg := api.RESTConfig{}
	if r.rest != nil {
		cfg = *r.rest
		cfg.Query = maps.Clone(r.rest.Query)
	}
	f(&cfg)
	res.rest = &cfg
	return &res
}

func (r *Request) withGraphQL(f func(*api.GraphQLConfig)) *Request {
	res := *r
	res.kind = api.KindGraphQL
	res.rest = nil
	res.socket = nil
	cfg := api.GraphQLConfig{}
	if r.graphql != nil {
		cfg = *r.graphql
	}
	f(&cfg)
	res.graphql = &cfg
	return &res
}

func (r *Request) withSocket(f func(*api.WebSocketConfig)) *Request {
	res := *r
	res.kind = api.KindWebSocket
	res.rest = nil
	res.graphql = nil
	cfg := api.WebSocketConfig{}
	if r.socket != nil {
		cfg = *r.socket
		cfg.Subprotocols = slices.Clone(r.socket.Subprotocols)
	}
	f(&cfg)
	res.socket = &cfg
	return &res
}

func (r *Request) withExtraction(rule *api.ExtractionRule) *Request {
	res := *r
	res.extractions = slices.Clone(r.extractions)
	res.extractions = append(res.extractions, rule)
	return &res
}
