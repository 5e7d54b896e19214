package api

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// graphQLEnvelope is the JSON body posted to GraphQL endpoints and the
// payload of subscribe frames on GraphQL sockets
type graphQLEnvelope struct {
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	OperationName string          `json:"operationName,omitempty"`
}

// Envelope renders the config as a standard GraphQL request envelope. The
// Variables document is embedded when it holds valid JSON and dropped
// otherwise
func (g *GraphQLConfig) Envelope() ([]byte, error) {
	env := graphQLEnvelope{
		Query:         g.Query,
		OperationName: g.OperationName,
	}
	if vars := strings.TrimSpace(g.Variables); vars != "" && gjson.Valid(vars) {
		env.Variables = json.RawMessage(vars)
	}
	return json.Marshal(env)
}

// ConvertRequest translates a request to another protocol variant on a
// best-effort basis. URL, headers, auth, extraction rules, and the
// collection link carry over; the payload is mapped where a sensible
// mapping exists and degrades to an empty payload where none does. The
// returned request always has a new identifier and never errors
func ConvertRequest(r *Request, kind RequestKind) *Request {
	res := r.Clone()
	res.ID = NewID()
	if r.Kind == kind {
		return res
	}

	res.Kind = kind
	res.REST = nil
	res.GraphQL = nil
	res.WebSocket = nil

	switch kind {
	case KindREST:
		res.REST = r.toREST()
	case KindGraphQL:
		res.GraphQL = r.toGraphQL()
	case KindWebSocket:
		res.WebSocket = r.toWebSocket()
	}
	return res
}

func (r *Request) toREST() *RESTConfig {
	switch {
	case r.Kind == KindGraphQL && r.GraphQL != nil:
		cfg := &RESTConfig{Method: "POST", BodyType: BodyJSON}
		if body, err := r.GraphQL.Envelope(); err == nil {
			cfg.Body = string(body)
		}
		return cfg
	case r.Kind == KindWebSocket && r.WebSocket != nil:
		cfg := &RESTConfig{
			Method:   "POST",
			Body:     r.WebSocket.Message,
			BodyType: BodyText,
		}
		if gjson.Valid(r.WebSocket.Message) {
			cfg.BodyType = BodyJSON
		}
		return cfg
	}
	return &RESTConfig{Method: "GET", BodyType: BodyNone}
}

func (r *Request) toGraphQL() *GraphQLConfig {
	cfg := &GraphQLConfig{
		OperationType:        OperationQuery,
		SubscriptionProtocol: SubprotocolGraphQLWS,
	}

	var body string
	switch {
	case r.Kind == KindREST && r.REST != nil:
		body = r.REST.Body
	case r.Kind == KindWebSocket && r.WebSocket != nil:
		body = r.WebSocket.Message
	}
	if !gjson.Valid(body) {
		return cfg
	}

	if q := gjson.Get(body, "query"); q.Type == gjson.String {
		cfg.Query = q.String()
	}
	if v := gjson.Get(body, "variables"); v.IsObject() {
		cfg.Variables = v.Raw
	}
	if n := gjson.Get(body, "operationName"); n.Type == gjson.String {
		cfg.OperationName = n.String()
	}
	return cfg
}

func (r *Request) toWebSocket() *WebSocketConfig {
	switch {
	case r.Kind == KindGraphQL && r.GraphQL != nil:
		cfg := &WebSocketConfig{
			Kind:         SocketGraphQL,
			Subprotocols: []string{r.GraphQL.SubscriptionProtocol},
		}
		if body, err := r.GraphQL.Envelope(); err == nil {
			cfg.Message = string(body)
		}
		return cfg
	case r.Kind == KindREST && r.REST != nil:
		return &WebSocketConfig{
			Kind:    SocketStandard,
			Message: r.REST.Body,
		}
	}
	return &WebSocketConfig{Kind: SocketStandard}
}
