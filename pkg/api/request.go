package api

import (
	"errors"
	"fmt"

	"github.com/volleyhq/volley/internal/util"
)

type (
	// RequestKind tags which protocol variant a request carries
	RequestKind string

	// AuthMode selects how a request authenticates
	AuthMode string

	// BodyType identifies how a REST body is encoded on the wire
	BodyType string

	// OperationType identifies the GraphQL operation class
	OperationType string

	// SocketKind distinguishes plain sockets from GraphQL subscription ones
	SocketKind string

	// Request is a stored request template. Kind selects exactly one of the
	// REST, GraphQL, or WebSocket variant configs; the others stay nil
	Request struct {
		ID              ID                `json:"id"`
		Name            string            `json:"name"`
		Kind            RequestKind       `json:"kind"`
		URL             string            `json:"url"`
		Headers         map[string]string `json:"headers,omitempty"`
		DisabledHeaders map[string]bool   `json:"disabled_headers,omitempty"`
		Auth            *AuthConfig       `json:"auth,omitempty"`
		Extractions     []*ExtractionRule `json:"extractions,omitempty"`
		CollectionID    ID                `json:"collection_id,omitempty"`
		REST            *RESTConfig       `json:"rest,omitempty"`
		GraphQL         *GraphQLConfig    `json:"graphql,omitempty"`
		WebSocket       *WebSocketConfig  `json:"websocket,omitempty"`
	}

	AuthConfig struct {
		Mode     AuthMode `json:"mode"`
		Username string   `json:"username,omitempty"`
		Password string   `json:"password,omitempty"`
		Token    string   `json:"token,omitempty"`
	}

	RESTConfig struct {
		Method   string            `json:"method"`
		Body     string            `json:"body,omitempty"`
		BodyType BodyType          `json:"body_type,omitempty"`
		Query    map[string]string `json:"query,omitempty"`
	}

	GraphQLConfig struct {
		Query                string        `json:"query"`
		Variables            string        `json:"variables,omitempty"`
		OperationName        string        `json:"operation_name,omitempty"`
		OperationType        OperationType `json:"operation_type"`
		SubscriptionProtocol string        `json:"subscription_protocol,omitempty"`
	}

	WebSocketConfig struct {
		Message      string     `json:"message,omitempty"`
		Subprotocols []string   `json:"subprotocols,omitempty"`
		Kind         SocketKind `json:"kind"`
	}
)

const (
	KindREST      RequestKind = "rest"
	KindGraphQL   RequestKind = "graphql"
	KindWebSocket RequestKind = "websocket"

	AuthNone   AuthMode = "none"
	AuthBasic  AuthMode = "basic"
	AuthBearer AuthMode = "bearer"

	BodyNone BodyType = "none"
	BodyJSON BodyType = "json"
	BodyText BodyType = "text"
	BodyXML  BodyType = "xml"
	BodyForm BodyType = "form"

	OperationQuery        OperationType = "query"
	OperationMutation     OperationType = "mutation"
	OperationSubscription OperationType = "subscription"

	SocketStandard SocketKind = "standard"
	SocketGraphQL  SocketKind = "graphql"

	// SubprotocolGraphQLWS is the modern graphql-transport-ws protocol;
	// SubprotocolLegacyWS is the older graphql-ws wire format
	SubprotocolGraphQLWS = "graphql-transport-ws"
	SubprotocolLegacyWS  = "graphql-ws"
)

var (
	ErrRequestURLEmpty      = errors.New("request url empty")
	ErrInvalidRequestKind   = errors.New("invalid request kind")
	ErrVariantMismatch      = errors.New("config does not match request kind")
	ErrRESTRequired         = errors.New("rest config required")
	ErrGraphQLRequired      = errors.New("graphql config required")
	ErrWebSocketRequired    = errors.New("websocket config required")
	ErrGraphQLQueryEmpty    = errors.New("graphql query empty")
	ErrInvalidAuthMode      = errors.New("invalid auth mode")
	ErrInvalidBodyType      = errors.New("invalid body type")
	ErrInvalidOperation     = errors.New("invalid graphql operation type")
	ErrInvalidSocketKind    = errors.New("invalid websocket kind")
	ErrInvalidSubprotocol   = errors.New("invalid subscription protocol")
	ErrExtractPathEmpty     = errors.New("extraction path empty")
	ErrExtractVariableEmpty = errors.New("extraction variable name invalid")
)

var (
	validRequestKinds = util.SetOf(
		KindREST,
		KindGraphQL,
		KindWebSocket,
	)

	validAuthModes = util.SetOf(
		AuthNone,
		AuthBasic,
		AuthBearer,
	)

	validBodyTypes = util.SetOf(
		BodyNone,
		BodyJSON,
		BodyText,
		BodyXML,
		BodyForm,
	)

	validOperationTypes = util.SetOf(
		OperationQuery,
		OperationMutation,
		OperationSubscription,
	)

	validSocketKinds = util.SetOf(
		SocketStandard,
		SocketGraphQL,
	)

	validSubprotocols = util.SetOf(
		SubprotocolGraphQLWS,
		SubprotocolLegacyWS,
	)
)

// Key returns the identifier repositories store this request under
func (r *Request) Key() ID {
	return r.ID
}

// Validate checks the request shape and normalizes defaulted fields. The
// variant config matching Kind must be present; configs for other kinds are
// rejected so a stored template is never ambiguous
func (r *Request) Validate() error {
	if r.URL == "" {
		return ErrRequestURLEmpty
	}
	if !validRequestKinds.Contains(r.Kind) {
		return fmt.Errorf("%w: %s", ErrInvalidRequestKind, r.Kind)
	}

	if err := r.validateVariant(); err != nil {
		return err
	}
	if err := r.validateAuth(); err != nil {
		return err
	}

	for _, rule := range r.Extractions {
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Request) validateVariant() error {
	if r.Kind != KindREST && r.REST != nil {
		return fmt.Errorf("%w: rest config on %s request",
			ErrVariantMismatch, r.Kind)
	}
	if r.Kind != KindGraphQL && r.GraphQL != nil {
		return fmt.Errorf("%w: graphql config on %s request",
			ErrVariantMismatch, r.Kind)
	}
	if r.Kind != KindWebSocket && r.WebSocket != nil {
		return fmt.Errorf("%w: websocket config on %s request",
			ErrVariantMismatch, r.Kind)
	}

	switch r.Kind {
	case KindREST:
		return r.validateREST()
	case KindGraphQL:
		return r.validateGraphQL()
	case KindWebSocket:
		return r.validateWebSocket()
	}
	return nil
}

func (r *Request) validateREST() error {
	if r.REST == nil {
		return ErrRESTRequired
	}
	if r.REST.Method == "" {
		r.REST.Method = "GET"
	}
	if r.REST.BodyType == "" {
		r.REST.BodyType = BodyNone
	}
	if !validBodyTypes.Contains(r.REST.BodyType) {
		return fmt.Errorf("%w: %s", ErrInvalidBodyType, r.REST.BodyType)
	}
	return nil
}

func (r *Request) validateGraphQL() error {
	if r.GraphQL == nil {
		return ErrGraphQLRequired
	}
	if r.GraphQL.Query == "" {
		return ErrGraphQLQueryEmpty
	}
	if r.GraphQL.OperationType == "" {
		r.GraphQL.OperationType = OperationQuery
	}
	if !validOperationTypes.Contains(r.GraphQL.OperationType) {
		return fmt.Errorf("%w: %s", ErrInvalidOperation, r.GraphQL.OperationType)
	}
	if r.GraphQL.SubscriptionProtocol == "" {
		r.GraphQL.SubscriptionProtocol = SubprotocolGraphQLWS
	}
	if !validSubprotocols.Contains(r.GraphQL.SubscriptionProtocol) {
		return fmt.Errorf(
			"%w: %s", ErrInvalidSubprotocol, r.GraphQL.SubscriptionProtocol,
		)
	}
	return nil
}

func (r *Request) validateWebSocket() error {
	if r.WebSocket == nil {
		return ErrWebSocketRequired
	}
	if r.WebSocket.Kind == "" {
		r.WebSocket.Kind = SocketStandard
	}
	if !validSocketKinds.Contains(r.WebSocket.Kind) {
		return fmt.Errorf("%w: %s", ErrInvalidSocketKind, r.WebSocket.Kind)
	}
	return nil
}

func (r *Request) validateAuth() error {
	if r.Auth == nil {
		return nil
	}
	if r.Auth.Mode == "" {
		r.Auth.Mode = AuthNone
	}
	if !validAuthModes.Contains(r.Auth.Mode) {
		return fmt.Errorf("%w: %s", ErrInvalidAuthMode, r.Auth.Mode)
	}
	return nil
}

// HasAuth returns true when an authentication mode other than none is set
func (r *Request) HasAuth() bool {
	return r.Auth != nil && r.Auth.Mode != "" && r.Auth.Mode != AuthNone
}

// EnabledExtractions returns the extraction rules that apply at execution
func (r *Request) EnabledExtractions() []*ExtractionRule {
	var rules []*ExtractionRule
	for _, rule := range r.Extractions {
		if rule.Enabled {
			rules = append(rules, rule)
		}
	}
	return rules
}
