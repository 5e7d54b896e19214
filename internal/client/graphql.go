package client

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
)

// GraphQLExecutor posts query and mutation envelopes over HTTP and runs
// subscriptions over the WebSocket transport
type GraphQLExecutor struct {
	*transport
}

var _ Executor = (*GraphQLExecutor)(nil)

func NewGraphQLExecutor(shared *transport) *GraphQLExecutor {
	return &GraphQLExecutor{transport: shared}
}

func (e *GraphQLExecutor) CanExecute(r *api.Request) bool {
	return r.Kind == api.KindGraphQL && r.GraphQL != nil
}

func (e *GraphQLExecutor) Execute(
	ctx context.Context, r *api.Request,
) *api.RequestResponse {
	if r.GraphQL.OperationType == api.OperationSubscription {
		return e.runSubscription(ctx, r)
	}
	return e.post(ctx, r)
}

func (e *GraphQLExecutor) post(
	ctx context.Context, r *api.Request,
) *api.RequestResponse {
	start := time.Now()

	headers := buildHeaders(r)
	if !hasHeader(headers, "Content-Type") {
		headers["Content-Type"] = "application/json"
	}
	if !hasHeader(headers, "Accept") {
		headers["Accept"] = "application/json"
	}

	payload, err := r.GraphQL.Envelope()
	sent := &api.SentRequest{
		Method:  http.MethodPost,
		URL:     r.URL,
		Headers: headers,
		Body:    string(payload),
	}
	if err != nil {
		return failed(start, sent, err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, r.URL, bytes.NewReader(payload),
	)
	if err != nil {
		return failed(start, sent, err)
	}
	for name, value := range headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		slog.Warn("GraphQL transport failed",
			log.RequestID(r.ID),
			log.URL(r.URL),
			log.Error(err))
		return failed(start, sent, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(start, sent, err)
	}

	return &api.RequestResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    responseHeaders(resp.Header),
		Body:       string(respBody),
		SizeBytes:  len(respBody),
		DurationMs: time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
		Sent:       sent,
	}
}

func (e *GraphQLExecutor) runSubscription(
	ctx context.Context, r *api.Request,
) *api.RequestResponse {
	protocol := r.GraphQL.SubscriptionProtocol
	if protocol == "" {
		protocol = api.SubprotocolGraphQLWS
	}

	payload, err := r.GraphQL.Envelope()
	if err != nil {
		return failed(time.Now(), nil, err)
	}
	return e.subscribe(ctx, r, wsURL(r.URL), protocol, payload)
}
