package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
)

// RESTExecutor performs plain HTTP exchanges
type RESTExecutor struct {
	*transport
}

var _ Executor = (*RESTExecutor)(nil)

func NewRESTExecutor(shared *transport) *RESTExecutor {
	return &RESTExecutor{transport: shared}
}

func (e *RESTExecutor) CanExecute(r *api.Request) bool {
	return r.Kind == api.KindREST && r.REST != nil
}

func (e *RESTExecutor) Execute(
	ctx context.Context, r *api.Request,
) *api.RequestResponse {
	start := time.Now()
	cfg := r.REST

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	headers := buildHeaders(r)
	body := ""
	if cfg.BodyType != api.BodyNone && cfg.Body != "" {
		body = cfg.Body
		ct := contentTypeFor(cfg.BodyType)
		if ct != "" && !hasHeader(headers, "Content-Type") {
			headers["Content-Type"] = ct
		}
	}

	fullURL, err := appendQuery(r.URL, cfg.Query)
	if err != nil {
		sent := &api.SentRequest{
			Method:  method,
			URL:     r.URL,
			Headers: headers,
			Body:    body,
		}
		return failed(start, sent, err)
	}

	sent := &api.SentRequest{
		Method:  method,
		URL:     fullURL,
		Headers: headers,
		Body:    body,
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return failed(start, sent, err)
	}
	for name, value := range headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		slog.Warn("Request transport failed",
			log.RequestID(r.ID),
			log.URL(fullURL),
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

func appendQuery(raw string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for name, value := range params {
		q.Set(name, value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
