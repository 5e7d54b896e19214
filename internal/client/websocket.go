package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/volleyhq/volley/pkg/api"
	"github.com/volleyhq/volley/pkg/log"
)

// SocketExecutor drives raw WebSocket exchanges and GraphQL sockets
type SocketExecutor struct {
	*transport
}

const streamBuffer = 100

var _ Executor = (*SocketExecutor)(nil)

func NewSocketExecutor(shared *transport) *SocketExecutor {
	return &SocketExecutor{transport: shared}
}

func (e *SocketExecutor) CanExecute(r *api.Request) bool {
	return r.Kind == api.KindWebSocket && r.WebSocket != nil
}

func (e *SocketExecutor) Execute(
	ctx context.Context, r *api.Request,
) *api.RequestResponse {
	cfg := r.WebSocket
	if cfg.Kind == api.SocketGraphQL {
		protocol := api.SubprotocolGraphQLWS
		if len(cfg.Subprotocols) > 0 {
			protocol = cfg.Subprotocols[0]
		}
		return e.subscribe(
			ctx, r, wsURL(r.URL), protocol, subscribePayload(cfg.Message),
		)
	}
	return e.stream(ctx, r, wsURL(r.URL), cfg.Subprotocols, cfg.Message)
}

// subscribePayload accepts either a prepared envelope document or a bare
// query string as the socket message
func subscribePayload(message string) []byte {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	if gjson.Valid(message) {
		return []byte(message)
	}
	payload, _ := json.Marshal(map[string]string{"query": message})
	return payload
}

// stream opens a raw socket, sends the configured message, and accumulates
// everything received until the peer closes, the idle timeout fires, or the
// context is cancelled
func (t *transport) stream(
	ctx context.Context, r *api.Request, socketURL string,
	subprotocols []string, message string,
) *api.RequestResponse {
	start := time.Now()
	headers := buildHeaders(r)
	sent := &api.SentRequest{
		URL:     socketURL,
		Headers: headers,
		Body:    message,
	}

	conn, res, err := t.dial(ctx, r, socketURL, subprotocols, headers, sent)
	if err != nil {
		return failed(start, sent, err)
	}
	defer func() { _ = conn.Close() }()

	if message != "" {
		if err := conn.WriteMessage(
			websocket.TextMessage, []byte(message),
		); err != nil {
			return failed(start, sent, err)
		}
		res.AddEvent(api.StreamSent, message)
	}

	t.pump(ctx, conn, res)
	return finalize(res, start)
}

// dial opens the socket and seeds the streaming response from the handshake
func (t *transport) dial(
	ctx context.Context, r *api.Request, socketURL string,
	subprotocols []string, headers map[string]string, sent *api.SentRequest,
) (*websocket.Conn, *api.RequestResponse, error) {
	dialer := *t.dialer
	dialer.Subprotocols = subprotocols

	header := http.Header{}
	for name, value := range headers {
		header.Set(name, value)
	}

	conn, handshake, err := dialer.DialContext(ctx, socketURL, header)
	if err != nil {
		if handshake != nil {
			err = fmt.Errorf(
				"connection failed (HTTP %d): %w", handshake.StatusCode, err,
			)
		}
		slog.Warn("Socket dial failed",
			log.RequestID(r.ID),
			log.URL(socketURL),
			log.Error(err))
		return nil, nil, err
	}

	res := &api.RequestResponse{
		StatusCode: handshake.StatusCode,
		Status:     handshake.Status,
		Headers:    responseHeaders(handshake.Header),
		Sent:       sent,
	}
	res.AddEvent(api.StreamConnected, socketURL)
	return conn, res, nil
}

func (t *transport) pump(
	ctx context.Context, conn *websocket.Conn, res *api.RequestResponse,
) {
	msgs := make(chan string, streamBuffer)
	errs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go readLoop(conn, msgs, errs, done)

	timer := time.NewTimer(t.idle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			res.AddEvent(api.StreamClosed, "cancelled")
			closeQuietly(conn)
			return
		case msg := <-msgs:
			res.AddEvent(api.StreamReceived, msg)
			resetTimer(timer, t.idle)
		case err := <-errs:
			if err != nil {
				res.AddEvent(api.StreamError, err.Error())
			} else {
				res.AddEvent(api.StreamClosed, "connection closed")
			}
			return
		case <-timer.C:
			res.AddEvent(api.StreamClosed, "idle timeout")
			closeQuietly(conn)
			return
		}
	}
}

// readLoop feeds received text onto msgs until the connection ends. A nil
// error means the peer closed cleanly.
func readLoop(
	conn *websocket.Conn, msgs chan<- string, errs chan<- error,
	done <-chan struct{},
) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var res error
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				res = err
			}
			select {
			case errs <- res:
			case <-done:
			}
			return
		}
		select {
		case msgs <- string(data):
		case <-done:
			return
		}
	}
}

func closeQuietly(conn *websocket.Conn) {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		slog.Warn("Socket close frame failed", log.Error(err))
	}
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}

// finalize renders the accumulated event log as the response body
func finalize(
	res *api.RequestResponse, start time.Time,
) *api.RequestResponse {
	res.Body = res.EventLog()
	res.SizeBytes = len(res.Body)
	res.DurationMs = time.Since(start).Milliseconds()
	res.Timestamp = time.Now()
	return res
}
