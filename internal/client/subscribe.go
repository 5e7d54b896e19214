package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/volleyhq/volley/pkg/api"
)

// wsFrame is the control frame shape shared by the graphql-transport-ws and
// legacy graphql-ws protocols
type wsFrame struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	frameConnectionInit = "connection_init"
	frameConnectionAck  = "connection_ack"
	framePing           = "ping"
	framePong           = "pong"
	frameSubscribe      = "subscribe"
	frameNext           = "next"
	frameError          = "error"
	frameComplete       = "complete"

	// legacy graphql-ws frame names
	frameStart     = "start"
	frameData      = "data"
	frameStop      = "stop"
	frameKeepAlive = "ka"

	subscriptionID = "1"
)

var ErrNoAck = errors.New("subscription init not acknowledged")

// subscribe runs the GraphQL-over-WebSocket handshake and accumulates the
// subscription's event stream: connection_init, wait for connection_ack,
// subscribe, then next/error frames until complete, cancellation, or the
// idle timeout
func (t *transport) subscribe(
	ctx context.Context, r *api.Request, socketURL, protocol string,
	payload []byte,
) *api.RequestResponse {
	start := time.Now()
	headers := buildHeaders(r)
	sent := &api.SentRequest{
		URL:     socketURL,
		Headers: headers,
		Body:    string(payload),
	}

	conn, res, err := t.dial(
		ctx, r, socketURL, []string{protocol}, headers, sent,
	)
	if err != nil {
		return failed(start, sent, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.WriteJSON(&wsFrame{Type: frameConnectionInit}); err != nil {
		return failed(start, sent, err)
	}
	if err := t.awaitAck(conn); err != nil {
		return failed(start, sent, err)
	}

	sub := &wsFrame{
		ID:      subscriptionID,
		Type:    frameSubscribe,
		Payload: payload,
	}
	next, stop := frameNext, frameComplete
	if protocol == api.SubprotocolLegacyWS {
		sub.Type = frameStart
		next, stop = frameData, frameStop
	}
	if err := conn.WriteJSON(sub); err != nil {
		return failed(start, sent, err)
	}
	res.AddEvent(api.StreamSent, string(payload))

	t.pumpFrames(ctx, conn, res, next, stop)
	return finalize(res, start)
}

// awaitAck reads control frames until the server acknowledges the session.
// Keep-alives are tolerated; anything else before the ack fails the session.
func (t *transport) awaitAck(conn *websocket.Conn) error {
	deadline := time.Now().Add(t.dialer.HandshakeTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	for {
		var f wsFrame
		if err := conn.ReadJSON(&f); err != nil {
			return fmt.Errorf("%w: %v", ErrNoAck, err)
		}
		switch f.Type {
		case frameConnectionAck:
			return nil
		case frameKeepAlive:
		case framePing:
			_ = conn.WriteJSON(&wsFrame{Type: framePong})
		case frameError:
			return fmt.Errorf("%w: %s", ErrNoAck, string(f.Payload))
		}
	}
}

func (t *transport) pumpFrames(
	ctx context.Context, conn *websocket.Conn, res *api.RequestResponse,
	next, stop string,
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
			endSubscription(conn, stop)
			res.AddEvent(api.StreamClosed, "cancelled")
			return
		case raw := <-msgs:
			var f wsFrame
			if err := json.Unmarshal([]byte(raw), &f); err != nil {
				res.AddEvent(api.StreamError, "unparseable frame: "+raw)
				resetTimer(timer, t.idle)
				continue
			}
			switch f.Type {
			case next:
				res.AddEvent(api.StreamReceived, string(f.Payload))
				resetTimer(timer, t.idle)
			case frameError:
				res.AddEvent(api.StreamError, string(f.Payload))
				resetTimer(timer, t.idle)
			case frameComplete:
				res.AddEvent(api.StreamClosed, "complete")
				closeQuietly(conn)
				return
			case framePing:
				_ = conn.WriteJSON(&wsFrame{Type: framePong})
				resetTimer(timer, t.idle)
			case frameKeepAlive:
				// heartbeats never extend an otherwise quiet stream
			}
		case err := <-errs:
			if err != nil {
				res.AddEvent(api.StreamError, err.Error())
			} else {
				res.AddEvent(api.StreamClosed, "connection closed")
			}
			return
		case <-timer.C:
			endSubscription(conn, stop)
			res.AddEvent(api.StreamClosed, "idle timeout")
			return
		}
	}
}

// endSubscription tells the server the client is done before closing
func endSubscription(conn *websocket.Conn, stop string) {
	_ = conn.WriteJSON(&wsFrame{ID: subscriptionID, Type: stop})
	closeQuietly(conn)
}
