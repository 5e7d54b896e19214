package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volleyhq/volley/internal/assert/helpers"
	"github.com/volleyhq/volley/pkg/api"
)

type wsEnv struct {
	httpServer *httptest.Server
	Conn       *websocket.Conn
}

const (
	wsReadTimeout  = 500 * time.Millisecond
	wsCloseTimeout = 200 * time.Millisecond
	wsErrorTimeout = 100 * time.Millisecond
)

func (e *wsEnv) Cleanup() {
	_ = e.Conn.Close()
	e.httpServer.Close()
}

func dialSocket(t *testing.T, env *testServerEnv) *wsEnv {
	t.Helper()

	srv := httptest.NewServer(env.handler)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	return &wsEnv{
		httpServer: srv,
		Conn:       conn,
	}
}

// subscribe applies a filter and waits for the acknowledgement, which also
// guarantees the server side of the socket is fully attached to the hub
func subscribe(
	t *testing.T, conn *websocket.Conn, sub api.ClientSubscription,
) {
	t.Helper()

	err := conn.WriteJSON(api.SubscribeRequest{
		Type: "subscribe",
		Data: sub,
	})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	var ack api.SubscribedResult
	err = conn.ReadJSON(&ack)
	require.NoError(t, err)
	assert.Equal(t, "subscribed", ack.Type)
}

func readEvent(t *testing.T, conn *websocket.Conn) *api.RunEvent {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	var ev api.RunEvent
	err := conn.ReadJSON(&ev)
	require.NoError(t, err)
	return &ev
}

func TestSocketIdle(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	_ = ws.Conn.SetReadDeadline(time.Now().Add(wsErrorTimeout))
	_, _, err := ws.Conn.ReadMessage()
	assert.Error(t, err)
}

func TestSocketDefaultDelivery(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	// Give the handler a moment to attach its consumer; a fresh socket
	// receives everything without a subscribe message
	time.Sleep(100 * time.Millisecond)
	env.Hub.Publish(&api.RunEvent{
		Type:      api.EventTypeRunStarted,
		RunID:     "run-1",
		FlowID:    "flow-1",
		Timestamp: time.Now(),
	})

	ev := readEvent(t, ws.Conn)
	assert.Equal(t, api.EventTypeRunStarted, ev.Type)
	assert.Equal(t, api.ID("run-1"), ev.RunID)
}

func TestSocketFilterByFlow(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	subscribe(t, ws.Conn, api.ClientSubscription{FlowID: "flow-b"})

	env.Hub.Publish(&api.RunEvent{
		Type:   api.EventTypeRunStarted,
		RunID:  "run-a",
		FlowID: "flow-a",
	})
	env.Hub.Publish(&api.RunEvent{
		Type:   api.EventTypeRunStarted,
		RunID:  "run-b",
		FlowID: "flow-b",
	})

	ev := readEvent(t, ws.Conn)
	assert.Equal(t, api.ID("flow-b"), ev.FlowID)
}

func TestSocketFilterByEventType(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	subscribe(t, ws.Conn, api.ClientSubscription{
		EventTypes: []api.EventType{api.EventTypeRunFinished},
	})

	env.Hub.Publish(&api.RunEvent{
		Type:   api.EventTypeStepStarted,
		RunID:  "run-1",
		FlowID: "flow-1",
	})
	env.Hub.Publish(&api.RunEvent{
		Type:   api.EventTypeRunFinished,
		RunID:  "run-1",
		FlowID: "flow-1",
		Status: string(api.RunCompleted),
	})

	ev := readEvent(t, ws.Conn)
	assert.Equal(t, api.EventTypeRunFinished, ev.Type)
}

func TestSocketResubscribe(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	subscribe(t, ws.Conn, api.ClientSubscription{FlowID: "flow-b"})
	subscribe(t, ws.Conn, api.ClientSubscription{})

	env.Hub.Publish(&api.RunEvent{
		Type:   api.EventTypeRunStarted,
		RunID:  "run-a",
		FlowID: "flow-a",
	})

	ev := readEvent(t, ws.Conn)
	assert.Equal(t, api.ID("flow-a"), ev.FlowID)
}

func TestSocketInvalidMessageIgnored(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	err := ws.Conn.WriteMessage(websocket.TextMessage, []byte("not-json"))
	assert.NoError(t, err)

	subscribe(t, ws.Conn, api.ClientSubscription{})
}

func TestSocketNonSubscribeIgnored(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	err := ws.Conn.WriteJSON(api.SubscribeRequest{
		Type: "other",
		Data: api.ClientSubscription{FlowID: "flow-x"},
	})
	assert.NoError(t, err)

	// The default filter is still in place, so everything flows
	subscribe(t, ws.Conn, api.ClientSubscription{})
	env.Hub.Publish(&api.RunEvent{
		Type:   api.EventTypeRunStarted,
		RunID:  "run-y",
		FlowID: "flow-y",
	})

	ev := readEvent(t, ws.Conn)
	assert.Equal(t, api.ID("flow-y"), ev.FlowID)
}

func TestSocketCloseWebSockets(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	subscribe(t, ws.Conn, api.ClientSubscription{})
	env.Server.CloseWebSockets()

	_ = ws.Conn.SetReadDeadline(time.Now().Add(wsCloseTimeout))
	_, _, err := ws.Conn.ReadMessage()
	assert.Error(t, err)
}

func TestSocketHubClosed(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()
	ws := dialSocket(t, env)
	defer ws.Cleanup()

	subscribe(t, ws.Conn, api.ClientSubscription{})
	env.Hub.Close()

	_ = ws.Conn.SetReadDeadline(time.Now().Add(wsCloseTimeout))
	_, _, err := ws.Conn.ReadMessage()
	assert.Error(t, err)
}

func TestSocketStreamsFlowRun(t *testing.T) {
	env := testServer(t)
	defer env.Cleanup()

	req := helpers.NewRESTRequest("https://api.test/ping")
	flow := helpers.NewTestFlow(req)
	env.Seed(t, req, flow)

	ws := dialSocket(t, env)
	defer ws.Cleanup()
	subscribe(t, ws.Conn, api.ClientSubscription{FlowID: flow.ID})

	w := env.do("POST", "/api/flows/"+string(flow.ID)+"/run", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	started := decode[api.RunStartedResponse](t, w)

	types := make([]api.EventType, 0, 4)
	var last *api.RunEvent
	for range 4 {
		ev := readEvent(t, ws.Conn)
		assert.Equal(t, started.RunID, ev.RunID)
		assert.Equal(t, flow.ID, ev.FlowID)
		assert.False(t, ev.Timestamp.IsZero())
		types = append(types, ev.Type)
		last = ev
	}

	assert.Equal(t, []api.EventType{
		api.EventTypeRunStarted,
		api.EventTypeStepStarted,
		api.EventTypeStepFinished,
		api.EventTypeRunFinished,
	}, types)
	assert.Equal(t, string(api.RunCompleted), last.Status)
}
