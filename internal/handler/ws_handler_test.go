package handler

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"paperboard/internal/app/collab"
	"paperboard/internal/configs"
	"paperboard/internal/pkg/limiter"
)

func newSocketServer(t *testing.T) (*httptest.Server, *collab.Registry) {
	t.Helper()

	registry := collab.NewRegistry()
	deps := &AppDeps{
		Config:   &configs.AppConfig{Environment: "development"},
		Registry: registry,
	}
	srv := httptest.NewServer(HandleCollabSocket(
		websocket.Upgrader{},
		limiter.NewIPRateLimiter(rate.Limit(1000), 1000),
		deps,
	))
	t.Cleanup(srv.Close)

	return srv, registry
}

func socketURL(t *testing.T, srv *httptest.Server, params map[string]string) string {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	parsed, err := url.Parse(wsURL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	query := parsed.Query()
	for k, v := range params {
		query.Set(k, v)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func dialCollab(t *testing.T, srv *httptest.Server, folderID, userID, userName string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(socketURL(t, srv, map[string]string{
		"folderId": folderID,
		"userId":   userID,
		"userName": userName,
	}), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) collab.Message {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msg, err := collab.DecodeMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func assertNoMessage(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, raw, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no message, got %s", string(raw))
	}
}

func TestMissingParamsClosedWithPolicyViolation(t *testing.T) {
	srv, registry := newSocketServer(t)

	// userName deliberately absent.
	conn, resp, err := websocket.DefaultDialer.Dial(socketURL(t, srv, map[string]string{
		"folderId": "F1",
		"userId":   "u1",
	}), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected close, got a frame")
	}
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected close code 1008, got %v", err)
	}

	if registry.RoomCount() != 0 {
		t.Fatalf("refused connection must not be registered, rooms=%d", registry.RoomCount())
	}
}

func TestUpdateFanOutExcludesSender(t *testing.T) {
	srv, _ := newSocketServer(t)

	alice := dialCollab(t, srv, "F1", "u-alice", "Alice")
	// Wait for room_state so the join is complete before the next dial.
	state := readMessage(t, alice)
	if p, err := state.Presence(); err != nil || p.Action != collab.ActionRoomState {
		t.Fatalf("expected room_state first, got %+v (%v)", state, err)
	}

	bob := dialCollab(t, srv, "F1", "u-bob", "Bob")
	readMessage(t, bob)  // bob's room_state
	readMessage(t, alice) // joined(bob)

	carol := dialCollab(t, srv, "F1", "u-carol", "Carol")
	state = readMessage(t, carol)
	payload, err := state.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if payload.Action != collab.ActionRoomState || len(payload.Users) != 3 {
		t.Fatalf("carol's room_state should list 3 members, got %+v", payload)
	}
	readMessage(t, alice) // joined(carol)
	readMessage(t, bob)   // joined(carol)

	update := collab.Message{
		Type: collab.TypeUpdate,
		Data: json.RawMessage(`{"reason":"question-added"}`),
	}
	raw, _ := json.Marshal(update)
	if err := alice.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write update: %v", err)
	}

	for _, conn := range []*websocket.Conn{bob, carol} {
		msg := readMessage(t, conn)
		if msg.Type != collab.TypeUpdate {
			t.Fatalf("expected update, got %s", msg.Type)
		}
		if msg.UserID != "u-alice" || msg.FolderID != "F1" {
			t.Fatalf("server must stamp attribution, got %+v", msg)
		}
		assertNoMessage(t, conn)
	}
	assertNoMessage(t, alice)
}

func TestServerAuthoredTypesFromClientAreDropped(t *testing.T) {
	srv, _ := newSocketServer(t)

	alice := dialCollab(t, srv, "F1", "u-alice", "Alice")
	readMessage(t, alice) // room_state

	bob := dialCollab(t, srv, "F1", "u-bob", "Bob")
	readMessage(t, bob)   // room_state
	readMessage(t, alice) // joined(bob)

	// presence is server-authored; a client sending it must cause no fan-out.
	forged, _ := json.Marshal(collab.Message{Type: collab.TypePresence, FolderID: "F1", UserID: "u-alice", UserName: "Alice"})
	if err := alice.WriteMessage(websocket.TextMessage, forged); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Malformed JSON must be swallowed with the connection left open.
	if err := alice.WriteMessage(websocket.TextMessage, []byte(`{broken`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	assertNoMessage(t, bob)

	// The connection survived both bad frames: a real update still flows.
	update, _ := json.Marshal(collab.Message{Type: collab.TypeUpdate})
	if err := alice.WriteMessage(websocket.TextMessage, update); err != nil {
		t.Fatalf("write after bad frames: %v", err)
	}
	msg := readMessage(t, bob)
	if msg.Type != collab.TypeUpdate {
		t.Fatalf("expected update after bad frames, got %s", msg.Type)
	}
}

func TestDisconnectCleansUpRoom(t *testing.T) {
	srv, registry := newSocketServer(t)

	alice := dialCollab(t, srv, "F1", "u-alice", "Alice")
	readMessage(t, alice) // room_state

	bob := dialCollab(t, srv, "F1", "u-bob", "Bob")
	readMessage(t, bob)   // room_state
	readMessage(t, alice) // joined(bob)

	bob.Close()

	// Alice hears that bob left.
	msg := readMessage(t, alice)
	payload, err := msg.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if payload.Action != collab.ActionLeft || msg.UserID != "u-bob" {
		t.Fatalf("expected left frame about u-bob, got %+v", msg)
	}

	alice.Close()

	// The room disappears once the last member is gone.
	deadline := time.Now().Add(2 * time.Second)
	for registry.RoomCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("room not removed after last disconnect, rooms=%d", registry.RoomCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
