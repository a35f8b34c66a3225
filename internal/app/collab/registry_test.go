package collab

import (
	"encoding/json"
	"testing"
)

func newTestSession(folderID, userID, userName string) *Session {
	return &Session{
		user: ConnectedUser{UserID: userID, UserName: userName, FolderID: folderID},
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}
}

// nextFrame pops one queued outbound frame, failing the test when none is
// pending.
func nextFrame(t *testing.T, s *Session) Message {
	t.Helper()
	select {
	case raw := <-s.send:
		msg, err := DecodeMessage(raw)
		if err != nil {
			t.Fatalf("DecodeMessage: %v", err)
		}
		return msg
	default:
		t.Fatalf("expected a queued frame for %s, got none", s.user.UserID)
	}
	return Message{}
}

func assertNoFrame(t *testing.T, s *Session) {
	t.Helper()
	select {
	case raw := <-s.send:
		t.Fatalf("expected no frame for %s, got %s", s.user.UserID, string(raw))
	default:
	}
}

func drain(s *Session) {
	for {
		select {
		case <-s.send:
		default:
			return
		}
	}
}

func TestJoinTracksMembership(t *testing.T) {
	registry := NewRegistry()

	alice := newTestSession("F1", "u-alice", "Alice")
	bob := newTestSession("F1", "u-bob", "Bob")

	registry.Join(alice)
	registry.Join(bob)

	members := registry.MembersOf("F1")
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %v", members)
	}

	registry.Leave(alice)
	members = registry.MembersOf("F1")
	if len(members) != 1 || members[0] != "Bob" {
		t.Fatalf("expected only Bob, got %v", members)
	}
}

func TestSameUserTwoTabsCountsTwice(t *testing.T) {
	registry := NewRegistry()

	tab1 := newTestSession("F1", "u-alice", "Alice")
	tab2 := newTestSession("F1", "u-alice", "Alice")

	registry.Join(tab1)
	registry.Join(tab2)

	if got := len(registry.MembersOf("F1")); got != 2 {
		t.Fatalf("membership is per-connection, expected 2 entries, got %d", got)
	}

	registry.Leave(tab1)
	if got := len(registry.MembersOf("F1")); got != 1 {
		t.Fatalf("expected 1 entry after one tab left, got %d", got)
	}
}

func TestEmptyRoomIsRemoved(t *testing.T) {
	registry := NewRegistry()

	alice := newTestSession("F1", "u-alice", "Alice")
	registry.Join(alice)
	if registry.RoomCount() != 1 {
		t.Fatalf("expected 1 room, got %d", registry.RoomCount())
	}

	registry.Leave(alice)
	if registry.RoomCount() != 0 {
		t.Fatalf("expected 0 rooms after last leave, got %d", registry.RoomCount())
	}
	if members := registry.MembersOf("F1"); members != nil {
		t.Fatalf("expected no members for removed room, got %v", members)
	}

	// Leaving again is a no-op.
	registry.Leave(alice)
	if registry.RoomCount() != 0 {
		t.Fatalf("idempotent leave changed room count to %d", registry.RoomCount())
	}
}

func TestJoinDeliversRoomStateToJoinerOnly(t *testing.T) {
	registry := NewRegistry()

	alice := newTestSession("F1", "u-alice", "Alice")
	registry.Join(alice)

	state := nextFrame(t, alice)
	if state.Type != TypePresence {
		t.Fatalf("expected presence frame, got %s", state.Type)
	}
	payload, err := state.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if payload.Action != ActionRoomState {
		t.Fatalf("expected room_state, got %s", payload.Action)
	}
	if len(payload.Users) != 1 || payload.Users[0].UserID != "u-alice" {
		t.Fatalf("room_state should list the joiner exactly once, got %v", payload.Users)
	}
	assertNoFrame(t, alice)

	bob := newTestSession("F1", "u-bob", "Bob")
	registry.Join(bob)

	state = nextFrame(t, bob)
	payload, err = state.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if payload.Action != ActionRoomState || len(payload.Users) != 2 {
		t.Fatalf("expected room_state with 2 users, got %s %v", payload.Action, payload.Users)
	}
	seen := map[string]int{}
	for _, u := range payload.Users {
		seen[u.UserID]++
	}
	if seen["u-alice"] != 1 || seen["u-bob"] != 1 {
		t.Fatalf("room_state must list each member exactly once, got %v", seen)
	}

	// Alice is notified about Bob, not with another room_state.
	joined := nextFrame(t, alice)
	jp, err := joined.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if jp.Action != ActionJoined || joined.UserID != "u-bob" {
		t.Fatalf("expected joined frame about u-bob, got %s %s", jp.Action, joined.UserID)
	}
	assertNoFrame(t, bob)
}

func TestLeaveNotifiesRemainingMembers(t *testing.T) {
	registry := NewRegistry()

	alice := newTestSession("F1", "u-alice", "Alice")
	bob := newTestSession("F1", "u-bob", "Bob")
	registry.Join(alice)
	registry.Join(bob)
	drain(alice)
	drain(bob)

	registry.Leave(bob)

	left := nextFrame(t, alice)
	payload, err := left.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if payload.Action != ActionLeft || left.UserID != "u-bob" {
		t.Fatalf("expected left frame about u-bob, got %s %s", payload.Action, left.UserID)
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	registry := NewRegistry()

	alice := newTestSession("F1", "u-alice", "Alice")
	bob := newTestSession("F1", "u-bob", "Bob")
	carol := newTestSession("F1", "u-carol", "Carol")
	for _, s := range []*Session{alice, bob, carol} {
		registry.Join(s)
	}
	for _, s := range []*Session{alice, bob, carol} {
		drain(s)
	}

	update := Message{
		Type:     TypeUpdate,
		FolderID: "F1",
		UserID:   "u-alice",
		UserName: "Alice",
		Data:     json.RawMessage(`{"questionId":"q1"}`),
	}
	registry.Broadcast("F1", update, "u-alice")

	for _, receiver := range []*Session{bob, carol} {
		got := nextFrame(t, receiver)
		if got.Type != TypeUpdate || got.UserID != "u-alice" {
			t.Fatalf("expected update from u-alice, got %+v", got)
		}
		assertNoFrame(t, receiver)
	}
	assertNoFrame(t, alice)
}

func TestBroadcastSkipsClosedSessions(t *testing.T) {
	registry := NewRegistry()

	alice := newTestSession("F1", "u-alice", "Alice")
	bob := newTestSession("F1", "u-bob", "Bob")
	registry.Join(alice)
	registry.Join(bob)
	drain(alice)
	drain(bob)

	bob.closed.Store(true)

	registry.Broadcast("F1", Message{Type: TypeUpdate, FolderID: "F1", UserID: "u-x", UserName: "X"}, "")

	if _, got := <-alice.send, len(bob.send); got != 0 {
		t.Fatalf("closed session should be skipped, found %d queued frames", got)
	}
}

func TestBroadcastToUnknownFolderIsNoOp(t *testing.T) {
	registry := NewRegistry()
	// Must not panic or create a room.
	registry.Broadcast("missing", Message{Type: TypeUpdate, FolderID: "missing", UserID: "u", UserName: "U"}, "")
	if registry.RoomCount() != 0 {
		t.Fatalf("broadcast must not create rooms, got %d", registry.RoomCount())
	}
}
