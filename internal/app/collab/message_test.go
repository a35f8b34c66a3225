package collab

import (
	"encoding/json"
	"testing"
)

func TestDecodeMessage(t *testing.T) {
	raw := []byte(`{"type":"update","folderId":"F1","userId":"u1","userName":"Ana","data":{"questionId":"q9"}}`)

	msg, err := DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Type != TypeUpdate || msg.FolderID != "F1" || msg.UserID != "u1" || msg.UserName != "Ana" {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
	if string(msg.Data) != `{"questionId":"q9"}` {
		t.Fatalf("payload must stay opaque, got %s", string(msg.Data))
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte(`{not json`)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
	if _, err := DecodeMessage([]byte(`{"folderId":"F1"}`)); err == nil {
		t.Fatalf("expected error for frame without type")
	}
}

func TestPresenceVariants(t *testing.T) {
	user := ConnectedUser{UserID: "u1", UserName: "Ana", FolderID: "F1"}

	msg, err := newPresenceMessage(user, PresencePayload{
		Action: ActionRoomState,
		Users:  []Member{{UserID: "u1", UserName: "Ana"}, {UserID: "u2", UserName: "Ben"}},
	})
	if err != nil {
		t.Fatalf("newPresenceMessage: %v", err)
	}

	payload, err := msg.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if payload.Action != ActionRoomState || len(payload.Users) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	joined, _ := newPresenceMessage(user, PresencePayload{Action: ActionJoined})
	jp, err := joined.Presence()
	if err != nil {
		t.Fatalf("Presence: %v", err)
	}
	if jp.Action != ActionJoined || len(jp.Users) != 0 {
		t.Fatalf("joined variant should carry no user list, got %+v", jp)
	}
}

func TestPresenceRejectsUnknownAction(t *testing.T) {
	data, _ := json.Marshal(map[string]string{"action": "teleported"})
	msg := Message{Type: TypePresence, FolderID: "F1", UserID: "u1", UserName: "Ana", Data: data}

	if _, err := msg.Presence(); err == nil {
		t.Fatalf("expected error for unknown presence action")
	}
}

func TestPresenceOnNonPresenceFrame(t *testing.T) {
	msg := Message{Type: TypeUpdate, FolderID: "F1", UserID: "u1", UserName: "Ana"}
	if _, err := msg.Presence(); err == nil {
		t.Fatalf("expected error when reading presence payload from an update frame")
	}
}
