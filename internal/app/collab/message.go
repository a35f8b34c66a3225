/*
Package collab implements the real-time collaboration layer: the wire protocol
exchanged over folder websockets, the in-memory room registry that tracks which
users are editing which folder, and the per-connection session pumps.
*/
package collab

import (
	"encoding/json"
	"fmt"
)

// MessageType discriminates the wire frames exchanged over a folder socket.
type MessageType string

const (
	// TypeJoin and TypeLeave are reserved server-side lifecycle markers; clients
	// never send them and the server announces membership via presence frames.
	TypeJoin  MessageType = "join"
	TypeLeave MessageType = "leave"

	// TypeUpdate signals that the sender changed the folder's contents; the
	// payload is opaque to this layer.
	TypeUpdate MessageType = "update"

	// TypePresence carries membership changes, always authored by the server.
	TypePresence MessageType = "presence"

	// TypeCursor carries the sender's cursor position; opaque to this layer.
	TypeCursor MessageType = "cursor"
)

// PresenceAction discriminates the presence payload variants.
type PresenceAction string

const (
	// ActionRoomState is sent only to a joining member and carries the full
	// member list at the instant of the join.
	ActionRoomState PresenceAction = "room_state"

	// ActionJoined announces a new member to everyone already in the room.
	ActionJoined PresenceAction = "joined"

	// ActionLeft announces that a member's connection went away.
	ActionLeft PresenceAction = "left"
)

// Member identifies one collaborator inside presence payloads.
type Member struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// Message is the wire unit exchanged in both directions. Routing and attribution
// fields are always present; Data depends on Type and stays raw until decoded by
// the matching payload accessor.
type Message struct {
	Type     MessageType     `json:"type"`
	FolderID string          `json:"folderId"`
	UserID   string          `json:"userId"`
	UserName string          `json:"userName"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// PresencePayload is the closed variant set carried by presence frames. Users is
// populated only for room_state.
type PresencePayload struct {
	Action PresenceAction `json:"action"`
	Users  []Member       `json:"users,omitempty"`
}

// DecodeMessage parses one raw text frame. It validates only the envelope; a
// frame with an unknown type is returned as-is so the caller can decide to drop
// it with context.
func DecodeMessage(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed collaboration frame: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("collaboration frame missing type")
	}
	return msg, nil
}

// Presence decodes the presence variant of a message. It fails on non-presence
// frames and on unknown actions, keeping the variant set closed.
func (m Message) Presence() (PresencePayload, error) {
	if m.Type != TypePresence {
		return PresencePayload{}, fmt.Errorf("message type %q carries no presence payload", m.Type)
	}

	var payload PresencePayload
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		return PresencePayload{}, fmt.Errorf("malformed presence payload: %w", err)
	}

	switch payload.Action {
	case ActionRoomState, ActionJoined, ActionLeft:
		return payload, nil
	default:
		return PresencePayload{}, fmt.Errorf("unknown presence action %q", payload.Action)
	}
}

// newPresenceMessage builds a server-authored presence frame attributed to the
// user the event is about.
func newPresenceMessage(user ConnectedUser, payload PresencePayload) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode presence payload: %w", err)
	}

	return Message{
		Type:     TypePresence,
		FolderID: user.FolderID,
		UserID:   user.UserID,
		UserName: user.UserName,
		Data:     data,
	}, nil
}
