package collab

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"paperboard/internal/pkg/logx"
)

// ConnectedUser is one live room membership: the identity a connection declared
// at handshake time plus the folder it joined. Membership is per-connection; the
// same (userId, folderId) pair appears twice when a user opens two tabs.
type ConnectedUser struct {
	UserID   string
	UserName string
	FolderID string
}

// Registry is the authoritative in-memory map from folder ID to the set of live
// sessions editing that folder. It is constructed once at process start and
// injected into the connection handler; a single RWMutex serializes all room
// mutations, which is adequate at the expected room cardinality.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Session]struct{}
	logger zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]map[*Session]struct{}),
		logger: logx.Logger().With().Str("component", "registry").Logger(),
	}
}

// Join adds the session to its folder's room, creating the room on first join.
// The joiner receives a presence/room_state frame with the full member list at
// the instant of the join (itself included, once); everyone else in the room
// receives presence/joined. Join cannot fail while the connection is live.
func (r *Registry) Join(s *Session) {
	r.mu.Lock()

	room, ok := r.rooms[s.user.FolderID]
	if !ok {
		room = make(map[*Session]struct{})
		r.rooms[s.user.FolderID] = room
	}
	room[s] = struct{}{}

	members := make([]Member, 0, len(room))
	for member := range room {
		members = append(members, Member{UserID: member.user.UserID, UserName: member.user.UserName})
	}
	total := len(room)

	r.mu.Unlock()

	r.logger.Info().
		Str("folder_id", s.user.FolderID).
		Str("user_id", s.user.UserID).
		Int("room_size", total).
		Msg("session joined folder")

	state, err := newPresenceMessage(s.user, PresencePayload{Action: ActionRoomState, Users: members})
	if err != nil {
		r.logger.Error().Err(err).Str("folder_id", s.user.FolderID).Msg("failed to build room_state frame")
	} else if payload, err := json.Marshal(state); err == nil {
		s.enqueue(payload)
	}

	joined, err := newPresenceMessage(s.user, PresencePayload{Action: ActionJoined})
	if err != nil {
		r.logger.Error().Err(err).Str("folder_id", s.user.FolderID).Msg("failed to build joined frame")
		return
	}
	r.Broadcast(s.user.FolderID, joined, s.user.UserID)
}

// Leave removes the session from its room. The room entry is deleted as soon as
// it holds no members; otherwise the remaining members receive presence/left.
// Leaving a session that was never registered is a no-op.
func (r *Registry) Leave(s *Session) {
	r.mu.Lock()

	room, ok := r.rooms[s.user.FolderID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, present := room[s]; !present {
		r.mu.Unlock()
		return
	}

	delete(room, s)
	remaining := len(room)
	if remaining == 0 {
		delete(r.rooms, s.user.FolderID)
	}

	r.mu.Unlock()

	r.logger.Info().
		Str("folder_id", s.user.FolderID).
		Str("user_id", s.user.UserID).
		Int("room_size", remaining).
		Msg("session left folder")

	if remaining == 0 {
		return
	}

	left, err := newPresenceMessage(s.user, PresencePayload{Action: ActionLeft})
	if err != nil {
		r.logger.Error().Err(err).Str("folder_id", s.user.FolderID).Msg("failed to build left frame")
		return
	}
	r.Broadcast(s.user.FolderID, left, "")
}

// Broadcast delivers msg to every member of the folder's room whose transport is
// still open, skipping members whose user ID equals excludeUserID when it is
// non-empty. Closed or saturated transports are skipped silently; their close
// handlers are responsible for eventual removal. Delivery is best effort.
func (r *Registry) Broadcast(folderID string, msg Message, excludeUserID string) {
	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error().Err(err).Str("folder_id", folderID).Msg("failed to encode broadcast frame")
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for member := range r.rooms[folderID] {
		if excludeUserID != "" && member.user.UserID == excludeUserID {
			continue
		}
		if !member.enqueue(payload) {
			r.logger.Debug().
				Str("folder_id", folderID).
				Str("user_id", member.user.UserID).
				Msg("skipped closed or saturated session during broadcast")
		}
	}
}

// MembersOf returns the display names of the folder's current members. The
// snapshot is for diagnostics and UI only, never for protocol decisions.
func (r *Registry) MembersOf(folderID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[folderID]
	if len(room) == 0 {
		return nil
	}

	names := make([]string, 0, len(room))
	for member := range room {
		names = append(names, member.user.UserName)
	}
	return names
}

// RoomCount reports how many folders currently have at least one live session.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
