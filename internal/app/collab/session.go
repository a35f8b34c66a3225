package collab

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"paperboard/internal/pkg/logx"
)

const (
	// writeWait bounds a single write to the websocket.
	writeWait = 10 * time.Second

	// pongWait is how long the server waits for a pong before dropping the peer.
	pongWait = 60 * time.Second

	// pingPeriod is the heartbeat interval; it must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxFrameSize caps inbound frames; collaboration events are small.
	maxFrameSize = 8192

	// sendBuffer is the per-session outbound queue length. Broadcasts to a
	// session with a full queue are dropped, not blocked on.
	sendBuffer = 256
)

// Session bridges one websocket connection to the registry. It owns the
// connection exclusively: when the transport closes or errors, the session
// deregisters itself exactly once and the membership record disappears with it.
type Session struct {
	registry *Registry
	conn     *websocket.Conn
	user     ConnectedUser

	send   chan []byte
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once

	logger zerolog.Logger
}

// NewSession wraps an upgraded connection with the identity it declared.
func NewSession(registry *Registry, conn *websocket.Conn, user ConnectedUser) *Session {
	return &Session{
		registry: registry,
		conn:     conn,
		user:     user,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		logger: logx.Logger().With().
			Str("component", "session").
			Str("folder_id", user.FolderID).
			Str("user_id", user.UserID).
			Logger(),
	}
}

// User returns the identity this session registered with.
func (s *Session) User() ConnectedUser {
	return s.user
}

// Run registers the session and drives both pumps. It blocks until the
// connection closes and cleanup has run.
func (s *Session) Run() {
	go s.writePump()
	s.registry.Join(s)
	s.readPump()
}

// enqueue queues an outbound frame without blocking. It reports false when the
// session is closed or its queue is saturated; callers treat that as a skipped
// delivery, never an error.
func (s *Session) enqueue(payload []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// close tears the session down exactly once: deregister, stop the write pump,
// close the transport. Safe to call from either pump.
func (s *Session) close() {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.registry.Leave(s)
		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("transport close error during cleanup")
		}
	})
}

// readPump consumes inbound frames until the transport fails, dispatching
// update and cursor events to the room. Malformed frames are logged and dropped
// with the connection left open; server-authored types arriving from a client
// are dropped as protocol noise.
func (s *Session) readPump() {
	defer s.close()

	s.conn.SetReadLimit(maxFrameSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}

		msg, err := DecodeMessage(raw)
		if err != nil {
			s.logger.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}

		switch msg.Type {
		case TypeUpdate, TypeCursor:
			// Routing and attribution are server-authoritative; whatever the
			// client put in those fields is overwritten before fan-out.
			msg.FolderID = s.user.FolderID
			msg.UserID = s.user.UserID
			msg.UserName = s.user.UserName
			s.registry.Broadcast(s.user.FolderID, msg, s.user.UserID)

		default:
			// join, leave, and presence are server-authored events, not client
			// commands.
			s.logger.Warn().Str("msg_type", string(msg.Type)).Msg("dropping unexpected client frame")
		}
	}
}

// writePump drains the outbound queue and keeps the heartbeat going until the
// session is closed or a write fails.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case payload := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debug().Err(err).Msg("write failed, closing session")
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
