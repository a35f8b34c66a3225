/*
Package collabclient is the Go client for the folder collaboration socket. The
hosting application creates one Client per active editing session, joins the
folder being edited, and observes membership through the client's state instead
of handling transport events itself.

Expected failure modes (closed socket, malformed frame, exhausted connection
budget) never surface as errors: callers see them only through IsConnected and
ConnectedUsers. Reconnection is always explicit; the client never retries on
its own.
*/
package collabclient

import (
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"paperboard/internal/app/collab"
	"paperboard/internal/pkg/logx"
)

const (
	// DefaultDialTimeout aborts a connection attempt that has not reached the
	// open state in time; an aborted attempt counts against the budget.
	DefaultDialTimeout = 5 * time.Second

	// DefaultMaxAttempts is the consecutive-failure budget; once spent, further
	// JoinFolder calls are silently skipped until the budget resets.
	DefaultMaxAttempts = 3
)

// Config carries the client identity and tunables. The attempt cap and dial
// timeout are deliberately configuration, not constants.
type Config struct {
	// ServerURL is the collaboration endpoint, e.g. ws://host:8080/ws/collab.
	ServerURL string

	// UserID and UserName identify the caller; both are sent on every join.
	UserID   string
	UserName string

	// DialTimeout bounds connection establishment. Zero means DefaultDialTimeout.
	DialTimeout time.Duration

	// MaxAttempts is the consecutive failed-connection budget. Zero means
	// DefaultMaxAttempts.
	MaxAttempts int
}

// User is one collaborator as exposed to the application.
type User struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Online   bool   `json:"isOnline"`
}

// Client owns at most one live connection. All methods are safe for concurrent
// use; callbacks run on the connection's read goroutine.
type Client struct {
	cfg Config

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	folderID  string
	users     []User
	failures  int

	onPresence func([]User)
	onUpdate   func(collab.Message)
	onCursor   func(collab.Message)

	logger zerolog.Logger
}

// New builds a client; missing tunables get their defaults.
func New(cfg Config) *Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &Client{
		cfg: cfg,
		logger: logx.Logger().With().
			Str("component", "collabclient").
			Str("user_id", cfg.UserID).
			Logger(),
	}
}

// OnPresence registers a callback invoked with the member list after every
// membership change. Set before the first JoinFolder call.
func (c *Client) OnPresence(fn func([]User)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPresence = fn
}

// OnUpdate registers a callback invoked when another member changed the folder.
// The client never applies folder content itself; the application refetches.
func (c *Client) OnUpdate(fn func(collab.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// OnCursor registers a callback for other members' cursor events.
func (c *Client) OnCursor(fn func(collab.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCursor = fn
}

// JoinFolder connects to the folder's room. Already connected to the same
// folder: no-op. Connected elsewhere: the old connection is closed first. A
// spent attempt budget makes the call a silent no-op; a successful open resets
// the consecutive-failure count.
func (c *Client) JoinFolder(folderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected && c.folderID == folderID {
		return
	}
	if c.failures >= c.cfg.MaxAttempts {
		c.logger.Warn().
			Str("folder_id", folderID).
			Int("max_attempts", c.cfg.MaxAttempts).
			Msg("connection attempt budget exhausted, join skipped")
		return
	}

	c.closeLocked()

	target, err := c.joinURL(folderID)
	if err != nil {
		c.failures++
		c.logger.Error().Err(err).Str("folder_id", folderID).Msg("invalid collaboration URL")
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	conn, httpResp, err := dialer.Dial(target, nil)
	if httpResp != nil && httpResp.Body != nil {
		httpResp.Body.Close()
	}
	if err != nil {
		c.failures++
		c.logger.Warn().Err(err).
			Str("folder_id", folderID).
			Int("failures", c.failures).
			Msg("connection attempt failed")
		return
	}

	c.conn = conn
	c.connected = true
	c.folderID = folderID
	c.failures = 0

	c.logger.Info().Str("folder_id", folderID).Msg("joined folder")

	go c.readLoop(conn)
}

// LeaveFolder closes the active connection, if any, and resets the observable
// state to disconnected/empty.
func (c *Client) LeaveFolder() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	c.folderID = ""
	c.users = nil
}

// SetIdentity replaces the caller identity. Any active session is closed and
// the attempt budget resets, so a user switch always gets a fresh budget.
func (c *Client) SetIdentity(userID, userName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	c.folderID = ""
	c.users = nil
	c.failures = 0
	c.cfg.UserID = userID
	c.cfg.UserName = userName
	c.logger = logx.Logger().With().
		Str("component", "collabclient").
		Str("user_id", userID).
		Logger()
}

// Send transmits msg with the client's identity and current folder stamped on.
// Not connected: silent no-op; messages are never queued.
func (c *Client) Send(msg collab.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return
	}

	msg.FolderID = c.folderID
	msg.UserID = c.cfg.UserID
	msg.UserName = c.cfg.UserName

	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to encode outbound frame")
		return
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.logger.Warn().Err(err).Msg("write failed, marking disconnected")
		c.connected = false
		c.users = nil
	}
}

// SendUpdate broadcasts an update event; data is opaque to the collaboration
// layer.
func (c *Client) SendUpdate(data json.RawMessage) {
	c.Send(collab.Message{Type: collab.TypeUpdate, Data: data})
}

// SendCursor broadcasts a cursor event.
func (c *Client) SendCursor(data json.RawMessage) {
	c.Send(collab.Message{Type: collab.TypeCursor, Data: data})
}

// IsConnected reports whether a live session exists.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// CurrentFolderID returns the folder of the active or last-joined session;
// empty after LeaveFolder.
func (c *Client) CurrentFolderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.folderID
}

// ConnectedUsers returns a copy of the current member list.
func (c *Client) ConnectedUsers() []User {
	c.mu.Lock()
	defer c.mu.Unlock()
	users := make([]User, len(c.users))
	copy(users, c.users)
	return users
}

// closeLocked shuts the current connection down without touching folderID or
// the failure count. Callers hold c.mu.
func (c *Client) closeLocked() {
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = c.conn.Close()
	c.conn = nil
	c.connected = false
}

// readLoop consumes frames until the transport fails. Any error simply drives
// the observable state to disconnected; re-establishing a session is always an
// explicit JoinFolder call.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.connected = false
				c.users = nil
				c.conn = nil
			}
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.handleFrame(conn, raw)
	}
}

// handleFrame applies one inbound frame. Malformed frames are logged and
// dropped; the connection stays up.
func (c *Client) handleFrame(conn *websocket.Conn, raw []byte) {
	msg, err := collab.DecodeMessage(raw)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed inbound frame")
		return
	}

	switch msg.Type {
	case collab.TypePresence:
		payload, err := msg.Presence()
		if err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed presence frame")
			return
		}
		c.applyPresence(conn, msg, payload)

	case collab.TypeUpdate:
		c.mu.Lock()
		fn := c.onUpdate
		if c.conn != conn {
			// Frame from a connection that has already been replaced.
			fn = nil
		}
		c.mu.Unlock()
		if fn != nil {
			fn(msg)
		}

	case collab.TypeCursor:
		c.mu.Lock()
		fn := c.onCursor
		if c.conn != conn {
			fn = nil
		}
		c.mu.Unlock()
		if fn != nil {
			fn(msg)
		}

	default:
		c.logger.Debug().Str("msg_type", string(msg.Type)).Msg("ignoring unexpected frame type")
	}
}

// applyPresence folds a presence event into the member list: room_state
// replaces it wholesale, joined appends (deduped by userId), left removes.
func (c *Client) applyPresence(conn *websocket.Conn, msg collab.Message, payload collab.PresencePayload) {
	c.mu.Lock()

	if c.conn != conn {
		// Frame from a connection that has already been replaced.
		c.mu.Unlock()
		return
	}

	switch payload.Action {
	case collab.ActionRoomState:
		c.users = make([]User, 0, len(payload.Users))
		for _, member := range payload.Users {
			c.users = append(c.users, User{UserID: member.UserID, UserName: member.UserName, Online: true})
		}

	case collab.ActionJoined:
		known := false
		for _, u := range c.users {
			if u.UserID == msg.UserID {
				known = true
				break
			}
		}
		if !known {
			c.users = append(c.users, User{UserID: msg.UserID, UserName: msg.UserName, Online: true})
		}

	case collab.ActionLeft:
		kept := c.users[:0]
		for _, u := range c.users {
			if u.UserID != msg.UserID {
				kept = append(kept, u)
			}
		}
		c.users = kept
	}

	snapshot := make([]User, len(c.users))
	copy(snapshot, c.users)
	fn := c.onPresence

	c.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// joinURL builds the connection target with the routing parameters encoded in
// the query string.
func (c *Client) joinURL(folderID string) (string, error) {
	parsed, err := url.Parse(c.cfg.ServerURL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return "", &url.Error{Op: "dial", URL: c.cfg.ServerURL, Err: errInvalidScheme}
	}

	query := parsed.Query()
	query.Set("folderId", folderID)
	query.Set("userId", c.cfg.UserID)
	query.Set("userName", c.cfg.UserName)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

var errInvalidScheme = errors.New("server URL scheme must be ws or wss")
