/*
Package handler wires the HTTP surface of the collaboration service: the
websocket endpoint that feeds the room registry and the JSON API for folders.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"paperboard/internal/app/collab"
	"paperboard/internal/pkg/errs"
	"paperboard/internal/pkg/limiter"
	"paperboard/internal/pkg/logx"
	"paperboard/internal/pkg/resp"
)

// closeReasonWait bounds the write of a policy-violation close frame.
const closeReasonWait = 5 * time.Second

// HandleCollabSocket upgrades a folder collaboration connection. The three
// routing parameters (folderId, userId, userName) are required; a connection
// missing any of them is upgraded and then immediately closed with code 1008
// (policy violation) so the client sees a distinguishable reason, and is never
// registered in any room. Identity strings are assumed pre-validated by the
// hosting application.
func HandleCollabSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("collaboration connection rejected: rate limit exceeded", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		query := r.URL.Query()
		user := collab.ConnectedUser{
			FolderID: query.Get("folderId"),
			UserID:   query.Get("userId"),
			UserName: query.Get("userName"),
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "failed to upgrade collaboration connection")
			return
		}

		if user.FolderID == "" || user.UserID == "" || user.UserName == "" {
			logx.Warn("collaboration connection refused: missing parameters",
				"folder_id", user.FolderID, "user_id", user.UserID)
			refuse(conn, "folderId, userId and userName query parameters are required")
			return
		}

		logx.Info("collaboration connection established",
			"folder_id", user.FolderID, "user_id", user.UserID)

		collab.NewSession(deps.Registry, conn, user).Run()
	}
}

// refuse closes an upgraded connection with close code 1008 and a readable
// reason, without registering it anywhere.
func refuse(conn *websocket.Conn, reason string) {
	frame := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.SetWriteDeadline(time.Now().Add(closeReasonWait))
	_ = conn.WriteMessage(websocket.CloseMessage, frame)
	_ = conn.Close()
}
