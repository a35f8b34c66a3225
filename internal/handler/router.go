package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"paperboard/internal/pkg/auth/jwt"
	"paperboard/internal/pkg/limiter"
	"paperboard/internal/pkg/logx"
	"paperboard/internal/pkg/resp"
)

const (
	// CreateRate/CreateBurst throttle folder creation per IP.
	CreateRate  = 0.1
	CreateBurst = 3

	// SocketRate/SocketBurst throttle collaboration socket handshakes per IP.
	SocketRate  = 0.5
	SocketBurst = 5
)

// Router assembles the chi routing table: CORS, request logging, the folder
// API, and the collaboration websocket endpoint.
func Router(deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(rate.Limit(CreateRate), CreateBurst)
	socketLimiter := limiter.NewIPRateLimiter(rate.Limit(SocketRate), SocketBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{}, len(deps.Config.AllowedOrigins))
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}
			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}
			logx.Warn("websocket upgrade rejected: origin not allowed", "origin", origin)
			return false
		},
	}

	corsOrigins := deps.Config.AllowedOrigins
	if deps.Config.Environment == "development" {
		corsOrigins = []string{"*"}
	}

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "paperboard-collab",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractor(deps.Config.JWTSecret))

		api.Get("/me", HandleCurrentUser(deps))

		api.Route("/folders", func(folders chi.Router) {
			folders.With(createLimiter.Middleware).Post("/", HandleCreateFolder(deps))
			folders.Get("/", HandleListFolders(deps))
			folders.Get("/{id}", HandleGetFolder(deps))
			folders.Put("/{id}", HandleRenameFolder(deps))
			folders.Get("/{id}/members", HandleFolderMembers(deps))
			folders.Post("/{id}/questions", HandleAddQuestion(deps))
			folders.Delete("/{id}/questions/{questionId}", HandleRemoveQuestion(deps))
		})
	})

	r.Get("/ws/collab", HandleCollabSocket(upgrader, socketLimiter, deps))

	return r
}
