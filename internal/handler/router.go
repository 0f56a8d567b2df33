package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"carelink/internal/pkg/auth/jwt"
	"carelink/internal/pkg/limiter"
	"carelink/internal/pkg/logx"
	"carelink/internal/pkg/resp"
)

const (
	// APIRate and APIBurst throttle the REST surface per IP.
	APIRate  = 5
	APIBurst = 20

	// WsRate and WsBurst throttle websocket handshakes per IP; reconnect
	// storms from a flapping client should not reach the upgrader.
	WsRate  = 0.5
	WsBurst = 5
)

// Router builds the HTTP routing table: CORS, request logging, per-IP rate
// limits, the authenticated REST API, and the websocket endpoint.
func Router(deps *AppDeps) http.Handler {
	apiLimiter := limiter.NewIPRateLimiter(rate.Limit(APIRate), APIBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WsRate), WsBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
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

			logx.Warn("WebSocket connection rejected: origin not allowed", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := deps.Config.AllowedOrigins
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "CareLink Realtime Server",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(apiLimiter.Middleware)
		api.Use(jwt.RequireAuth(deps.Config.JWTSecret))

		api.Route("/chat", func(chat chi.Router) {
			chat.Get("/{sessionKey}/messages", HandleSessionMessages(deps))
			chat.Post("/{sessionKey}/read", HandleMarkRead(deps))
		})

		api.Route("/file", func(file chi.Router) {
			file.Post("/presign-upload", HandlePresignUpload(deps))
			file.Get("/presign-download", HandlePresignDownload(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
