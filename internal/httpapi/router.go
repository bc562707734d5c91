package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/helptech/helptech-platform/pkg/logging"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Logger         *logging.Logger
	Chat           *Handler
	WebChat        *WebChatHandler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string

	// Per-IP rate limit for the chat surface; disabled when zero.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// NewRouter creates a Chi router with all routes configured.
func NewRouter(cfg *RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Chat.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/chat", func(r chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			r.Use(RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}

		r.Post("/sessions", cfg.Chat.StartSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Post("/messages", cfg.Chat.PostMessage)
			r.Get("/messages", cfg.Chat.GetHistory)
			r.Delete("/messages", cfg.Chat.ClearHistory)
		})

		if cfg.WebChat != nil {
			r.Get("/ws", cfg.WebChat.HandleWebSocket)
		}
	})

	return r
}
