package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Pinger reports backend liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig contains the handlers and middleware the router wires up.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	ProfileHandler *ProfileHandler
	PhotoHandler   *PhotoHandler
	RequireAuth    func(http.Handler) http.Handler
	Metrics        func(http.Handler) http.Handler
	DB             Pinger
	Logger         zerolog.Logger
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics)
	}

	r.Get("/health", healthHandler(cfg.DB))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireAuth)

			r.Get("/profile", cfg.ProfileHandler.Get)
			r.Put("/profile", cfg.ProfileHandler.Update)

			r.Post("/photos/upload", cfg.PhotoHandler.Upload)
			r.Get("/photos", cfg.PhotoHandler.List)
			r.Post("/photos/{id}/like", cfg.PhotoHandler.ToggleLike)
			r.Delete("/photos/{id}", cfg.PhotoHandler.Delete)
		})
	})

	r.Get("/uploads/{name}", cfg.PhotoHandler.Serve)

	return r
}

// healthHandler reports service and database liveness.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "unhealthy",
					"database": err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// requestLogger logs one line per request with latency and status.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request completed")
		})
	}
}
