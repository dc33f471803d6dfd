// Package web provides the HTTP server and handlers for drill imports.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/drillbook/internal/config"
	"github.com/JonMunkholm/drillbook/internal/importer"
	mw "github.com/JonMunkholm/drillbook/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Importer is the import pipeline the handlers drive.
type Importer interface {
	Preview(ctx context.Context, userID uuid.UUID, up importer.Upload) (importer.StagedImport, error)
	Confirm(ctx context.Context, userID uuid.UUID, req importer.ConfirmRequest) (importer.CommitResult, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]importer.ImportRun, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the import API.
type Server struct {
	imports Importer
	health  HealthChecker
	cfg     *config.Config
	auth    mw.AuthConfig

	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer wires routes and middleware. health may be nil.
func NewServer(imports Importer, health HealthChecker, cfg *config.Config) (*Server, error) {
	keys, err := cfg.Security.UserKeys()
	if err != nil {
		return nil, fmt.Errorf("api keys: %w", err)
	}

	s := &Server{
		imports: imports,
		health:  health,
		cfg:     cfg,
		auth: mw.AuthConfig{
			Keys:            keys,
			TrustUserHeader: cfg.Security.TrustUserHeader,
			RequireAPIKey:   cfg.Security.RequireAPIKey,
		},
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.With(middleware.Timeout(s.cfg.Server.RequestTimeout)).Get("/healthz", s.handleHealth)

	s.router.Route("/api/imports", func(r chi.Router) {
		r.Use(mw.UserAuth(s.auth))

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled && s.cfg.Rate.UploadLimit > 0 {
				r.Use(s.newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute).middleware)
			}
			r.Post("/preview", s.handlePreview)
			r.Post("/confirm", s.handleConfirm)
		})

		r.With(middleware.Timeout(s.cfg.Server.RequestTimeout)).Get("/history", s.handleHistory)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Responses are JSON or inert HTML fragments.
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
