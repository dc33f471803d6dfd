// Package middleware provides HTTP middleware for the drillbook server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/drillbook/internal/logging"
)

// Logger logs one structured entry per request: method, path, status,
// duration_ms, bytes and ip, plus request_id and, once UserAuth has run,
// user_id.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		// Auth runs further down the chain, so the user id is only known
		// through this shared pointer once the handler returns.
		r = r.WithContext(withUserSlot(r.Context()))
		next.ServeHTTP(ww, r)

		logger := logging.FromContext(r.Context())
		if id := slotUser(r.Context()); id != "" {
			logger = logger.With("user_id", id)
		}

		level := logLevel(ww.status)
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.bytes,
			"ip", r.RemoteAddr,
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// userSlot carries the authenticated user id back up to Logger.
type userSlot struct {
	id string
}

func withUserSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, userSlotKey, &userSlot{})
}

func slotUser(ctx context.Context) string {
	if slot, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		return slot.id
	}
	return ""
}

func logLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
