package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/drillbook/internal/logging"
	"github.com/google/uuid"
)

func TestLogger_RecordsUserAndStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "debug", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	userID := uuid.New()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stand-in for UserAuth deeper in the chain.
		WithUser(r.Context(), userID)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("nope"))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/imports/preview", nil)
	rec := httptest.NewRecorder()
	Logger(inner).ServeHTTP(rec, req)

	out := buf.String()
	for _, want := range []string{
		"level=WARN",
		"status=422",
		"bytes=4",
		"path=/api/imports/preview",
		"user_id=" + userID.String(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[int]slog.Level{
		http.StatusOK:                  slog.LevelInfo,
		http.StatusFound:               slog.LevelInfo,
		http.StatusBadRequest:          slog.LevelWarn,
		http.StatusTooManyRequests:     slog.LevelWarn,
		http.StatusInternalServerError: slog.LevelError,
		http.StatusGatewayTimeout:      slog.LevelError,
	}
	for status, want := range tests {
		if got := logLevel(status); got != want {
			t.Errorf("logLevel(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)

	if w.status != http.StatusCreated || rec.Code != http.StatusCreated {
		t.Errorf("status = %d (recorder %d), want 201", w.status, rec.Code)
	}
}
