package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/drillbook/internal/importer"
	"github.com/JonMunkholm/drillbook/internal/logging"
	"github.com/google/uuid"
)

type ctxKey int

const (
	userKey ctxKey = iota
	userSlotKey
)

// AuthConfig controls how callers are mapped to users.
type AuthConfig struct {
	// Keys maps API keys to the user they authenticate.
	Keys map[string]uuid.UUID

	// TrustUserHeader accepts X-User-ID set by an upstream auth proxy.
	TrustUserHeader bool

	// RequireAPIKey, when false, also accepts X-User-ID from any caller.
	// Only for local development.
	RequireAPIKey bool
}

// UserAuth resolves the caller to a user id and stores it in the request
// context. Requests that cannot be resolved get 401.
//
// X-API-Key is checked first; a key that is present but unknown is rejected
// even if X-User-ID would otherwise be accepted.
func UserAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, reason := resolveUser(r, cfg)
			if userID == uuid.Nil {
				logging.FromContext(r.Context()).Warn("auth: rejected",
					"reason", reason,
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeUnauthorized(w)
				return
			}

			ctx := WithUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(r *http.Request, cfg AuthConfig) (uuid.UUID, string) {
	if key := r.Header.Get("X-API-Key"); key != "" {
		id, ok := lookupKey(key, cfg.Keys)
		if !ok {
			return uuid.Nil, "invalid API key"
		}
		return id, ""
	}

	if cfg.TrustUserHeader || !cfg.RequireAPIKey {
		raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if raw == "" {
			return uuid.Nil, "missing credentials"
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			return uuid.Nil, "invalid X-User-ID"
		}
		return id, ""
	}

	return uuid.Nil, "missing API key"
}

// lookupKey compares key against every configured key in constant time, so
// timing does not reveal which key (if any) matched.
func lookupKey(key string, keys map[string]uuid.UUID) (uuid.UUID, bool) {
	var found uuid.UUID
	match := 0
	for k, id := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
			found = id
			match = 1
		}
	}
	return found, match == 1
}

func writeUnauthorized(w http.ResponseWriter) {
	msg := importer.MapError(importer.ErrUnauthorized)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}

// WithUser returns a context carrying the authenticated user. The id is
// also attached to context loggers.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	if slot, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		slot.id = userID.String()
	}
	ctx = context.WithValue(ctx, userKey, userID)
	return logging.WithUserID(ctx, userID.String())
}

// UserFromContext returns the user stored by UserAuth.
func UserFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
