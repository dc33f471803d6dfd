package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestUserAuth(t *testing.T) {
	keyUser := uuid.New()
	headerUser := uuid.New()
	keys := map[string]uuid.UUID{"secret-key": keyUser}

	tests := []struct {
		name       string
		cfg        AuthConfig
		headers    map[string]string
		wantStatus int
		wantUser   uuid.UUID
	}{
		{
			name:       "valid api key",
			cfg:        AuthConfig{Keys: keys, RequireAPIKey: true},
			headers:    map[string]string{"X-API-Key": "secret-key"},
			wantStatus: http.StatusOK,
			wantUser:   keyUser,
		},
		{
			name:       "unknown api key",
			cfg:        AuthConfig{Keys: keys, RequireAPIKey: true},
			headers:    map[string]string{"X-API-Key": "nope"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown key not rescued by user header",
			cfg:        AuthConfig{Keys: keys, TrustUserHeader: true},
			headers:    map[string]string{"X-API-Key": "nope", "X-User-ID": headerUser.String()},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "api key wins over user header",
			cfg:        AuthConfig{Keys: keys, TrustUserHeader: true},
			headers:    map[string]string{"X-API-Key": "secret-key", "X-User-ID": headerUser.String()},
			wantStatus: http.StatusOK,
			wantUser:   keyUser,
		},
		{
			name:       "missing key when required",
			cfg:        AuthConfig{Keys: keys, RequireAPIKey: true},
			headers:    map[string]string{"X-User-ID": headerUser.String()},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "trusted user header",
			cfg:        AuthConfig{TrustUserHeader: true, RequireAPIKey: true},
			headers:    map[string]string{"X-User-ID": headerUser.String()},
			wantStatus: http.StatusOK,
			wantUser:   headerUser,
		},
		{
			name:       "user header in development mode",
			cfg:        AuthConfig{},
			headers:    map[string]string{"X-User-ID": " " + headerUser.String() + " "},
			wantStatus: http.StatusOK,
			wantUser:   headerUser,
		},
		{
			name:       "malformed user header",
			cfg:        AuthConfig{TrustUserHeader: true},
			headers:    map[string]string{"X-User-ID": "not-a-uuid"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "nil user header",
			cfg:        AuthConfig{TrustUserHeader: true},
			headers:    map[string]string{"X-User-ID": uuid.Nil.String()},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no credentials",
			cfg:        AuthConfig{TrustUserHeader: true},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser uuid.UUID
			handler := UserAuth(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := UserFromContext(r.Context())
				if !ok {
					t.Error("handler reached without a user")
				}
				gotUser = id
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/imports/history", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode 401 body: %v", err)
				}
				if body["code"] != "AUTH001" {
					t.Errorf("code = %q, want AUTH001", body["code"])
				}
				return
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %v, want %v", gotUser, tt.wantUser)
			}
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserFromContext(req.Context()); ok {
		t.Error("UserFromContext on a bare context reported a user")
	}
}
