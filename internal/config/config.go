// Package config loads drillbook settings from environment variables,
// applies defaults and validates everything on startup.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining imports.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the chi Timeout middleware budget for non-import routes.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. DB_URL is accepted as well.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds import pipeline settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the number of previews and confirms allowed at once
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for an import slot
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// BatchSize is rows per multi-row insert at confirm
	BatchSize int `env:"UPLOAD_BATCH_SIZE" default:"100"`

	// Timeout bounds a single preview or confirm
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"5m"`

	// DefaultMinutes is the duration given to drills imported without one
	DefaultMinutes int `env:"IMPORT_DEFAULT_MINUTES" default:"10"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit applies to preview and confirm
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds authentication and header settings.
type SecurityConfig struct {
	// TrustedProxies lists proxy CIDRs whose X-Real-IP / X-Forwarded-For are honoured
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys is a comma-separated list of key:user-uuid pairs
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey rejects requests that cannot be tied to a user
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"true"`

	// TrustUserHeader accepts X-User-ID from an upstream auth proxy
	TrustUserHeader bool `env:"AUTH_TRUST_USER_HEADER" default:"false"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UserKeys parses APIKeys into a key to user id map.
func (c *SecurityConfig) UserKeys() (map[string]uuid.UUID, error) {
	keys := make(map[string]uuid.UUID, len(c.APIKeys))
	for i, pair := range c.APIKeys {
		key, user, ok := strings.Cut(pair, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("API_KEYS entry %d: want key:user-uuid", i+1)
		}
		id, err := uuid.Parse(strings.TrimSpace(user))
		if err != nil {
			return nil, fmt.Errorf("API_KEYS entry %d: invalid user id: %w", i+1, err)
		}
		if _, dup := keys[key]; dup {
			return nil, fmt.Errorf("API_KEYS entry %d: key listed twice", i+1)
		}
		keys[key] = id
	}
	return keys, nil
}
