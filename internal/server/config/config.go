// Package config handles configuration for the vault server,
// including defaults, JSON overlay, command-line flags and environment.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// EnvSessionSecret names the environment variable holding the session signing secret
const EnvSessionSecret = "CVVAULT_SESSION_SECRET"

// Config holds runtime settings for the vault server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - VaultDir: root directory of the encrypted document store.
//   - LedgerPath: bbolt file holding failed PIN attempts per client.
//   - SessionSecret: HMAC secret for session tokens (HS256). Random if empty.
//   - SessionTTL: lifetime of a login session.
//   - MaxFailedAttempts / LockoutWindow: PIN brute-force lockout.
//   - LoginRatePerMinute: login requests allowed per client IP per minute.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr               string
	VaultDir           string
	LedgerPath         string
	SessionSecret      string
	LogLevel           string
	SessionTTL         time.Duration
	LockoutWindow      time.Duration
	ShutdownTimeout    time.Duration
	MaxFailedAttempts  int
	LoginRatePerMinute int
}

// LoadDefaults populates Config with development defaults
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.VaultDir = "./vault_data"
	c.LedgerPath = "./cvvault.db"
	c.SessionSecret = ""
	c.LogLevel = "info"
	c.SessionTTL = 30 * time.Minute
	c.LockoutWindow = 15 * time.Minute
	c.ShutdownTimeout = 10 * time.Second
	c.MaxFailedAttempts = 5
	c.LoginRatePerMinute = 10
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags and finally the environment.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config) {
	if secret, ok := os.LookupEnv(EnvSessionSecret); ok && secret != "" {
		cfg.SessionSecret = secret
	}
}

// Validate checks that the settings are usable
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr cannot be empty"))
	}
	if c.VaultDir == "" {
		errs = append(errs, errors.New("vault dir cannot be empty"))
	}
	if c.LedgerPath == "" {
		errs = append(errs, errors.New("ledger path cannot be empty"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.LockoutWindow <= 0 {
		errs = append(errs, errors.New("lockout window must be positive"))
	}
	if c.MaxFailedAttempts <= 0 {
		errs = append(errs, errors.New("max failed attempts must be positive"))
	}
	if c.LoginRatePerMinute <= 0 {
		errs = append(errs, errors.New("login rate must be positive"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SecretBytes returns the session signing secret. An empty secret is replaced
// with random bytes, which invalidates sessions on restart (they are in-memory anyway).
func (c *Config) SecretBytes() ([]byte, error) {
	if c.SessionSecret != "" {
		return []byte(c.SessionSecret), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}

// ParseLogLevel converts a level name into slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
