package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJSON(t *testing.T) {
	t.Run("loads from json", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"addr":                  "127.0.0.1:9000",
			"vault_dir":             "/vault",
			"ledger_path":           "/var/lib/cvvault.db",
			"session_secret":        "secret",
			"log_level":             "debug",
			"session_ttl":           "1h",
			"lockout_window":        60000000000,
			"shutdown_timeout":      "3s",
			"max_failed_attempts":   3,
			"login_rate_per_minute": 20,
		})

		cfg := &Config{}
		require.NoError(t, parseJSON(cfg, []string{"-config", path}))

		assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
		assert.Equal(t, "/vault", cfg.VaultDir)
		assert.Equal(t, "/var/lib/cvvault.db", cfg.LedgerPath)
		assert.Equal(t, "secret", cfg.SessionSecret)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, time.Hour, cfg.SessionTTL)
		assert.Equal(t, time.Minute, cfg.LockoutWindow)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 3, cfg.MaxFailedAttempts)
		assert.Equal(t, 20, cfg.LoginRatePerMinute)
	})

	t.Run("no config flag keeps values", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, []string{"-a", ":1"}))

		var want Config
		want.LoadDefaults()
		assert.Equal(t, want, *cfg)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"vault_dir": "/other"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, []string{"-c", path}))

		assert.Equal(t, "/other", cfg.VaultDir)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		assert.Error(t, parseJSON(cfg, []string{"-c", bad}))
	})
}
