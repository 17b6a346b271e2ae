package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iudanet/cvvault/internal/flagx"
	"github.com/iudanet/cvvault/internal/timex"
)

// JSONConfig is the on-disk form of Config. Durations accept "15m" or
// integer nanoseconds. Absent fields keep their current value.
type JSONConfig struct {
	Addr               *string         `json:"addr"`
	VaultDir           *string         `json:"vault_dir"`
	LedgerPath         *string         `json:"ledger_path"`
	SessionSecret      *string         `json:"session_secret"`
	LogLevel           *string         `json:"log_level"`
	SessionTTL         *timex.Duration `json:"session_ttl"`
	LockoutWindow      *timex.Duration `json:"lockout_window"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
	MaxFailedAttempts  *int            `json:"max_failed_attempts"`
	LoginRatePerMinute *int            `json:"login_rate_per_minute"`
}

// parseJSON overlays values from the file named by -c/-config, if any
func parseJSON(cfg *Config, args []string) error {
	path := flagx.JSONConfigFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var c JSONConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setIf(&cfg.Addr, c.Addr)
	setIf(&cfg.VaultDir, c.VaultDir)
	setIf(&cfg.LedgerPath, c.LedgerPath)
	setIf(&cfg.SessionSecret, c.SessionSecret)
	setIf(&cfg.LogLevel, c.LogLevel)
	setIf(&cfg.MaxFailedAttempts, c.MaxFailedAttempts)
	setIf(&cfg.LoginRatePerMinute, c.LoginRatePerMinute)
	if c.SessionTTL != nil {
		cfg.SessionTTL = c.SessionTTL.Duration
	}
	if c.LockoutWindow != nil {
		cfg.LockoutWindow = c.LockoutWindow.Duration
	}
	if c.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = c.ShutdownTimeout.Duration
	}

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
