package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iudanet/cvvault/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   vault root directory
//	-l string   failed-attempts ledger file
//	-s string   session signing secret
//	-t int      session lifetime, minutes
//	-m int      failed PIN attempts before lockout
//	-w int      lockout window, minutes
//	-r int      login requests per minute per client
//	-v string   log level
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and
// -version handled elsewhere do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-a", "-d", "-l", "-s", "-t", "-m", "-w", "-r", "-v"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.VaultDir, "d", cfg.VaultDir, "vault root directory")
	fs.StringVar(&cfg.LedgerPath, "l", cfg.LedgerPath, "failed attempts ledger file")
	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session signing secret")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&cfg.MaxFailedAttempts, "m", cfg.MaxFailedAttempts, "failed PIN attempts before lockout")
	fs.IntVar(&cfg.LoginRatePerMinute, "r", cfg.LoginRatePerMinute, "login requests per minute per client")

	sessionTTL := fs.Int("t", int(cfg.SessionTTL.Minutes()), "session lifetime (in minutes)")
	lockoutWindow := fs.Int("w", int(cfg.LockoutWindow.Minutes()), "lockout window (in minutes)")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	// Перезаписываем длительности только если флаг был задан явно,
	// чтобы не обрезать секунды из JSON конфига
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		case "w":
			cfg.LockoutWindow = time.Duration(*lockoutWindow) * time.Minute
		}
	})

	return nil
}
