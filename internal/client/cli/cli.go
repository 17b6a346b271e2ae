package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/cvvault/internal/client/iocli"
)

const defaultVaultDir = "./vault_data"

// Cli держит общее состояние команд: ввод/вывод, флаги и логгер
type Cli struct {
	io       iocli.IO
	logger   *slog.Logger
	level    *slog.LevelVar
	getenv   func(string) string
	vaultDir string
	pinFile  string
	server   string
	verbose  bool
	// spinner показывается только в интерактивном терминале
	interactive bool
}

// Option настраивает Cli
type Option func(*Cli)

// WithInteractive включает спиннер на долгих операциях
func WithInteractive(interactive bool) Option {
	return func(c *Cli) {
		c.interactive = interactive
	}
}

// New создает CLI поверх переданного ввода/вывода
func New(io iocli.IO, opts ...Option) *Cli {
	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)

	c := &Cli{
		io:     io,
		level:  level,
		getenv: os.Getenv,
		logger: slog.New(slog.NewTextHandler(io, &slog.HandlerOptions{Level: level})),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute разбирает args и выполняет команду
func (c *Cli) Execute(ctx context.Context, version string, args []string) error {
	root := c.RootCommand(version)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// RootCommand собирает дерево команд
func (c *Cli) RootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "cvvault",
		Short: "PIN-protected vault for CV documents",
		Long: `cvvault keeps CV documents encrypted on disk. Each document is sealed
with a key derived from your PIN, and documents are grouped by PIN.

Without --server the commands work directly on a local vault directory.
With --server they go through a running cvvault server.

PIN priority (highest to lowest):
  1. CVVAULT_PIN environment variable
  2. --pin-file (file path)
  3. Interactive prompt`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.level.Set(slog.LevelDebug)
			}
		},
	}
	root.SetOut(c.io)
	root.SetErr(c.io)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.vaultDir, "vault-dir", "d", defaultVaultDir, "local vault directory")
	flags.StringVar(&c.pinFile, "pin-file", "", "path to a file containing the PIN")
	flags.StringVarP(&c.server, "server", "s", "", "cvvault server URL (local vault is used when empty)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.listCommand(),
		c.createCommand(),
		c.showCommand(),
		c.saveCommand(),
		c.renameCommand(),
		c.deleteCommand(),
		c.rekeyCommand(),
	)
	return root
}

// withVault открывает хранилище, выполняет fn и закрывает сессию
func (c *Cli) withVault(ctx context.Context, fn func(context.Context, Vault) error) (err error) {
	v, err := c.openVault(ctx)
	if err != nil {
		return userError(err)
	}
	defer func() {
		if cerr := v.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return userError(fn(ctx, v))
}
