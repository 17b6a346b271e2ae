package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *Cli) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Change the display name of a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v Vault) error {
				return c.runRename(ctx, v, args[0], args[1])
			})
		},
	}
}

func (c *Cli) runRename(ctx context.Context, v Vault, id, name string) error {
	err := c.withSpinner("Renaming document...", func() error {
		return v.Rename(ctx, id, name)
	})
	if err != nil {
		return err
	}

	c.io.Printf("%s Document %s renamed to %q\n", success("✓"), highlight(id), name)
	return nil
}
