package cli

import (
	"context"

	"github.com/spf13/cobra"
)

const defaultDocumentName = "Untitled"

func (c *Cli) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create an empty document",
		Long: `Creates an empty CV document sealed with your PIN and prints its id.
Without a name the document is called "Untitled".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultDocumentName
			if len(args) == 1 {
				name = args[0]
			}
			return c.withVault(cmd.Context(), func(ctx context.Context, v Vault) error {
				return c.runCreate(ctx, v, name)
			})
		},
	}
}

func (c *Cli) runCreate(ctx context.Context, v Vault, name string) error {
	var id string
	err := c.withSpinner("Encrypting document...", func() error {
		var err error
		id, err = v.Create(ctx, name)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Printf("%s Document created: %s\n", success("✓"), highlight(id))
	return nil
}
