package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *Cli) rekeyCommand() *cobra.Command {
	var newPINFile string

	cmd := &cobra.Command{
		Use:   "rekey",
		Short: "Change your PIN and re-encrypt all documents",
		Long: `Decrypts every document with the current PIN and seals it again with
a new PIN. Nothing is written unless all documents open with the current PIN.

The new PIN is read from --new-pin-file or asked twice interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v Vault) error {
				return c.runRekey(ctx, v, newPINFile)
			})
		},
	}
	cmd.Flags().StringVar(&newPINFile, "new-pin-file", "", "path to a file containing the new PIN")
	return cmd
}

func (c *Cli) runRekey(ctx context.Context, v Vault, newPINFile string) error {
	newPIN, err := c.readNewPIN(newPINFile)
	if err != nil {
		return err
	}

	var moved int
	err = c.withSpinner("Re-encrypting documents...", func() error {
		var err error
		moved, err = v.Rekey(ctx, newPIN)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Printf("%s PIN changed, %d document(s) re-encrypted\n", success("✓"), moved)
	if c.getenv(PinEnv) != "" {
		c.io.Println(warning("Remember to update " + PinEnv + "."))
	}
	return nil
}
