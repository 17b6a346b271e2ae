package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func (c *Cli) deleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Long: `Deletes a document from your vault. The file is removed from disk and
cannot be recovered. Asks for confirmation unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v Vault) error {
				return c.runDelete(ctx, v, args[0], force)
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func (c *Cli) runDelete(ctx context.Context, v Vault, id string, force bool) error {
	if !force {
		c.io.Printf("%s This permanently deletes document %s.\n", warning("Warning:"), highlight(id))
		confirm, err := c.io.ReadInput("Are you sure? (yes/no): ")
		if err != nil {
			return err
		}
		confirm = strings.ToLower(strings.TrimSpace(confirm))
		if confirm != "yes" && confirm != "y" {
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	deleted, err := v.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.New("document not found")
	}

	c.io.Printf("%s Document deleted: %s\n", success("✓"), highlight(id))
	return nil
}
