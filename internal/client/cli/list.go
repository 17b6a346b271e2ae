package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/cvvault/internal/models"
)

func (c *Cli) listCommand() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents that belong to your PIN",
		Long: `Lists documents stored under your PIN, newest first.

By default only ids and timestamps are shown and nothing is decrypted.
With --detailed every document is decrypted to show its display name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v Vault) error {
				return c.runList(ctx, v, detailed)
			})
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "decrypt documents to show display names")
	return cmd
}

func (c *Cli) runList(ctx context.Context, v Vault, detailed bool) error {
	var files []models.FileInfo
	err := c.withSpinner("Reading vault...", func() error {
		var err error
		files, err = v.List(ctx, detailed)
		return err
	})
	if err != nil {
		return err
	}

	if len(files) == 0 {
		c.io.Println("No documents found.")
		c.io.Println("Use 'cvvault create <name>' to add your first document.")
		return nil
	}

	c.io.Printf("Found %d document(s):\n\n", len(files))
	for i, f := range files {
		if detailed {
			c.io.Printf("%d. %s\n", i+1, highlight(f.Name))
			c.io.Printf("   ID:       %s\n", f.ID)
		} else {
			c.io.Printf("%d. %s\n", i+1, highlight(f.ID))
		}
		c.io.Printf("   Created:  %s\n", formatTime(f.Created))
		c.io.Printf("   Modified: %s\n", formatTime(f.Modified))
	}

	if !detailed {
		c.io.Println()
		c.io.Println(muted("Names are encrypted. Use 'cvvault list --detailed' to show them."))
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}
