package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/iudanet/cvvault/internal/models"
)

func (c *Cli) showCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Decrypt a document and print it as JSON",
		Long: `Decrypts a document and prints it as indented JSON.
With --output the JSON is written to a file readable only by you,
ready to be edited and passed back to 'cvvault save'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withVault(cmd.Context(), func(ctx context.Context, v Vault) error {
				return c.runShow(ctx, v, args[0], output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	return cmd
}

func (c *Cli) runShow(ctx context.Context, v Vault, id, output string) error {
	var doc *models.Document
	err := c.withSpinner("Decrypting document...", func() error {
		var err error
		doc, err = v.Open(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = c.io.Write(data)
		return err
	}

	// расшифрованный документ не должен быть доступен другим пользователям
	if err := renameio.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	c.io.Printf("%s Document written to %s\n", success("✓"), highlight(output))
	return nil
}
