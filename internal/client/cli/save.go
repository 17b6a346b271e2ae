package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/cvvault/internal/crypto"
	"github.com/iudanet/cvvault/internal/models"
)

func (c *Cli) saveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <id> <file.json>",
		Short: "Replace a document with the contents of a JSON file",
		Long: `Encrypts the profile from a JSON file and stores it under the given id.
The creation time of an existing document is kept, the modification time is
set to now. An empty _meta.name keeps the current display name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocumentFile(args[1])
			if err != nil {
				return err
			}
			return c.withVault(cmd.Context(), func(ctx context.Context, v Vault) error {
				return c.runSave(ctx, v, args[0], doc)
			})
		},
	}
}

func (c *Cli) runSave(ctx context.Context, v Vault, id string, doc *models.Document) error {
	err := c.withSpinner("Encrypting document...", func() error {
		return v.Save(ctx, id, doc)
	})
	if err != nil {
		return err
	}

	c.io.Printf("%s Document saved: %s\n", success("✓"), highlight(id))
	return nil
}

// readDocumentFile читает профиль из JSON файла.
// Неизвестные поля отклоняются, чтобы опечатка в ключе не теряла данные молча.
func readDocumentFile(path string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	// файл больше лимита все равно не будет принят хранилищем
	data, err := io.ReadAll(io.LimitReader(f, crypto.MaxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > crypto.MaxPayloadSize {
		return nil, errors.New("document is too large")
	}

	var doc models.Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid document in %s: %w", path, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid document in %s: unexpected data after profile", path)
	}
	return &doc, nil
}
