package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iudanet/cvvault/internal/client/api"
	"github.com/iudanet/cvvault/internal/models"
	"github.com/iudanet/cvvault/internal/vault"
)

// errOpen единое сообщение для неверного PIN и поврежденного файла
var errOpen = errors.New("could not open document: check your PIN")

// Vault операции над документами одного PIN.
// Реализации: локальный каталог хранилища и удаленный сервер.
type Vault interface {
	List(ctx context.Context, detailed bool) ([]models.FileInfo, error)
	Create(ctx context.Context, name string) (string, error)
	Open(ctx context.Context, id string) (*models.Document, error)
	Save(ctx context.Context, id string, doc *models.Document) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) (bool, error)
	Rekey(ctx context.Context, newPIN string) (int, error)
	Close(ctx context.Context) error
}

// openVault запрашивает PIN и открывает хранилище: локальное или через --server
func (c *Cli) openVault(ctx context.Context) (Vault, error) {
	pin, err := c.readPIN()
	if err != nil {
		return nil, err
	}

	if c.server != "" {
		c.logger.Debug("using remote vault", "server", c.server)
		return c.openRemote(ctx, pin)
	}

	creds, err := vault.NewCredentials(pin)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("using local vault", "dir", c.vaultDir)
	return &localVault{store: vault.NewStore(c.vaultDir, c.logger), creds: creds}, nil
}

func (c *Cli) openRemote(ctx context.Context, pin string) (Vault, error) {
	client := api.NewClient(c.server)

	stop := c.startSpinner("Opening session...")
	_, err := client.Login(ctx, pin)
	stop()
	if err != nil {
		return nil, err
	}
	return &remoteVault{client: client}, nil
}

// userError переводит ошибки хранилища в сообщения для пользователя
func userError(err error) error {
	switch {
	case err == nil:
		return nil
	case vault.IsOpenFailure(err):
		return errOpen
	case errors.Is(err, vault.ErrNotFound):
		return errors.New("document not found")
	case errors.Is(err, vault.ErrPayloadTooLarge):
		return errors.New("document is too large")
	default:
		return err
	}
}

type localVault struct {
	store *vault.Store
	creds vault.Credentials
}

func (v *localVault) List(ctx context.Context, detailed bool) ([]models.FileInfo, error) {
	if detailed {
		return v.store.ListDetailed(ctx, v.creds)
	}
	return v.store.List(ctx, v.creds.PinHash)
}

func (v *localVault) Create(ctx context.Context, name string) (string, error) {
	return v.store.Create(ctx, v.creds, name)
}

func (v *localVault) Open(ctx context.Context, id string) (*models.Document, error) {
	return v.store.Open(ctx, v.creds, id)
}

func (v *localVault) Save(ctx context.Context, id string, doc *models.Document) error {
	return v.store.Save(ctx, v.creds, id, doc)
}

func (v *localVault) Rename(ctx context.Context, id, name string) error {
	return v.store.Rename(ctx, v.creds, id, name)
}

func (v *localVault) Delete(ctx context.Context, id string) (bool, error) {
	return v.store.Delete(ctx, v.creds.PinHash, id)
}

func (v *localVault) Rekey(ctx context.Context, newPIN string) (int, error) {
	newCreds, err := vault.NewCredentials(newPIN)
	if err != nil {
		return 0, err
	}
	moved, err := v.store.Rekey(ctx, v.creds, newCreds)
	if err != nil {
		return 0, err
	}
	v.creds = newCreds
	return moved, nil
}

func (v *localVault) Close(context.Context) error {
	return nil
}

type remoteVault struct {
	client *api.Client
}

// List на сервере всегда расшифровывает имена
func (v *remoteVault) List(ctx context.Context, _ bool) ([]models.FileInfo, error) {
	files, err := v.client.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		result = append(result, models.FileInfo{
			ID:       f.ID,
			Name:     f.Name,
			Created:  f.Created,
			Modified: f.Modified,
		})
	}
	return result, nil
}

func (v *remoteVault) Create(ctx context.Context, name string) (string, error) {
	return v.client.CreateFile(ctx, name)
}

func (v *remoteVault) Open(ctx context.Context, id string) (*models.Document, error) {
	return v.client.GetFile(ctx, id)
}

func (v *remoteVault) Save(ctx context.Context, id string, doc *models.Document) error {
	return v.client.SaveFile(ctx, id, doc)
}

func (v *remoteVault) Rename(ctx context.Context, id, name string) error {
	return v.client.RenameFile(ctx, id, name)
}

func (v *remoteVault) Delete(ctx context.Context, id string) (bool, error) {
	err := v.client.DeleteFile(ctx, id)
	if api.IsStatus(err, http.StatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (v *remoteVault) Rekey(ctx context.Context, newPIN string) (int, error) {
	resp, err := v.client.Rekey(ctx, newPIN)
	if err != nil {
		return 0, err
	}
	return resp.Moved, nil
}

func (v *remoteVault) Close(ctx context.Context) error {
	if err := v.client.Logout(ctx); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}
