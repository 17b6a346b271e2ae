package handlers

import (
	"context"
	"time"

	"github.com/iudanet/cvvault/internal/models"
	"github.com/iudanet/cvvault/internal/vault"
)

// DocumentStore определяет операции над зашифрованными документами
type DocumentStore interface {
	ListDetailed(ctx context.Context, creds vault.Credentials) ([]models.FileInfo, error)
	Create(ctx context.Context, creds vault.Credentials, displayName string) (string, error)
	Open(ctx context.Context, creds vault.Credentials, id string) (*models.Document, error)
	Save(ctx context.Context, creds vault.Credentials, id string, doc *models.Document) error
	Rename(ctx context.Context, creds vault.Credentials, id, newName string) error
	Delete(ctx context.Context, pinHash, id string) (bool, error)
	Rekey(ctx context.Context, oldCreds, newCreds vault.Credentials) (int, error)
}

// SessionStore определяет хранилище сессий
type SessionStore interface {
	Create(creds vault.Credentials) (string, time.Time, error)
	Get(id string) (vault.Credentials, error)
	Update(id string, creds vault.Credentials) error
	Delete(id string)
}

// AttemptGuard ограничивает подбор PIN.
// Acquire удерживается на время Check, попытки и Fail.
type AttemptGuard interface {
	Acquire(client string) func()
	Check(ctx context.Context, client string) (time.Duration, error)
	Fail(ctx context.Context, client string) error
}
