package handlers

import (
	"context"

	"github.com/iudanet/cvvault/internal/vault"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// CredentialsKey ключ для хранения PIN и его хеша в контексте запроса
	CredentialsKey contextKey = "credentials"
	// SessionIDKey ключ для хранения id сессии в контексте
	SessionIDKey contextKey = "session_id"
)

// WithSession кладет данные сессии в контекст запроса
func WithSession(ctx context.Context, sessionID string, creds vault.Credentials) context.Context {
	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	return context.WithValue(ctx, CredentialsKey, creds)
}

// GetCredentials извлекает учетные данные сессии из контекста запроса
func GetCredentials(ctx context.Context) (vault.Credentials, bool) {
	creds, ok := ctx.Value(CredentialsKey).(vault.Credentials)
	return creds, ok
}

// GetSessionID извлекает id сессии из контекста запроса
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok
}
