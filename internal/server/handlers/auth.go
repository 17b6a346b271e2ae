package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/cvvault/internal/vault"
	"github.com/iudanet/cvvault/pkg/api"
)

// AuthHandler обрабатывает вход по PIN, выход и смену PIN.
// Учетных записей нет: любой PIN открывает свой каталог хранилища.
type AuthHandler struct {
	store     DocumentStore
	sessions  SessionStore
	logger    *slog.Logger
	gate      gate
	jwtConfig JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, store DocumentStore, sessions SessionStore, guard AttemptGuard, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		store:     store,
		sessions:  sessions,
		logger:    logger,
		gate:      gate{guard: guard, logger: logger},
		jwtConfig: jwtConfig,
	}
}

// Login обрабатывает POST /api/v1/auth/login
// Открывает сессию и возвращает документы, которые расшифровываются этим PIN.
// Вход с PIN, под которым нет ни одного документа, засчитывается как промах:
// так перебор PIN упирается в блокировку.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendDecodeError(w, h.logger, err)
		return
	}

	creds, err := vault.NewCredentials(req.PIN)
	if err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	release, ok := h.gate.allow(w, r)
	if !ok {
		return
	}
	defer release()

	files, err := h.store.ListDetailed(ctx, creds)
	if err != nil {
		h.gate.vaultError(w, r, "login", err)
		return
	}

	if len(files) == 0 {
		h.gate.miss(r)
	}

	sessionID, expiresAt, err := h.sessions.Create(creds)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	token, err := GenerateSessionToken(h.jwtConfig, sessionID, now, expiresAt)
	if err != nil {
		h.sessions.Delete(sessionID)
		h.logger.ErrorContext(ctx, "failed to generate session token", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "session opened", slog.Int("documents", len(files)))

	resp := api.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(expiresAt.Sub(now).Seconds()),
		Files:       api.FromModels(files),
	}
	sendJSON(w, h.logger, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionID(r.Context())
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	h.sessions.Delete(sessionID)
	h.logger.InfoContext(r.Context(), "session closed")

	sendJSON(w, h.logger, api.StatusResponse{Status: "ok"}, http.StatusOK)
}

// Rekey обрабатывает POST /api/v1/auth/rekey
// Перешифровывает все документы под новый PIN и переключает сессию на него.
func (h *AuthHandler) Rekey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	creds, ok := GetCredentials(ctx)
	sessionID, okID := GetSessionID(ctx)
	if !ok || !okID {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.RekeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode rekey request", slog.Any("error", err))
		sendDecodeError(w, h.logger, err)
		return
	}

	newCreds, err := vault.NewCredentials(req.NewPIN)
	if err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	release, ok := h.gate.allow(w, r)
	if !ok {
		return
	}
	defer release()

	moved, err := h.store.Rekey(ctx, creds, newCreds)
	if err != nil {
		h.gate.vaultError(w, r, "rekey", err)
		return
	}

	if err := h.sessions.Update(sessionID, newCreds); err != nil {
		// Документы уже под новым PIN, старая сессия больше ничего не откроет
		h.sessions.Delete(sessionID)
		h.logger.WarnContext(ctx, "session expired during rekey", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "PIN changed", slog.Int("documents", moved))
	sendJSON(w, h.logger, api.RekeyResponse{Moved: moved}, http.StatusOK)
}
