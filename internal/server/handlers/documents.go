package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/cvvault/pkg/api"
)

// defaultDocumentName используется, если при создании имя не задано
const defaultDocumentName = "Untitled"

// DocumentHandler обрабатывает операции над документами текущей сессии
type DocumentHandler struct {
	store  DocumentStore
	logger *slog.Logger
	gate   gate
}

// NewDocumentHandler создает новый handler документов
func NewDocumentHandler(logger *slog.Logger, store DocumentStore, guard AttemptGuard) *DocumentHandler {
	return &DocumentHandler{
		store:  store,
		logger: logger,
		gate:   gate{guard: guard, logger: logger},
	}
}

// List обрабатывает GET /api/v1/files
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	creds, ok := GetCredentials(r.Context())
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	files, err := h.store.ListDetailed(r.Context(), creds)
	if err != nil {
		h.gate.vaultError(w, r, "list documents", err)
		return
	}

	sendJSON(w, h.logger, api.FilesResponse{Files: api.FromModels(files)}, http.StatusOK)
}

// Create обрабатывает POST /api/v1/files
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	creds, ok := GetCredentials(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateFileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, h.logger, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultDocumentName
	}

	id, err := h.store.Create(ctx, creds, name)
	if err != nil {
		h.gate.vaultError(w, r, "create document", err)
		return
	}

	sendJSON(w, h.logger, api.CreateFileResponse{ID: id}, http.StatusCreated)
}

// Get обрабатывает GET /api/v1/files/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	creds, ok := GetCredentials(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}
	release, ok := h.gate.allow(w, r)
	if !ok {
		return
	}
	defer release()

	id := r.PathValue("id")
	doc, err := h.store.Open(ctx, creds, id)
	if err != nil {
		h.gate.vaultError(w, r, "open document", err)
		return
	}

	sendJSON(w, h.logger, api.DocumentResponse{ID: id, Profile: doc}, http.StatusOK)
}

// Save обрабатывает PUT /api/v1/files/{id}
func (h *DocumentHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	creds, ok := GetCredentials(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.SaveFileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode save request", slog.Any("error", err))
		sendDecodeError(w, h.logger, err)
		return
	}
	if req.Profile == nil {
		sendError(w, h.logger, "profile is required", http.StatusBadRequest)
		return
	}
	release, ok := h.gate.allow(w, r)
	if !ok {
		return
	}
	defer release()

	if err := h.store.Save(ctx, creds, r.PathValue("id"), req.Profile); err != nil {
		h.gate.vaultError(w, r, "save document", err)
		return
	}

	sendJSON(w, h.logger, api.StatusResponse{Status: "saved"}, http.StatusOK)
}

// Rename обрабатывает POST /api/v1/files/{id}/rename
func (h *DocumentHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	creds, ok := GetCredentials(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.RenameFileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, h.logger, err)
		return
	}
	release, ok := h.gate.allow(w, r)
	if !ok {
		return
	}
	defer release()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultDocumentName
	}

	if err := h.store.Rename(ctx, creds, r.PathValue("id"), name); err != nil {
		h.gate.vaultError(w, r, "rename document", err)
		return
	}

	sendJSON(w, h.logger, api.StatusResponse{Status: "renamed"}, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/files/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	creds, ok := GetCredentials(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	deleted, err := h.store.Delete(ctx, creds.PinHash, r.PathValue("id"))
	if err != nil {
		h.gate.vaultError(w, r, "delete document", err)
		return
	}
	if !deleted {
		sendError(w, h.logger, "document not found", http.StatusNotFound)
		return
	}

	sendJSON(w, h.logger, api.StatusResponse{Status: "deleted"}, http.StatusOK)
}
