package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/iudanet/cvvault/internal/vault"
	"github.com/iudanet/cvvault/pkg/api"
)

// MaxRequestBodySize ограничивает размер тела запроса (документ до 1 МБ плюс фото в base64)
const MaxRequestBodySize = 2 << 20

// openFailureMessage одинаково для неверного PIN и поврежденного файла
const openFailureMessage = "could not open document: check your PIN"

// sendJSON отправляет JSON ответ
func sendJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(w, logger, resp, statusCode)
}

// decodeJSON читает тело запроса с ограничением размера и запретом неизвестных полей
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// sendDecodeError отвечает 413 для слишком большого тела и 400 для остального
func sendDecodeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		sendError(w, logger, fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	sendError(w, logger, "invalid request body", http.StatusBadRequest)
}

// vaultErrorStatus сопоставляет ошибки хранилища HTTP статусам и сообщениям для клиента
func vaultErrorStatus(err error) (int, string) {
	switch {
	case vault.IsOpenFailure(err):
		return http.StatusForbidden, openFailureMessage
	case errors.Is(err, vault.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, vault.ErrNotFound):
		return http.StatusNotFound, "document not found"
	case errors.Is(err, vault.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "document is too large"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ClientIP возвращает IP клиента из RemoteAddr.
// Заголовки прокси не учитываются: ключ блокировки не должен подделываться клиентом.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
