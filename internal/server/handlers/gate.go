package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
)

// gate связывает ответы хранилища с учетом неудачных попыток PIN
type gate struct {
	guard  AttemptGuard
	logger *slog.Logger
}

// allow захватывает попытку клиента и отвечает 429, если клиент заблокирован.
// При успехе возвращает release, который вызывается после учета результата.
func (g gate) allow(w http.ResponseWriter, r *http.Request) (func(), bool) {
	ctx := r.Context()
	client := ClientIP(r)

	release := g.guard.Acquire(client)

	wait, err := g.guard.Check(ctx, client)
	if err != nil {
		release()
		g.logger.ErrorContext(ctx, "failed to check attempt ledger", slog.Any("error", err))
		sendError(w, g.logger, "internal server error", http.StatusInternalServerError)
		return nil, false
	}
	if wait > 0 {
		release()
		g.logger.WarnContext(ctx, "request from locked out client", slog.String("client", client))
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		sendError(w, g.logger, "too many failed PIN attempts, try again later", http.StatusTooManyRequests)
		return nil, false
	}
	return release, true
}

// miss засчитывает неудачную попытку клиента.
// Успешные попытки счетчик не сбрасывают: он истекает вместе с окном.
func (g gate) miss(r *http.Request) {
	if err := g.guard.Fail(r.Context(), ClientIP(r)); err != nil {
		g.logger.ErrorContext(r.Context(), "failed to record PIN attempt", slog.Any("error", err))
	}
}

// vaultError отвечает клиенту по ошибке хранилища. Неудачное открытие документа
// засчитывается как попытка подбора PIN.
func (g gate) vaultError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	status, message := vaultErrorStatus(err)

	switch {
	case status == http.StatusForbidden:
		g.miss(r)
		g.logger.WarnContext(ctx, op+": document did not open", slog.Any("error", err))
	case status >= http.StatusInternalServerError:
		g.logger.ErrorContext(ctx, op+" failed", slog.Any("error", err))
	default:
		g.logger.InfoContext(ctx, op+" rejected", slog.Int("status", status), slog.Any("error", err))
	}

	sendError(w, g.logger, message, status)
}
