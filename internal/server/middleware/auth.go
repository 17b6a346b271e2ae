package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/cvvault/internal/server/handlers"
)

// SessionAuthMiddleware создает middleware для проверки токена сессии.
// Токен несет только id сессии; PIN берется из хранилища сессий и
// кладется в контекст запроса.
func SessionAuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig, sessions handlers.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.DebugContext(ctx, "missing Authorization header")
				unauthorized(w, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				// Сам заголовок не логируем: в нем может быть токен
				logger.WarnContext(ctx, "invalid Authorization header format")
				unauthorized(w, "invalid token format")
				return
			}

			sessionID, err := handlers.ValidateSessionToken(jwtConfig, tokenString)
			if err != nil {
				logger.WarnContext(ctx, "invalid session token", slog.Any("error", err))
				unauthorized(w, "invalid token")
				return
			}

			creds, err := sessions.Get(sessionID)
			if err != nil {
				logger.InfoContext(ctx, "session not found or expired")
				unauthorized(w, "session expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithSession(ctx, sessionID, creds)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="cvvault"`)
	writeError(w, message, http.StatusUnauthorized)
}
