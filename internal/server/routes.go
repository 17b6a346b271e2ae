package server

import (
	"net/http"
	"time"

	"github.com/iudanet/cvvault/internal/server/handlers"
	"github.com/iudanet/cvvault/internal/server/middleware"
)

const loginPath = "/api/v1/auth/login"

// routes регистрирует маршруты и оборачивает их в цепочку middleware:
// recovery → logging → rate limit → session auth (для защищенных маршрутов)
func (app *App) routes(jwtConfig handlers.JWTConfig, version string) (http.Handler, func()) {
	health := handlers.NewHealthHandler(app.logger, version)
	auth := handlers.NewAuthHandler(app.logger, app.store, app.sessions, app.guard, jwtConfig)
	docs := handlers.NewDocumentHandler(app.logger, app.store, app.guard)

	requireSession := middleware.SessionAuthMiddleware(app.logger, jwtConfig, app.sessions)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireSession(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("POST "+loginPath, auth.Login)
	mux.Handle("POST /api/v1/auth/logout", protected(auth.Logout))
	mux.Handle("POST /api/v1/auth/rekey", protected(auth.Rekey))

	mux.Handle("GET /api/v1/files", protected(docs.List))
	mux.Handle("POST /api/v1/files", protected(docs.Create))
	mux.Handle("GET /api/v1/files/{id}", protected(docs.Get))
	mux.Handle("PUT /api/v1/files/{id}", protected(docs.Save))
	mux.Handle("POST /api/v1/files/{id}/rename", protected(docs.Rename))
	mux.Handle("DELETE /api/v1/files/{id}", protected(docs.Delete))

	rateLimit, stop := middleware.RateLimitByPathMiddleware(
		[]middleware.PathRateLimit{
			{Path: loginPath, Rate: app.config.LoginRatePerMinute, Window: time.Minute},
		},
		// общий лимит для остальных маршрутов
		app.config.LoginRatePerMinute*30, time.Minute, app.logger,
	)

	var handler http.Handler = mux
	handler = rateLimit(handler)
	handler = middleware.LoggingWithSkip(app.logger, []string{"/health"})(handler)
	handler = middleware.RecoveryMiddleware(app.logger)(handler)

	return handler, stop
}
