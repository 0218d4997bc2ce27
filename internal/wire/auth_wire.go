package wire

import (
	"consultancy-cms/internal/adaptor"
	"consultancy-cms/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireAuth registers static paths so they win over /api/admin/{kind}.
func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	sessions middleware.SessionValidator,
	limiter *middleware.RateLimiter,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.With(limiter.Limit).Post("/api/admin/send-verification", authHandler.SendVerification)
	r.With(limiter.Limit).Post("/api/admin/verify-login", authHandler.VerifyLogin)

	// Logout clears the cookie even when the session is already gone
	r.With(middleware.OptionalSession(sessions, log)).Post("/api/admin/logout", authHandler.Logout)

	// ==================== PROTECTED ROUTES ====================
	r.With(middleware.AuthSession(sessions, log)).Get("/api/admin/me", authHandler.Me)
}
