package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "admin_session"

// SessionValidator resolves a presented token to a live session.
// Unknown, expired or forged tokens return an error matching
// entity.ErrUnauthorized.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*entity.Session, error)
}

// SessionToken reads the session token from the cookie, falling back to
// an Authorization: Bearer header for API clients.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthSession rejects the request with 401 unless it carries a valid
// session, and otherwise attaches the identity and token to the context.
func AuthSession(sessions SessionValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			session, err := sessions.Validate(r.Context(), token)
			if err != nil {
				if errors.Is(err, entity.ErrUnauthorized) {
					logger.Debug("Rejected session", zap.String("path", r.URL.Path), zap.Error(err))
					utils.ResponseUnauthorized(w, "Invalid or expired session")
					return
				}
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			ctx := utils.SetIdentityContext(r.Context(), session.Identity)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches the identity when a valid session is present
// and lets the request through either way.
func OptionalSession(sessions SessionValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.Validate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, entity.ErrUnauthorized) {
					logger.Warn("Session lookup failed on optional route", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetIdentityContext(r.Context(), session.Identity)
			ctx = utils.SetTokenContext(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
