package adaptor

import (
	"errors"
	"net/http"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/dto/request"
	"consultancy-cms/internal/dto/response"
	"consultancy-cms/internal/usecase"
	"consultancy-cms/pkg/middleware"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service      usecase.AuthService
	cookieSecure bool
	log          *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieSecure: cookieSecure,
		log:          log.With(zap.String("handler", "auth")),
	}
}

// SendVerification handles POST /api/admin/send-verification
func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req request.SendVerificationRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		respondInvalid(w, h.log, "send verification", validationErrors)
		return
	}

	expiresAt, err := h.service.RequestCode(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, entity.ErrUnauthorized) {
			utils.ResponseUnauthorizedReason(w, "Access denied. This email is not authorized for admin access.", "not_allowed")
			return
		}
		handleServiceError(w, h.log, err, "send verification")
		return
	}

	utils.ResponseSuccess(w, "Verification code sent", response.VerificationSentResponse{
		Email:     utils.NormalizeEmail(req.Email),
		ExpiresAt: expiresAt,
	})
}

// VerifyLogin handles POST /api/admin/verify-login
func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyLoginRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		respondInvalid(w, h.log, "verify login", validationErrors)
		return
	}

	issued, err := h.service.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		handleServiceError(w, h.log, err, "verify login")
		return
	}

	http.SetCookie(w, h.sessionCookie(issued.Token, issued.Session.ExpiresAt))
	utils.ResponseSuccess(w, "Login successful", response.SessionToResponse(issued.Session))
}

// Logout handles POST /api/admin/logout. The route runs behind
// OptionalSession, so only a validated token reaches the service.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := utils.GetTokenFromContext(r.Context()); ok {
		if err := h.service.Logout(r.Context(), token); err != nil {
			handleServiceError(w, h.log, err, "logout")
			return
		}
	}

	http.SetCookie(w, h.clearedCookie())
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// Me handles GET /api/admin/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	utils.ResponseSuccess(w, "Authenticated", identity)
}

func (h *AuthHandler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
