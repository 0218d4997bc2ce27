package wire

import (
	"consultancy-cms/internal/adaptor"
	"consultancy-cms/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireObjects(
	r chi.Router,
	objectHandler *adaptor.ObjectHandler,
	sessions middleware.SessionValidator,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/objects", func(r chi.Router) {
		r.Use(middleware.AuthSession(sessions, log))

		r.Post("/upload", objectHandler.Upload)
		r.Put("/set-acl", objectHandler.SetACL)
	})

	// ==================== PUBLIC ROUTES ====================
	// Private objects are served only to a signed-in admin.
	r.With(middleware.OptionalSession(sessions, log)).Get("/objects/*", objectHandler.Download)
}
