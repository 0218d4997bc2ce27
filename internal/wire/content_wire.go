package wire

import (
	"consultancy-cms/internal/adaptor"
	"consultancy-cms/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireContent(
	r chi.Router,
	contentHandler *adaptor.ContentHandler,
	sessions middleware.SessionValidator,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/{kind}", func(r chi.Router) {
		r.Use(middleware.AuthSession(sessions, log))

		r.Get("/", contentHandler.List)
		r.Post("/", contentHandler.Create)
		r.Get("/{id}", contentHandler.Get)
		r.Put("/{id}", contentHandler.Update)
		r.Delete("/{id}", contentHandler.Delete)
		r.Patch("/{id}/read", contentHandler.MarkRead)
	})
}
