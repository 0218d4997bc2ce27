package wire

import (
	"consultancy-cms/internal/adaptor"
	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wirePublic(
	r chi.Router,
	publicHandler *adaptor.PublicHandler,
	limiter *middleware.RateLimiter,
) {
	// ==================== PUBLIC ROUTES ====================
	for _, kind := range entity.Kinds {
		if !kind.Access.PublicRead {
			continue
		}
		if kind == entity.SiteSetting {
			r.Get("/api/settings/{slug}", publicHandler.Lookup(kind))
			continue
		}
		r.Get("/api/"+kind.Name, publicHandler.List(kind))
		if kind == entity.Service || kind == entity.CaseStudy {
			r.Get("/api/"+kind.Name+"/{slug}", publicHandler.Lookup(kind))
		}
	}

	r.With(limiter.Limit).Post("/api/contact", publicHandler.Contact)
}
