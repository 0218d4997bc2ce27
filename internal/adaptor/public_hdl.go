package adaptor

import (
	"net/http"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/usecase"
	"consultancy-cms/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PublicHandler serves the unauthenticated site routes.
type PublicHandler struct {
	service usecase.ContentService
	log     *zap.Logger
}

func NewPublicHandler(service usecase.ContentService, log *zap.Logger) *PublicHandler {
	return &PublicHandler{
		service: service,
		log:     log.With(zap.String("handler", "public")),
	}
}

// List returns the handler for GET /api/<kind>
func (h *PublicHandler) List(kind *entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.service.List(r.Context(), kind, queryFilters(r), true)
		if err != nil {
			handleServiceError(w, h.log, err, "list "+kind.Name)
			return
		}
		utils.ResponseSuccess(w, "OK", records)
	}
}

// Lookup returns the handler for GET /api/<kind>/{slug}
func (h *PublicHandler) Lookup(kind *entity.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.service.GetBySlug(r.Context(), kind, chi.URLParam(r, "slug"))
		if err != nil {
			handleServiceError(w, h.log, err, "get "+kind.Label)
			return
		}
		utils.ResponseSuccess(w, "OK", rec)
	}
}

// Contact handles POST /api/contact
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil || payload == nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	rec, err := h.service.Submit(r.Context(), entity.ContactSubmission, payload)
	if err != nil {
		handleServiceError(w, h.log, err, "submit contact")
		return
	}

	utils.ResponseCreated(w, "Thank you, we will be in touch soon", map[string]any{"id": rec.ID()})
}
