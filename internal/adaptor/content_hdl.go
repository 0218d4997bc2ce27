package adaptor

import (
	"errors"
	"io"
	"net/http"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/dto/request"
	"consultancy-cms/internal/usecase"
	"consultancy-cms/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContentHandler serves the admin CRUD routes for every content kind.
type ContentHandler struct {
	service usecase.ContentService
	log     *zap.Logger
}

func NewContentHandler(service usecase.ContentService, log *zap.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		log:     log.With(zap.String("handler", "content")),
	}
}

func (h *ContentHandler) kind(w http.ResponseWriter, r *http.Request) (*entity.Kind, bool) {
	kind, err := h.service.Kind(chi.URLParam(r, "kind"))
	if err != nil {
		utils.ResponseNotFound(w, "Unknown content type")
		return nil, false
	}
	return kind, true
}

// List handles GET /api/admin/{kind}
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	records, err := h.service.List(r.Context(), kind, queryFilters(r), false)
	if err != nil {
		handleServiceError(w, h.log, err, "list "+kind.Name)
		return
	}

	utils.ResponseSuccess(w, "OK", records)
}

// Get handles GET /api/admin/{kind}/{id}
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	rec, err := h.service.GetByID(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get "+kind.Label)
		return
	}

	utils.ResponseSuccess(w, "OK", rec)
}

// Create handles POST /api/admin/{kind}
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil || payload == nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	rec, err := h.service.Create(r.Context(), kind, payload)
	if err != nil {
		handleServiceError(w, h.log, err, "create "+kind.Label)
		return
	}

	utils.ResponseCreated(w, "Created", rec)
}

// Update handles PUT /api/admin/{kind}/{id}
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil || payload == nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	rec, err := h.service.Update(r.Context(), kind, chi.URLParam(r, "id"), payload)
	if err != nil {
		handleServiceError(w, h.log, err, "update "+kind.Label)
		return
	}

	utils.ResponseSuccess(w, "Updated", rec)
}

// Delete handles DELETE /api/admin/{kind}/{id}
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete "+kind.Label)
		return
	}

	utils.ResponseNoContent(w)
}

// MarkRead handles PATCH /api/admin/{kind}/{id}/read. An empty body marks
// the record read.
func (h *ContentHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	read := true
	var req request.MarkReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if !errors.Is(err, io.EOF) {
			utils.ResponseBadRequest(w, "Invalid request body", nil)
			return
		}
	} else if req.IsRead != nil {
		read = *req.IsRead
	}

	rec, err := h.service.MarkRead(r.Context(), kind, chi.URLParam(r, "id"), read)
	if err != nil {
		handleServiceError(w, h.log, err, "mark "+kind.Label+" read")
		return
	}

	utils.ResponseSuccess(w, "Updated", rec)
}
