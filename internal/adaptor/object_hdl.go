package adaptor

import (
	"net/http"

	"consultancy-cms/internal/dto/request"
	"consultancy-cms/internal/dto/response"
	"consultancy-cms/internal/usecase"
	"consultancy-cms/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ObjectHandler struct {
	service usecase.UploadService
	log     *zap.Logger
}

func NewObjectHandler(service usecase.UploadService, log *zap.Logger) *ObjectHandler {
	return &ObjectHandler{
		service: service,
		log:     log.With(zap.String("handler", "object")),
	}
}

// Upload handles POST /api/objects/upload
func (h *ObjectHandler) Upload(w http.ResponseWriter, r *http.Request) {
	grant, err := h.service.GrantUpload(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "grant upload")
		return
	}

	utils.ResponseSuccess(w, "Upload URL issued", response.UploadGrantToResponse(grant))
}

// SetACL handles PUT /api/objects/set-acl
func (h *ObjectHandler) SetACL(w http.ResponseWriter, r *http.Request) {
	var req request.SetACLRequest

	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		respondInvalid(w, h.log, "set object acl", validationErrors)
		return
	}

	path, err := h.service.SetVisibility(r.Context(), req.ObjectURL, req.Visibility)
	if err != nil {
		handleServiceError(w, h.log, err, "set object acl")
		return
	}

	utils.ResponseSuccess(w, "Visibility updated", response.ObjectACLResponse{ObjectPath: path})
}

// Download handles GET /objects/* by redirecting to a presigned URL.
func (h *ObjectHandler) Download(w http.ResponseWriter, r *http.Request) {
	signed, err := h.service.ResolveDownload(r.Context(), "/objects/"+chi.URLParam(r, "*"))
	if err != nil {
		handleServiceError(w, h.log, err, "resolve download")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	http.Redirect(w, r, signed, http.StatusFound)
}
