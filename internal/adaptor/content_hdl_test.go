package adaptor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"consultancy-cms/internal/data/entity"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func contentRouter(svc *mockContentService) *chi.Mux {
	h := NewContentHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api/admin/{kind}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/read", h.MarkRead)
	})
	return r
}

func TestContentList_UnknownKind(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "widgets").Return(nil, fmt.Errorf("content kind: %w", entity.ErrNotFound))

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/widgets", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentList_PassesQueryAsAdmin(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "services").Return(entity.Service, nil)
	svc.On("List", mock.Anything, entity.Service, map[string]string{"featured": "true"}, false).
		Return([]entity.Record{{"id": "a", "title": "Cloud"}}, nil)

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/services?featured=true", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"title":"Cloud"`)
	svc.AssertExpectations(t)
}

func TestContentCreate_KeepsNumbersExact(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "services").Return(entity.Service, nil)
	svc.On("Create", mock.Anything, entity.Service, mock.MatchedBy(func(p map[string]any) bool {
		n, ok := p["sortOrder"].(json.Number)
		return ok && n.String() == "3"
	})).Return(entity.Record{"id": "new"}, nil)

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(jsonRequest(t, http.MethodPost, "/api/admin/services",
		`{"title":"Cloud","slug":"cloud","sortOrder":3}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestContentCreate_ValidationErrorReturnsFields(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "services").Return(entity.Service, nil)
	verr := entity.NewValidationError()
	verr.Add("title", "This field is required")
	svc.On("Create", mock.Anything, entity.Service, mock.Anything).Return(nil, verr)

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(jsonRequest(t, http.MethodPost, "/api/admin/services", `{"slug":"x"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This field is required", decodeEnvelope(t, rec).Errors["title"])
}

func TestContentCreate_RejectsNonObjectBody(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "services").Return(entity.Service, nil)

	for _, body := range []string{"[]", "null", `{"a":1} {"b":2}`} {
		rec := httptest.NewRecorder()
		contentRouter(svc).ServeHTTP(rec, withAdmin(jsonRequest(t, http.MethodPost, "/api/admin/services", body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestContentCreate_OversizedBody(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "services").Return(entity.Service, nil)

	body := `{"description":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(jsonRequest(t, http.MethodPost, "/api/admin/services", body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentUpdate_MethodNotAllowed(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "contacts").Return(entity.ContactSubmission, nil)
	svc.On("Update", mock.Anything, entity.ContactSubmission, "id-1", mock.Anything).
		Return(nil, fmt.Errorf("update: %w", entity.ErrMethodNotAllowed))

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(jsonRequest(t, http.MethodPut, "/api/admin/contacts/id-1", `{"message":"x"}`)))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestContentDelete_NoContentAndNotFound(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "services").Return(entity.Service, nil)
	svc.On("Delete", mock.Anything, entity.Service, "gone").Return(fmt.Errorf("delete: %w", entity.ErrNotFound))
	svc.On("Delete", mock.Anything, entity.Service, "here").Return(nil)

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(httptest.NewRequest(http.MethodDelete, "/api/admin/services/here", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(httptest.NewRequest(http.MethodDelete, "/api/admin/services/gone", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentMarkRead_DefaultsToRead(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "contacts").Return(entity.ContactSubmission, nil)
	svc.On("MarkRead", mock.Anything, entity.ContactSubmission, "c1", true).Return(entity.Record{"isRead": true}, nil)
	svc.On("MarkRead", mock.Anything, entity.ContactSubmission, "c1", false).Return(entity.Record{"isRead": false}, nil)

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(httptest.NewRequest(http.MethodPatch, "/api/admin/contacts/c1/read", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(jsonRequest(t, http.MethodPatch, "/api/admin/contacts/c1/read", `{"isRead":false}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestContentGet_InternalErrorIsOpaque(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "services").Return(entity.Service, nil)
	svc.On("GetByID", mock.Anything, entity.Service, "x").Return(nil, fmt.Errorf("find: connection refused"))

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/services/x", nil)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestContentMarkRead_ChunkedEmptyBody(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "contacts").Return(entity.ContactSubmission, nil)
	svc.On("MarkRead", mock.Anything, entity.ContactSubmission, "c1", true).Return(entity.Record{"isRead": true}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/contacts/c1/read", strings.NewReader(""))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(req))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestContentMarkRead_MalformedBody(t *testing.T) {
	svc := new(mockContentService)
	svc.On("Kind", "contacts").Return(entity.ContactSubmission, nil)

	rec := httptest.NewRecorder()
	contentRouter(svc).ServeHTTP(rec, withAdmin(jsonRequest(t, http.MethodPatch, "/api/admin/contacts/c1/read", `{"isRead":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
