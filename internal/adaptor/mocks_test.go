package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/usecase"
	"consultancy-cms/pkg/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) RequestCode(ctx context.Context, email string) (time.Time, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *mockAuthService) VerifyCode(ctx context.Context, email, code string) (*usecase.IssuedSession, error) {
	args := m.Called(ctx, email, code)
	issued, _ := args.Get(0).(*usecase.IssuedSession)
	return issued, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockContentService struct{ mock.Mock }

func (m *mockContentService) Kind(name string) (*entity.Kind, error) {
	args := m.Called(name)
	kind, _ := args.Get(0).(*entity.Kind)
	return kind, args.Error(1)
}

func (m *mockContentService) List(ctx context.Context, kind *entity.Kind, query map[string]string, public bool) ([]entity.Record, error) {
	args := m.Called(ctx, kind, query, public)
	records, _ := args.Get(0).([]entity.Record)
	return records, args.Error(1)
}

func (m *mockContentService) GetBySlug(ctx context.Context, kind *entity.Kind, slug string) (entity.Record, error) {
	args := m.Called(ctx, kind, slug)
	rec, _ := args.Get(0).(entity.Record)
	return rec, args.Error(1)
}

func (m *mockContentService) GetByID(ctx context.Context, kind *entity.Kind, id string) (entity.Record, error) {
	args := m.Called(ctx, kind, id)
	rec, _ := args.Get(0).(entity.Record)
	return rec, args.Error(1)
}

func (m *mockContentService) Create(ctx context.Context, kind *entity.Kind, payload map[string]any) (entity.Record, error) {
	args := m.Called(ctx, kind, payload)
	rec, _ := args.Get(0).(entity.Record)
	return rec, args.Error(1)
}

func (m *mockContentService) Submit(ctx context.Context, kind *entity.Kind, payload map[string]any) (entity.Record, error) {
	args := m.Called(ctx, kind, payload)
	rec, _ := args.Get(0).(entity.Record)
	return rec, args.Error(1)
}

func (m *mockContentService) Update(ctx context.Context, kind *entity.Kind, id string, payload map[string]any) (entity.Record, error) {
	args := m.Called(ctx, kind, id, payload)
	rec, _ := args.Get(0).(entity.Record)
	return rec, args.Error(1)
}

func (m *mockContentService) Delete(ctx context.Context, kind *entity.Kind, id string) error {
	return m.Called(ctx, kind, id).Error(0)
}

func (m *mockContentService) MarkRead(ctx context.Context, kind *entity.Kind, id string, read bool) (entity.Record, error) {
	args := m.Called(ctx, kind, id, read)
	rec, _ := args.Get(0).(entity.Record)
	return rec, args.Error(1)
}

type mockUploadService struct{ mock.Mock }

func (m *mockUploadService) GrantUpload(ctx context.Context) (*usecase.UploadGrant, error) {
	args := m.Called(ctx)
	grant, _ := args.Get(0).(*usecase.UploadGrant)
	return grant, args.Error(1)
}

func (m *mockUploadService) SetVisibility(ctx context.Context, objectURL, visibility string) (string, error) {
	args := m.Called(ctx, objectURL, visibility)
	return args.String(0), args.Error(1)
}

func (m *mockUploadService) ResolveDownload(ctx context.Context, objectPath string) (string, error) {
	args := m.Called(ctx, objectPath)
	return args.String(0), args.Error(1)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]any  `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withAdmin(req *http.Request) *http.Request {
	ctx := utils.SetIdentityContext(req.Context(), entity.IdentityFromEmail("admin@example.com"))
	return req.WithContext(ctx)
}
