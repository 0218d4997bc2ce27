package usecase

import (
	"context"
	"sync"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/data/repository"
	"consultancy-cms/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type memCodes struct {
	mu    sync.Mutex
	codes map[string]entity.VerificationCode
}

func newMemCodes() *memCodes {
	return &memCodes{codes: make(map[string]entity.VerificationCode)}
}

func (m *memCodes) Upsert(_ context.Context, code *entity.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Email] = *code
	return nil
}

func (m *memCodes) FindByEmail(_ context.Context, email string) (*entity.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[email]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCodes) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, email)
	return nil
}

func (m *memCodes) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for email, c := range m.codes {
		if c.IsExpired(now) {
			delete(m.codes, email)
			n++
		}
	}
	return n, nil
}

func (m *memCodes) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]entity.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[uuid.UUID]entity.Session)}
}

func (m *memSessions) Create(_ context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memSessions) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// memContent keeps records per kind in insertion order.
type memContent struct {
	mu      sync.Mutex
	records map[string][]entity.Record
	writes  int
}

func newMemContent() *memContent {
	return &memContent{records: make(map[string][]entity.Record)}
}

func copyRecord(r entity.Record) entity.Record {
	out := make(entity.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (m *memContent) List(_ context.Context, kind *entity.Kind, filters map[string]any) ([]entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Record, 0)
	for _, r := range m.records[kind.Name] {
		match := true
		for k, v := range filters {
			if r[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, copyRecord(r))
		}
	}
	return out, nil
}

func (m *memContent) FindByID(ctx context.Context, kind *entity.Kind, id string) (entity.Record, error) {
	return m.FindByField(ctx, kind, entity.FieldID, id)
}

func (m *memContent) FindByField(_ context.Context, kind *entity.Kind, field string, value any) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records[kind.Name] {
		if r[field] == value {
			return copyRecord(r), nil
		}
	}
	return nil, nil
}

func (m *memContent) Create(_ context.Context, kind *entity.Kind, rec entity.Record) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind.Lookup != "" {
		for _, r := range m.records[kind.Name] {
			if r[kind.Lookup] == rec[kind.Lookup] {
				return nil, repository.ErrDuplicate
			}
		}
	}
	stored := copyRecord(rec)
	for _, f := range kind.Fields {
		if _, ok := stored[f.Name]; !ok {
			stored[f.Name] = nil
		}
	}
	m.records[kind.Name] = append(m.records[kind.Name], stored)
	m.writes++
	return copyRecord(stored), nil
}

func (m *memContent) Update(_ context.Context, kind *entity.Kind, id string, changes entity.Record, updatedAt time.Time) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records[kind.Name] {
		if r.ID() != id {
			continue
		}
		for k, v := range changes {
			r[k] = v
		}
		r[entity.FieldUpdatedAt] = updatedAt
		m.writes++
		return copyRecord(r), nil
	}
	return nil, nil
}

func (m *memContent) Delete(_ context.Context, kind *entity.Kind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.records[kind.Name]
	for i, r := range list {
		if r.ID() == id {
			m.records[kind.Name] = append(list[:i], list[i+1:]...)
			m.writes++
			return true, nil
		}
	}
	return false, nil
}

func (m *memContent) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memACLs struct {
	mu   sync.Mutex
	acls map[string]entity.ObjectACL
}

func newMemACLs() *memACLs {
	return &memACLs{acls: make(map[string]entity.ObjectACL)}
}

func (m *memACLs) Upsert(_ context.Context, acl *entity.ObjectACL) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acls[acl.ObjectPath] = *acl
	return nil
}

func (m *memACLs) FindByPath(_ context.Context, objectPath string) (*entity.ObjectACL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acl, ok := m.acls[objectPath]
	if !ok {
		return nil, nil
	}
	return &acl, nil
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) SendVerificationCode(ctx context.Context, to, code string, expiresAt time.Time) error {
	args := m.Called(ctx, to, code, expiresAt)
	return args.Error(0)
}

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockObjectStore) SetVisibility(ctx context.Context, key, visibility string) error {
	args := m.Called(ctx, key, visibility)
	return args.Error(0)
}

// adminCtx returns a context carrying an authenticated admin identity.
func adminCtx() context.Context {
	return utils.SetIdentityContext(context.Background(), entity.IdentityFromEmail("admin@example.com"))
}

// clock is a settable time source for tests. It starts at the real time
// so signed session tokens stay within their validity window.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Now().UTC().Truncate(time.Second)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
