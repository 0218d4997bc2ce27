package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/data/repository"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

// ContentService is the generic CRUD gateway over every content kind.
// Admin operations read the identity from the context and fail with
// entity.ErrUnauthorized before storage is touched.
type ContentService interface {
	Kind(name string) (*entity.Kind, error)
	List(ctx context.Context, kind *entity.Kind, query map[string]string, public bool) ([]entity.Record, error)
	GetBySlug(ctx context.Context, kind *entity.Kind, slug string) (entity.Record, error)
	GetByID(ctx context.Context, kind *entity.Kind, id string) (entity.Record, error)
	Create(ctx context.Context, kind *entity.Kind, payload map[string]any) (entity.Record, error)
	// Submit is the unauthenticated create used by public forms.
	Submit(ctx context.Context, kind *entity.Kind, payload map[string]any) (entity.Record, error)
	Update(ctx context.Context, kind *entity.Kind, id string, payload map[string]any) (entity.Record, error)
	Delete(ctx context.Context, kind *entity.Kind, id string) error
	MarkRead(ctx context.Context, kind *entity.Kind, id string, read bool) (entity.Record, error)
}

type contentService struct {
	content repository.ContentRepository
	now     func() time.Time
	newID   func() string
	log     *zap.Logger
}

func NewContentService(content repository.ContentRepository, log *zap.Logger) ContentService {
	return &contentService{
		content: content,
		now:     time.Now,
		newID:   utils.GenerateUUIDString,
		log:     log.With(zap.String("service", "content")),
	}
}

func requireIdentity(ctx context.Context) (entity.Identity, error) {
	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		return entity.Identity{}, entity.ErrUnauthorized
	}
	return identity, nil
}

func (s *contentService) Kind(name string) (*entity.Kind, error) {
	kind, ok := entity.LookupKind(name)
	if !ok {
		return nil, fmt.Errorf("content kind %q: %w", name, entity.ErrNotFound)
	}
	return kind, nil
}

func (s *contentService) List(ctx context.Context, kind *entity.Kind, query map[string]string, public bool) ([]entity.Record, error) {
	if public {
		if !kind.Access.PublicRead {
			return nil, fmt.Errorf("list %s: %w", kind.Name, entity.ErrMethodNotAllowed)
		}
	} else if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}

	filters, err := parseFilters(kind, query)
	if err != nil {
		return nil, err
	}
	if public && kind.Has(entity.FieldIsActive) {
		filters[entity.FieldIsActive] = true
	}

	records, err := s.content.List(ctx, kind, filters)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Name, err)
	}
	return records, nil
}

// GetBySlug is the public lookup; inactive records are hidden.
func (s *contentService) GetBySlug(ctx context.Context, kind *entity.Kind, slug string) (entity.Record, error) {
	if !kind.Access.PublicRead || kind.Lookup == "" {
		return nil, fmt.Errorf("get %s by %s: %w", kind.Label, kind.Lookup, entity.ErrNotFound)
	}

	rec, err := s.content.FindByField(ctx, kind, kind.Lookup, slug)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind.Label, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s %q: %w", kind.Label, slug, entity.ErrNotFound)
	}
	if active, ok := rec[entity.FieldIsActive].(bool); ok && !active {
		return nil, fmt.Errorf("%s %q: %w", kind.Label, slug, entity.ErrNotFound)
	}
	return rec, nil
}

func (s *contentService) GetByID(ctx context.Context, kind *entity.Kind, id string) (entity.Record, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	return s.findByID(ctx, kind, id)
}

func (s *contentService) findByID(ctx context.Context, kind *entity.Kind, id string) (entity.Record, error) {
	rec, err := s.content.FindByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind.Label, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s %s: %w", kind.Label, id, entity.ErrNotFound)
	}
	return rec, nil
}

func (s *contentService) Create(ctx context.Context, kind *entity.Kind, payload map[string]any) (entity.Record, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !kind.Access.AdminCreate {
		return nil, fmt.Errorf("create %s: %w", kind.Label, entity.ErrMethodNotAllowed)
	}

	rec, err := s.insert(ctx, kind, payload, false)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("kind", kind.Name),
		zap.String("id", rec.ID()),
		zap.String("by", identity.Subject),
	}
	if kind.Lookup != "" {
		fields = append(fields, zap.String(kind.Lookup, rec.String(kind.Lookup)))
	}
	s.log.Info("Record created", fields...)
	return rec, nil
}

func (s *contentService) Submit(ctx context.Context, kind *entity.Kind, payload map[string]any) (entity.Record, error) {
	if !kind.Access.PublicCreate {
		return nil, fmt.Errorf("submit %s: %w", kind.Label, entity.ErrMethodNotAllowed)
	}

	rec, err := s.insert(ctx, kind, payload, true)
	if err != nil {
		return nil, err
	}

	s.log.Info("Public submission stored", zap.String("kind", kind.Name), zap.String("id", rec.ID()))
	return rec, nil
}

func (s *contentService) insert(ctx context.Context, kind *entity.Kind, payload map[string]any, public bool) (entity.Record, error) {
	values, err := validateCreate(kind, payload, public)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, kind, values, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	values[entity.FieldID] = s.newID()
	values[entity.FieldCreatedAt] = now
	values[entity.FieldUpdatedAt] = now

	created, err := s.content.Create(ctx, kind, values)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateError(kind)
		}
		return nil, fmt.Errorf("create %s: %w", kind.Label, err)
	}
	return created, nil
}

func (s *contentService) Update(ctx context.Context, kind *entity.Kind, id string, payload map[string]any) (entity.Record, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !kind.Access.AdminUpdate {
		return nil, fmt.Errorf("update %s: %w", kind.Label, entity.ErrMethodNotAllowed)
	}

	existing, err := s.findByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	changes, err := validateUpdate(kind, payload)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return existing, nil
	}

	if err := s.checkUnique(ctx, kind, changes, id); err != nil {
		return nil, err
	}

	updated, err := s.content.Update(ctx, kind, id, changes, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateError(kind)
		}
		return nil, fmt.Errorf("update %s: %w", kind.Label, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%s %s: %w", kind.Label, id, entity.ErrNotFound)
	}

	s.log.Info("Record updated",
		zap.String("kind", kind.Name),
		zap.String("id", id),
		zap.Strings("fields", sortedFieldNames(changes)),
		zap.String("by", identity.Subject),
	)
	return updated, nil
}

func (s *contentService) Delete(ctx context.Context, kind *entity.Kind, id string) error {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return err
	}
	if !kind.Access.AdminDelete {
		return fmt.Errorf("delete %s: %w", kind.Label, entity.ErrMethodNotAllowed)
	}

	deleted, err := s.content.Delete(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind.Label, err)
	}
	if !deleted {
		return fmt.Errorf("%s %s: %w", kind.Label, id, entity.ErrNotFound)
	}

	s.log.Info("Record deleted", zap.String("kind", kind.Name), zap.String("id", id), zap.String("by", identity.Subject))
	return nil
}

func (s *contentService) MarkRead(ctx context.Context, kind *entity.Kind, id string, read bool) (entity.Record, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	if !kind.Has(entity.FieldIsRead) {
		return nil, fmt.Errorf("mark %s read: %w", kind.Label, entity.ErrMethodNotAllowed)
	}
	return s.Update(ctx, kind, id, map[string]any{entity.FieldIsRead: read})
}

// checkUnique rejects a lookup value already held by a record other than
// selfID. The unique index catches the race this check leaves open.
func (s *contentService) checkUnique(ctx context.Context, kind *entity.Kind, values entity.Record, selfID string) error {
	if kind.Lookup == "" {
		return nil
	}
	value, ok := values[kind.Lookup]
	if !ok || value == nil {
		return nil
	}

	existing, err := s.content.FindByField(ctx, kind, kind.Lookup, value)
	if err != nil {
		return fmt.Errorf("check %s uniqueness: %w", kind.Lookup, err)
	}
	if existing != nil && existing.ID() != selfID {
		return duplicateError(kind)
	}
	return nil
}

func duplicateError(kind *entity.Kind) error {
	verr := entity.NewValidationError()
	verr.Add(kind.Lookup, fmt.Sprintf("This %s is already used by another %s", kind.Lookup, kind.Label))
	return verr
}

func isBaseField(name string) bool {
	return name == entity.FieldID || name == entity.FieldCreatedAt || name == entity.FieldUpdatedAt
}

func validateCreate(kind *entity.Kind, payload map[string]any, public bool) (entity.Record, error) {
	verr := entity.NewValidationError()
	rejectUnknown(kind, payload, verr)

	values := make(entity.Record, len(kind.Fields)+3)
	for _, f := range kind.Fields {
		raw, present := payload[f.Name]
		if public && f.Protected {
			if present {
				verr.Add(f.Name, "This field cannot be set")
			}
			present = false
		}

		if !present {
			if f.Required {
				verr.Add(f.Name, "This field is required")
				continue
			}
			if f.Default != nil {
				values[f.Name] = cloneDefault(f.Default)
			}
			continue
		}

		v, msg := coerceValue(f, raw)
		if msg != "" {
			verr.Add(f.Name, msg)
			continue
		}
		values[f.Name] = v
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return values, nil
}

func validateUpdate(kind *entity.Kind, payload map[string]any) (entity.Record, error) {
	verr := entity.NewValidationError()
	rejectUnknown(kind, payload, verr)

	changes := make(entity.Record, len(payload))
	for name, raw := range payload {
		f, ok := kind.Field(name)
		if !ok {
			continue
		}
		v, msg := coerceValue(f, raw)
		if msg != "" {
			verr.Add(f.Name, msg)
			continue
		}
		changes[f.Name] = v
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return changes, nil
}

func rejectUnknown(kind *entity.Kind, payload map[string]any, verr *entity.ValidationError) {
	for name := range payload {
		if isBaseField(name) || kind.Has(name) {
			continue
		}
		verr.Add(name, "Unknown field")
	}
}

func cloneDefault(v any) any {
	if list, ok := v.([]string); ok {
		return append([]string{}, list...)
	}
	return v
}

// coerceValue checks raw against the field type and rules and returns the
// value to store, or a message describing why it was rejected.
func coerceValue(f entity.Field, raw any) (any, string) {
	if raw == nil {
		if f.Required {
			return nil, "This field is required"
		}
		if f.Type == entity.FieldStringList {
			return []string{}, ""
		}
		return nil, ""
	}

	switch f.Type {
	case entity.FieldString, entity.FieldText:
		str, ok := raw.(string)
		if !ok {
			return nil, "Must be a string"
		}
		if strings.TrimSpace(str) == "" {
			if f.Required {
				return nil, "This field is required"
			}
			return str, ""
		}
		if msg := utils.ValidateVar(str, f.Rules); msg != "" {
			return nil, msg
		}
		return str, ""

	case entity.FieldEnum:
		str, ok := raw.(string)
		if !ok {
			return nil, "Must be a string"
		}
		for _, option := range f.Enum {
			if str == option {
				return str, ""
			}
		}
		return nil, fmt.Sprintf("Must be one of: %s", strings.Join(f.Enum, ", "))

	case entity.FieldInteger:
		n, ok := toInt64(raw)
		if !ok {
			return nil, "Must be an integer"
		}
		if msg := utils.ValidateVar(n, f.Rules); msg != "" {
			return nil, msg
		}
		return n, ""

	case entity.FieldNumber:
		n, ok := toFloat64(raw)
		if !ok {
			return nil, "Must be a number"
		}
		if msg := utils.ValidateVar(n, f.Rules); msg != "" {
			return nil, msg
		}
		return n, ""

	case entity.FieldBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, "Must be a boolean"
		}
		return b, ""

	case entity.FieldStringList:
		list, ok := toStringList(raw)
		if !ok {
			return nil, "Must be a list of strings"
		}
		if f.Required && len(list) == 0 {
			return nil, "This field is required"
		}
		return list, ""
	}

	return nil, "Unsupported field type"
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func toFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func toStringList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return append([]string{}, v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// parseFilters converts query parameters into typed equality filters.
func parseFilters(kind *entity.Kind, query map[string]string) (map[string]any, error) {
	filters := make(map[string]any, len(query)+1)
	verr := entity.NewValidationError()

	for param, raw := range query {
		f, ok := kind.FieldByFilter(param)
		if !ok {
			verr.Add(param, fmt.Sprintf("Unknown filter, accepted: %s", strings.Join(kind.Filters(), ", ")))
			continue
		}

		switch f.Type {
		case entity.FieldBoolean:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				verr.Add(param, "Must be true or false")
				continue
			}
			filters[f.Name] = b
		case entity.FieldInteger:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				verr.Add(param, "Must be an integer")
				continue
			}
			filters[f.Name] = n
		case entity.FieldEnum:
			v, msg := coerceValue(f, raw)
			if msg != "" {
				verr.Add(param, msg)
				continue
			}
			filters[f.Name] = v
		default:
			filters[f.Name] = raw
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return filters, nil
}

func sortedFieldNames(rec entity.Record) []string {
	names := make([]string, 0, len(rec))
	for k := range rec {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
