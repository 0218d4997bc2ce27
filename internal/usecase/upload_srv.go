package usecase

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/data/repository"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

const (
	uploadPrefix      = "uploads/"
	objectRoutePrefix = "/objects/"
	downloadURLTTL    = 5 * time.Minute
)

// ObjectStore is the slice of object storage the upload gateway needs.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	SetVisibility(ctx context.Context, key, visibility string) error
}

// UploadGrant is a short-lived write URL for one object.
type UploadGrant struct {
	Method     string
	URL        string
	ObjectPath string
	ExpiresAt  time.Time
}

type UploadService interface {
	GrantUpload(ctx context.Context) (*UploadGrant, error)
	// SetVisibility records the access intent for an uploaded object and
	// returns its normalized /objects/ path.
	SetVisibility(ctx context.Context, objectURL, visibility string) (string, error)
	// ResolveDownload returns a presigned URL for objectPath when the
	// caller may read it.
	ResolveDownload(ctx context.Context, objectPath string) (string, error)
}

type uploadService struct {
	store  ObjectStore
	acls   repository.ObjectACLRepository
	bucket string
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// NewUploadService accepts a nil store; every operation then fails with
// entity.ErrUnavailable.
func NewUploadService(store ObjectStore, acls repository.ObjectACLRepository, config utils.StorageConfig, log *zap.Logger) UploadService {
	ttl := time.Duration(config.UploadURLTTLMinute) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &uploadService{
		store:  store,
		acls:   acls,
		bucket: config.Bucket,
		ttl:    ttl,
		now:    time.Now,
		log:    log.With(zap.String("service", "upload")),
	}
}

func (s *uploadService) GrantUpload(ctx context.Context) (*UploadGrant, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, fmt.Errorf("grant upload: %w", entity.ErrUnavailable)
	}

	key := uploadPrefix + utils.GenerateUUIDString()
	expiresAt := s.now().UTC().Add(s.ttl)

	signed, err := s.store.PresignPut(ctx, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("grant upload: %w", err)
	}

	s.log.Info("Upload granted", zap.String("object", key), zap.String("by", identity.Subject))
	return &UploadGrant{
		Method:     "PUT",
		URL:        signed,
		ObjectPath: objectRoutePrefix + key,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *uploadService) SetVisibility(ctx context.Context, objectURL, visibility string) (string, error) {
	identity, err := requireIdentity(ctx)
	if err != nil {
		return "", err
	}

	vis, ok := entity.ParseVisibility(visibility)
	if !ok {
		verr := entity.NewValidationError()
		verr.Add("visibility", "Must be one of: public, private")
		return "", verr
	}
	if s.store == nil {
		return "", fmt.Errorf("set visibility: %w", entity.ErrUnavailable)
	}

	key, ok := s.objectKey(objectURL)
	if !ok {
		return "", fmt.Errorf("object %q: %w", objectURL, entity.ErrNotFound)
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("set visibility: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("object %q: %w", key, entity.ErrNotFound)
	}

	if err := s.store.SetVisibility(ctx, key, string(vis)); err != nil {
		return "", fmt.Errorf("set visibility: %w", err)
	}

	acl := &entity.ObjectACL{
		ObjectPath: key,
		Visibility: vis,
		Owner:      identity.Subject,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.acls.Upsert(ctx, acl); err != nil {
		return "", fmt.Errorf("set visibility: %w", err)
	}

	s.log.Info("Object visibility set",
		zap.String("object", key),
		zap.String("visibility", string(vis)),
		zap.String("by", identity.Subject),
	)
	return objectRoutePrefix + key, nil
}

func (s *uploadService) ResolveDownload(ctx context.Context, objectPath string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("resolve download: %w", entity.ErrUnavailable)
	}

	key, ok := s.objectKey(objectPath)
	if !ok {
		return "", fmt.Errorf("object %q: %w", objectPath, entity.ErrNotFound)
	}

	acl, err := s.acls.FindByPath(ctx, key)
	if err != nil {
		return "", fmt.Errorf("resolve download: %w", err)
	}

	// Objects without a recorded ACL are private.
	_, signedIn := utils.GetIdentityFromContext(ctx)
	public := acl != nil && acl.Visibility == entity.VisibilityPublic
	if !public && !signedIn {
		return "", fmt.Errorf("object %q: %w", key, entity.ErrNotFound)
	}
	if acl == nil {
		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("resolve download: %w", err)
		}
		if !exists {
			return "", fmt.Errorf("object %q: %w", key, entity.ErrNotFound)
		}
	}

	signed, err := s.store.PresignGet(ctx, key, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("resolve download: %w", err)
	}
	return signed, nil
}

// objectKey normalizes a presigned URL, an /objects/ path or a bare key
// into a storage key under the upload prefix.
func (s *uploadService) objectKey(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.Path
	}
	p = strings.TrimPrefix(p, "/")

	switch {
	case strings.HasPrefix(p, strings.TrimPrefix(objectRoutePrefix, "/")):
		p = strings.TrimPrefix(p, strings.TrimPrefix(objectRoutePrefix, "/"))
	case s.bucket != "" && strings.HasPrefix(p, s.bucket+"/"):
		p = strings.TrimPrefix(p, s.bucket+"/")
	}

	if !strings.HasPrefix(p, uploadPrefix) || path.Clean(p) != p || len(p) == len(uploadPrefix) {
		return "", false
	}
	return p, true
}
