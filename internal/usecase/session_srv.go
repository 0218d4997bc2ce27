package usecase

import (
	"context"
	"fmt"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/data/repository"
	"consultancy-cms/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IssuedSession pairs the stored session with the token handed to the client.
type IssuedSession struct {
	Session *entity.Session
	Token   string
}

type SessionService interface {
	Issue(ctx context.Context, identity entity.Identity) (*IssuedSession, error)
	Validate(ctx context.Context, tokenStr string) (*entity.Session, error)
	Destroy(ctx context.Context, tokenStr string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	sessions repository.SessionRepository
	signer   *token.Signer
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewSessionService(sessions repository.SessionRepository, signer *token.Signer, ttl time.Duration, log *zap.Logger) SessionService {
	return &sessionService{
		sessions: sessions,
		signer:   signer,
		ttl:      ttl,
		now:      time.Now,
		log:      log.With(zap.String("service", "session")),
	}
}

func (s *sessionService) Issue(ctx context.Context, identity entity.Identity) (*IssuedSession, error) {
	now := s.now().UTC()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		Identity:  identity,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	signed, err := s.signer.Sign(session.ID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s.log.Info("Session issued",
		zap.String("session_id", session.ID.String()),
		zap.String("subject", identity.Subject),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return &IssuedSession{Session: session, Token: signed}, nil
}

func (s *sessionService) Validate(ctx context.Context, tokenStr string) (*entity.Session, error) {
	id, err := s.signer.Parse(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnauthorized, err)
	}

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session not found", entity.ErrUnauthorized)
	}

	if session.IsExpired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.log.Warn("Failed to delete expired session", zap.Error(err), zap.String("session_id", id.String()))
		}
		return nil, fmt.Errorf("%w: session expired", entity.ErrUnauthorized)
	}

	return session, nil
}

// Destroy is a no-op for tokens that no longer verify.
func (s *sessionService) Destroy(ctx context.Context, tokenStr string) error {
	id, err := s.signer.Parse(tokenStr)
	if err != nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	s.log.Info("Session destroyed", zap.String("session_id", id.String()))
	return nil
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
