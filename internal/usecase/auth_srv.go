package usecase

import (
	"context"
	"fmt"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/data/repository"
	"consultancy-cms/pkg/mailer"
	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService runs the email plus one-time-code admin login.
type AuthService interface {
	// RequestCode issues a fresh code for an allow-listed email and
	// returns its expiry.
	RequestCode(ctx context.Context, email string) (time.Time, error)
	VerifyCode(ctx context.Context, email, code string) (*IssuedSession, error)
	Logout(ctx context.Context, token string) error
	PurgeExpiredCodes(ctx context.Context) (int64, error)
}

type authService struct {
	codes      repository.VerificationCodeRepository
	sessions   SessionService
	mailer     mailer.Dispatcher
	allowed    map[string]struct{}
	codeTTL    time.Duration
	codeLength int
	hashCost   int
	generate   func(length int) (string, error)
	now        func() time.Time
	log        *zap.Logger
}

func NewAuthService(
	codes repository.VerificationCodeRepository,
	sessions SessionService,
	dispatcher mailer.Dispatcher,
	otp utils.OTPConfig,
	admins []string,
	log *zap.Logger,
) AuthService {
	allowed := make(map[string]struct{}, len(admins))
	for _, email := range utils.NormalizeEmails(admins) {
		allowed[email] = struct{}{}
	}

	ttl := time.Duration(otp.ExpiryMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	length := otp.Length
	if length <= 0 {
		length = 6
	}

	return &authService{
		codes:      codes,
		sessions:   sessions,
		mailer:     dispatcher,
		allowed:    allowed,
		codeTTL:    ttl,
		codeLength: length,
		hashCost:   bcrypt.DefaultCost,
		generate:   utils.GenerateOTP,
		now:        time.Now,
		log:        log.With(zap.String("service", "auth")),
	}
}

func (s *authService) isAllowed(email string) bool {
	_, ok := s.allowed[email]
	return ok
}

func (s *authService) RequestCode(ctx context.Context, email string) (time.Time, error) {
	email = utils.NormalizeEmail(email)
	if msg := utils.ValidateVar(email, "required,email"); msg != "" {
		verr := entity.NewValidationError()
		verr.Add("email", msg)
		return time.Time{}, verr
	}

	// Denied addresses never reach code generation or the mailer.
	if !s.isAllowed(email) {
		s.log.Warn("Verification requested for address outside allow-list", zap.String("email", email))
		return time.Time{}, fmt.Errorf("request code: %w", entity.ErrUnauthorized)
	}

	code, err := s.generate(s.codeLength)
	if err != nil {
		return time.Time{}, fmt.Errorf("request code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return time.Time{}, fmt.Errorf("hash code: %w", err)
	}

	now := s.now().UTC()
	record := &entity.VerificationCode{
		Email:     email,
		CodeHash:  string(hash),
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	}
	if err := s.codes.Upsert(ctx, record); err != nil {
		return time.Time{}, fmt.Errorf("request code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code, record.ExpiresAt); err != nil {
		s.log.Warn("Mail dispatcher returned an error", zap.Error(err), zap.String("email", email))
	}

	s.log.Info("Verification code stored", zap.String("email", email), zap.Time("expires_at", record.ExpiresAt))
	return record.ExpiresAt, nil
}

func (s *authService) VerifyCode(ctx context.Context, email, code string) (*IssuedSession, error) {
	email = utils.NormalizeEmail(email)

	verr := entity.NewValidationError()
	if msg := utils.ValidateVar(email, "required,email"); msg != "" {
		verr.Add("email", msg)
	}
	if msg := utils.ValidateVar(code, "required"); msg != "" {
		verr.Add("code", msg)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	stored, err := s.codes.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("verify code: %w", err)
	}
	if stored == nil {
		s.log.Warn("Verification attempted without an active code", zap.String("email", email))
		return nil, fmt.Errorf("verify code: %w", entity.ErrInvalidCode)
	}

	if stored.IsExpired(s.now()) {
		if err := s.codes.Delete(ctx, email); err != nil {
			s.log.Warn("Failed to delete expired code", zap.Error(err), zap.String("email", email))
		}
		s.log.Warn("Expired verification code presented", zap.String("email", email))
		return nil, fmt.Errorf("verify code: %w", entity.ErrInvalidCode)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(code)); err != nil {
		s.log.Warn("Verification code mismatch", zap.String("email", email))
		return nil, fmt.Errorf("verify code: %w", entity.ErrInvalidCode)
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}

	issued, err := s.sessions.Issue(ctx, entity.IdentityFromEmail(email))
	if err != nil {
		return nil, fmt.Errorf("verify code: %w", err)
	}

	s.log.Info("Admin logged in", zap.String("email", email))
	return issued, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}

func (s *authService) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	n, err := s.codes.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge codes: %w", err)
	}
	return n, nil
}
