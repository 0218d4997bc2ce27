package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// VerificationCodeRepository keeps at most one code per email.
type VerificationCodeRepository interface {
	// Upsert replaces any code already stored for the email.
	Upsert(ctx context.Context, code *entity.VerificationCode) error
	FindByEmail(ctx context.Context, email string) (*entity.VerificationCode, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type verificationCodeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVerificationCodeRepository(db database.PgxIface, log *zap.Logger) VerificationCodeRepository {
	return &verificationCodeRepository{
		db:  db,
		log: log.With(zap.String("repository", "verification_code")),
	}
}

func (r *verificationCodeRepository) Upsert(ctx context.Context, code *entity.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (email, code_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code_hash = EXCLUDED.code_hash,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`

	_, err := r.db.Exec(ctx, query, code.Email, code.CodeHash, code.CreatedAt, code.ExpiresAt)
	if err != nil {
		r.log.Error("Failed to store verification code",
			zap.Error(err),
			zap.String("email", code.Email),
		)
		return fmt.Errorf("store verification code for %s: %w", code.Email, err)
	}

	return nil
}

func (r *verificationCodeRepository) FindByEmail(ctx context.Context, email string) (*entity.VerificationCode, error) {
	query := `
		SELECT email, code_hash, created_at, expires_at
		FROM verification_codes
		WHERE email = $1
	`

	var code entity.VerificationCode
	err := r.db.QueryRow(ctx, query, email).Scan(
		&code.Email,
		&code.CodeHash,
		&code.CreatedAt,
		&code.ExpiresAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find verification code",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find verification code for %s: %w", email, err)
	}

	return &code, nil
}

func (r *verificationCodeRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE email = $1`, email); err != nil {
		r.log.Error("Failed to delete verification code",
			zap.Error(err),
			zap.String("email", email),
		)
		return fmt.Errorf("delete verification code for %s: %w", email, err)
	}
	return nil
}

func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE expires_at < $1`, now)
	if err != nil {
		r.log.Error("Failed to purge expired verification codes", zap.Error(err))
		return 0, fmt.Errorf("purge verification codes: %w", err)
	}
	return result.RowsAffected(), nil
}
