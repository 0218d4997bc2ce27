package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"consultancy-cms/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const verificationKeyPrefix = "verification_code:"

// redisVerificationCodeRepository stores codes as JSON values whose TTL
// matches the code expiry, so expired codes vanish on their own.
type redisVerificationCodeRepository struct {
	client redis.Cmdable
	now    func() time.Time
	log    *zap.Logger
}

func NewRedisVerificationCodeRepository(client redis.Cmdable, log *zap.Logger) VerificationCodeRepository {
	return &redisVerificationCodeRepository{
		client: client,
		now:    time.Now,
		log:    log.With(zap.String("repository", "verification_code_redis")),
	}
}

func (r *redisVerificationCodeRepository) Upsert(ctx context.Context, code *entity.VerificationCode) error {
	ttl := code.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, code.Email)
	}

	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode verification code: %w", err)
	}

	if err := r.client.Set(ctx, verificationKeyPrefix+code.Email, payload, ttl).Err(); err != nil {
		r.log.Error("Failed to store verification code",
			zap.Error(err),
			zap.String("email", code.Email),
			zap.Duration("ttl", ttl),
		)
		return fmt.Errorf("store verification code for %s: %w", code.Email, err)
	}
	return nil
}

func (r *redisVerificationCodeRepository) FindByEmail(ctx context.Context, email string) (*entity.VerificationCode, error) {
	raw, err := r.client.Get(ctx, verificationKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find verification code",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find verification code for %s: %w", email, err)
	}

	var code entity.VerificationCode
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, fmt.Errorf("decode verification code for %s: %w", email, err)
	}
	return &code, nil
}

func (r *redisVerificationCodeRepository) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, verificationKeyPrefix+email).Err(); err != nil {
		r.log.Error("Failed to delete verification code",
			zap.Error(err),
			zap.String("email", email),
		)
		return fmt.Errorf("delete verification code for %s: %w", email, err)
	}
	return nil
}

// DeleteExpired is a no-op, redis expires keys itself.
func (r *redisVerificationCodeRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
