package repository

import (
	"consultancy-cms/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	VerificationCode VerificationCodeRepository
	Session          SessionRepository
	Content          ContentRepository
	ObjectACL        ObjectACLRepository
}

// NewRepository wires the Postgres repositories. When rdb is non-nil,
// verification codes live in Redis instead.
func NewRepository(db database.PgxIface, rdb redis.Cmdable, log *zap.Logger) *Repository {
	codes := NewVerificationCodeRepository(db, log)
	if rdb != nil {
		codes = NewRedisVerificationCodeRepository(rdb, log)
	}

	return &Repository{
		VerificationCode: codes,
		Session:          NewSessionRepository(db, log),
		Content:          NewContentRepository(db, log),
		ObjectACL:        NewObjectACLRepository(db, log),
	}
}
