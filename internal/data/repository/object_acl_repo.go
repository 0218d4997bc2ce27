package repository

import (
	"context"
	"errors"
	"fmt"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ObjectACLRepository interface {
	Upsert(ctx context.Context, acl *entity.ObjectACL) error
	FindByPath(ctx context.Context, objectPath string) (*entity.ObjectACL, error)
}

type objectACLRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewObjectACLRepository(db database.PgxIface, log *zap.Logger) ObjectACLRepository {
	return &objectACLRepository{
		db:  db,
		log: log.With(zap.String("repository", "object_acl")),
	}
}

func (r *objectACLRepository) Upsert(ctx context.Context, acl *entity.ObjectACL) error {
	query := `
		INSERT INTO object_acls (object_path, visibility, owner, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (object_path) DO UPDATE
		SET visibility = EXCLUDED.visibility,
		    owner = EXCLUDED.owner,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, acl.ObjectPath, acl.Visibility, acl.Owner, acl.UpdatedAt); err != nil {
		r.log.Error("Failed to store object ACL",
			zap.Error(err),
			zap.String("object_path", acl.ObjectPath),
		)
		return fmt.Errorf("store acl for %s: %w", acl.ObjectPath, err)
	}
	return nil
}

func (r *objectACLRepository) FindByPath(ctx context.Context, objectPath string) (*entity.ObjectACL, error) {
	query := `
		SELECT object_path, visibility, owner, updated_at
		FROM object_acls
		WHERE object_path = $1
	`

	var acl entity.ObjectACL
	err := r.db.QueryRow(ctx, query, objectPath).Scan(
		&acl.ObjectPath,
		&acl.Visibility,
		&acl.Owner,
		&acl.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find object ACL",
			zap.Error(err),
			zap.String("object_path", objectPath),
		)
		return nil, fmt.Errorf("find acl for %s: %w", objectPath, err)
	}
	return &acl, nil
}
