package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDuplicate is returned when a write hits a unique index.
var ErrDuplicate = errors.New("duplicate value")

const uniqueViolation = "23505"

// ContentRepository persists every content kind through its descriptor.
// Lookups return (nil, nil) when the row does not exist.
type ContentRepository interface {
	List(ctx context.Context, kind *entity.Kind, filters map[string]any) ([]entity.Record, error)
	FindByID(ctx context.Context, kind *entity.Kind, id string) (entity.Record, error)
	FindByField(ctx context.Context, kind *entity.Kind, field string, value any) (entity.Record, error)
	Create(ctx context.Context, kind *entity.Kind, rec entity.Record) (entity.Record, error)
	Update(ctx context.Context, kind *entity.Kind, id string, changes entity.Record, updatedAt time.Time) (entity.Record, error)
	Delete(ctx context.Context, kind *entity.Kind, id string) (bool, error)
}

type contentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewContentRepository(db database.PgxIface, log *zap.Logger) ContentRepository {
	return &contentRepository{
		db:  db,
		log: log.With(zap.String("repository", "content")),
	}
}

func (r *contentRepository) List(ctx context.Context, kind *entity.Kind, filters map[string]any) ([]entity.Record, error) {
	stmt, err := buildList(kind, filters)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		r.log.Error("Failed to list records",
			zap.Error(err),
			zap.String("kind", kind.Name),
			zap.Any("filters", filters),
		)
		return nil, fmt.Errorf("list %s: %w", kind.Name, err)
	}
	defer rows.Close()

	names := recordNames(kind)
	records := make([]entity.Record, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind.Name, err)
		}
		records = append(records, toRecord(kind, names, values))
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to iterate records", zap.Error(err), zap.String("kind", kind.Name))
		return nil, fmt.Errorf("iterate %s: %w", kind.Name, err)
	}

	return records, nil
}

func (r *contentRepository) FindByID(ctx context.Context, kind *entity.Kind, id string) (entity.Record, error) {
	return r.FindByField(ctx, kind, entity.FieldID, id)
}

func (r *contentRepository) FindByField(ctx context.Context, kind *entity.Kind, field string, value any) (entity.Record, error) {
	stmt, err := buildFindBy(kind, field, value)
	if err != nil {
		return nil, err
	}

	rec, err := r.queryOne(ctx, kind, stmt)
	if err != nil {
		r.log.Error("Failed to find record",
			zap.Error(err),
			zap.String("kind", kind.Name),
			zap.String("field", field),
		)
		return nil, fmt.Errorf("find %s by %s: %w", kind.Label, field, err)
	}
	return rec, nil
}

func (r *contentRepository) Create(ctx context.Context, kind *entity.Kind, rec entity.Record) (entity.Record, error) {
	stmt, err := buildInsert(kind, rec)
	if err != nil {
		return nil, err
	}

	created, err := r.queryOne(ctx, kind, stmt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create %s: %w", kind.Label, ErrDuplicate)
		}
		r.log.Error("Failed to create record",
			zap.Error(err),
			zap.String("kind", kind.Name),
			zap.String("id", rec.ID()),
		)
		return nil, fmt.Errorf("create %s: %w", kind.Label, err)
	}
	return created, nil
}

func (r *contentRepository) Update(ctx context.Context, kind *entity.Kind, id string, changes entity.Record, updatedAt time.Time) (entity.Record, error) {
	stmt, err := buildUpdate(kind, id, changes, updatedAt)
	if err != nil {
		return nil, err
	}

	updated, err := r.queryOne(ctx, kind, stmt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update %s %s: %w", kind.Label, id, ErrDuplicate)
		}
		r.log.Error("Failed to update record",
			zap.Error(err),
			zap.String("kind", kind.Name),
			zap.String("id", id),
		)
		return nil, fmt.Errorf("update %s %s: %w", kind.Label, id, err)
	}
	return updated, nil
}

func (r *contentRepository) Delete(ctx context.Context, kind *entity.Kind, id string) (bool, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ident(kind.Table), ident("id"))
	result, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		r.log.Error("Failed to delete record",
			zap.Error(err),
			zap.String("kind", kind.Name),
			zap.String("id", id),
		)
		return false, fmt.Errorf("delete %s %s: %w", kind.Label, id, err)
	}
	return result.RowsAffected() > 0, nil
}

// queryOne returns (nil, nil) when the statement matched no row.
func (r *contentRepository) queryOne(ctx context.Context, kind *entity.Kind, stmt statement) (entity.Record, error) {
	rows, err := r.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	rec := toRecord(kind, recordNames(kind), values)
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
