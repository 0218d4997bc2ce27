package repository

import (
	"context"
	"fmt"
	"strings"

	"consultancy-cms/internal/data/entity"
	"consultancy-cms/pkg/database"

	"go.uber.org/zap"
)

var staticSchema = []string{
	`CREATE TABLE IF NOT EXISTS verification_codes (
		email      TEXT PRIMARY KEY,
		code_hash  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_sessions (
		id           UUID PRIMARY KEY,
		subject      TEXT NOT NULL,
		email        TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		expires_at   TIMESTAMPTZ NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS admin_sessions_expires_at_idx ON admin_sessions (expires_at)`,
	`CREATE TABLE IF NOT EXISTS object_acls (
		object_path TEXT PRIMARY KEY,
		visibility  TEXT NOT NULL,
		owner       TEXT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
}

func columnType(t entity.FieldType) string {
	switch t {
	case entity.FieldInteger:
		return "BIGINT"
	case entity.FieldNumber:
		return "DOUBLE PRECISION"
	case entity.FieldBoolean:
		return "BOOLEAN"
	case entity.FieldStringList:
		return "TEXT[]"
	default:
		return "TEXT"
	}
}

// kindSchema returns the DDL for one kind. Columns added to a descriptor
// after the table exists are picked up by ADD COLUMN IF NOT EXISTS.
func kindSchema(kind *entity.Kind) []string {
	table := ident(kind.Table)
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s TEXT PRIMARY KEY,
		%s TIMESTAMPTZ NOT NULL,
		%s TIMESTAMPTZ NOT NULL
	)`, table, ident("id"), ident("created_at"), ident("updated_at")),
	}

	for _, f := range kind.Fields {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
			table, ident(f.Column), columnType(f.Type)))
	}

	if kind.Lookup != "" {
		if f, ok := kind.Field(kind.Lookup); ok {
			index := ident(strings.Join([]string{kind.Table, f.Column, "key"}, "_"))
			stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
				index, table, ident(f.Column)))
		}
	}

	return stmts
}

// Migrate creates every table the application needs. It is safe to run on
// every start.
func Migrate(ctx context.Context, db database.PgxIface, kinds []*entity.Kind, log *zap.Logger) error {
	stmts := append([]string{}, staticSchema...)
	for _, kind := range kinds {
		stmts = append(stmts, kindSchema(kind)...)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			log.Error("Schema statement failed", zap.Error(err), zap.String("sql", stmt))
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	log.Info("Schema ready", zap.Int("kinds", len(kinds)), zap.Int("statements", len(stmts)))
	return nil
}
