package repository

import (
	"strings"
	"testing"
	"time"

	"consultancy-cms/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildList_NoFilters(t *testing.T) {
	stmt, err := buildList(entity.Category, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "created_at", "updated_at", "name", "slug", "type", "description", "sort_order" FROM "categories" ORDER BY "sort_order", "created_at", "id"`,
		stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestBuildList_FiltersSortedDeterministic(t *testing.T) {
	filters := map[string]any{"isFeatured": true, "isActive": true}
	s1, err := buildList(entity.Service, filters)
	require.NoError(t, err)
	s2, err := buildList(entity.Service, filters)
	require.NoError(t, err)

	assert.Equal(t, s1.SQL, s2.SQL)
	// isActive < isFeatured
	assert.True(t, strings.HasSuffix(s1.SQL,
		`FROM "services" WHERE "is_active" = $1 AND "is_featured" = $2 ORDER BY "sort_order", "created_at", "id"`))
	assert.Equal(t, []any{true, true}, s1.Args)
}

func TestBuildList_UnknownFilter_ReturnsError(t *testing.T) {
	_, err := buildList(entity.Service, map[string]any{"password": "x"})
	assert.ErrorContains(t, err, `unknown field "password"`)
}

func TestBuildList_CreatedAtOrdering(t *testing.T) {
	stmt, err := buildList(entity.ContactSubmission, map[string]any{"isRead": false})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stmt.SQL, `WHERE "is_read" = $1 ORDER BY "created_at", "id"`))
}

func TestBuildFindBy_ByID(t *testing.T) {
	stmt, err := buildFindBy(entity.SiteSetting, entity.FieldID, "abc")
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "created_at", "updated_at", "key", "value", "description" FROM "site_settings" WHERE "id" = $1`,
		stmt.SQL)
	assert.Equal(t, []any{"abc"}, stmt.Args)
}

func TestBuildInsert_SkipsAbsentFields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := entity.Record{
		entity.FieldID:        "id-1",
		entity.FieldCreatedAt: now,
		entity.FieldUpdatedAt: now,
		"key":                 "site_name",
		"value":               "Acme",
	}

	stmt, err := buildInsert(entity.SiteSetting, rec)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "site_settings" ("id", "created_at", "updated_at", "key", "value") VALUES ($1, $2, $3, $4, $5) RETURNING "id", "created_at", "updated_at", "key", "value", "description"`,
		stmt.SQL)
	assert.Equal(t, []any{"id-1", now, now, "site_name", "Acme"}, stmt.Args)
}

func TestBuildUpdate_SortedWithUpdatedAtAndID(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stmt, err := buildUpdate(entity.SiteSetting, "id-1", entity.Record{"value": "v", "description": "d"}, now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stmt.SQL,
		`UPDATE "site_settings" SET "description" = $1, "value" = $2, "updated_at" = $3 WHERE "id" = $4 RETURNING `))
	assert.Equal(t, []any{"d", "v", now, "id-1"}, stmt.Args)
}

func TestBuildUpdate_EmptyChanges_ReturnsError(t *testing.T) {
	_, err := buildUpdate(entity.SiteSetting, "id-1", entity.Record{}, time.Now())
	assert.ErrorContains(t, err, "no fields to update")
}

func TestBuildUpdate_RejectsBaseColumns(t *testing.T) {
	_, err := buildUpdate(entity.SiteSetting, "id-1", entity.Record{entity.FieldID: "other"}, time.Now())
	assert.Error(t, err)
}

func TestToRecord_NormalizesDriverValues(t *testing.T) {
	names := recordNames(entity.Service)
	values := make([]any, len(names))
	for i, n := range names {
		switch n {
		case "features":
			values[i] = []any{"a", "b"}
		case "technologies":
			values[i] = nil
		case "sortOrder":
			values[i] = int32(3)
		case "title":
			values[i] = "Cloud"
		}
	}

	rec := toRecord(entity.Service, names, values)
	assert.Equal(t, []string{"a", "b"}, rec["features"])
	assert.Equal(t, []string{}, rec["technologies"])
	assert.Equal(t, int64(3), rec["sortOrder"])
	assert.Equal(t, "Cloud", rec.String("title"))
	assert.Nil(t, rec["description"])
}

func TestKindSchema_AddsColumnsAndLookupIndex(t *testing.T) {
	stmts := kindSchema(entity.Technology)
	joined := strings.Join(stmts, "\n")

	assert.Contains(t, stmts[0], `CREATE TABLE IF NOT EXISTS "technologies"`)
	assert.Contains(t, joined, `ALTER TABLE "technologies" ADD COLUMN IF NOT EXISTS "proficiency" BIGINT`)
	assert.Contains(t, joined, `ALTER TABLE "technologies" ADD COLUMN IF NOT EXISTS "is_active" BOOLEAN`)
	assert.Contains(t, joined, `CREATE UNIQUE INDEX IF NOT EXISTS "technologies_slug_key" ON "technologies" ("slug")`)
}

func TestKindSchema_NoLookupNoIndex(t *testing.T) {
	stmts := kindSchema(entity.Testimonial)
	for _, s := range stmts {
		assert.NotContains(t, s, "UNIQUE INDEX")
	}
	assert.Contains(t, strings.Join(stmts, "\n"), `"rating" BIGINT`)
}
