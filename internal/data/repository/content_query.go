package repository

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"consultancy-cms/internal/data/entity"

	"github.com/jackc/pgx/v5"
)

// statement is a parameterized query built from a kind descriptor.
type statement struct {
	SQL  string
	Args []any
}

var baseColumns = []struct{ name, column string }{
	{entity.FieldID, "id"},
	{entity.FieldCreatedAt, "created_at"},
	{entity.FieldUpdatedAt, "updated_at"},
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// recordNames lists json names parallel to selectList.
func recordNames(kind *entity.Kind) []string {
	names := make([]string, 0, len(baseColumns)+len(kind.Fields))
	for _, c := range baseColumns {
		names = append(names, c.name)
	}
	for _, f := range kind.Fields {
		names = append(names, f.Name)
	}
	return names
}

func selectList(kind *entity.Kind) string {
	cols := make([]string, 0, len(baseColumns)+len(kind.Fields))
	for _, c := range baseColumns {
		cols = append(cols, ident(c.column))
	}
	for _, f := range kind.Fields {
		cols = append(cols, ident(f.Column))
	}
	return strings.Join(cols, ", ")
}

func orderClause(kind *entity.Kind) string {
	if kind.OrderBy == "" || kind.OrderBy == "created_at" {
		return " ORDER BY " + ident("created_at") + ", " + ident("id")
	}
	return " ORDER BY " + ident(kind.OrderBy) + ", " + ident("created_at") + ", " + ident("id")
}

// sortedKeys keeps generated SQL deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func columnFor(kind *entity.Kind, name string) (string, error) {
	if name == entity.FieldID {
		return "id", nil
	}
	f, ok := kind.Field(name)
	if !ok {
		return "", fmt.Errorf("unknown field %q for %s", name, kind.Name)
	}
	return f.Column, nil
}

func buildList(kind *entity.Kind, filters map[string]any) (statement, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectList(kind))
	b.WriteString(" FROM ")
	b.WriteString(ident(kind.Table))

	args := make([]any, 0, len(filters))
	for i, name := range sortedKeys(filters) {
		col, err := columnFor(kind, name)
		if err != nil {
			return statement{}, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, filters[name])
		fmt.Fprintf(&b, "%s = $%d", ident(col), len(args))
	}
	b.WriteString(orderClause(kind))

	return statement{SQL: b.String(), Args: args}, nil
}

func buildFindBy(kind *entity.Kind, name string, value any) (statement, error) {
	col, err := columnFor(kind, name)
	if err != nil {
		return statement{}, err
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", selectList(kind), ident(kind.Table), ident(col))
	return statement{SQL: sql, Args: []any{value}}, nil
}

func buildInsert(kind *entity.Kind, rec entity.Record) (statement, error) {
	cols := []string{ident("id"), ident("created_at"), ident("updated_at")}
	args := []any{rec[entity.FieldID], rec[entity.FieldCreatedAt], rec[entity.FieldUpdatedAt]}

	for _, f := range kind.Fields {
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		cols = append(cols, ident(f.Column))
		args = append(args, v)
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		ident(kind.Table),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		selectList(kind),
	)
	return statement{SQL: sql, Args: args}, nil
}

func buildUpdate(kind *entity.Kind, id string, changes entity.Record, updatedAt time.Time) (statement, error) {
	if len(changes) == 0 {
		return statement{}, fmt.Errorf("no fields to update")
	}

	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+2)
	for _, name := range sortedKeys(changes) {
		f, ok := kind.Field(name)
		if !ok {
			return statement{}, fmt.Errorf("unknown field %q for %s", name, kind.Name)
		}
		args = append(args, changes[name])
		sets = append(sets, fmt.Sprintf("%s = $%d", ident(f.Column), len(args)))
	}
	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("%s = $%d", ident("updated_at"), len(args)))
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		ident(kind.Table),
		strings.Join(sets, ", "),
		ident("id"),
		len(args),
		selectList(kind),
	)
	return statement{SQL: sql, Args: args}, nil
}

// normalizeValue turns driver values into the json-friendly shapes the
// service layer works with.
func normalizeValue(f *entity.Field, v any) any {
	switch val := v.(type) {
	case nil:
		if f != nil && f.Type == entity.FieldStringList {
			return []string{}
		}
		return nil
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int:
		return int64(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case time.Time:
		return val.UTC()
	default:
		return val
	}
}

func toRecord(kind *entity.Kind, names []string, values []any) entity.Record {
	rec := make(entity.Record, len(names))
	for i, name := range names {
		if i >= len(values) {
			break
		}
		var field *entity.Field
		if f, ok := kind.Field(name); ok {
			field = &f
		}
		rec[name] = normalizeValue(field, values[i])
	}
	return rec
}
