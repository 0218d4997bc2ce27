package entity

import (
	"strings"
	"unicode"
)

type FieldType string

const (
	FieldString     FieldType = "string"
	FieldText       FieldType = "text"
	FieldInteger    FieldType = "integer"
	FieldNumber     FieldType = "number"
	FieldBoolean    FieldType = "boolean"
	FieldEnum       FieldType = "enum"
	FieldStringList FieldType = "string_list"
)

// Field describes one typed attribute of a content kind.
type Field struct {
	Name      string // json name
	Column    string // derived from Name when empty
	Type      FieldType
	Required  bool
	Enum      []string
	Rules     string // validator tag applied to non-empty values
	Default   any
	Filter    string // query parameter name, empty when not filterable
	Protected bool   // keeps its default on public submissions
}

// Access splits who may do what with a kind.
type Access struct {
	PublicRead   bool
	PublicCreate bool
	AdminCreate  bool
	AdminUpdate  bool
	AdminDelete  bool
}

// Kind is the schema descriptor every generic CRUD operation runs against.
type Kind struct {
	Name    string // route segment, e.g. "case-studies"
	Label   string // singular, for messages
	Table   string
	Lookup  string // unique field used for public lookup, empty when none
	OrderBy string // column
	Fields  []Field
	Access  Access

	byName   map[string]int
	byFilter map[string]int
}

func newKind(k Kind) *Kind {
	k.byName = make(map[string]int, len(k.Fields))
	k.byFilter = make(map[string]int)
	for i := range k.Fields {
		f := &k.Fields[i]
		if f.Column == "" {
			f.Column = ToSnake(f.Name)
		}
		k.byName[f.Name] = i
		if f.Filter != "" {
			k.byFilter[f.Filter] = i
		}
	}
	return &k
}

func (k *Kind) Field(name string) (Field, bool) {
	i, ok := k.byName[name]
	if !ok {
		return Field{}, false
	}
	return k.Fields[i], true
}

// FieldByFilter resolves a query parameter name to its field.
func (k *Kind) FieldByFilter(param string) (Field, bool) {
	i, ok := k.byFilter[param]
	if !ok {
		return Field{}, false
	}
	return k.Fields[i], true
}

// Has reports whether the kind declares a field called name.
func (k *Kind) Has(name string) bool {
	_, ok := k.byName[name]
	return ok
}

// Filters lists the accepted query parameter names.
func (k *Kind) Filters() []string {
	out := make([]string, 0, len(k.byFilter))
	for _, f := range k.Fields {
		if f.Filter != "" {
			out = append(out, f.Filter)
		}
	}
	return out
}

// Record is one stored entity keyed by json field name, including id,
// createdAt and updatedAt.
type Record map[string]any

const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldIsActive  = "isActive"
	FieldIsRead    = "isRead"
)

func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// String returns a string attribute or "".
func (r Record) String(name string) string {
	v, _ := r[name].(string)
	return v
}

// ToSnake converts camelCase json names to snake_case column names.
func ToSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
