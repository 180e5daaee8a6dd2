package models

import "strings"

// Record is one entity row keyed by field name, primary key included
type Record map[string]any

// FieldKind determines how a form value is parsed and stored
type FieldKind string

const (
	KindString FieldKind = "string"
	KindText   FieldKind = "text" // free text, sanitized before storage
	KindInt    FieldKind = "int"
	KindFloat  FieldKind = "float"
	KindDate   FieldKind = "date" // YYYY-MM-DD
	KindTime   FieldKind = "time" // HH:MM
	KindEmail  FieldKind = "email"
)

// Reference marks a column holding the primary key of another entity
type Reference struct {
	Entity string `json:"entity"`
	Table  string `json:"table"`
	Column string `json:"column"`
}

// FieldSchema describes a single editable column of an entity. Name is the
// key used by forms and records; Column is the physical column when it differs.
type FieldSchema struct {
	Name      string     `json:"name"`
	Column    string     `json:"-"`
	Label     string     `json:"label"`
	Kind      FieldKind  `json:"kind"`
	Required  bool       `json:"required"`
	MaxLength int        `json:"max_length,omitempty"`
	Min       *float64   `json:"min,omitempty"`
	Max       *float64   `json:"max,omitempty"`
	MinOpen   bool       `json:"min_exclusive,omitempty"` // value must be strictly greater than Min
	Options   []string   `json:"options,omitempty"`       // suggested values, not enforced
	Search    bool       `json:"-"`
	ReadOnly  bool       `json:"read_only,omitempty"` // set by dedicated operations, never from form input
	Ref       *Reference `json:"references,omitempty"`
}

// EntitySchema is the declarative description every entity is validated
// and persisted against.
type EntitySchema struct {
	Entity     string        `json:"entity"`
	Plural     string        `json:"plural"`
	Table      string        `json:"table"`
	PrimaryKey string        `json:"primary_key"`
	Fields     []FieldSchema `json:"fields"`
}

// ColumnName returns the physical column backing the field
func (f FieldSchema) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Names returns the editable field names in declaration order
func (s EntitySchema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Editable returns the fields accepted from form input
func (s EntitySchema) Editable() []FieldSchema {
	fields := make([]FieldSchema, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !f.ReadOnly {
			fields = append(fields, f)
		}
	}
	return fields
}

// Columns returns the physical editable columns in declaration order
func (s EntitySchema) Columns() []string {
	editable := s.Editable()
	cols := make([]string, 0, len(editable))
	for _, f := range editable {
		cols = append(cols, f.ColumnName())
	}
	return cols
}

// SearchColumns returns the columns matched by free-text search
func (s EntitySchema) SearchColumns() []string {
	var cols []string
	for _, f := range s.Fields {
		if f.Search {
			cols = append(cols, f.ColumnName())
		}
	}
	return cols
}

// Field looks a field up case-insensitively, by name or by column
func (s EntitySchema) Field(key string) (FieldSchema, bool) {
	for _, f := range s.Fields {
		if strings.EqualFold(f.Name, key) || strings.EqualFold(f.ColumnName(), key) {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// References returns the fields pointing at other entities
func (s EntitySchema) References() []FieldSchema {
	var refs []FieldSchema
	for _, f := range s.Fields {
		if f.Ref != nil {
			refs = append(refs, f)
		}
	}
	return refs
}

func bound(v float64) *float64 {
	return &v
}
