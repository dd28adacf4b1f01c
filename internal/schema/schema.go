// Package schema describes admin models as static field lists. Models are
// declared once at startup; nothing inspects database metadata at runtime.
package schema

import "strings"

// FieldType is the storage and widget category of a field.
type FieldType string

const (
	String   FieldType = "string"
	Text     FieldType = "text"
	Integer  FieldType = "integer"
	Date     FieldType = "date"
	DateTime FieldType = "datetime"
	Enum     FieldType = "enum"
	Relation FieldType = "relation"
)

// Choice is one allowed value of an Enum field.
type Choice struct {
	Value string
	Label string
}

// RelationSpec points a foreign-key field at another model.
type RelationSpec struct {
	Model   string // target model name
	Display string // target field shown in place of the key
}

// Field describes one column.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Nullable bool
	Unique   bool
	Choices  []Choice
	Relation *RelationSpec
	// Generated fields (auto-increment ids, defaults) are never shown on
	// create/edit forms.
	Generated bool
}

// DisplayLabel returns Label, or a title-cased form of Name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return Humanize(f.Name)
}

// ChoiceLabel returns the label for value, or value itself.
func (f Field) ChoiceLabel(value string) string {
	for _, c := range f.Choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Model describes a table and its fields.
type Model struct {
	Name       string
	Table      string
	PrimaryKey string
	Fields     []Field
	// NewKey, when set, supplies primary keys for inserts instead of the
	// database.
	NewKey func() string
}

// Field returns the named field.
func (m *Model) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns every column name in declaration order.
func (m *Model) Columns() []string {
	cols := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// Editable returns the fields shown on create and edit forms.
func (m *Model) Editable() []Field {
	out := make([]Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if f.Generated {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Humanize turns a snake_case name into a label: "last_logged_in_at" becomes
// "Last logged in at".
func Humanize(name string) string {
	s := strings.TrimSuffix(name, "_id")
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
