package admin

import (
	"html/template"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/store"
)

// listTextLimit is how many characters of a Text column a list cell shows.
const listTextLimit = 80

// Labels maps a relation column to the display labels of the keys it holds.
type Labels map[string]map[string]string

// Cell is what a formatter is given to render one value.
type Cell struct {
	View   *ModelView
	Record store.Record
	Column string
	Labels Labels
}

// Value returns the raw column value.
func (c Cell) Value() any { return c.Record[c.Column] }

// Formatter renders a cell as an HTML fragment. The result is sanitised
// before it reaches a template.
type Formatter func(c Cell) string

var (
	cellPolicyOnce sync.Once
	cellPolicy     *bluemonday.Policy
)

func cellSanitizer() *bluemonday.Policy {
	cellPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("strong", "em", "span", "br", "code")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a", "span", "strong")
		policy.AllowRelativeURLs(true)
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.RequireNoFollowOnLinks(false)
		cellPolicy = policy
	})
	return cellPolicy
}

// SanitizeHTML strips everything but a small set of inline elements.
func SanitizeHTML(raw string) template.HTML {
	return template.HTML(strings.TrimSpace(cellSanitizer().Sanitize(raw)))
}

// FormatCell renders a list or details cell. Custom formatters win; other
// values are escaped plain text.
func (v *ModelView) FormatCell(c Cell) template.HTML {
	c.View = v
	if fn, ok := v.ColumnFormatters[c.Column]; ok {
		return SanitizeHTML(fn(c))
	}
	return template.HTML(template.HTMLEscapeString(v.FormatText(c)))
}

// FormatText renders a cell as plain text, as used in list cells and CSV
// exports.
func (v *ModelView) FormatText(c Cell) string {
	value := c.Record[c.Column]
	if value == nil {
		return ""
	}
	field, ok := v.Model.Field(c.Column)
	if !ok {
		return store.FormatValue(value)
	}
	switch field.Type {
	case schema.Date:
		return store.FormatDate(value)
	case schema.DateTime:
		if t, ok := store.ParseTime(value); ok {
			return t.Format(store.DateTimeLayout)
		}
		return store.FormatValue(value)
	case schema.Enum:
		return field.ChoiceLabel(store.FormatValue(value))
	case schema.Relation:
		id := store.FormatValue(value)
		if label, ok := c.Labels[c.Column][id]; ok {
			return label
		}
		return id
	default:
		return store.FormatValue(value)
	}
}

// Truncate shortens s to n characters, adding an ellipsis when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}

// FormatListCell is FormatCell with long text shortened.
func (v *ModelView) FormatListCell(c Cell) template.HTML {
	if _, custom := v.ColumnFormatters[c.Column]; !custom {
		if f, ok := v.Model.Field(c.Column); ok && f.Type == schema.Text {
			return template.HTML(template.HTMLEscapeString(Truncate(v.FormatText(c), listTextLimit)))
		}
	}
	return v.FormatCell(c)
}

// RelationColumns returns the relation fields among cols.
func (v *ModelView) RelationColumns(cols []string) []schema.Field {
	var out []schema.Field
	for _, col := range cols {
		if f, ok := v.Model.Field(col); ok && f.Type == schema.Relation {
			out = append(out, f)
		}
	}
	return out
}
