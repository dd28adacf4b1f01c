// Package admin turns schema models into admin views: list columns, filters,
// search, forms, formatters, bulk actions and CSV export. HTTP wiring lives in
// internal/handler; this package only decides what to show and how to query.
package admin

import (
	"errors"

	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/schema"
)

var (
	// ErrInvalidFilterValue is wrapped by every filter value that fails to
	// parse for its column type.
	ErrInvalidFilterValue = errors.New("invalid filter value")
	// ErrNoSelection is returned when a bulk action is run without any rows.
	ErrNoSelection = errors.New("no records selected")
	// ErrUnknownAction is returned for an action name the view does not offer.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownView is returned by Admin.View for an unregistered endpoint.
	ErrUnknownView = errors.New("unknown view")
)

const defaultPageSize = 20

// Prefix is the URL path every admin page lives under.
const Prefix = "/admin"

// ModelView configures how one model is listed, filtered and edited.
type ModelView struct {
	Model *schema.Model
	// Name is shown in navigation; Endpoint is the URL segment under /admin/.
	// Both default from the model name.
	Name     string
	Endpoint string
	Category string

	PageSize        int
	CanSetPageSize  bool
	PageSizeOptions []int

	CanCreate      bool
	CanEdit        bool
	CanDelete      bool
	CanViewDetails bool
	CanExport      bool

	// ColumnList is the ordered set of list columns; empty means every
	// non-key column.
	ColumnList         []string
	ColumnSortable     []string
	ColumnFilters      []string
	SearchableColumns  []string
	ColumnExportList   []string
	ColumnLabels       map[string]string
	ColumnDescriptions map[string]string
	ColumnFormatters   map[string]Formatter

	// FormRules adds validator tags per field, e.g. "email".
	FormRules map[string]string
	// FormWidgetArgs are merged over the converter's default widget args.
	FormWidgetArgs map[string]map[string]string
	// DefaultSort is the list sort column when the request names none.
	DefaultSort string
	DefaultDesc bool

	// Models resolves relation targets by name. Set by Admin.AddView.
	Models map[string]*schema.Model

	Logger *zap.Logger

	filters []Filter
}

// NewModelView returns a view for m with create, edit and delete enabled.
func NewModelView(m *schema.Model) *ModelView {
	return &ModelView{
		Model:     m,
		CanCreate: true,
		CanEdit:   true,
		CanDelete: true,
	}
}

func (v *ModelView) setDefaults() {
	if v.Name == "" {
		v.Name = v.Model.Name
	}
	if v.PageSize <= 0 {
		v.PageSize = defaultPageSize
	}
	if len(v.ColumnList) == 0 {
		for _, f := range v.Model.Fields {
			if f.Name != v.Model.PrimaryKey {
				v.ColumnList = append(v.ColumnList, f.Name)
			}
		}
	}
	if v.ColumnSortable == nil {
		v.ColumnSortable = v.ColumnList
	}
	if len(v.ColumnExportList) == 0 {
		v.ColumnExportList = append([]string{v.Model.PrimaryKey}, v.ColumnList...)
	}
	if v.Logger == nil {
		v.Logger = zap.NewNop()
	}
	v.filters = buildFilters(v.Model, v.ColumnFilters, v.ColumnLabels)
}

// URL returns the path of one of the view's pages, e.g. URL("edit/").
func (v *ModelView) URL(page string) string {
	return Prefix + "/" + v.Endpoint + "/" + page
}

// ColumnLabel returns the heading for a list or form column.
func (v *ModelView) ColumnLabel(col string) string {
	if l, ok := v.ColumnLabels[col]; ok {
		return l
	}
	if f, ok := v.Model.Field(col); ok {
		return f.DisplayLabel()
	}
	return schema.Humanize(col)
}

// ColumnDescription returns the hint shown under a column heading.
func (v *ModelView) ColumnDescription(col string) string {
	return v.ColumnDescriptions[col]
}

// IsSortable reports whether the list can be ordered by col.
func (v *ModelView) IsSortable(col string) bool {
	for _, c := range v.ColumnSortable {
		if c == col {
			return true
		}
	}
	return false
}

// AllowsPageSize reports whether n may be requested through page_size.
func (v *ModelView) AllowsPageSize(n int) bool {
	if !v.CanSetPageSize {
		return false
	}
	for _, opt := range v.PageSizeOptions {
		if opt == n {
			return true
		}
	}
	return false
}

// Filters returns the filters offered by the view in declaration order.
func (v *ModelView) Filters() []Filter {
	return v.filters
}

// RelatedModel returns the target model of a relation field.
func (v *ModelView) RelatedModel(f schema.Field) (*schema.Model, bool) {
	if f.Relation == nil {
		return nil, false
	}
	m, ok := v.Models[f.Relation.Model]
	return m, ok
}
