package admin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/filters"
	"github.com/joestump/govuk-admin/internal/metrics"
	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/store"
)

// FilterOp is the comparison a filter applies.
type FilterOp string

const (
	OpEqual    FilterOp = ""
	OpNotEqual FilterOp = "not_equal"
	OpContains FilterOp = "contains"
	OpEmpty    FilterOp = "empty"
	OpGreater  FilterOp = "gt"
	OpSmaller  FilterOp = "lt"
	OpAfter    FilterOp = "after"
	OpBefore   FilterOp = "before"
)

var opLabels = map[FilterOp]string{
	OpEqual:    "equals",
	OpNotEqual: "not equal",
	OpContains: "contains",
	OpEmpty:    "empty",
	OpGreater:  "greater than",
	OpSmaller:  "smaller than",
	OpAfter:    "after",
	OpBefore:   "before",
}

// opsByType lists the filters offered for each field type, in menu order.
var opsByType = map[schema.FieldType][]FilterOp{
	schema.String:   {OpEqual, OpNotEqual, OpContains, OpEmpty},
	schema.Text:     {OpEqual, OpNotEqual, OpContains, OpEmpty},
	schema.Integer:  {OpEqual, OpNotEqual, OpGreater, OpSmaller, OpEmpty},
	schema.Date:     {OpEqual, OpAfter, OpBefore, OpEmpty},
	schema.DateTime: {OpEqual, OpAfter, OpBefore, OpEmpty},
	schema.Enum:     {OpEqual, OpNotEqual, OpEmpty},
	schema.Relation: {OpEqual},
}

// Filter is one column/operation pair a list can be narrowed by.
type Filter struct {
	Field schema.Field
	Op    FilterOp
	Label string
}

// Arg is the filter's name in query strings: the column, plus "_<op>" for
// anything but equality.
func (f Filter) Arg() string {
	if f.Op == OpEqual {
		return f.Field.Name
	}
	return f.Field.Name + "_" + string(f.Op)
}

// OpLabel describes the operation, e.g. "greater than".
func (f Filter) OpLabel() string {
	return opLabels[f.Op]
}

// IsDate reports whether the filter takes a day/month/year value.
func (f Filter) IsDate() bool {
	return f.Op != OpEmpty && (f.Field.Type == schema.Date || f.Field.Type == schema.DateTime)
}

// Choices returns the values a select-style filter offers. Relation
// choices are loaded by the caller.
func (f Filter) Choices() []schema.Choice {
	if f.Op == OpEmpty {
		return []schema.Choice{{Value: "1", Label: "Yes"}, {Value: "0", Label: "No"}}
	}
	return f.Field.Choices
}

func buildFilters(m *schema.Model, cols []string, labels map[string]string) []Filter {
	var out []Filter
	for _, col := range cols {
		field, ok := m.Field(col)
		if !ok {
			continue
		}
		label := labels[col]
		if label == "" {
			label = field.DisplayLabel()
		}
		for _, op := range opsByType[field.Type] {
			if op == OpEmpty && !field.Nullable && field.Type != schema.String && field.Type != schema.Text {
				continue
			}
			out = append(out, Filter{Field: field, Op: op, Label: label})
		}
	}
	return out
}

// Condition converts a raw filter value into a WHERE clause. Errors wrap
// ErrInvalidFilterValue.
func (f Filter) Condition(raw string) (sq.Sqlizer, error) {
	col := f.Field.Name
	value := strings.TrimSpace(raw)

	if f.Op == OpEmpty {
		var empty sq.Sqlizer = sq.Eq{col: nil}
		if f.Field.Type == schema.String || f.Field.Type == schema.Text {
			empty = sq.Or{sq.Eq{col: nil}, sq.Eq{col: ""}}
		}
		switch value {
		case "1":
			return empty, nil
		case "0":
			if f.Field.Type == schema.String || f.Field.Type == schema.Text {
				return sq.And{sq.NotEq{col: nil}, sq.NotEq{col: ""}}, nil
			}
			return sq.NotEq{col: nil}, nil
		default:
			return nil, invalid(f, raw, "must be 1 or 0")
		}
	}

	switch f.Field.Type {
	case schema.Integer:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, invalid(f, raw, "must be a whole number")
		}
		switch f.Op {
		case OpNotEqual:
			return sq.NotEq{col: n}, nil
		case OpGreater:
			return sq.Gt{col: n}, nil
		case OpSmaller:
			return sq.Lt{col: n}, nil
		default:
			return sq.Eq{col: n}, nil
		}

	case schema.Date, schema.DateTime:
		day, err := time.Parse(store.DateLayout, value)
		if err != nil {
			return nil, invalid(f, raw, "must be a real date")
		}
		return dateCondition(f, day), nil

	case schema.Enum:
		if !hasChoice(f.Field.Choices, value) {
			return nil, invalid(f, raw, "is not an allowed choice")
		}
		if f.Op == OpNotEqual {
			return sq.NotEq{col: value}, nil
		}
		return sq.Eq{col: value}, nil

	case schema.Relation:
		if value == "" {
			return nil, invalid(f, raw, "must not be blank")
		}
		return sq.Eq{col: value}, nil

	default:
		switch f.Op {
		case OpNotEqual:
			return sq.NotEq{col: value}, nil
		case OpContains:
			return sq.Expr("LOWER("+col+") LIKE ?", "%"+strings.ToLower(value)+"%"), nil
		default:
			return sq.Eq{col: value}, nil
		}
	}
}

// dateCondition compares against stored text. DATE columns hold
// YYYY-MM-DD; DATETIME columns hold YYYY-MM-DD HH:MM:SS, so equality there
// covers the whole day.
func dateCondition(f Filter, day time.Time) sq.Sqlizer {
	col := f.Field.Name
	if f.Field.Type == schema.Date {
		d := day.Format(store.DateLayout)
		switch f.Op {
		case OpAfter:
			return sq.Gt{col: d}
		case OpBefore:
			return sq.Lt{col: d}
		default:
			return sq.Eq{col: d}
		}
	}

	start := day.Format(store.DateTimeLayout)
	end := day.AddDate(0, 0, 1).Format(store.DateTimeLayout)
	switch f.Op {
	case OpAfter:
		return sq.GtOrEq{col: end}
	case OpBefore:
		return sq.Lt{col: start}
	default:
		return sq.And{sq.GtOrEq{col: start}, sq.Lt{col: end}}
	}
}

func hasChoice(choices []schema.Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

func invalid(f Filter, raw, reason string) error {
	return fmt.Errorf("%w: %s %s %q %s", ErrInvalidFilterValue, f.Label, f.OpLabel(), raw, reason)
}

// ActiveFilter is a filter applied to the current request.
type ActiveFilter struct {
	Position int
	Key      string
	Filter   Filter
	Value    string
	Cond     sq.Sqlizer
}

// InvalidFilter is a filter parameter that was ignored.
type InvalidFilter struct {
	Key   string
	Value string
	Err   error
}

// FilterSet is the outcome of parsing the filter parameters of a request.
type FilterSet struct {
	Active  []ActiveFilter
	Invalid []InvalidFilter
}

// Conditions returns the WHERE clauses of the active filters.
func (fs FilterSet) Conditions() []sq.Sqlizer {
	out := make([]sq.Sqlizer, 0, len(fs.Active))
	for _, a := range fs.Active {
		out = append(out, a.Cond)
	}
	return out
}

// ParseFilterArgs reads filter parameters from pc and converts each into a
// condition, ordered by position. Values that do not parse are returned in
// FilterSet.Invalid rather than failing the request. Date filters expect
// their day, month and year to have been combined already; see FilterArgs.
func (v *ModelView) ParseFilterArgs(pc *filters.ParamContext) (FilterSet, error) {
	byArg := make(map[string]Filter, len(v.filters))
	for _, f := range v.filters {
		byArg[f.Arg()] = f
	}

	var set FilterSet
	seenPartial := map[string]bool{}
	args := pc.Args()
	for _, key := range args.Keys() {
		pos, arg, isFilter := filters.ParseFilterKey(key)
		if !isFilter {
			continue
		}
		value := args.Get(key)

		f, ok := byArg[arg]
		if !ok {
			if base, partial := dateBase(key); partial {
				if _, baseArg, ok := filters.ParseFilterKey(base); ok {
					if bf, known := byArg[baseArg]; known && !seenPartial[base] {
						seenPartial[base] = true
						set.Invalid = append(set.Invalid, InvalidFilter{
							Key: base,
							Err: invalid(bf, "", "needs a day, month and year"),
						})
					}
				}
			}
			continue
		}

		cond, err := f.Condition(value)
		if err != nil {
			set.Invalid = append(set.Invalid, InvalidFilter{Key: key, Value: value, Err: err})
			continue
		}
		set.Active = append(set.Active, ActiveFilter{
			Position: pos,
			Key:      key,
			Filter:   f,
			Value:    strings.TrimSpace(value),
			Cond:     cond,
		})
	}

	sort.SliceStable(set.Active, func(i, j int) bool {
		return set.Active[i].Position < set.Active[j].Position
	})
	return set, nil
}

// FilterArgs combines date filter components and parses the result with
// ParseFilterArgs. pc holds the request's own parameters again on return.
func (v *ModelView) FilterArgs(pc *filters.ParamContext) (FilterSet, error) {
	raw := pc.Args()
	set, err := filters.WithNormalized(pc, func(normalized filters.Args) (FilterSet, error) {
		for key := range normalized {
			if !raw.Has(key) {
				metrics.DateFiltersCombinedTotal.WithLabelValues(v.Endpoint).Inc()
			}
		}
		return v.ParseFilterArgs(pc)
	})
	if err != nil {
		return FilterSet{}, err
	}
	for _, inv := range set.Invalid {
		metrics.InvalidFilterValuesTotal.WithLabelValues(v.Endpoint).Inc()
		v.Logger.Debug("ignoring filter", zap.String("key", inv.Key), zap.Error(inv.Err))
	}
	return set, nil
}

func dateBase(key string) (string, bool) {
	for _, suffix := range []string{filters.DaySuffix, filters.MonthSuffix, filters.YearSuffix} {
		if base, ok := strings.CutSuffix(key, suffix); ok {
			return base, true
		}
	}
	return "", false
}
