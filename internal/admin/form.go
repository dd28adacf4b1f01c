package admin

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/store"
)

// Widget names the template used to render a form field.
type Widget string

const (
	TextInput        Widget = "text_input"
	Textarea         Widget = "textarea"
	DateInput        Widget = "date_input"
	DateTimeInput    Widget = "datetime_input"
	Select           Widget = "select"
	SelectWithSearch Widget = "select_with_search"
)

// DateFormat is the order the date input shows its day, month and year boxes.
const DateFormat = "%d %m %Y"

type converter struct {
	widget Widget
	args   map[string]string
}

var converters = map[schema.FieldType]converter{
	schema.String:   {widget: TextInput},
	schema.Text:     {widget: Textarea, args: map[string]string{"rows": "5"}},
	schema.Integer:  {widget: TextInput, args: map[string]string{"inputmode": "numeric", "spellcheck": "false"}},
	schema.Date:     {widget: DateInput, args: map[string]string{"format": DateFormat}},
	schema.DateTime: {widget: DateTimeInput, args: map[string]string{"format": DateFormat}},
	schema.Enum:     {widget: Select},
	schema.Relation: {widget: SelectWithSearch},
}

var validate = validator.New()

// FormField is one rendered input.
type FormField struct {
	Name     string
	Label    string
	Hint     string
	Widget   Widget
	Args     map[string]string
	Required bool
	Type     schema.FieldType

	Value string
	// Day, Month, Year and Time hold date widget parts.
	Day, Month, Year, Time string

	Options []schema.Choice
	Error   string
}

// Form is a create or edit form for one model.
type Form struct {
	Fields []*FormField
}

// Errors returns the fields that failed validation, in form order.
func (f *Form) Errors() []*FormField {
	var out []*FormField
	for _, field := range f.Fields {
		if field.Error != "" {
			out = append(out, field)
		}
	}
	return out
}

// Valid reports whether no field has an error.
func (f *Form) Valid() bool {
	return len(f.Errors()) == 0
}

// NewForm builds the form for rec, or an empty one when rec is nil.
// options supplies the choices of relation fields by field name.
func (v *ModelView) NewForm(rec store.Record, options map[string][]schema.Choice) *Form {
	form := &Form{}
	for _, field := range v.Model.Editable() {
		conv := converters[field.Type]
		ff := &FormField{
			Name:     field.Name,
			Label:    v.ColumnLabel(field.Name),
			Hint:     v.ColumnDescription(field.Name),
			Widget:   conv.widget,
			Args:     mergeArgs(conv.args, v.FormWidgetArgs[field.Name]),
			Required: !field.Nullable,
			Type:     field.Type,
			Options:  field.Choices,
		}
		if field.Type == schema.Relation {
			ff.Options = options[field.Name]
		}
		if rec != nil {
			setFieldValue(ff, rec[field.Name])
		}
		form.Fields = append(form.Fields, ff)
	}
	return form
}

func mergeArgs(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func setFieldValue(ff *FormField, value any) {
	if value == nil {
		return
	}
	switch ff.Type {
	case schema.Date:
		if t, err := time.Parse(store.DateLayout, store.FormatDate(value)); err == nil {
			ff.Day, ff.Month, ff.Year = strconv.Itoa(t.Day()), strconv.Itoa(int(t.Month())), strconv.Itoa(t.Year())
		}
	case schema.DateTime:
		if t, ok := store.ParseTime(value); ok {
			ff.Day, ff.Month, ff.Year = strconv.Itoa(t.Day()), strconv.Itoa(int(t.Month())), strconv.Itoa(t.Year())
			ff.Time = t.Format("15:04")
		}
	default:
		ff.Value = store.FormatValue(value)
	}
}

// Bind copies posted values into form and validates them. It returns the
// values to store, converted to their column types; the record is only
// meaningful when ok is true.
func (v *ModelView) Bind(form *Form, posted url.Values) (rec store.Record, ok bool) {
	rec = store.Record{}
	for _, ff := range form.Fields {
		ff.Error = ""
		value, msg := v.bindField(ff, posted)
		if msg != "" {
			ff.Error = msg
			continue
		}
		rec[ff.Name] = value
	}
	return rec, form.Valid()
}

// bindField returns the converted value, or a message for the user.
func (v *ModelView) bindField(ff *FormField, posted url.Values) (any, string) {
	label := ff.Label
	lower := strings.ToLower(label)

	if ff.Widget == DateInput || ff.Widget == DateTimeInput {
		ff.Day = strings.TrimSpace(posted.Get(ff.Name + "-day"))
		ff.Month = strings.TrimSpace(posted.Get(ff.Name + "-month"))
		ff.Year = strings.TrimSpace(posted.Get(ff.Name + "-year"))
		ff.Time = strings.TrimSpace(posted.Get(ff.Name + "-time"))
		return bindDate(ff, lower)
	}

	ff.Value = strings.TrimSpace(posted.Get(ff.Name))
	if ff.Value == "" {
		if ff.Required {
			if ff.Widget == Select || ff.Widget == SelectWithSearch {
				return nil, fmt.Sprintf("Select %s", lower)
			}
			return nil, fmt.Sprintf("Enter %s", lower)
		}
		return nil, ""
	}

	if rule := v.FormRules[ff.Name]; rule != "" {
		if err := validate.Var(ff.Value, rule); err != nil {
			return nil, ruleMessage(label, err)
		}
	}

	switch ff.Type {
	case schema.Integer:
		n, err := strconv.ParseInt(ff.Value, 10, 64)
		if err != nil {
			return nil, fmt.Sprintf("%s must be a whole number", label)
		}
		return n, ""
	case schema.Enum, schema.Relation:
		if !hasChoice(ff.Options, ff.Value) {
			return nil, fmt.Sprintf("Select %s from the list", lower)
		}
		return ff.Value, ""
	default:
		return ff.Value, ""
	}
}

func bindDate(ff *FormField, lower string) (any, string) {
	parts := []string{ff.Day, ff.Month, ff.Year}
	filled := 0
	for _, p := range parts {
		if p != "" {
			filled++
		}
	}
	if filled == 0 && ff.Time == "" {
		if ff.Required {
			return nil, fmt.Sprintf("Enter %s", lower)
		}
		return nil, ""
	}
	if filled < len(parts) {
		return nil, fmt.Sprintf("%s must include a day, month and year", ff.Label)
	}

	day, err := time.Parse("2006-1-2", ff.Year+"-"+ff.Month+"-"+ff.Day)
	if err != nil || len(ff.Year) != 4 {
		return nil, fmt.Sprintf("%s must be a real date", ff.Label)
	}
	if ff.Widget == DateInput {
		return day.Format(store.DateLayout), ""
	}

	clock := time.Time{}
	if ff.Time != "" {
		var perr error
		clock, perr = parseClock(ff.Time)
		if perr != nil {
			return nil, fmt.Sprintf("%s must have a time like 14:30", ff.Label)
		}
	}
	ts := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
	return ts.Format(store.DateTimeLayout), ""
}

func parseClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func ruleMessage(label string, err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return fmt.Sprintf("%s is not valid", label)
	}
	switch verrs[0].Tag() {
	case "email":
		return fmt.Sprintf("Enter %s in the correct format, like name@example.com", strings.ToLower(label))
	case "max":
		return fmt.Sprintf("%s must be %s characters or fewer", label, verrs[0].Param())
	case "min":
		return fmt.Sprintf("%s must be %s characters or more", label, verrs[0].Param())
	default:
		return fmt.Sprintf("%s is not valid", label)
	}
}
