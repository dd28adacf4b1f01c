package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/filters"
	"github.com/joestump/govuk-admin/internal/metrics"
	"github.com/joestump/govuk-admin/internal/pagination"
	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/session"
)

const confirmActionArg = "_confirm_action"

// ListPage is the template data for a model's list view.
type ListPage struct {
	BasePage
	View       *admin.ModelView
	Columns    []ListColumn
	Rows       []ListRow
	Total      int
	Pagination *pagination.Params
	Search     string
	// Hidden carries sort and page size through the filter form.
	Hidden []HiddenArg
	// SearchKeep and ActionKeep carry the rest of the query through the
	// search form and the row selection form.
	SearchKeep    []HiddenArg
	ActionKeep    []HiddenArg
	CreateURL     string
	FilterInputs  []FilterInput
	ActiveFilters []ActiveFilterView
	ResetURL      string
	PageSizes     []PageSizeLink
	Actions       []admin.Action
	Confirm       *ConfirmAction
	ReturnURL     string
	ExportURL     string
}

// ListColumn is one table heading.
type ListColumn struct {
	Name        string
	Label       string
	Description string
	Sortable    bool
	SortURL     string
	// Sort is "ascending", "descending" or "none" for aria-sort.
	Sort string
}

// ListRow is one table row.
type ListRow struct {
	ID      string
	EditURL string
	Cells   []template.HTML
}

// HiddenArg is a name/value pair rendered as a hidden input.
type HiddenArg struct {
	Name  string
	Value string
}

// FilterInput is one input of the filter panel. Its name is
// flt<position>_<arg>; blank inputs are dropped from the query.
type FilterInput struct {
	Name    string
	Label   string
	OpLabel string
	IsDate  bool
	Choices []schema.Choice
	Value   string
	Day     string
	Month   string
	Year    string
}

// ActiveFilterView is an applied filter with its removal link.
type ActiveFilterView struct {
	Label     string
	OpLabel   string
	Value     string
	RemoveURL string
}

// PageSizeLink switches the number of rows per page.
type PageSizeLink struct {
	Size    int
	URL     string
	Current bool
}

// ConfirmAction asks the user to confirm a bulk action on the selected rows.
type ConfirmAction struct {
	Action admin.Action
	IDs    []string
	URL    string
}

// List renders GET /admin/{endpoint}/.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	ctx := r.Context()
	base := v.URL("")

	args, err := v.ParseListArgs(r.URL.Query())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	rows, total, err := h.records.List(ctx, v.Model, v.Query(args))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pages := pagination.TotalPages(total, args.PageSize)
	if args.Page >= pages {
		http.Redirect(w, r, args.PageURL(base, pages-1), http.StatusSeeOther)
		return
	}

	labels, err := h.relationLabels(ctx, v, v.ColumnList, rows)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := ListPage{
		BasePage:  h.basePage(r, v.Name, v),
		View:      v,
		Total:     total,
		Search:    args.Search,
		ResetURL:  args.ResetURL(base),
		Actions:   v.Actions(),
		ReturnURL: args.PageURL(base, args.Page),
	}
	if v.CanExport {
		data.ExportURL = args.PageURL(v.URL("export/csv/"), 0)
	}
	for _, inv := range args.Filters.Invalid {
		data.Flashes = append(data.Flashes, session.Flash{Category: session.Warning, Message: invalidFilterMessage(inv)})
	}

	for _, col := range v.ColumnList {
		lc := ListColumn{
			Name:        col,
			Label:       v.ColumnLabel(col),
			Description: v.ColumnDescription(col),
			Sortable:    v.IsSortable(col),
			Sort:        "none",
		}
		if lc.Sortable {
			lc.SortURL = args.SortURL(base, col)
		}
		if col == args.Sort {
			lc.Sort = "ascending"
			if args.Desc {
				lc.Sort = "descending"
			}
		}
		data.Columns = append(data.Columns, lc)
	}

	for _, rec := range rows {
		id := rec.ID(v.Model)
		row := ListRow{ID: id}
		if v.CanEdit {
			row.EditURL = v.URL("edit/") + "?id=" + urlEscape(id)
		} else if v.CanViewDetails {
			row.EditURL = v.URL("details/") + "?id=" + urlEscape(id)
		}
		for _, col := range v.ColumnList {
			row.Cells = append(row.Cells, v.FormatListCell(admin.Cell{Record: rec, Column: col, Labels: labels}))
		}
		data.Rows = append(data.Rows, row)
	}

	if pages > 1 {
		params, err := pagination.Build(args.Page, pages, func(p int) string { return args.PageURL(base, p) })
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		data.Pagination = &params
	}

	if v.CanSetPageSize {
		for _, n := range v.PageSizeOptions {
			data.PageSizes = append(data.PageSizes, PageSizeLink{Size: n, URL: args.PageSizeURL(base, n), Current: n == args.PageSize})
		}
	}

	data.Hidden = hiddenArgs(args)
	data.SearchKeep = keepArgs(args, "search", "page", confirmActionArg, "rowid")
	data.ActionKeep = keepArgs(args, confirmActionArg, "rowid")
	if v.CanCreate {
		data.CreateURL = v.URL("new/") + encodeQuery(url.Values{"url": {data.ReturnURL}})
	}
	if err := h.filterPanel(r, v, args, &data); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.confirmBanner(r, v, &data)

	metrics.ListRendersTotal.WithLabelValues(v.Endpoint).Inc()
	render(w, http.StatusOK, "admin/list.html", data)
}

// hiddenArgs keeps sort order and page size when the search or filter form
// is submitted.
func hiddenArgs(args admin.ListArgs) []HiddenArg {
	q := args.Values()
	var out []HiddenArg
	for _, k := range []string{"sort", "desc", "page_size"} {
		if val := q.Get(k); val != "" {
			out = append(out, HiddenArg{Name: k, Value: val})
		}
	}
	return out
}

// keepArgs returns every query parameter except the dropped ones, in key
// order.
func keepArgs(args admin.ListArgs, drop ...string) []HiddenArg {
	q := args.Values()
	for _, k := range drop {
		q.Del(k)
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []HiddenArg
	for _, k := range keys {
		for _, val := range q[k] {
			out = append(out, HiddenArg{Name: k, Value: val})
		}
	}
	return out
}

// filterKeys maps each filter argument in raw to the key that carried it, so
// the panel is prefilled whatever position a link used.
func filterKeys(raw url.Values) map[string]string {
	out := map[string]string{}
	for key := range raw {
		base := key
		for _, suffix := range []string{filters.DaySuffix, filters.MonthSuffix, filters.YearSuffix} {
			base = strings.TrimSuffix(base, suffix)
		}
		if _, arg, ok := filters.ParseFilterKey(base); ok {
			out[arg] = base
		}
	}
	return out
}

func (h *AdminHandler) filterPanel(r *http.Request, v *admin.ModelView, args admin.ListArgs, data *ListPage) error {
	raw := args.Values()

	keys := filterKeys(raw)
	for pos, f := range v.Filters() {
		name := filters.FilterKey(pos, f.Arg())
		src, ok := keys[f.Arg()]
		if !ok {
			src = name
		}
		in := FilterInput{
			Name:    name,
			Label:   f.Label,
			OpLabel: f.OpLabel(),
			IsDate:  f.IsDate(),
			Choices: f.Choices(),
			Value:   raw.Get(src),
			Day:     raw.Get(src + filters.DaySuffix),
			Month:   raw.Get(src + filters.MonthSuffix),
			Year:    raw.Get(src + filters.YearSuffix),
		}
		if f.Field.Type == schema.Relation && f.Op != admin.OpEmpty {
			target, ok := v.RelatedModel(f.Field)
			if ok {
				opts, err := h.records.Options(r.Context(), target, f.Field.Relation.Display)
				if err != nil {
					return err
				}
				in.Choices = opts
			}
		}
		data.FilterInputs = append(data.FilterInputs, in)
	}

	relLabels := map[string]map[string]string{}
	for _, a := range args.Filters.Active {
		value := a.Value
		switch {
		case a.Filter.Op == admin.OpEmpty:
			value = map[string]string{"1": "Yes", "0": "No"}[value]
		case a.Filter.Field.Type == schema.Enum:
			value = a.Filter.Field.ChoiceLabel(value)
		case a.Filter.Field.Type == schema.Relation:
			if target, ok := v.RelatedModel(a.Filter.Field); ok {
				if _, done := relLabels[a.Key]; !done {
					m, err := h.records.Labels(r.Context(), target, a.Filter.Field.Relation.Display, []string{value})
					if err != nil {
						return err
					}
					relLabels[a.Key] = m
				}
				if l, ok := relLabels[a.Key][value]; ok {
					value = l
				}
			}
		}
		data.ActiveFilters = append(data.ActiveFilters, ActiveFilterView{
			Label:     a.Filter.Label,
			OpLabel:   a.Filter.OpLabel(),
			Value:     value,
			RemoveURL: args.RemoveFilterURL(v.URL(""), a),
		})
	}
	return nil
}

// confirmBanner fills in the confirmation step of a bulk action requested
// with ?_confirm_action=<name>&rowid=...
func (h *AdminHandler) confirmBanner(r *http.Request, v *admin.ModelView, data *ListPage) {
	q := r.URL.Query()
	name := q.Get(confirmActionArg)
	if name == "" {
		return
	}
	action, ok := v.Action(name)
	if !ok {
		data.Flashes = append(data.Flashes, session.Flash{Category: session.Error, Message: "Invalid action."})
		return
	}
	ids := q["rowid"]
	if len(ids) == 0 {
		data.Flashes = append(data.Flashes, session.Flash{Category: session.Error, Message: "Please select at least one record."})
		return
	}
	ret := q
	ret.Del(confirmActionArg)
	ret.Del("rowid")
	data.Confirm = &ConfirmAction{Action: action, IDs: ids, URL: v.URL("") + encodeQuery(ret)}
}

// Action handles POST /admin/{endpoint}/action/.
func (h *AdminHandler) Action(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	back := returnURL(r, v)
	name := r.PostForm.Get("action")

	n, err := v.RunAction(r.Context(), h.records, name, r.PostForm["rowid"])
	switch {
	case errors.Is(err, admin.ErrNoSelection):
		h.flash.Add(r.Context(), session.Error, "Please select at least one record.")
	case errors.Is(err, admin.ErrUnknownAction):
		h.flash.Add(r.Context(), session.Error, "Invalid action.")
	case err != nil:
		h.serverError(w, r, err)
		return
	default:
		h.flash.Add(r.Context(), session.Success, pluralRecords(n)+" were successfully deleted.")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func invalidFilterMessage(inv admin.InvalidFilter) string {
	msg := strings.TrimPrefix(inv.Err.Error(), admin.ErrInvalidFilterValue.Error()+": ")
	return "Filter ignored: " + msg
}

func urlEscape(s string) string { return url.QueryEscape(s) }

func encodeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func pluralRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return strconv.Itoa(n) + " records"
}

// Export handles GET /admin/{endpoint}/export/csv/, honouring the list's
// filters, search and sort.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.CanExport {
		h.notFound(w, r)
		return
	}
	args, err := v.ParseListArgs(r.URL.Query())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	rows, _, err := h.records.List(r.Context(), v.Model, v.ExportQuery(args))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	labels, err := h.relationLabels(r.Context(), v, v.ColumnExportList, rows)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", v.Endpoint, time.Now().UTC().Format("2006-01-02_15-04-05"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := v.WriteCSV(w, rows, labels); err != nil {
		h.logger.Error("export failed", zap.String("view", v.Endpoint), zap.Error(err))
	}
}
