package admin

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/joestump/govuk-admin/internal/filters"
	"github.com/joestump/govuk-admin/internal/store"
)

// ListArgs are the list view parameters of one request.
type ListArgs struct {
	Page     int
	PageSize int
	Sort     string
	Desc     bool
	Search   string
	Filters  FilterSet

	// raw holds every query parameter of the request so generated links
	// keep arguments this package does not know about.
	raw url.Values
}

// ParseListArgs reads paging, sorting, search and filters from query.
// Unknown sort columns and disallowed page sizes fall back to the view's
// defaults; negative pages become page 0.
func (v *ModelView) ParseListArgs(query url.Values) (ListArgs, error) {
	args := ListArgs{
		PageSize: v.PageSize,
		Sort:     v.DefaultSort,
		Desc:     v.DefaultDesc,
		Search:   strings.TrimSpace(query.Get("search")),
		raw:      cloneValues(query),
	}

	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		args.Page = p
	}
	if n, err := strconv.Atoi(query.Get("page_size")); err == nil && v.AllowsPageSize(n) {
		args.PageSize = n
	}
	if s := query.Get("sort"); s != "" && v.IsSortable(s) {
		args.Sort = s
		args.Desc = query.Get("desc") == "1"
	}

	set, err := v.FilterArgs(filters.NewParamContext(query))
	if err != nil {
		return ListArgs{}, err
	}
	args.Filters = set
	return args, nil
}

// Query converts the arguments into a store query for one page.
func (v *ModelView) Query(a ListArgs) store.ListQuery {
	return store.ListQuery{
		Where:        a.Filters.Conditions(),
		Search:       a.Search,
		SearchFields: v.SearchableColumns,
		SortField:    a.Sort,
		SortDesc:     a.Desc,
		Page:         a.Page,
		PageSize:     a.PageSize,
	}
}

// ExportQuery is Query without paging.
func (v *ModelView) ExportQuery(a ListArgs) store.ListQuery {
	q := v.Query(a)
	q.Page, q.PageSize = 0, 0
	return q
}

// Values returns the query parameters of the request.
func (a ListArgs) Values() url.Values {
	return cloneValues(a.raw)
}

// PageURL links to page, keeping every other parameter.
func (a ListArgs) PageURL(base string, page int) string {
	q := cloneValues(a.raw)
	if page == 0 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	return encode(base, q)
}

// SortURL links to the list ordered by col. Asking for the current sort
// column again flips its direction.
func (a ListArgs) SortURL(base, col string) string {
	q := cloneValues(a.raw)
	q.Del("page")
	q.Set("sort", col)
	if col == a.Sort && !a.Desc {
		q.Set("desc", "1")
	} else {
		q.Del("desc")
	}
	return encode(base, q)
}

// PageSizeURL links to the first page with n rows per page.
func (a ListArgs) PageSizeURL(base string, n int) string {
	q := cloneValues(a.raw)
	q.Del("page")
	q.Set("page_size", strconv.Itoa(n))
	return encode(base, q)
}

// RemoveFilterURL links to the list without one active filter, keeping
// sort, search, page size, the other filters and any extra arguments. The
// date components the filter was submitted as are removed with it.
func (a ListArgs) RemoveFilterURL(base string, f ActiveFilter) string {
	q := cloneValues(a.raw)
	q.Del("page")
	q.Del(f.Key)
	for _, suffix := range []string{filters.DaySuffix, filters.MonthSuffix, filters.YearSuffix} {
		q.Del(f.Key + suffix)
	}
	return encode(base, q)
}

// ResetURL links to the unfiltered list, keeping only sort and page size.
func (a ListArgs) ResetURL(base string) string {
	q := url.Values{}
	for _, k := range []string{"sort", "desc", "page_size"} {
		if vals, ok := a.raw[k]; ok {
			q[k] = append([]string(nil), vals...)
		}
	}
	return encode(base, q)
}

func encode(base string, q url.Values) string {
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
