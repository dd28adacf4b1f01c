// Package pagination builds the data for the GOV.UK pagination component.
package pagination

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPageOutOfRange is returned when the current page does not fall inside
// [0, total).
var ErrPageOutOfRange = errors.New("current page out of range")

const (
	// smallPageCount is the largest page count rendered without a window.
	smallPageCount = 3

	// pagesAroundCurrent is how many neighbours either side of the current
	// page are always shown.
	pagesAroundCurrent = 2

	// CenterClass centers the component on the page.
	CenterClass = "govuk-!-text-align-center"
)

// Link is a previous/next link.
type Link struct {
	Href string
}

// Page is one numbered page link. Number is 1-indexed for display.
type Page struct {
	Number  int
	Current bool
	Href    string
}

// Item is either a numbered page or an ellipsis standing in for a skipped
// range of pages.
type Item struct {
	Page
	Ellipsis bool
}

// Params is the argument set for the pagination partial.
type Params struct {
	Previous *Link
	Next     *Link
	Items    []Item
	Classes  string
}

// Build returns the pagination params for a zero-indexed current page out of
// total pages. linkFor is called once per emitted link: previous, next, then
// each page item in ascending order.
//
// Beyond three pages only the first and last pages and a window around the
// current page are listed; skipped ranges of two or more pages collapse into
// an ellipsis.
func Build(current, total int, linkFor func(page int) string) (Params, error) {
	if total < 1 || current < 0 || current >= total {
		return Params{}, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, current, total)
	}

	params := Params{Classes: CenterClass}

	if current != 0 {
		params.Previous = &Link{Href: linkFor(current - 1)}
	}
	if current != total-1 {
		params.Next = &Link{Href: linkFor(current + 1)}
	}

	if total <= smallPageCount {
		params.Items = make([]Item, 0, total)
		for p := 0; p < total; p++ {
			params.Items = append(params.Items, pageItem(p, current, linkFor))
		}
		return params, nil
	}

	last := -1
	for _, p := range anchors(current, total) {
		switch {
		case p == last+2:
			// A gap of a single page shows that page rather than an ellipsis.
			params.Items = append(params.Items, pageItem(last+1, current, linkFor))
		case p > last+2:
			params.Items = append(params.Items, Item{Ellipsis: true})
		}
		params.Items = append(params.Items, pageItem(p, current, linkFor))
		last = p
	}
	return params, nil
}

// anchors returns the sorted, de-duplicated pages that are always shown: the
// first and last pages, the current page and its neighbours.
func anchors(current, total int) []int {
	set := map[int]struct{}{
		0:         {},
		total - 1: {},
		current:   {},
	}
	for i := 1; i <= pagesAroundCurrent; i++ {
		set[max(0, current-i)] = struct{}{}
		set[min(total-1, current+i)] = struct{}{}
	}

	pages := make([]int, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func pageItem(p, current int, linkFor func(int) string) Item {
	return Item{Page: Page{
		Number:  p + 1,
		Current: p == current,
		Href:    linkFor(p),
	}}
}

// TotalPages returns how many pages count rows split into at pageSize rows
// per page. It is never less than one.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}
