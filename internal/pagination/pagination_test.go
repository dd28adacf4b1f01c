package pagination_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/govuk-admin/internal/pagination"
)

func urlFor(page int) string {
	return fmt.Sprintf("/?page=%d", page)
}

// numbers flattens items to page numbers, with 0 standing for an ellipsis.
func numbers(items []pagination.Item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		if it.Ellipsis {
			out = append(out, 0)
			continue
		}
		out = append(out, it.Number)
	}
	return out
}

func TestBuild_FirstPage(t *testing.T) {
	p, err := pagination.Build(0, 5, urlFor)
	require.NoError(t, err)

	assert.Nil(t, p.Previous)
	require.NotNil(t, p.Next)
	assert.Equal(t, "/?page=1", p.Next.Href)
	assert.True(t, p.Items[0].Current)
	assert.Equal(t, 1, p.Items[0].Number)
}

func TestBuild_LastPage(t *testing.T) {
	p, err := pagination.Build(4, 5, urlFor)
	require.NoError(t, err)

	assert.Nil(t, p.Next)
	require.NotNil(t, p.Previous)
	assert.Equal(t, "/?page=3", p.Previous.Href)

	last := p.Items[len(p.Items)-1]
	assert.Equal(t, 5, last.Number)
	assert.True(t, last.Current)
}

func TestBuild_MiddlePageWithEllipsis(t *testing.T) {
	p, err := pagination.Build(5, 10, urlFor)
	require.NoError(t, err)

	want := []int{1, 0, 4, 5, 6, 7, 8, 9, 10}
	if diff := cmp.Diff(want, numbers(p.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	var current []int
	for _, it := range p.Items {
		if it.Current {
			current = append(current, it.Number)
		}
	}
	assert.Equal(t, []int{6}, current)
}

func TestBuild_ThreePagesOrLessHasNoEllipsis(t *testing.T) {
	for total := 1; total <= 3; total++ {
		for current := 0; current < total; current++ {
			t.Run(fmt.Sprintf("%d_of_%d", current, total), func(t *testing.T) {
				p, err := pagination.Build(current, total, urlFor)
				require.NoError(t, err)
				require.Len(t, p.Items, total)
				for i, it := range p.Items {
					assert.False(t, it.Ellipsis)
					assert.Equal(t, i+1, it.Number)
					assert.Equal(t, urlFor(i), it.Href)
					assert.Equal(t, i == current, it.Current)
				}
			})
		}
	}
}

func TestBuild_SinglePage(t *testing.T) {
	p, err := pagination.Build(0, 1, urlFor)
	require.NoError(t, err)

	assert.Nil(t, p.Previous)
	assert.Nil(t, p.Next)
	want := []pagination.Item{{Page: pagination.Page{Number: 1, Current: true, Href: "/?page=0"}}}
	if diff := cmp.Diff(want, p.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_CenterClass(t *testing.T) {
	p, err := pagination.Build(0, 2, urlFor)
	require.NoError(t, err)
	assert.Equal(t, "govuk-!-text-align-center", p.Classes)
}

func TestBuild_WindowInvariants(t *testing.T) {
	for total := 4; total <= 25; total++ {
		for current := 0; current < total; current++ {
			p, err := pagination.Build(current, total, urlFor)
			require.NoError(t, err)

			ellipses := 0
			prev := 0
			prevEllipsis := false
			for i, it := range p.Items {
				if it.Ellipsis {
					ellipses++
					assert.NotZero(t, i, "ellipsis at position 0 (%d of %d)", current, total)
					assert.False(t, prevEllipsis, "adjacent ellipses (%d of %d)", current, total)
					prevEllipsis = true
					continue
				}
				if prevEllipsis {
					assert.Greater(t, it.Number-prev, 2, "ellipsis hides a single page (%d of %d)", current, total)
				} else if prev != 0 {
					assert.Equal(t, prev+1, it.Number, "gap without ellipsis (%d of %d)", current, total)
				}
				prev = it.Number
				prevEllipsis = false
			}
			assert.LessOrEqual(t, ellipses, 2)
			assert.False(t, p.Items[len(p.Items)-1].Ellipsis)
			assert.Equal(t, 1, p.Items[0].Number)
			assert.Equal(t, total, p.Items[len(p.Items)-1].Number)
		}
	}
}

func TestBuild_GapOfOneShowsThePage(t *testing.T) {
	p, err := pagination.Build(6, 12, urlFor)
	require.NoError(t, err)

	want := []int{1, 0, 5, 6, 7, 8, 9, 0, 12}
	if diff := cmp.Diff(want, numbers(p.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	// Page 2 is the only page between 1 and the window starting at 3.
	p, err = pagination.Build(4, 12, urlFor)
	require.NoError(t, err)
	want = []int{1, 2, 3, 4, 5, 6, 7, 0, 12}
	if diff := cmp.Diff(want, numbers(p.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_LinkForCallOrder(t *testing.T) {
	var calls []int
	record := func(page int) string {
		calls = append(calls, page)
		return urlFor(page)
	}

	_, err := pagination.Build(5, 10, record)
	require.NoError(t, err)

	want := []int{4, 6, 0, 3, 4, 5, 6, 7, 8, 9}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("linkFor calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_OutOfRange(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
	}{
		{"negative current", -1, 5},
		{"current equals total", 5, 5},
		{"current past total", 9, 5},
		{"zero total", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pagination.Build(tt.current, tt.total, urlFor)
			assert.ErrorIs(t, err, pagination.ErrPageOutOfRange)
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	a, err := pagination.Build(7, 20, urlFor)
	require.NoError(t, err)
	b, err := pagination.Build(7, 20, urlFor)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeat call differs (-first +second):\n%s", diff)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{50, 15, 4},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pagination.TotalPages(tt.count, tt.size), "TotalPages(%d, %d)", tt.count, tt.size)
	}
}
