package filters_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/govuk-admin/internal/filters"
)

func mustQuery(t *testing.T, q string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(q)
	require.NoError(t, err)
	return v
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  url.Values
	}{
		{
			name:  "combines date fields",
			query: "flt0_created_at-day=15&flt0_created_at-month=3&flt0_created_at-year=2024",
			want:  url.Values{"flt0_created_at": {"2024-03-15"}},
		},
		{
			name:  "incomplete date is not combined",
			query: "flt0_created_at-day=15&flt0_created_at-month=3",
			want: url.Values{
				"flt0_created_at-day":   {"15"},
				"flt0_created_at-month": {"3"},
			},
		},
		{
			name:  "pads single digit day and month",
			query: "flt0_created_at-day=5&flt0_created_at-month=3&flt0_created_at-year=2024",
			want:  url.Values{"flt0_created_at": {"2024-03-05"}},
		},
		{
			name:  "preserves other filters and trims whitespace",
			query: "flt0_age=25&flt1_created_at-day=+5+&flt1_created_at-month=+3+&flt1_created_at-year=+2024+",
			want: url.Values{
				"flt0_age":        {"25"},
				"flt1_created_at": {"2024-03-05"},
			},
		},
		{
			name: "multiple date filters",
			query: "flt0_created_at-day=15&flt0_created_at-month=3&flt0_created_at-year=2024" +
				"&flt1_created_at-day=20&flt1_created_at-month=6&flt1_created_at-year=2023",
			want: url.Values{
				"flt0_created_at": {"2024-03-15"},
				"flt1_created_at": {"2023-06-20"},
			},
		},
		{
			name:  "blank filter dropped",
			query: "flt0_age=",
			want:  url.Values{},
		},
		{
			name:  "whitespace-only filter dropped",
			query: "flt0_age=+++",
			want:  url.Values{},
		},
		{
			name:  "blank non-filter key preserved",
			query: "search=",
			want:  url.Values{"search": {""}},
		},
		{
			name:  "date triple with a blank component passes through",
			query: "flt0_created_at-day=15&flt0_created_at-month=+&flt0_created_at-year=2024",
			want: url.Values{
				"flt0_created_at-day":  {"15"},
				"flt0_created_at-year": {"2024"},
			},
		},
		{
			name:  "non-filter date triple untouched",
			query: "created-day=1&created-month=2&created-year=2020",
			want: url.Values{
				"created-day":   {"1"},
				"created-month": {"2"},
				"created-year":  {"2020"},
			},
		},
		{
			name:  "repeated keys stay lists",
			query: "flt0_job=a&flt0_job=b&sort=name",
			want: url.Values{
				"flt0_job": {"a", "b"},
				"sort":     {"name"},
			},
		},
		{
			name:  "repeated blank filter key dropped",
			query: "flt0_job=&flt0_job=+",
			want:  url.Values{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filters.Normalize(filters.FromValues(mustQuery(t, tt.query))).Values()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_Flattening(t *testing.T) {
	got := filters.Normalize(filters.FromValues(mustQuery(t, "flt0_job=a&flt0_job=b&flt1_age=3")))

	assert.True(t, got["flt0_job"].IsList())
	assert.Equal(t, []string{"a", "b"}, got["flt0_job"].Values())
	assert.False(t, got["flt1_age"].IsList())
	assert.Equal(t, "3", got.Get("flt1_age"))
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	raw := filters.FromValues(mustQuery(t, "flt0_age=&flt1_d-day=1&flt1_d-month=2&flt1_d-year=2000"))
	before := raw.Clone()

	_ = filters.Normalize(raw)

	if diff := cmp.Diff(before.Values(), raw.Values()); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
}

func TestIsFilterKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"flt0_age", true},
		{"flt12_created_at-day", true},
		{"flt_age", false},
		{"fltx_age", false},
		{"flt0age", false},
		{"search", false},
		{"xflt0_age", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, filters.IsFilterKey(tt.key), tt.key)
	}
}

func TestParseFilterKey(t *testing.T) {
	tests := []struct {
		key  string
		pos  int
		arg  string
		want bool
	}{
		{"flt0_age", 0, "age", true},
		{"flt12_created_at-day", 12, "created_at-day", true},
		{"flt3_", 0, "", false},
		{"flt_age", 0, "", false},
		{"search", 0, "", false},
		{"flt99999999999999999999_age", 0, "", false},
	}
	for _, tt := range tests {
		pos, arg, ok := filters.ParseFilterKey(tt.key)
		assert.Equal(t, tt.want, ok, tt.key)
		assert.Equal(t, tt.pos, pos, tt.key)
		assert.Equal(t, tt.arg, arg, tt.key)
	}
}

func TestFilterKey_RoundTrips(t *testing.T) {
	key := filters.FilterKey(4, "age_gt")
	assert.Equal(t, "flt4_age_gt", key)
	pos, arg, ok := filters.ParseFilterKey(key)
	require.True(t, ok)
	assert.Equal(t, 4, pos)
	assert.Equal(t, "age_gt", arg)
}

func TestParamContext_ArgsIsACopy(t *testing.T) {
	pc := filters.NewParamContext(mustQuery(t, "flt0_age=5"))

	args := pc.Args()
	args["flt0_age"] = filters.Scalar("99")
	args["search"] = filters.Scalar("x")

	assert.Equal(t, "5", pc.Args().Get("flt0_age"))
	assert.False(t, pc.Args().Has("search"))
}

func TestWithNormalized_DelegateSeesNormalizedArgs(t *testing.T) {
	q := "flt0_created_at-day=15&flt0_created_at-month=3&flt0_created_at-year=2024&search=x"
	pc := filters.NewParamContext(mustQuery(t, q))

	got, err := filters.WithNormalized(pc, func(args filters.Args) (string, error) {
		assert.Equal(t, args, pc.Args(), "context should hold the normalized set during the call")
		return pc.Args().Get("flt0_created_at"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", got)
}

func TestWithNormalized_RestoresOriginalArgs(t *testing.T) {
	q := "flt0_created_at-day=15&flt0_created_at-month=3&flt0_created_at-year=2024&flt1_age="
	pc := filters.NewParamContext(mustQuery(t, q))
	original := pc.Args().Clone()

	_, err := filters.WithNormalized(pc, func(filters.Args) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	if diff := cmp.Diff(original.Values(), pc.Args().Values()); diff != "" {
		t.Errorf("args not restored (-want +got):\n%s", diff)
	}
}

func TestWithNormalized_RestoresOnError(t *testing.T) {
	pc := filters.NewParamContext(mustQuery(t, "flt0_a-day=1&flt0_a-month=1&flt0_a-year=2001"))
	original := pc.Args().Clone()
	boom := errors.New("boom")

	_, err := filters.WithNormalized(pc, func(filters.Args) (int, error) {
		return 0, boom
	})
	assert.Same(t, boom, err)

	if diff := cmp.Diff(original.Values(), pc.Args().Values()); diff != "" {
		t.Errorf("args not restored (-want +got):\n%s", diff)
	}
}

func TestWithNormalized_RestoresOnPanic(t *testing.T) {
	pc := filters.NewParamContext(mustQuery(t, "flt0_a-day=1&flt0_a-month=1&flt0_a-year=2001"))
	original := pc.Args().Clone()

	assert.Panics(t, func() {
		_, _ = filters.WithNormalized(pc, func(filters.Args) (int, error) {
			panic("delegate blew up")
		})
	})

	if diff := cmp.Diff(original.Values(), pc.Args().Values()); diff != "" {
		t.Errorf("args not restored (-want +got):\n%s", diff)
	}
}
