package admin_test

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/store"
)

func TestModelView_FormatText(t *testing.T) {
	v := newUserView(t)
	rec := store.Record{
		"name":              "Ada",
		"age":               int64(36),
		"favourite_colour":  "blue",
		"created_at":        "2024-03-05 00:00:00",
		"last_logged_in_at": nil,
	}

	tests := []struct {
		col  string
		want string
	}{
		{"name", "Ada"},
		{"age", "36"},
		{"favourite_colour", "Blue"},
		{"created_at", "2024-03-05"},
		{"last_logged_in_at", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.FormatText(admin.Cell{Record: rec, Column: tt.col}), tt.col)
	}
}

func TestModelView_FormatCellEscapes(t *testing.T) {
	v := newUserView(t)
	rec := store.Record{"name": `<script>alert("x")</script>`}

	got := v.FormatCell(admin.Cell{Record: rec, Column: "name"})
	assert.Equal(t, template.HTML(`&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;`), got)
}

func TestModelView_FormatCellSanitizesFormatters(t *testing.T) {
	v := newUserView(t)
	v.ColumnFormatters = map[string]admin.Formatter{
		"name": func(c admin.Cell) string {
			return `<a href="/admin/user/details/?id=1" onclick="steal()">` + store.FormatValue(c.Value()) + `</a><script>x</script>`
		},
	}

	got := v.FormatCell(admin.Cell{Record: store.Record{"name": "Ada"}, Column: "name"})
	assert.Equal(t, template.HTML(`<a href="/admin/user/details/?id=1">Ada</a>`), got)
}

func TestModelView_FormatListCellTruncatesText(t *testing.T) {
	v := newUserView(t)
	long := ""
	for i := 0; i < 20; i++ {
		long += "lorem ipsum "
	}

	got := string(v.FormatListCell(admin.Cell{Record: store.Record{"bio": long}, Column: "bio"}))
	assert.Less(t, len([]rune(got)), 90)
	assert.Contains(t, got, "…")

	assert.Equal(t, "short", admin.Truncate("short", 10))
}

func TestModelView_FormatRelationLabel(t *testing.T) {
	a := admin.New("Test admin", nil)
	posts := admin.NewModelView(postModel)
	require.NoError(t, a.AddView(posts))

	labels := admin.Labels{"author_id": {"7": "Ada"}}
	rec := store.Record{"author_id": int64(7)}
	assert.Equal(t, "Ada", posts.FormatText(admin.Cell{Record: rec, Column: "author_id", Labels: labels}))
	assert.Equal(t, "7", posts.FormatText(admin.Cell{Record: rec, Column: "author_id"}))

	rels := posts.RelationColumns(posts.ColumnList)
	require.Len(t, rels, 1)
	assert.Equal(t, "author_id", rels[0].Name)
}

type fakeDeleter struct {
	ids []string
}

func (f *fakeDeleter) DeleteMany(_ context.Context, _ *schema.Model, ids []string) (int, error) {
	f.ids = ids
	return len(ids), nil
}

func TestModelView_RunAction(t *testing.T) {
	v := newUserView(t)
	d := &fakeDeleter{}

	n, err := v.RunAction(context.Background(), d, "delete", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1", "2"}, d.ids)

	_, err = v.RunAction(context.Background(), d, "delete", nil)
	assert.True(t, errors.Is(err, admin.ErrNoSelection))

	_, err = v.RunAction(context.Background(), d, "archive", []string{"1"})
	assert.True(t, errors.Is(err, admin.ErrUnknownAction))

	v.CanDelete = false
	assert.Empty(t, v.Actions())
}

func TestModelView_WriteCSV(t *testing.T) {
	v := newUserView(t)
	v.ColumnExportList = []string{"id", "name", "favourite_colour"}
	rows := []store.Record{
		{"id": int64(1), "name": "Ada, Countess", "favourite_colour": "red"},
		{"id": int64(2), "name": "Bob", "favourite_colour": "blue"},
	}

	var buf bytes.Buffer
	require.NoError(t, v.WriteCSV(&buf, rows, nil))
	assert.Equal(t, "Id,Name,Favourite colour\n1,\"Ada, Countess\",Red\n2,Bob,Blue\n", buf.String())
}

func TestModelView_WriteCSV_EscapesFormulas(t *testing.T) {
	v := newUserView(t)
	v.ColumnExportList = []string{"name", "age"}
	rows := []store.Record{
		{"name": "=HYPERLINK(\"http://x\")", "age": int64(-5)},
		{"name": "+1+1", "age": int64(3)},
		{"name": "-2+3", "age": int64(4)},
		{"name": "@SUM(A1)", "age": int64(5)},
	}

	var buf bytes.Buffer
	require.NoError(t, v.WriteCSV(&buf, rows, nil))
	want := "Name,Age\n" +
		"\"'=HYPERLINK(\"\"http://x\"\")\",-5\n" +
		"'+1+1,3\n" +
		"'-2+3,4\n" +
		"'@SUM(A1),5\n"
	assert.Equal(t, want, buf.String())
}
