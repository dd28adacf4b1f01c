package admin_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/schema"
)

var userModel = &schema.Model{
	Name:       "User",
	Table:      "users",
	PrimaryKey: "id",
	Fields: []schema.Field{
		{Name: "id", Type: schema.Integer, Generated: true},
		{Name: "email", Type: schema.String, Unique: true},
		{Name: "name", Type: schema.String},
		{Name: "age", Type: schema.Integer},
		{Name: "bio", Type: schema.Text, Nullable: true},
		{Name: "favourite_colour", Type: schema.Enum, Choices: []schema.Choice{
			{Value: "red", Label: "Red"},
			{Value: "blue", Label: "Blue"},
		}},
		{Name: "created_at", Type: schema.Date},
		{Name: "last_logged_in_at", Type: schema.DateTime, Nullable: true},
	},
}

var postModel = &schema.Model{
	Name:       "Post",
	Table:      "posts",
	PrimaryKey: "id",
	Fields: []schema.Field{
		{Name: "id", Type: schema.Integer, Generated: true},
		{Name: "title", Type: schema.String},
		{Name: "author_id", Type: schema.Relation, Relation: &schema.RelationSpec{Model: "User", Display: "name"}},
	},
}

// newUserView registers a user view with every filterable column.
func newUserView(t *testing.T) *admin.ModelView {
	t.Helper()
	v := admin.NewModelView(userModel)
	v.PageSize = 15
	v.CanSetPageSize = true
	v.PageSizeOptions = []int{10, 15, 25, 50}
	v.ColumnList = []string{"email", "name", "age", "favourite_colour", "created_at", "last_logged_in_at"}
	v.ColumnFilters = []string{"email", "age", "favourite_colour", "created_at", "last_logged_in_at"}
	v.SearchableColumns = []string{"email", "name"}
	v.FormRules = map[string]string{"email": "email"}

	a := admin.New("Test admin", nil)
	require.NoError(t, a.AddView(v))
	return v
}

func TestAdmin_AddView(t *testing.T) {
	a := admin.New("Test admin", nil)

	users := admin.NewModelView(userModel)
	require.NoError(t, a.AddView(users))
	assert.Equal(t, "user", users.Endpoint)
	assert.Equal(t, "User", users.Name)
	assert.Equal(t, 20, users.PageSize)
	assert.Equal(t, []string{"email", "name", "age", "bio", "favourite_colour", "created_at", "last_logged_in_at"}, users.ColumnList)
	assert.Equal(t, "id", users.ColumnExportList[0])

	posts := admin.NewModelView(postModel)
	posts.Name = "Blog Posts"
	posts.Category = "Content"
	require.NoError(t, a.AddView(posts))
	assert.Equal(t, "blog-posts", posts.Endpoint)

	got, err := a.View("blog-posts")
	require.NoError(t, err)
	assert.Same(t, posts, got)

	related, ok := posts.RelatedModel(postModel.Fields[2])
	require.True(t, ok)
	assert.Same(t, userModel, related)

	_, err = a.View("missing")
	assert.True(t, errors.Is(err, admin.ErrUnknownView))

	menu := a.Menu()
	require.Len(t, menu, 2)
	assert.Equal(t, "Content", menu[0].Name)
	assert.Equal(t, "User", menu[1].Name)
}

func TestAdmin_AddViewRejectsDuplicateEndpoint(t *testing.T) {
	a := admin.New("Test admin", nil)
	require.NoError(t, a.AddView(admin.NewModelView(userModel)))

	err := a.AddView(admin.NewModelView(userModel))
	assert.Error(t, err)

	bad := admin.NewModelView(postModel)
	bad.Endpoint = "Not A Slug"
	assert.Error(t, a.AddView(bad))

	assert.Error(t, a.AddView(&admin.ModelView{Name: "empty"}))
}

func TestModelView_Columns(t *testing.T) {
	v := newUserView(t)
	v.ColumnLabels = map[string]string{"email": "Email address"}
	v.ColumnDescriptions = map[string]string{"age": "Age in years"}

	assert.Equal(t, "Email address", v.ColumnLabel("email"))
	assert.Equal(t, "Last logged in at", v.ColumnLabel("last_logged_in_at"))
	assert.Equal(t, "Age in years", v.ColumnDescription("age"))
	assert.True(t, v.IsSortable("age"))
	assert.False(t, v.IsSortable("bio"))
	assert.True(t, v.AllowsPageSize(25))
	assert.False(t, v.AllowsPageSize(1000))
}
