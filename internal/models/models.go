// Package models declares the example application's models and registers
// their admin views.
package models

import (
	"fmt"
	"html"
	"net/url"

	"github.com/google/uuid"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/store"
)

// Category groups the model views in the navigation.
const Category = "Models"

// Colours are the allowed favourite_colour values.
var Colours = []schema.Choice{
	{Value: "red", Label: "Red"},
	{Value: "blue", Label: "Blue"},
	{Value: "yellow", Label: "Yellow"},
}

var User = &schema.Model{
	Name:       "User",
	Table:      "users",
	PrimaryKey: "id",
	Fields: []schema.Field{
		{Name: "id", Type: schema.Integer, Generated: true},
		{Name: "email", Type: schema.String, Unique: true},
		{Name: "name", Type: schema.String},
		{Name: "age", Type: schema.Integer},
		{Name: "job", Type: schema.String},
		{Name: "favourite_colour", Type: schema.Enum, Choices: Colours},
		{Name: "created_at", Type: schema.Date},
		{Name: "last_logged_in_at", Type: schema.DateTime, Nullable: true},
	},
}

var Post = &schema.Model{
	Name:       "Post",
	Table:      "posts",
	PrimaryKey: "id",
	Fields: []schema.Field{
		{Name: "id", Type: schema.Integer, Generated: true},
		{Name: "title", Type: schema.String},
		{Name: "content", Type: schema.Text},
		{Name: "author_id", Label: "Author", Type: schema.Relation,
			Relation: &schema.RelationSpec{Model: "User", Display: "name"}},
		{Name: "published_at", Type: schema.DateTime, Nullable: true},
		{Name: "created_at", Type: schema.DateTime},
	},
}

var Account = &schema.Model{
	Name:       "Account",
	Table:      "accounts",
	PrimaryKey: "id",
	Fields: []schema.Field{
		{Name: "id", Type: schema.String, Generated: true},
		{Name: "user_id", Label: "User", Type: schema.Relation,
			Relation: &schema.RelationSpec{Model: "User", Display: "email"}},
	},
	NewKey: func() string { return uuid.NewString() },
}

// Register adds the User, Post and Account views to a.
func Register(a *admin.Admin) error {
	users := admin.NewModelView(User)
	users.Category = Category
	users.PageSize = 15
	users.CanSetPageSize = true
	users.PageSizeOptions = []int{10, 15, 25, 50}
	users.FormRules = map[string]string{"email": "email,max=255"}
	users.ColumnFilters = []string{"age", "job", "email", "created_at", "favourite_colour", "last_logged_in_at"}
	users.SearchableColumns = []string{"email", "name"}
	users.CanExport = true
	users.ColumnDescriptions = map[string]string{
		"age":               "User's age in years",
		"email":             "Email address for contacting the user",
		"created_at":        "Date the user account was created",
		"last_logged_in_at": "Date and time of the user's last login",
	}
	users.FormWidgetArgs = map[string]map[string]string{
		"age": {"class": "govuk-input--width-3"},
	}

	posts := admin.NewModelView(Post)
	posts.Category = Category
	posts.PageSize = 20
	posts.CanSetPageSize = true
	posts.PageSizeOptions = []int{10, 20, 50}
	posts.ColumnFilters = []string{"author_id", "published_at", "created_at"}
	posts.SearchableColumns = []string{"title", "content"}
	posts.ColumnList = []string{"id", "title", "author_id", "published_at", "created_at"}
	posts.CanViewDetails = true
	posts.ColumnDescriptions = map[string]string{
		"author_id":    "The user who wrote this post",
		"published_at": "Date and time the post was published (empty for drafts)",
		"created_at":   "Date and time the post was created",
	}
	posts.ColumnFormatters = map[string]admin.Formatter{
		"author_id": authorLink(users),
	}

	accounts := admin.NewModelView(Account)
	accounts.Category = Category

	for _, v := range []*admin.ModelView{users, posts, accounts} {
		if err := a.AddView(v); err != nil {
			return fmt.Errorf("register %s: %w", v.Model.Name, err)
		}
	}
	return nil
}

// authorLink shows a post's author by name, linked to the author's edit page.
func authorLink(users *admin.ModelView) admin.Formatter {
	return func(c admin.Cell) string {
		id := store.FormatValue(c.Value())
		name, ok := c.Labels[c.Column][id]
		if !ok {
			return ""
		}
		href := users.URL("edit/") + "?" + url.Values{"id": {id}}.Encode()
		return `<a class="govuk-link" href="` + html.EscapeString(href) + `">` + html.EscapeString(name) + `</a>`
	}
}
