package admin

import (
	"fmt"
	"sort"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/schema"
)

// Admin is the set of registered model views.
type Admin struct {
	Name   string
	views  []*ModelView
	byPath map[string]*ModelView
	models map[string]*schema.Model
	logger *zap.Logger
}

// New creates an empty Admin. A nil logger discards output.
func New(name string, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{
		Name:   name,
		byPath: make(map[string]*ModelView),
		models: make(map[string]*schema.Model),
		logger: logger,
	}
}

// AddView registers v. The endpoint defaults to a slug of the view name and
// must be unique.
func (a *Admin) AddView(v *ModelView) error {
	if v.Model == nil {
		return fmt.Errorf("add view %q: model is required", v.Name)
	}
	if v.Logger == nil {
		v.Logger = a.logger.With(zap.String("view", v.Model.Name))
	}
	v.setDefaults()
	if v.Endpoint == "" {
		v.Endpoint = slug.Make(v.Name)
	}
	if !slug.IsSlug(v.Endpoint) {
		return fmt.Errorf("add view %q: endpoint %q is not URL safe", v.Name, v.Endpoint)
	}
	if _, dup := a.byPath[v.Endpoint]; dup {
		return fmt.Errorf("add view %q: endpoint %q already registered", v.Name, v.Endpoint)
	}

	a.models[v.Model.Name] = v.Model
	v.Models = a.models
	a.views = append(a.views, v)
	a.byPath[v.Endpoint] = v
	return nil
}

// View returns the view registered at endpoint.
func (a *Admin) View(endpoint string) (*ModelView, error) {
	v, ok := a.byPath[endpoint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, endpoint)
	}
	return v, nil
}

// Views returns every registered view in registration order.
func (a *Admin) Views() []*ModelView {
	return a.views
}

// MenuCategory groups views for the navigation bar. Views without a
// category get a group of their own named after the view.
type MenuCategory struct {
	Name  string
	Views []*ModelView
}

// Menu returns the navigation groups sorted by name.
func (a *Admin) Menu() []MenuCategory {
	groups := map[string]*MenuCategory{}
	var names []string
	for _, v := range a.views {
		name := v.Category
		if name == "" {
			name = v.Name
		}
		g, ok := groups[name]
		if !ok {
			g = &MenuCategory{Name: name}
			groups[name] = g
			names = append(names, name)
		}
		g.Views = append(g.Views, v)
	}
	sort.Strings(names)
	out := make([]MenuCategory, 0, len(names))
	for _, n := range names {
		out = append(out, *groups[n])
	}
	return out
}
