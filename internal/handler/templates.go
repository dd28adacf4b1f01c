package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/session"
	"github.com/joestump/govuk-admin/internal/theme"
	"github.com/joestump/govuk-admin/web"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	ServiceName string
	Title       string
	Assets      template.HTML
	Menu        []admin.MenuCategory
	Flashes     []session.Flash
	// Endpoint is the current view's endpoint, for highlighting navigation.
	Endpoint string
}

// pageCache maps a render key (e.g. "admin/list.html") to a compiled
// template set containing the theme's base layout, the partials and that one
// page file. Each page gets its own set so {{define "content"}} blocks don't
// collide.
var pageCache map[string]*template.Template

var funcs = template.FuncMap{
	"lower": strings.ToLower,
}

func init() {
	var err error
	pageCache, err = buildPageCache(web.TemplateFS, theme.Default(nil))
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

func buildPageCache(fsys fs.FS, th theme.Theme) (map[string]*template.Template, error) {
	partials, err := fs.Glob(fsys, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob partials: %w", err)
	}
	base := path.Join("templates", th.BaseTemplate)
	pagesDir := path.Join("templates/pages", th.Folder)

	cache := make(map[string]*template.Template)
	err = fs.WalkDir(fsys, pagesDir, func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}

		files := make([]string, 0, 2+len(partials))
		files = append(files, base)
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New(filepath.Base(base)).Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		// Key: path relative to "templates/pages/", e.g. "admin/list.html".
		rel, _ := strings.CutPrefix(p, "templates/pages/")
		cache[rel] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cache, nil
}

// render executes a full-page template (base layout + named page).
func render(w http.ResponseWriter, status int, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	var b strings.Builder
	if err := t.ExecuteTemplate(&b, "base", data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(b.String()))
}
