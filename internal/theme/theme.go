// Package theme describes the GOV.UK look: where its templates live and how
// its frontend bundle is linked and served.
package theme

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const (
	// AssetPrefix is the URL path the frontend bundle is served under.
	AssetPrefix = "/_govuk_admin/"
	// AssetDir is the bundle's directory inside the static filesystem.
	AssetDir = "govuk-frontend"
	// CacheControl lets browsers keep the bundle for 52 weeks.
	CacheControl = "public, max-age=31449600"
)

// Theme names the template folder and base layout of the admin pages.
type Theme struct {
	Folder       string
	BaseTemplate string
	// Static holds AssetDir; nil means no asset tags are rendered.
	Static fs.FS
}

// Default returns the GOV.UK theme over the given static filesystem.
func Default(static fs.FS) Theme {
	return Theme{
		Folder:       "admin",
		BaseTemplate: "admin/base.html",
		Static:       static,
	}
}

// AssetTags returns the <script> and <link> tags for the first JavaScript
// and CSS file found in the bundle directory.
func (t Theme) AssetTags() (template.HTML, error) {
	if t.Static == nil {
		return "", nil
	}
	var b strings.Builder
	js, err := firstMatch(t.Static, "*.js")
	if err != nil {
		return "", err
	}
	if js != "" {
		fmt.Fprintf(&b, `<script type="module" src="%s"></script>`, template.HTMLEscapeString(AssetPrefix+js))
	}
	css, err := firstMatch(t.Static, "*.css")
	if err != nil {
		return "", err
	}
	if css != "" {
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`, template.HTMLEscapeString(AssetPrefix+css))
	}
	return template.HTML(b.String()), nil
}

func firstMatch(fsys fs.FS, pattern string) (string, error) {
	matches, err := fs.Glob(fsys, path.Join(AssetDir, pattern))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	return path.Base(matches[0]), nil
}

// AssetHandler serves the bundle directory with a long cache lifetime. Mount
// it with http.StripPrefix(AssetPrefix, ...).
func (t Theme) AssetHandler() (http.Handler, error) {
	sub, err := fs.Sub(t.Static, AssetDir)
	if err != nil {
		return nil, fmt.Errorf("sub %s: %w", AssetDir, err)
	}
	files := http.FileServerFS(sub)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheControl)
		files.ServeHTTP(w, r)
	}), nil
}
