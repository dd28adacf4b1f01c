package theme_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/govuk-admin/internal/theme"
)

func bundle() fstest.MapFS {
	return fstest.MapFS{
		"govuk-frontend/admin-1.2.0.css":  {Data: []byte("body{}")},
		"govuk-frontend/admin-1.2.0.js":   {Data: []byte("export {}")},
		"govuk-frontend/zz-extra.js":      {Data: []byte("")},
		"govuk-frontend/images/crown.svg": {Data: []byte("<svg/>")},
	}
}

func TestDefault(t *testing.T) {
	th := theme.Default(nil)
	assert.Equal(t, "admin", th.Folder)
	assert.Equal(t, "admin/base.html", th.BaseTemplate)
}

func TestAssetTags(t *testing.T) {
	tags, err := theme.Default(bundle()).AssetTags()
	require.NoError(t, err)
	assert.Equal(t,
		`<script type="module" src="/_govuk_admin/admin-1.2.0.js"></script>`+
			`<link rel="stylesheet" href="/_govuk_admin/admin-1.2.0.css">`,
		string(tags))
}

func TestAssetTags_NoBundle(t *testing.T) {
	tags, err := theme.Default(fstest.MapFS{}).AssetTags()
	require.NoError(t, err)
	assert.Empty(t, tags)

	tags, err = theme.Default(nil).AssetTags()
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestAssetHandler(t *testing.T) {
	h, err := theme.Default(bundle()).AssetHandler()
	require.NoError(t, err)
	srv := http.StripPrefix(theme.AssetPrefix, h)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_govuk_admin/admin-1.2.0.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=31449600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "body{}", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_govuk_admin/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
