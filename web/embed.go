// Package web holds the embedded templates and the GOV.UK frontend bundle of
// the admin interface.
package web

import "embed"

// TemplateFS contains all HTML templates.
//
//go:embed templates
var TemplateFS embed.FS

// StaticFS contains the frontend bundle under static/govuk-frontend.
//
//go:embed static
var StaticFS embed.FS
