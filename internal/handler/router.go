package handler

import (
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/logging"
	"github.com/joestump/govuk-admin/internal/session"
	"github.com/joestump/govuk-admin/internal/store"
	"github.com/joestump/govuk-admin/internal/theme"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	Admin          *admin.Admin
	Records        *store.RecordStore
	SessionManager *scs.SessionManager
	Theme          theme.Theme
	ServiceName    string
	Logger         *zap.Logger
}

// NewRouter assembles the chi router with all middleware and routes.
func NewRouter(deps Deps) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(deps.SessionManager.LoadAndSave)

	if deps.Theme.Static != nil {
		assets, err := deps.Theme.AssetHandler()
		if err != nil {
			return nil, fmt.Errorf("asset handler: %w", err)
		}
		r.Handle(theme.AssetPrefix+"*", http.StripPrefix(theme.AssetPrefix, assets))
	}
	r.Handle("/metrics", promhttp.Handler())

	h := NewAdminHandler(deps.Admin, deps.Records, session.NewFlasher(deps.SessionManager), deps.Theme, deps.ServiceName, logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, admin.Prefix+"/", http.StatusFound)
	})
	r.Get(admin.Prefix, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, admin.Prefix+"/", http.StatusMovedPermanently)
	})
	r.Get(admin.Prefix+"/", h.Index)

	r.Route(admin.Prefix+"/{endpoint}", func(r chi.Router) {
		r.Use(h.loadView)
		r.Get("/", h.List)
		r.Get("/new/", h.CreateForm)
		r.Post("/new/", h.Create)
		r.Get("/edit/", h.EditForm)
		r.Post("/edit/", h.Update)
		r.Post("/delete/", h.Delete)
		r.Get("/details/", h.Details)
		r.Post("/action/", h.Action)
		r.Get("/export/csv/", h.Export)
	})

	r.NotFound(h.notFound)
	return r, nil
}
