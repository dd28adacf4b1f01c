package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/metrics"
	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/session"
	"github.com/joestump/govuk-admin/internal/store"
	"github.com/joestump/govuk-admin/internal/theme"
)

// AdminHandler serves every page of every registered model view.
type AdminHandler struct {
	admin       *admin.Admin
	records     *store.RecordStore
	flash       *session.Flasher
	theme       theme.Theme
	serviceName string
	logger      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(a *admin.Admin, rs *store.RecordStore, fl *session.Flasher, th theme.Theme, serviceName string, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		admin:       a,
		records:     rs,
		flash:       fl,
		theme:       th,
		serviceName: serviceName,
		logger:      logger,
	}
}

type viewKey struct{}

// loadView resolves {endpoint} to a registered view, or 404s.
func (h *AdminHandler) loadView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := h.admin.View(chi.URLParam(r, "endpoint"))
		if err != nil {
			h.notFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewKey{}, v)))
	})
}

func viewFrom(r *http.Request) *admin.ModelView {
	v, _ := r.Context().Value(viewKey{}).(*admin.ModelView)
	return v
}

// basePage collects the layout data, draining queued flash messages.
func (h *AdminHandler) basePage(r *http.Request, title string, v *admin.ModelView) BasePage {
	assets, err := h.theme.AssetTags()
	if err != nil {
		h.logger.Warn("asset tags", zap.Error(err))
	}
	page := BasePage{
		ServiceName: h.serviceName,
		Title:       title,
		Assets:      assets,
		Menu:        h.admin.Menu(),
		Flashes:     h.flash.Pop(r.Context()),
	}
	if v != nil {
		page.Endpoint = v.Endpoint
	}
	return page
}

// IndexPage is the template data for the admin home page.
type IndexPage struct {
	BasePage
	Views []IndexEntry
}

// IndexEntry is one model on the home page.
type IndexEntry struct {
	Name  string
	URL   string
	Count int
}

// Index renders the admin home page with a row count per model.
func (h *AdminHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := IndexPage{BasePage: h.basePage(r, h.admin.Name, nil)}
	for _, v := range h.admin.Views() {
		n, err := h.records.Count(r.Context(), v.Model)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		metrics.RecordsTotal.WithLabelValues(v.Model.Name).Set(float64(n))
		data.Views = append(data.Views, IndexEntry{Name: v.Name, URL: v.URL(""), Count: n})
	}
	render(w, http.StatusOK, "admin/index.html", data)
}

// relationLabels loads display labels for the relation columns among cols
// across rows.
func (h *AdminHandler) relationLabels(ctx context.Context, v *admin.ModelView, cols []string, rows []store.Record) (admin.Labels, error) {
	labels := admin.Labels{}
	for _, f := range v.RelationColumns(cols) {
		target, ok := v.RelatedModel(f)
		if !ok {
			continue
		}
		seen := map[string]bool{}
		var ids []string
		for _, row := range rows {
			id := store.FormatValue(row[f.Name])
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		m, err := h.records.Labels(ctx, target, f.Relation.Display, ids)
		if err != nil {
			return nil, err
		}
		labels[f.Name] = m
	}
	return labels, nil
}

// relationOptions loads the choices of every relation field of m.
func (h *AdminHandler) relationOptions(ctx context.Context, v *admin.ModelView, fields []schema.Field) (map[string][]schema.Choice, error) {
	out := map[string][]schema.Choice{}
	for _, f := range fields {
		if f.Type != schema.Relation {
			continue
		}
		target, ok := v.RelatedModel(f)
		if !ok {
			continue
		}
		opts, err := h.records.Options(ctx, target, f.Relation.Display)
		if err != nil {
			return nil, err
		}
		out[f.Name] = opts
	}
	return out, nil
}

// redirectMissing sends the user back to the list when a record id does not
// resolve.
func (h *AdminHandler) redirectMissing(w http.ResponseWriter, r *http.Request, v *admin.ModelView) {
	h.flash.Add(r.Context(), session.Error, "Record does not exist.")
	http.Redirect(w, r, v.URL(""), http.StatusSeeOther)
}

// returnURL is the list page the user came from, when it belongs to v.
func returnURL(r *http.Request, v *admin.ModelView) string {
	u, err := url.Parse(r.FormValue("url"))
	if err != nil || u.IsAbs() || u.Host != "" || u.Path != v.URL("") {
		return v.URL("")
	}
	return u.String()
}

// ErrorPage is the template data for error responses.
type ErrorPage struct {
	BasePage
	Status  int
	Heading string
	Message string
}

func (h *AdminHandler) notFound(w http.ResponseWriter, r *http.Request) {
	data := ErrorPage{
		BasePage: h.basePage(r, "Page not found", nil),
		Status:   http.StatusNotFound,
		Heading:  "Page not found",
		Message:  "If you typed the web address, check it is correct.",
	}
	render(w, http.StatusNotFound, "admin/error.html", data)
}

func (h *AdminHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	data := ErrorPage{
		BasePage: h.basePage(r, "Sorry, there is a problem with the service", nil),
		Status:   http.StatusInternalServerError,
		Heading:  "Sorry, there is a problem with the service",
		Message:  "Try again later.",
	}
	render(w, http.StatusInternalServerError, "admin/error.html", data)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
