package handler

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/session"
	"github.com/joestump/govuk-admin/internal/store"
)

// FormPage is the template data for the create and edit pages.
type FormPage struct {
	BasePage
	View *admin.ModelView
	Form *admin.Form
	// Problem is a form-level error not tied to one field.
	Problem   string
	ID        string
	PostURL   string
	ReturnURL string
	DeleteURL string
	Editing   bool
}

// Errors lists every message for the error summary.
func (p FormPage) Errors() []FormError {
	var out []FormError
	if p.Problem != "" {
		out = append(out, FormError{Message: p.Problem})
	}
	for _, f := range p.Form.Errors() {
		out = append(out, FormError{Href: "#" + f.Name, Message: f.Error})
	}
	return out
}

// FormError is one entry of the error summary.
type FormError struct {
	Href    string
	Message string
}

// DetailsPage is the template data for the read-only record page.
type DetailsPage struct {
	BasePage
	View      *admin.ModelView
	ID        string
	Rows      []DetailRow
	EditURL   string
	DeleteURL string
	ReturnURL string
}

// DetailRow is one row of the summary list.
type DetailRow struct {
	Label string
	Value template.HTML
}

// CreateForm renders GET /admin/{endpoint}/new/.
func (h *AdminHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.CanCreate {
		h.notFound(w, r)
		return
	}
	opts, err := h.relationOptions(r.Context(), v, v.Model.Editable())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, FormPage{Form: v.NewForm(nil, opts)})
}

// Create handles POST /admin/{endpoint}/new/.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.CanCreate {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	opts, err := h.relationOptions(r.Context(), v, v.Model.Editable())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	form := v.NewForm(nil, opts)
	values, ok := v.Bind(form, r.PostForm)
	if !ok {
		h.renderForm(w, r, http.StatusUnprocessableEntity, FormPage{Form: form})
		return
	}

	id, err := h.records.Create(r.Context(), v.Model, values)
	if errors.Is(err, store.ErrDuplicate) {
		h.renderForm(w, r, http.StatusUnprocessableEntity, FormPage{Form: form, Problem: "A record with these details already exists"})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.logger.Info("record created", zap.String("view", v.Endpoint), zap.String("id", id))
	h.flash.Add(r.Context(), session.Success, "Record was successfully created.")

	back := returnURL(r, v)
	switch {
	case r.PostForm.Has("_add_another"):
		http.Redirect(w, r, v.URL("new/")+encodeQuery(url.Values{"url": {back}}), http.StatusSeeOther)
	case r.PostForm.Has("_continue_editing") && v.CanEdit:
		http.Redirect(w, r, h.recordURL(v, "edit/", id, back), http.StatusSeeOther)
	default:
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

// EditForm renders GET /admin/{endpoint}/edit/?id=.
func (h *AdminHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.CanEdit {
		h.notFound(w, r)
		return
	}
	id := r.URL.Query().Get("id")
	rec, err := h.records.Get(r.Context(), v.Model, id)
	if isNotFound(err) {
		h.redirectMissing(w, r, v)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	opts, err := h.relationOptions(r.Context(), v, v.Model.Editable())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusOK, FormPage{Form: v.NewForm(rec, opts), ID: id, Editing: true})
}

// Update handles POST /admin/{endpoint}/edit/?id=.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.CanEdit {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	id := r.URL.Query().Get("id")
	rec, err := h.records.Get(r.Context(), v.Model, id)
	if isNotFound(err) {
		h.redirectMissing(w, r, v)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	opts, err := h.relationOptions(r.Context(), v, v.Model.Editable())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	form := v.NewForm(rec, opts)
	values, ok := v.Bind(form, r.PostForm)
	if !ok {
		h.renderForm(w, r, http.StatusUnprocessableEntity, FormPage{Form: form, ID: id, Editing: true})
		return
	}

	err = h.records.Update(r.Context(), v.Model, id, values)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		h.renderForm(w, r, http.StatusUnprocessableEntity, FormPage{Form: form, ID: id, Editing: true, Problem: "A record with these details already exists"})
		return
	case isNotFound(err):
		h.redirectMissing(w, r, v)
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}
	h.logger.Info("record updated", zap.String("view", v.Endpoint), zap.String("id", id))
	h.flash.Add(r.Context(), session.Success, "Record was successfully saved.")

	back := returnURL(r, v)
	switch {
	case r.PostForm.Has("_add_another") && v.CanCreate:
		http.Redirect(w, r, v.URL("new/")+encodeQuery(url.Values{"url": {back}}), http.StatusSeeOther)
	case r.PostForm.Has("_continue_editing"):
		http.Redirect(w, r, h.recordURL(v, "edit/", id, back), http.StatusSeeOther)
	default:
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

// Delete handles POST /admin/{endpoint}/delete/.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.CanDelete {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	id := r.PostForm.Get("id")
	err := h.records.Delete(r.Context(), v.Model, id)
	if isNotFound(err) {
		h.redirectMissing(w, r, v)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.logger.Info("record deleted", zap.String("view", v.Endpoint), zap.String("id", id))
	h.flash.Add(r.Context(), session.Success, "Record was successfully deleted.")
	http.Redirect(w, r, returnURL(r, v), http.StatusSeeOther)
}

// Details renders GET /admin/{endpoint}/details/?id=.
func (h *AdminHandler) Details(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.CanViewDetails {
		h.notFound(w, r)
		return
	}
	id := r.URL.Query().Get("id")
	rec, err := h.records.Get(r.Context(), v.Model, id)
	if isNotFound(err) {
		h.redirectMissing(w, r, v)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	cols := v.Model.Columns()
	labels, err := h.relationLabels(r.Context(), v, cols, []store.Record{rec})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	back := returnURL(r, v)
	data := DetailsPage{
		BasePage:  h.basePage(r, v.Name+" details", v),
		View:      v,
		ID:        id,
		ReturnURL: back,
	}
	if v.CanEdit {
		data.EditURL = h.recordURL(v, "edit/", id, back)
	}
	if v.CanDelete {
		data.DeleteURL = v.URL("delete/")
	}
	for _, col := range cols {
		data.Rows = append(data.Rows, DetailRow{
			Label: v.ColumnLabel(col),
			Value: v.FormatCell(admin.Cell{Record: rec, Column: col, Labels: labels}),
		})
	}
	render(w, http.StatusOK, "admin/details.html", data)
}

func (h *AdminHandler) recordURL(v *admin.ModelView, page, id, back string) string {
	return v.URL(page) + encodeQuery(url.Values{"id": {id}, "url": {back}})
}

// renderForm fills in the shared parts of the create and edit pages.
func (h *AdminHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, page FormPage) {
	v := viewFrom(r)
	back := returnURL(r, v)
	page.View = v
	page.ReturnURL = back
	if page.Editing {
		page.BasePage = h.basePage(r, "Edit "+v.Name, v)
		page.PostURL = h.recordURL(v, "edit/", page.ID, back)
		if v.CanDelete {
			page.DeleteURL = v.URL("delete/")
		}
		render(w, status, "admin/edit.html", page)
		return
	}
	page.BasePage = h.basePage(r, "Create "+v.Name, v)
	page.PostURL = v.URL("new/") + encodeQuery(url.Values{"url": {back}})
	render(w, status, "admin/create.html", page)
}
