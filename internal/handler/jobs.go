package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/service"
	"github.com/sakif/jobtrack/internal/status"
)

// JobsHandler manages the job-application list and its three mutating
// form actions (add, update, delete).
//
// POST→REDIRECT→GET:
// Every mutation ends in a 302 back to /jobs, success or validation
// failure alike. The outcome travels in a flash cookie, not a status
// code — refreshing the list never re-submits a form.
type JobsHandler struct {
	apps   *service.ApplicationService
	users  *service.AuthService // nil when auth is disabled
	tmpl   *template.Template
	logger *slog.Logger
}

// NewJobsHandler creates a JobsHandler. users may be nil in anonymous
// mode; it is only used to show who is signed in.
func NewJobsHandler(apps *service.ApplicationService, users *service.AuthService, tmpl *template.Template, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		apps:   apps,
		users:  users,
		tmpl:   tmpl,
		logger: logger,
	}
}

// jobsPage is the template data for the list view.
type jobsPage struct {
	Title        string
	Applications []model.Application
	Statuses     []string // dropdown options
	Filter       string   // active status filter, "" = all
	Flash        string
	AuthEnabled  bool
	UserEmail    string
}

// HandleList renders the list view.
//
// HTTP: GET /jobs?status=<filter>
func (h *JobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.UserIDFromContext(r.Context())
	filter := strings.TrimSpace(r.URL.Query().Get("status"))

	apps, err := h.apps.List(r.Context(), ownerID, filter)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	page := jobsPage{
		Title:        "Job Applications",
		Applications: apps,
		Statuses:     status.Values(),
		Filter:       filter,
		Flash:        popFlash(w, r),
		AuthEnabled:  h.users != nil,
	}
	if ownerID != "" && h.users != nil {
		if user, err := h.users.GetUserByID(r.Context(), ownerID); err == nil {
			page.UserEmail = user.Email
		}
	}

	render(w, h.logger, h.tmpl, page)
}

// HandleCreate creates a record from the add form.
//
// HTTP: POST /jobs/add
// Form fields: company, role (or job_title), status, applied_date,
// notes, location, source, job_link.
func (h *JobsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		setFlash(w, "invalid form submission")
		http.Redirect(w, r, "/jobs", http.StatusFound)
		return
	}

	// Older installs posted the field as job_title; accept both.
	role := r.PostFormValue("role")
	if strings.TrimSpace(role) == "" {
		role = r.PostFormValue("job_title")
	}

	ownerID, _ := auth.UserIDFromContext(r.Context())
	_, err := h.apps.Create(r.Context(), ownerID, service.CreateParams{
		Company:     r.PostFormValue("company"),
		Role:        role,
		Status:      r.PostFormValue("status"),
		AppliedDate: r.PostFormValue("applied_date"),
		Location:    r.PostFormValue("location"),
		Source:      r.PostFormValue("source"),
		JobLink:     r.PostFormValue("job_link"),
		Notes:       r.PostFormValue("notes"),
	})
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			// Back to the form with the message — not an HTTP error.
			var appErr *apperror.AppError
			errors.As(err, &appErr)
			setFlash(w, appErr.Message)
			http.Redirect(w, r, "/jobs", http.StatusFound)
			return
		}
		renderError(w, r, h.logger, err)
		return
	}

	setFlash(w, "Application added.")
	http.Redirect(w, r, "/jobs", http.StatusFound)
}

// HandleUpdate applies a partial update (status, notes, applied_date).
//
// HTTP: POST /jobs/update/{id}
//
// FIELD PRESENCE:
// Only fields present in the form are touched. An empty status or
// applied_date counts as absent (you can't un-set them); notes are
// taken verbatim whenever the field is posted, so clearing notes works.
func (h *JobsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		setFlash(w, "invalid form submission")
		http.Redirect(w, r, "/jobs", http.StatusFound)
		return
	}

	var params service.UpdateParams
	if v := strings.TrimSpace(r.PostFormValue("status")); v != "" {
		params.Status = &v
	}
	if r.PostForm.Has("notes") {
		v := r.PostFormValue("notes")
		params.Notes = &v
	}
	if v := strings.TrimSpace(r.PostFormValue("applied_date")); v != "" {
		params.AppliedDate = &v
	}

	ownerID, _ := auth.UserIDFromContext(r.Context())
	if _, err := h.apps.Update(r.Context(), ownerID, id, params); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			var appErr *apperror.AppError
			errors.As(err, &appErr)
			setFlash(w, appErr.Message)
			http.Redirect(w, r, "/jobs", http.StatusFound)
			return
		}
		renderError(w, r, h.logger, err)
		return
	}

	setFlash(w, "Application updated.")
	http.Redirect(w, r, "/jobs", http.StatusFound)
}

// HandleDelete removes a record.
//
// HTTP: POST /jobs/delete/{id}
func (h *JobsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	ownerID, _ := auth.UserIDFromContext(r.Context())
	if err := h.apps.Delete(r.Context(), ownerID, id); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	setFlash(w, "Application deleted.")
	http.Redirect(w, r, "/jobs", http.StatusFound)
}

// recordID parses the {id} path segment. A non-numeric id gets the same
// 404 as an unknown one — no separate error shape for malformed ids.
func (h *JobsHandler) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}
