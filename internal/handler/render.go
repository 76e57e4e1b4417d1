// Package handler contains the HTTP request handlers.
//
// This is a server-rendered form application, so handlers do three
// things: parse form input, call a service, and either render a
// template or redirect. Business rules live in the service layer;
// handlers only translate between HTTP and domain values.
//
// ERROR SURFACE:
// Validation failures never become HTTP error statuses — the user is
// redirected back to the list with a flash message. NotFound maps to a
// 404 page. Everything else is a generic 500 with no internal detail
// in the body.
package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/status"
)

// Templates holds the parsed page templates.
//
// Each page is parsed together with base.html so {{template "content" .}}
// resolves per page — the same composition model as Jinja2's extends.
// Parsing happens once at construction; requests only execute.
type Templates struct {
	Jobs     *template.Template
	Login    *template.Template
	Register *template.Template
}

// NewTemplates parses all page templates from dir.
func NewTemplates(dir string) (*Templates, error) {
	// "known" lets the list template tell canonical statuses from free
	// text, so a custom status survives a row edit instead of being
	// swallowed by the dropdown.
	funcs := template.FuncMap{"known": status.Known}

	parse := func(page string) (*template.Template, error) {
		return template.New("base.html").Funcs(funcs).ParseFiles(
			filepath.Join(dir, "base.html"),
			filepath.Join(dir, page),
		)
	}

	jobs, err := parse("jobs.html")
	if err != nil {
		return nil, err
	}
	login, err := parse("login.html")
	if err != nil {
		return nil, err
	}
	register, err := parse("register.html")
	if err != nil {
		return nil, err
	}

	return &Templates{Jobs: jobs, Login: login, Register: register}, nil
}

// render executes the "base" template with data, logging (not exposing)
// any execution failure. Headers must be set before the first write.
func render(w http.ResponseWriter, logger *slog.Logger, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// flashCookie carries a one-shot message across the POST→redirect→GET
// hop. The value is query-escaped because cookie values can't contain
// spaces or semicolons.
const flashCookie = "flash"

// setFlash stores msg for the next page load.
func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60, // one redirect hop; a stale flash is worse than none
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash message, returning "" when there
// is none.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}

	// Single-use: delete it as soon as it's read.
	http.SetCookie(w, &http.Cookie{
		Name:   flashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

// renderError maps a domain error to its HTTP outcome for non-form
// failures. The service layer returns apperror values; this is the one
// place they turn into status codes.
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, apperror.ErrUnauthorized):
		http.Redirect(w, r, "/login", http.StatusFound)
	default:
		// Never leak the raw error — it can contain SQL or file paths.
		logger.Error("request failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
