package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/service"
)

// AuthHandler manages the register/login/logout forms.
//
// Unlike the job routes, auth failures are rendered INLINE on the form
// (re-render with an error string) rather than flashed across a
// redirect — the user is already on the right page, and keeping their
// typed email in the field beats bouncing them.
type AuthHandler struct {
	auths  *service.AuthService
	tokens *auth.TokenService
	login  *template.Template
	signup *template.Template
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(auths *service.AuthService, tokens *auth.TokenService, tmpls *Templates, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auths:  auths,
		tokens: tokens,
		login:  tmpls.Login,
		signup: tmpls.Register,
		logger: logger,
	}
}

// authPage is the template data shared by the login and register forms.
type authPage struct {
	Title string
	Email string // echoed back so the user doesn't retype it
	Error string // inline error, "" = none
}

// HandleLoginForm renders the login page.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	render(w, h.logger, h.login, authPage{Title: "Sign in"})
}

// HandleLogin processes a login attempt.
//
// HTTP: POST /login
//
// Any failure — unknown email, wrong password — re-renders the form
// with the same generic message (the service guarantees the two are
// indistinguishable). Success issues the session cookie and redirects
// to the list.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, h.logger, h.login, authPage{Title: "Sign in", Error: "invalid form submission"})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.auths.Authenticate(r.Context(), email, password)
	if err != nil {
		var appErr *apperror.AppError
		msg := "sign in failed"
		if errors.As(err, &appErr) {
			msg = appErr.Message
		} else {
			h.logger.Error("login failed", slog.String("error", err.Error()))
		}
		render(w, h.logger, h.login, authPage{Title: "Sign in", Email: email, Error: msg})
		return
	}

	if !h.startSession(w, user.ID) {
		render(w, h.logger, h.login, authPage{Title: "Sign in", Email: email, Error: "sign in failed"})
		return
	}
	http.Redirect(w, r, "/jobs", http.StatusFound)
}

// HandleRegisterForm renders the registration page.
//
// HTTP: GET /register
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	render(w, h.logger, h.signup, authPage{Title: "Create account"})
}

// HandleRegister processes a registration.
//
// HTTP: POST /register
//
// A duplicate email (Conflict) or invalid input (Validation) renders
// inline on the form. Success behaves exactly like a login: session
// cookie plus redirect — no separate "now go sign in" step.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, h.logger, h.signup, authPage{Title: "Create account", Error: "invalid form submission"})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.auths.Register(r.Context(), email, password)
	if err != nil {
		var appErr *apperror.AppError
		msg := "registration failed"
		if errors.As(err, &appErr) {
			msg = appErr.Message
		} else {
			h.logger.Error("registration failed", slog.String("error", err.Error()))
		}
		render(w, h.logger, h.signup, authPage{Title: "Create account", Email: email, Error: msg})
		return
	}

	if !h.startSession(w, user.ID) {
		render(w, h.logger, h.signup, authPage{Title: "Create account", Email: email, Error: "registration failed"})
		return
	}
	http.Redirect(w, r, "/jobs", http.StatusFound)
}

// HandleLogout clears the session cookie and returns to the login page.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/login", http.StatusFound)
}

// startSession issues a signed session token for userID and sets the
// HttpOnly cookie. Returns false (and logs) if signing fails — the
// caller re-renders its form.
//
// HttpOnly keeps the token away from any injected script; SameSite=Lax
// keeps it off cross-site POSTs. Secure should be added behind HTTPS.
func (h *AuthHandler) startSession(w http.ResponseWriter, userID string) bool {
	token, err := h.tokens.Generate(userID)
	if err != nil {
		h.logger.Error("session token generation failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}
