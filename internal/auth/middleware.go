package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write
// the userID value — no accidental collisions with other packages.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth enforces a valid session on protected routes.
//
// It reads the session token from the HttpOnly cookie, validates it,
// and stores the userID in the request context. A missing or invalid
// session redirects the browser to /login — this is a form app, not a
// JSON API, so a 401 body would just strand the user on a blank page.
//
// The resulting state machine is exactly two states:
//
//	Anonymous ──(login/register sets cookie)──► Authenticated
//	Authenticated ──(logout clears cookie, or token expires)──► Anonymous
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the
// request context.
//
// Returns ("", false) for an anonymous request (auth disabled, or no
// valid session). Every record operation resolves ownership through
// this accessor rather than reading cookies ad hoc.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the session cookie and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie — no session at all
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
