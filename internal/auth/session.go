// Package auth — session tokens.
//
// A session is modelled as an explicit signed value: a JWT whose
// Subject claim carries the user id and whose ExpiresAt claim carries
// the expiry. The token lives in an HttpOnly cookie; the server stores
// nothing. Logout is simply deleting the cookie.
//
// WHY JWT FOR A SESSION COOKIE?
// The alternative is a server-side session table keyed by a random id.
// A signed token gives the same "user id + expiry" pair with no storage
// and no cleanup job, which suits a single-binary tracker. The signature
// (HMAC-SHA256 over header+payload) means nobody can mint or alter a
// session without the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the HttpOnly cookie holding the token.
const SessionCookie = "session"

// SessionTTL is how long a login lasts before the user must sign in
// again. A day is a reasonable trade-off for a personal tracker — short
// enough that a stolen laptop session dies, long enough not to nag.
const SessionTTL = 24 * time.Hour

const issuer = "jobtrack"

// TokenService signs and validates session tokens. It holds the HMAC
// secret used for both operations — keep it out of version control.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production,
// e.g. SESSION_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the user id rides in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for userID, valid for
// SessionTTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, SessionTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used by
// tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token, returning the userID it
// encodes.
//
// jwt.WithValidMethods pins the algorithm to HS256 — without it an
// attacker could attempt an algorithm-confusion downgrade. Expiry and
// issuer are checked by the library as well.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: session expired")
		}
		return "", fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid session claims")
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("auth: session token has no subject")
	}

	return userID, nil
}
