// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the user repository /
// password utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//
// It owns email normalization, credential checks, and the
// account-enumeration rule: every authentication failure looks the same
// from the outside.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// MinPasswordLength is the registration minimum. bcrypt itself caps
// input at 72 bytes; PasswordService.Hash enforces the upper bound.
const MinPasswordLength = 8

// badCredentials is the single message for every authentication
// failure. Unknown email and wrong password MUST be indistinguishable,
// or the login form doubles as an account-enumeration oracle.
const badCredentials = "invalid email or password"

// AuthService handles registration and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		validate:  validator.New(),
		logger:    logger,
	}
}

// normalizeEmail lowercases and trims an email address. All storage and
// lookup goes through this, so "Alice@Example.COM" and
// "alice@example.com" are one account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account and returns the persisted user.
//
// Fails with apperror.ErrValidation for a malformed email or short
// password, and apperror.ErrConflict if the email is already taken
// (case-insensitively — normalization happens before the lookup).
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)

	// validator's "email" tag does the RFC-shaped check so we don't
	// hand-roll an address regex.
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > 72 {
		return nil, apperror.ValidationFailed("password", "password must be 72 characters or less")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}

	// The repository returns apperror.Conflict on a duplicate email —
	// let that propagate untouched so the handler can render it inline.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Authenticate checks credentials and returns the matching user.
//
// Both failure modes — unknown email and wrong password — return the
// identical apperror.Unauthorized. We even run the bcrypt comparison
// against a throwaway hash when the email is unknown, so response
// timing doesn't betray which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn roughly the same time a real comparison would take.
		_, _ = s.passwords.Hash(password)
		return nil, apperror.Unauthorized(badCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Warn("failed login attempt", slog.String("email", email))
		return nil, apperror.Unauthorized(badCredentials)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return user, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// list view to show who is signed in after the middleware resolves the
// session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	return s.users.GetByID(ctx, id)
}
