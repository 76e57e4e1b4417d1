package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/model"
)

// mockUserRepo stores users keyed by (already normalized) email.
type mockUserRepo struct {
	byEmail map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, exists := m.byEmail[user.Email]; exists {
		return apperror.Conflict("user", "email is already registered")
	}
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	m.byEmail[user.Email] = &stored
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	// Low bcrypt cost keeps the suite fast; production uses the default.
	return NewAuthService(repo, auth.NewPasswordServiceForTest(4), logger), repo
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Register() did not assign a user id")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alice@example.com")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc, repo := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "  Alice@Example.COM  ", "correct horse battery")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased/trimmed", user.Email)
	}
	if _, ok := repo.byEmail["alice@example.com"]; !ok {
		t.Error("user not stored under the normalized email")
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "correct horse battery"); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Different casing, same account.
	_, err := svc.Register(ctx, "ALICE@example.com", "another password")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Register() error = %v, want ErrConflict", err)
	}
}

func TestRegister_RejectsBadInput(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed email", "not-an-email", "correct horse battery"},
		{"empty email", "", "correct horse battery"},
		{"short password", "alice@example.com", "short"},
		{"empty password", "alice@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register(%q, %q) error = %v, want ErrValidation", tt.email, tt.password, err)
			}
		})
	}
}

// =========================================================================
// AUTHENTICATE TESTS
// =========================================================================

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Authenticate(ctx, "Alice@Example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Authenticate() returned user %q, want %q", user.ID, registered.ID)
	}
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "correct horse battery"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPassword := svc.Authenticate(ctx, "alice@example.com", "wrong password")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@example.com", "correct horse battery")

	for name, err := range map[string]error{
		"wrong password": wrongPassword,
		"unknown email":  unknownEmail,
	} {
		if !errors.Is(err, apperror.ErrUnauthorized) {
			t.Errorf("%s: error = %v, want ErrUnauthorized", name, err)
		}
	}

	// Same user-facing message for both, so the form can't be used to
	// probe which addresses have accounts.
	var wrongMsg, unknownMsg *apperror.AppError
	if !errors.As(wrongPassword, &wrongMsg) || !errors.As(unknownEmail, &unknownMsg) {
		t.Fatalf("expected AppError values, got %v / %v", wrongPassword, unknownEmail)
	}
	if wrongMsg.Message != unknownMsg.Message {
		t.Errorf("messages differ: %q vs %q", wrongMsg.Message, unknownMsg.Message)
	}
}

// =========================================================================
// GET USER TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.GetUserByID(ctx, registered.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alice@example.com")
	}

	if _, err := svc.GetUserByID(ctx, xid.New().String()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(unknown) error = %v, want ErrNotFound", err)
	}
}
