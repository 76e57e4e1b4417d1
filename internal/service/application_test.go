package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
	"github.com/sakif/jobtrack/internal/status"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// A hand-written in-memory implementation of ApplicationRepository.
// It mirrors the real store's owner-scoping rule so service tests
// exercise the same semantics the SQLite implementation provides,
// without any database. For anything fancier testify/mock would do,
// but a map is clearer here.

type mockApplicationRepo struct {
	apps   map[int64]*model.Application
	nextID int64
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[int64]*model.Application)}
}

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application) error {
	m.nextID++
	app.ID = m.nextID
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	stored := *app
	m.apps[app.ID] = &stored
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id int64, ownerID string) (*model.Application, error) {
	app, ok := m.apps[id]
	if !ok || (ownerID != "" && app.UserID != ownerID) {
		return nil, apperror.NotFound("application", "mock")
	}
	result := *app
	return &result, nil
}

func (m *mockApplicationRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Application, error) {
	result := []model.Application{}
	// Newest id first — matches the store's tiebreak ordering closely
	// enough for service-level tests.
	for id := m.nextID; id >= 1; id-- {
		app, ok := m.apps[id]
		if !ok {
			continue
		}
		if opts.OwnerID != "" && app.UserID != opts.OwnerID {
			continue
		}
		if opts.Status != "" && app.Status != opts.Status {
			continue
		}
		result = append(result, *app)
	}
	return result, nil
}

func (m *mockApplicationRepo) Update(_ context.Context, app *model.Application) error {
	existing, ok := m.apps[app.ID]
	if !ok || (app.UserID != "" && existing.UserID != app.UserID) {
		return apperror.NotFound("application", "mock")
	}
	app.UpdatedAt = time.Now()
	stored := *app
	m.apps[app.ID] = &stored
	return nil
}

func (m *mockApplicationRepo) Delete(_ context.Context, id int64, ownerID string) error {
	existing, ok := m.apps[id]
	if !ok || (ownerID != "" && existing.UserID != ownerID) {
		return apperror.NotFound("application", "mock")
	}
	delete(m.apps, id)
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

func newTestService(t *testing.T) (*ApplicationService, *mockApplicationRepo) {
	t.Helper()
	repo := newMockApplicationRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewApplicationService(repo, logger), repo
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate_AppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	app, err := svc.Create(context.Background(), "", CreateParams{
		Company: "Acme",
		Role:    "Engineer",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if app.Status != status.Applied {
		t.Errorf("Status = %q, want %q", app.Status, status.Applied)
	}
	if app.Notes != "" {
		t.Errorf("Notes = %q, want empty", app.Notes)
	}
	if !app.AppliedDate.Equal(today()) {
		t.Errorf("AppliedDate = %v, want today (%v)", app.AppliedDate, today())
	}
	if app.ID == 0 {
		t.Error("Create() did not assign an id")
	}
}

func TestCreate_DistinctIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "", CreateParams{Company: "Acme", Role: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := svc.Create(ctx, "", CreateParams{Company: "Globex", Role: "Analyst"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("both records got id %d", a.ID)
	}
}

func TestCreate_EmptyCompanyRejected(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), "", CreateParams{
		Company: "   ",
		Role:    "Engineer",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}

	// Nothing was persisted.
	if len(repo.apps) != 0 {
		t.Errorf("repository holds %d records after rejected create, want 0", len(repo.apps))
	}
}

func TestCreate_EmptyRoleRejected(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), "", CreateParams{
		Company: "Acme",
		Role:    "",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
	if len(repo.apps) != 0 {
		t.Errorf("repository holds %d records after rejected create, want 0", len(repo.apps))
	}
}

func TestCreate_TrimsTextFields(t *testing.T) {
	svc, _ := newTestService(t)

	app, err := svc.Create(context.Background(), "", CreateParams{
		Company:  "  Acme  ",
		Role:     "  Engineer  ",
		Location: "  Berlin  ",
		Notes:    "  first contact  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if app.Company != "Acme" || app.Role != "Engineer" {
		t.Errorf("fields not trimmed: company=%q role=%q", app.Company, app.Role)
	}
	if app.Location != "Berlin" || app.Notes != "first contact" {
		t.Errorf("optional fields not trimmed: location=%q notes=%q", app.Location, app.Notes)
	}
}

func TestCreate_NormalizesStatus(t *testing.T) {
	svc, _ := newTestService(t)

	app, err := svc.Create(context.Background(), "", CreateParams{
		Company: "Acme",
		Role:    "Engineer",
		Status:  "interview",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if app.Status != status.Interview {
		t.Errorf("Status = %q, want %q", app.Status, status.Interview)
	}
}

func TestCreate_ParsesValidDate(t *testing.T) {
	svc, _ := newTestService(t)

	app, err := svc.Create(context.Background(), "", CreateParams{
		Company:     "Acme",
		Role:        "Engineer",
		AppliedDate: "2025-05-10",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	if !app.AppliedDate.Equal(want) {
		t.Errorf("AppliedDate = %v, want %v", app.AppliedDate, want)
	}
}

func TestCreate_InvalidDateFallsBackToToday(t *testing.T) {
	svc, _ := newTestService(t)

	// 2024-02-30 is shaped correctly but isn't a real calendar date —
	// time.Parse rejects it, and the policy says fall back to today.
	for _, raw := range []string{"2024-02-30", "not-a-date", "10/05/2025"} {
		app, err := svc.Create(context.Background(), "", CreateParams{
			Company:     "Acme",
			Role:        "Engineer",
			AppliedDate: raw,
		})
		if err != nil {
			t.Fatalf("Create(%q) error = %v", raw, err)
		}
		if !app.AppliedDate.Equal(today()) {
			t.Errorf("AppliedDate for input %q = %v, want today", raw, app.AppliedDate)
		}
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestList_NormalizesStatusFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", CreateParams{Company: "Acme", Role: "Engineer", Status: "Offer"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "", CreateParams{Company: "Globex", Role: "Analyst"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The filter arrives lowercase from the query string; it must
	// match records stored with the canonical spelling.
	apps, err := svc.List(ctx, "", "offer")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(apps) != 1 || apps[0].Company != "Acme" {
		t.Errorf("List(filter=offer) = %v, want just Acme", apps)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func strptr(s string) *string { return &s }

func TestUpdate_OnlyNotesLeavesRestUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateParams{
		Company:     "Acme",
		Role:        "Engineer",
		Status:      "Interview",
		AppliedDate: "2025-03-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, "", created.ID, UpdateParams{
		Notes: strptr("second round scheduled"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Notes != "second round scheduled" {
		t.Errorf("Notes = %q, want the new value", updated.Notes)
	}
	if updated.Status != "Interview" {
		t.Errorf("Status = %q, want unchanged %q", updated.Status, "Interview")
	}
	if !updated.AppliedDate.Equal(created.AppliedDate) {
		t.Errorf("AppliedDate = %v, want unchanged %v", updated.AppliedDate, created.AppliedDate)
	}
}

func TestUpdate_StatusOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateParams{
		Company: "Acme", Role: "Engineer", Notes: "keep me",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, "", created.ID, UpdateParams{
		Status: strptr("rejected"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Status != status.Rejected {
		t.Errorf("Status = %q, want %q (normalized)", updated.Status, status.Rejected)
	}
	if updated.Notes != "keep me" {
		t.Errorf("Notes = %q, want unchanged", updated.Notes)
	}
}

func TestUpdate_ClearingNotes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateParams{
		Company: "Acme", Role: "Engineer", Notes: "outdated",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, "", created.ID, UpdateParams{Notes: strptr("")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Notes != "" {
		t.Errorf("Notes = %q, want cleared", updated.Notes)
	}
}

func TestUpdate_InvalidDateFallsBackToToday(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateParams{
		Company: "Acme", Role: "Engineer", AppliedDate: "2025-03-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same fallback policy as create — never an error, never unset.
	updated, err := svc.Update(ctx, "", created.ID, UpdateParams{
		AppliedDate: strptr("2024-02-30"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.AppliedDate.Equal(today()) {
		t.Errorf("AppliedDate = %v, want today", updated.AppliedDate)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "", 9999, UpdateParams{Status: strptr("Offer")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ForeignOwnerIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateParams{Company: "Acme", Role: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(ctx, "user-2", created.ID, UpdateParams{Status: strptr("Offer")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() as another user: error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete_RemovesRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "", CreateParams{Company: "Acme", Role: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, "", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := svc.Get(ctx, "", created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete: error = %v, want ErrNotFound", err)
	}
	apps, err := svc.List(ctx, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("List() after delete returned %d records, want 0", len(apps))
	}
}

func TestDelete_ForeignOwnerIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateParams{Company: "Acme", Role: "Engineer"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, "user-2", created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() as another user: error = %v, want ErrNotFound", err)
	}
}
