// Package service contains the business logic layer.
//
// The layering follows the usual three-tier split:
//
//	Handler (HTTP)     → parses forms, renders templates, redirects
//	Service (business) → trims, validates, applies defaults, orchestrates
//	Repository (data)  → reads/writes SQLite
//
// Services accept primitives and small param structs, never
// *http.Request, and return domain errors (apperror), never HTTP status
// codes. That keeps them callable from anything — a CLI importer, a
// test — and testable with a plain in-memory repository.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
	"github.com/sakif/jobtrack/internal/status"
)

// Validation constants — named, not magic numbers, so error messages
// and checks can't drift apart.
const (
	MaxCompanyLength = 100
	MaxRoleLength    = 100
	MaxStatusLength  = 50
	MaxTextLength    = 200   // location, source
	MaxLinkLength    = 2048  // job_link
	MaxNotesLength   = 10000 // ~10KB of notes
)

// DateLayout is the only accepted applied-date input format.
const DateLayout = "2006-01-02"

// ApplicationService handles business logic for job-application records.
type ApplicationService struct {
	repo   repository.ApplicationRepository
	logger *slog.Logger
}

// NewApplicationService creates an ApplicationService. The caller
// decides which repository implementation to inject (SQLite in main,
// an in-memory mock in tests).
func NewApplicationService(repo repository.ApplicationRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		repo:   repo,
		logger: logger,
	}
}

// CreateParams carries the raw form fields for a new record.
// AppliedDate is the raw "YYYY-MM-DD" string; parsing and the fallback
// policy live in the service, not the handler.
type CreateParams struct {
	Company     string
	Role        string
	Status      string
	AppliedDate string
	Location    string
	Source      string
	JobLink     string
	Notes       string
}

// UpdateParams carries a partial update. Nil means "field not present
// in the request — leave it unchanged"; a non-nil pointer means "set
// it", even to an empty value (clearing notes is a legitimate edit).
type UpdateParams struct {
	Status      *string
	Notes       *string
	AppliedDate *string
}

// appliedDateOrToday parses raw as a calendar date.
//
// DATE POLICY:
// The accepted input is exactly "YYYY-MM-DD". Anything else — empty,
// garbage, or an impossible date like 2024-02-30 (time.Parse checks
// calendar validity) — silently falls back to today. The same rule
// applies on create and update, so the field is never unset and never
// the cause of a rejected submission.
func appliedDateOrToday(raw string) time.Time {
	if d, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err == nil {
		return d
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Create validates and saves a new application record.
//
// company and role are required after trimming; everything else is
// optional. Status defaults to "Applied" and known values are
// canonicalized; free text passes through.
func (s *ApplicationService) Create(ctx context.Context, ownerID string, p CreateParams) (*model.Application, error) {
	company := strings.TrimSpace(p.Company)
	role := strings.TrimSpace(p.Role)

	if company == "" {
		return nil, apperror.ValidationFailed("company", "company is required")
	}
	if len(company) > MaxCompanyLength {
		return nil, apperror.ValidationFailed("company",
			fmt.Sprintf("company must be %d characters or less", MaxCompanyLength))
	}
	if role == "" {
		return nil, apperror.ValidationFailed("role", "role is required")
	}
	if len(role) > MaxRoleLength {
		return nil, apperror.ValidationFailed("role",
			fmt.Sprintf("role must be %d characters or less", MaxRoleLength))
	}

	st := status.Normalize(p.Status)
	if len(st) > MaxStatusLength {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be %d characters or less", MaxStatusLength))
	}
	if len(p.Notes) > MaxNotesLength {
		return nil, apperror.ValidationFailed("notes",
			fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
	}
	if len(p.JobLink) > MaxLinkLength {
		return nil, apperror.ValidationFailed("job_link",
			fmt.Sprintf("job link must be %d characters or less", MaxLinkLength))
	}
	if len(p.Location) > MaxTextLength {
		return nil, apperror.ValidationFailed("location",
			fmt.Sprintf("location must be %d characters or less", MaxTextLength))
	}
	if len(p.Source) > MaxTextLength {
		return nil, apperror.ValidationFailed("source",
			fmt.Sprintf("source must be %d characters or less", MaxTextLength))
	}

	app := &model.Application{
		UserID:      ownerID,
		Company:     company,
		Role:        role,
		Status:      st,
		AppliedDate: appliedDateOrToday(p.AppliedDate),
		Location:    strings.TrimSpace(p.Location),
		Source:      strings.TrimSpace(p.Source),
		JobLink:     strings.TrimSpace(p.JobLink),
		Notes:       strings.TrimSpace(p.Notes),
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.logger.Error("failed to create application",
			slog.String("company", company),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating application: %w", err)
	}

	s.logger.Info("application created",
		slog.Int64("id", app.ID),
		slog.String("company", app.Company),
		slog.String("status", app.Status),
	)

	return app, nil
}

// Get returns a single record, owner-scoped. A record belonging to a
// different owner is a NotFound, never a different error — callers can't
// distinguish "not yours" from "doesn't exist".
func (s *ApplicationService) Get(ctx context.Context, ownerID string, id int64) (*model.Application, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

// List returns records most-recent-first, optionally filtered by status.
// The filter is canonicalized the same way stored statuses are, so
// ?status=interview matches records saved as "Interview".
func (s *ApplicationService) List(ctx context.Context, ownerID, statusFilter string) ([]model.Application, error) {
	filter := strings.TrimSpace(statusFilter)
	if filter != "" {
		filter = status.Normalize(filter)
	}

	apps, err := s.repo.List(ctx, repository.ListOptions{
		OwnerID: ownerID,
		Status:  filter,
	})
	if err != nil {
		s.logger.Error("failed to list applications", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	return apps, nil
}

// Update applies a partial update to an existing record.
//
// STRATEGY: fetch then update. The fetch confirms existence and
// ownership (NotFound comes from GetByID, consistent with Get), the
// mutation touches only the fields present in params, and the write
// persists the full row.
func (s *ApplicationService) Update(ctx context.Context, ownerID string, id int64, p UpdateParams) (*model.Application, error) {
	app, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if p.Status != nil {
		st := status.Normalize(*p.Status)
		if len(st) > MaxStatusLength {
			return nil, apperror.ValidationFailed("status",
				fmt.Sprintf("status must be %d characters or less", MaxStatusLength))
		}
		app.Status = st
	}
	if p.Notes != nil {
		notes := strings.TrimSpace(*p.Notes)
		if len(notes) > MaxNotesLength {
			return nil, apperror.ValidationFailed("notes",
				fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
		}
		app.Notes = notes
	}
	if p.AppliedDate != nil {
		app.AppliedDate = appliedDateOrToday(*p.AppliedDate)
	}

	if err := s.repo.Update(ctx, app); err != nil {
		s.logger.Error("failed to update application",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("application updated",
		slog.Int64("id", app.ID),
		slog.String("status", app.Status),
	)

	return app, nil
}

// Delete removes a record, owner-scoped.
func (s *ApplicationService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info("application deleted", slog.Int64("id", id))
	return nil
}
