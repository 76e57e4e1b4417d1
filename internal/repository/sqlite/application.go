package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// Compile-time check that *DB implements repository.ApplicationRepository.
// If a method is missing or has the wrong signature, the build fails here
// instead of at some distant call site.
var _ repository.ApplicationRepository = (*DB)(nil)

const applicationColumns = `id, user_id, company, role, status, applied_date,
	location, source, job_link, notes, created_at, updated_at`

// ownerValue translates the Go-side "" owner into SQL NULL.
// Anonymous records carry NULL, not an empty string, so the foreign key
// constraint on user_id stays satisfiable.
func ownerValue(ownerID string) any {
	if ownerID == "" {
		return nil
	}
	return ownerID
}

// scanApplication reads one row into a model.Application.
// user_id is nullable in the schema, hence the sql.NullString detour.
func scanApplication(scan func(...any) error) (*model.Application, error) {
	var (
		app    model.Application
		userID sql.NullString
	)
	err := scan(
		&app.ID,
		&userID,
		&app.Company,
		&app.Role,
		&app.Status,
		&app.AppliedDate,
		&app.Location,
		&app.Source,
		&app.JobLink,
		&app.Notes,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.UserID = userID.String
	return &app, nil
}

// Create inserts a new application record.
//
// SQLite assigns the INTEGER PRIMARY KEY; we read it back with
// LastInsertId and store it on the passed struct (pointer receiver —
// after Create the caller's record has its ID and timestamps filled in).
func (db *DB) Create(ctx context.Context, app *model.Application) error {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO job_applications
			(user_id, company, role, status, applied_date, location, source, job_link, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerValue(app.UserID),
		app.Company,
		app.Role,
		app.Status,
		app.AppliedDate,
		app.Location,
		app.Source,
		app.JobLink,
		app.Notes,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new application id: %w", err)
	}
	app.ID = id

	return nil
}

// GetByID retrieves a single application.
//
// OWNER SCOPING:
// With a non-empty ownerID the WHERE clause also matches user_id, so a
// record owned by a different user produces sql.ErrNoRows — deliberately
// indistinguishable from a record that doesn't exist. Guessing ids gets
// an attacker nothing.
func (db *DB) GetByID(ctx context.Context, id int64, ownerID string) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE id = ?`
	args := []any{id}
	if ownerID != "" {
		query += ` AND user_id = ?`
		args = append(args, ownerID)
	}

	row := db.conn.QueryRowContext(ctx, query, args...)
	app, err := scanApplication(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("application", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting application %d: %w", id, err)
	}

	return app, nil
}

// List retrieves applications most-recent-first.
//
// ORDERING:
// applied_date DESC puts the newest application on top; id DESC breaks
// ties deterministically when several records share a date (the common
// case — a burst of applications submitted the same day).
//
// Limit <= 0 means "no limit" — the tracker's list view shows everything.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM job_applications`
	var (
		conds []string
		args  []any
	)
	if opts.OwnerID != "" {
		conds = append(conds, `user_id = ?`)
		args = append(args, opts.OwnerID)
	}
	if opts.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, opts.Status)
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY applied_date DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		offset := opts.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, opts.Limit, offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		app, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning application row: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating applications: %w", err)
	}

	if apps == nil {
		apps = []model.Application{}
	}
	return apps, nil
}

// Update writes the mutable fields of an existing record.
//
// id and created_at are immutable; partial-update semantics (only touch
// fields the form supplied) are the service layer's job — by the time a
// record reaches here it is the full desired row.
//
// RowsAffected 0 means the WHERE clause matched nothing: either the id
// is unknown or the record belongs to someone else. Both are NotFound.
func (db *DB) Update(ctx context.Context, app *model.Application) error {
	app.UpdatedAt = time.Now()

	query := `UPDATE job_applications
		 SET company = ?, role = ?, status = ?, applied_date = ?,
		     location = ?, source = ?, job_link = ?, notes = ?, updated_at = ?
		 WHERE id = ?`
	args := []any{
		app.Company,
		app.Role,
		app.Status,
		app.AppliedDate,
		app.Location,
		app.Source,
		app.JobLink,
		app.Notes,
		app.UpdatedAt,
		app.ID,
	}
	if app.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, app.UserID)
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating application %d: %w", app.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", strconv.FormatInt(app.ID, 10))
	}

	return nil
}

// Delete removes an application. Same owner-scoped RowsAffected pattern
// as Update.
func (db *DB) Delete(ctx context.Context, id int64, ownerID string) error {
	query := `DELETE FROM job_applications WHERE id = ?`
	args := []any{id}
	if ownerID != "" {
		query += ` AND user_id = ?`
		args = append(args, ownerID)
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: deleting application %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", strconv.FormatInt(id, 10))
	}

	return nil
}
