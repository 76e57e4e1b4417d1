// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain value types with
// struct tags for serialization, no inheritance.
package model

import "time"

// Application represents one job-application record: where you applied,
// for what role, and how far along the process is.
//
// WHY ID int64 (not a string id)?
// Application ids only ever appear in our own URLs (/jobs/update/42), so
// SQLite's rowid-backed INTEGER PRIMARY KEY is the simplest correct
// choice — the store assigns it on insert and it never changes.
//
// WHY UserID string (not *string)?
// The owner column is nullable in the schema (anonymous mode leaves it
// unset), but in Go an empty string is a perfectly good "no owner" zero
// value and saves pointer juggling everywhere. The repository translates
// "" ↔ NULL at the SQL boundary.
type Application struct {
	ID          int64     `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"` // empty = anonymous record
	Company     string    `json:"company"     db:"company"`
	Role        string    `json:"role"        db:"role"`
	Status      string    `json:"status"      db:"status"`
	AppliedDate time.Time `json:"appliedDate" db:"applied_date"`
	Location    string    `json:"location"    db:"location"`
	Source      string    `json:"source"      db:"source"`
	JobLink     string    `json:"jobLink"     db:"job_link"`
	Notes       string    `json:"notes"       db:"notes"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
