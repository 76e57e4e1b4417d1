// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account in authenticated mode.
//
// Email is stored lowercase — normalization happens in the service layer
// so "Alice@Example.com" and "alice@example.com" are the same account.
// The UNIQUE constraint on email in the DB enforces one account per
// address.
//
// PasswordHash is the full bcrypt output (salt embedded, so no separate
// salt column). It is tagged json:"-" so it can never leak through an
// encoded response, even by accident.
type User struct {
	ID           string    `json:"id"        db:"id"` // xid, generated by the repository
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
