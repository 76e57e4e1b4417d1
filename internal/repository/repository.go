// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation;
// tests provide in-memory mocks. Services never import sqlite directly.
package repository

import (
	"context"

	"github.com/sakif/jobtrack/internal/model"
)

// ListOptions narrows and pages a List call.
//
// OwnerID "" means unscoped (anonymous mode); a non-empty OwnerID
// restricts results to that user's records. Status "" means no status
// filter.
type ListOptions struct {
	OwnerID string
	Status  string
	Limit   int
	Offset  int
}

// ApplicationRepository is the record store for job applications.
//
// Every read/mutate method that takes an ownerID applies the same
// scoping rule: with a non-empty ownerID, a record owned by anyone else
// is indistinguishable from a record that doesn't exist — both return
// apperror.ErrNotFound.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id int64, ownerID string) (*model.Application, error)
	List(ctx context.Context, opts ListOptions) ([]model.Application, error)
	Update(ctx context.Context, app *model.Application) error
	Delete(ctx context.Context, id int64, ownerID string) error
}

// UserRepository stores registered accounts (authenticated mode only).
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}
