// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// StoredUser is a user row including the credential hash; the hash never
// leaves the auth service.
type StoredUser struct {
	model.User
	PasswordHash string
}

// UserRepository provides account storage.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists when the
	// username or email is taken.
	Create(ctx context.Context, u *StoredUser) error
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*StoredUser, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*StoredUser, error)
}
