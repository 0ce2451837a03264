package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// CarRepository provides per-user access to cars.
type CarRepository interface {
	// Create inserts a car owned by userID.
	Create(ctx context.Context, userID uuid.UUID, car *model.Car) error

	// ListByUser returns all cars owned by userID.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Car, error)

	// Delete removes the car and, by schema cascade, its expenses.
	// Returns errs.ErrNotFound when the car does not exist or belongs to
	// another user.
	Delete(ctx context.Context, userID, carID uuid.UUID) error

	// Owns reports whether carID exists and belongs to userID.
	Owns(ctx context.Context, userID, carID uuid.UUID) (bool, error)
}
