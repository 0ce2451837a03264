package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// CarRepo implements CarRepository using PostgreSQL.
type CarRepo struct{ db *DB }

// NewCarRepo constructs a car repository.
func NewCarRepo(db *DB) *CarRepo { return &CarRepo{db: db} }

// Create inserts a car owned by userID.
func (r *CarRepo) Create(ctx context.Context, userID uuid.UUID, car *model.Car) error {
	const q = `
INSERT INTO cars (id, user_id, make, model, year, license_plate, fuel_type)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q,
		car.ID, userID, car.Make, car.Model, car.Year, car.LicensePlate, car.FuelType)
	return err
}

// ListByUser returns all cars owned by userID.
func (r *CarRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Car, error) {
	const q = `
SELECT id, make, model, year, license_plate, fuel_type
FROM cars WHERE user_id=$1
ORDER BY created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Car
	for rows.Next() {
		var c model.Car
		if err = rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.LicensePlate, &c.FuelType); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the car; expenses go with it via ON DELETE CASCADE.
func (r *CarRepo) Delete(ctx context.Context, userID, carID uuid.UUID) error {
	const q = `DELETE FROM cars WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, carID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Owns reports whether carID exists and belongs to userID.
func (r *CarRepo) Owns(ctx context.Context, userID, carID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM cars WHERE id=$1 AND user_id=$2)`
	var ok bool
	if err := r.db.Pool.QueryRow(ctx, q, carID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
