package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
)

func TestCarRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCarRepo(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV4())
	car := &model.Car{
		ID:           uuid.Must(uuid.NewV4()),
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2019,
		LicensePlate: "1234 AB-7",
		FuelType:     "petrol",
	}

	mock.ExpectExec(`INSERT INTO cars \(id, user_id, make, model, year, license_plate, fuel_type\)`).
		WithArgs(car.ID, userID, car.Make, car.Model, car.Year, car.LicensePlate, car.FuelType).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, userID, car))
}

func TestCarRepo_ListByUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCarRepo(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV4())
	a := uuid.Must(uuid.NewV4())
	b := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, make, model, year, license_plate, fuel_type FROM cars WHERE user_id=\$1`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "make", "model", "year", "license_plate", "fuel_type"}).
			AddRow(a, "Toyota", "Corolla", 2019, "1234 AB-7", "petrol").
			AddRow(b, "VW", "Golf", 0, "", ""))

	cars, err := r.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cars, 2)
	require.Equal(t, a, cars[0].ID)
	require.Equal(t, "Golf", cars[1].Model)
}

func TestCarRepo_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCarRepo(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV4())
	carID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM cars WHERE id=\$1 AND user_id=\$2`).
		WithArgs(carID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, userID, carID))

	// someone else's car looks like a missing one
	mock.ExpectExec(`DELETE FROM cars WHERE id=\$1 AND user_id=\$2`).
		WithArgs(carID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, userID, carID), errs.ErrNotFound)
}

func TestCarRepo_Owns(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCarRepo(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV4())
	carID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM cars WHERE id=\$1 AND user_id=\$2\)`).
		WithArgs(carID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := r.Owns(ctx, userID, carID)
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM cars WHERE id=\$1 AND user_id=\$2\)`).
		WithArgs(carID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err = r.Owns(ctx, userID, carID)
	require.NoError(t, err)
	require.False(t, ok)
}
