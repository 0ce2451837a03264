package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
	"github.com/gotovkk/MyCarExpenses/internal/repository"
)

// GarageService defines car and expense operations for an authenticated user.
type GarageService interface {
	// ListCars returns the user's cars.
	ListCars(ctx context.Context, userID uuid.UUID) ([]model.Car, error)
	// AddCar validates and stores a new car, returning the created record.
	AddCar(ctx context.Context, userID uuid.UUID, draft model.NewCar) (model.Car, error)
	// DeleteCar removes a car together with its expenses.
	DeleteCar(ctx context.Context, userID, carID uuid.UUID) error

	// ListExpenses returns the user's expenses matching filter, newest first.
	ListExpenses(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) ([]model.Expense, error)
	// AddExpense validates and stores a new expense, returning the created record.
	AddExpense(ctx context.Context, userID uuid.UUID, draft model.NewExpense) (model.Expense, error)
	// UpdateExpense replaces date/amount/category/description of an expense.
	UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, draft model.NewExpense) (model.Expense, error)
	// DeleteExpense removes a single expense.
	DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error

	// Summarize returns the aggregate for the user's expenses matching filter.
	Summarize(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) (model.Summary, error)
}

type GarageServiceImpl struct {
	cars     repository.CarRepository
	expenses repository.ExpenseRepository
}

// NewGarageService constructs GarageService over car and expense repositories.
func NewGarageService(cars repository.CarRepository, expenses repository.ExpenseRepository) *GarageServiceImpl {
	return &GarageServiceImpl{cars: cars, expenses: expenses}
}

// ListCars returns the user's cars.
func (s *GarageServiceImpl) ListCars(ctx context.Context, userID uuid.UUID) ([]model.Car, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	return s.cars.ListByUser(ctx, userID)
}

// AddCar validates required fields and stores a new car.
func (s *GarageServiceImpl) AddCar(ctx context.Context, userID uuid.UUID, draft model.NewCar) (model.Car, error) {
	if userID == uuid.Nil {
		return model.Car{}, errs.ErrUnauthorized
	}
	if draft.Make == "" || draft.Model == "" {
		return model.Car{}, fmt.Errorf("%w: make and model are required", errs.ErrInvalidInput)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Car{}, err
	}
	car := model.Car{
		ID:           id,
		Make:         draft.Make,
		Model:        draft.Model,
		Year:         draft.Year,
		LicensePlate: draft.LicensePlate,
		FuelType:     draft.FuelType,
	}
	if err := s.cars.Create(ctx, userID, &car); err != nil {
		return model.Car{}, fmt.Errorf("save car: %w", err)
	}
	return car, nil
}

// DeleteCar removes a car; its expenses are removed with it.
func (s *GarageServiceImpl) DeleteCar(ctx context.Context, userID, carID uuid.UUID) error {
	if userID == uuid.Nil || carID == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.cars.Delete(ctx, userID, carID)
}

// validateExpense checks the fields shared by create and update.
func validateExpense(draft model.NewExpense) error {
	if draft.Date == "" || draft.Category == "" {
		return fmt.Errorf("%w: date and category are required", errs.ErrInvalidInput)
	}
	if !model.ValidDate(draft.Date) {
		return fmt.Errorf("%w: date must be %s", errs.ErrInvalidInput, model.DateLayout)
	}
	if draft.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", errs.ErrInvalidInput)
	}
	if !model.ValidCategory(draft.Category) {
		return fmt.Errorf("%w: unknown category %q", errs.ErrInvalidInput, draft.Category)
	}
	return nil
}

// AddExpense validates the draft, checks car ownership and stores the record.
func (s *GarageServiceImpl) AddExpense(ctx context.Context, userID uuid.UUID, draft model.NewExpense) (model.Expense, error) {
	if userID == uuid.Nil {
		return model.Expense{}, errs.ErrUnauthorized
	}
	if draft.CarID == uuid.Nil {
		return model.Expense{}, fmt.Errorf("%w: car_id is required", errs.ErrInvalidInput)
	}
	if err := validateExpense(draft); err != nil {
		return model.Expense{}, err
	}

	owns, err := s.cars.Owns(ctx, userID, draft.CarID)
	if err != nil {
		return model.Expense{}, fmt.Errorf("check car ownership: %w", err)
	}
	if !owns {
		return model.Expense{}, errs.ErrNotFound
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.Expense{}, err
	}
	e := model.Expense{
		ID:          id,
		CarID:       draft.CarID,
		Date:        draft.Date,
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
	}
	if err := s.expenses.Create(ctx, &e); err != nil {
		return model.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	return e, nil
}

// UpdateExpense validates the draft and replaces the mutable fields.
// The owning car never changes on update.
func (s *GarageServiceImpl) UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, draft model.NewExpense) (model.Expense, error) {
	if userID == uuid.Nil {
		return model.Expense{}, errs.ErrUnauthorized
	}
	if expenseID == uuid.Nil {
		return model.Expense{}, errs.ErrNotFound
	}
	if err := validateExpense(draft); err != nil {
		return model.Expense{}, err
	}

	e := model.Expense{
		ID:          expenseID,
		Date:        draft.Date,
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
	}
	if err := s.expenses.Update(ctx, userID, &e); err != nil {
		return model.Expense{}, err
	}

	// Re-read through the list to return the record with its car reference.
	list, err := s.expenses.ListByUser(ctx, userID, model.ExpenseFilter{})
	if err != nil {
		return model.Expense{}, err
	}
	for _, got := range list {
		if got.ID == expenseID {
			return got, nil
		}
	}
	return model.Expense{}, errs.ErrNotFound
}

// DeleteExpense removes a single expense.
func (s *GarageServiceImpl) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	if userID == uuid.Nil || expenseID == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.expenses.Delete(ctx, userID, expenseID)
}

// ListExpenses returns the user's expenses matching filter.
func (s *GarageServiceImpl) ListExpenses(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) ([]model.Expense, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if filter.Category != "" && !model.ValidCategory(filter.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", errs.ErrInvalidInput, filter.Category)
	}
	return s.expenses.ListByUser(ctx, userID, filter)
}

// Summarize returns the server-computed aggregate for the filter.
func (s *GarageServiceImpl) Summarize(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) (model.Summary, error) {
	if userID == uuid.Nil {
		return model.Summary{}, errs.ErrUnauthorized
	}
	return s.expenses.Summarize(ctx, userID, filter)
}
