package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// ExpenseRepository provides per-user access to expense records. All methods
// scope by userID through the car ownership join; a record owned by another
// user is indistinguishable from a missing one.
type ExpenseRepository interface {
	// Create inserts a new expense.
	Create(ctx context.Context, e *model.Expense) error

	// ListByUser returns the user's expenses matching filter, newest date first.
	ListByUser(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) ([]model.Expense, error)

	// Update replaces the mutable fields of an existing expense.
	// Returns errs.ErrNotFound when the expense is not visible to userID.
	Update(ctx context.Context, userID uuid.UUID, e *model.Expense) error

	// Delete removes an expense. Returns errs.ErrNotFound when the expense
	// is not visible to userID.
	Delete(ctx context.Context, userID, expenseID uuid.UUID) error

	// Summarize computes total amount, record count and per-category sums
	// for the user's expenses matching filter.
	Summarize(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) (model.Summary, error)
}
