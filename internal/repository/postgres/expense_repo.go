package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// ExpenseRepo implements ExpenseRepository using PostgreSQL. Every statement
// joins through cars.user_id so records of other users stay invisible.
type ExpenseRepo struct{ db *DB }

// NewExpenseRepo constructs an expense repository.
func NewExpenseRepo(db *DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

// Create inserts a new expense. Ownership of the referenced car is checked
// by the service layer before the insert.
func (r *ExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	const q = `
INSERT INTO expenses (id, car_id, date, amount, category, description)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, e.ID, e.CarID, e.Date, e.Amount, e.Category, e.Description)
	return err
}

// filterClause appends optional filter conditions to a WHERE clause whose
// first placeholder ($1) is already taken by user_id.
func filterClause(filter model.ExpenseFilter, args []any) (string, []any) {
	var sql string
	if filter.CarID != uuid.Nil {
		args = append(args, filter.CarID)
		sql += fmt.Sprintf(" AND e.car_id=$%d", len(args))
	}
	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		sql += fmt.Sprintf(" AND e.date>=$%d", len(args))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		sql += fmt.Sprintf(" AND e.date<=$%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		sql += fmt.Sprintf(" AND e.category=$%d", len(args))
	}
	return sql, args
}

// ListByUser returns the user's expenses matching filter, newest date first.
func (r *ExpenseRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) ([]model.Expense, error) {
	q := `
SELECT e.id, e.car_id, e.date, e.amount, e.category, e.description
FROM expenses e
JOIN cars c ON e.car_id = c.id
WHERE c.user_id=$1`
	clause, args := filterClause(filter, []any{userID})
	q += clause + " ORDER BY e.date DESC"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Expense
	for rows.Next() {
		var e model.Expense
		if err = rows.Scan(&e.ID, &e.CarID, &e.Date, &e.Amount, &e.Category, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update replaces the mutable fields (date, amount, category, description)
// of an expense visible to userID. The owning car never changes.
func (r *ExpenseRepo) Update(ctx context.Context, userID uuid.UUID, e *model.Expense) error {
	const q = `
UPDATE expenses SET date=$3, amount=$4, category=$5, description=$6
WHERE id=$1 AND car_id IN (SELECT id FROM cars WHERE user_id=$2)`
	tag, err := r.db.Pool.Exec(ctx, q, e.ID, userID, e.Date, e.Amount, e.Category, e.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes an expense visible to userID.
func (r *ExpenseRepo) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	const q = `
DELETE FROM expenses
WHERE id=$1 AND car_id IN (SELECT id FROM cars WHERE user_id=$2)`
	tag, err := r.db.Pool.Exec(ctx, q, expenseID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Summarize folds per-category sums into the aggregate the analytics
// endpoint serves.
func (r *ExpenseRepo) Summarize(ctx context.Context, userID uuid.UUID, filter model.ExpenseFilter) (model.Summary, error) {
	q := `
SELECT e.category, SUM(e.amount), COUNT(*)
FROM expenses e
JOIN cars c ON e.car_id = c.id
WHERE c.user_id=$1`
	clause, args := filterClause(filter, []any{userID})
	q += clause + " GROUP BY e.category"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return model.Summary{}, err
	}
	defer rows.Close()

	sum := model.Summary{ByCategory: map[model.Category]float64{}}
	for rows.Next() {
		var cat model.Category
		var amount float64
		var count int
		if err = rows.Scan(&cat, &amount, &count); err != nil {
			return model.Summary{}, err
		}
		sum.ByCategory[cat] = amount
		sum.TotalAmount += amount
		sum.TotalCount += count
	}
	return sum, rows.Err()
}
