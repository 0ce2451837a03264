// Package model defines domain entities shared by the client core, services
// and repositories. JSON tags describe the wire format of the /api endpoints.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// DateLayout is the calendar date format used on the wire and in storage.
// Lexical order of dates in this layout equals chronological order.
const DateLayout = "2006-01-02"

// Category is one of the fixed expense categories.
type Category string

// The fixed category set. The server rejects anything else.
const (
	CategoryFuel        Category = "Fuel"
	CategoryRepair      Category = "Repair"
	CategoryMaintenance Category = "Maintenance"
	CategoryInsurance   Category = "Insurance"
	CategoryTaxes       Category = "Taxes"
	CategoryWash        Category = "Wash"
	CategoryOther       Category = "Other"
)

// Categories lists all valid categories in display order.
var Categories = []Category{
	CategoryFuel, CategoryRepair, CategoryMaintenance,
	CategoryInsurance, CategoryTaxes, CategoryWash, CategoryOther,
}

// ValidCategory reports whether c is a member of the fixed category set.
func ValidCategory(c Category) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// User is the public profile of an account.
type User struct {
	ID       uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Session binds an opaque token to the user it authenticates.
// Invariant: a non-empty Token always comes with a non-zero User and vice versa.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session satisfies the token<->user invariant
// with both sides present.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.ID != uuid.Nil
}

// Car is a vehicle owned by exactly one user. Identity is server-assigned;
// the client never mutates a car in place, only deletes and recreates.
type Car struct {
	ID           uuid.UUID `json:"car_id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year,omitempty"`
	LicensePlate string    `json:"license_plate,omitempty"`
	FuelType     string    `json:"fuel_type,omitempty"`
}

// NewCar carries the client-supplied fields of a car to be created.
type NewCar struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
}

// Expense is a single vehicle-related expense record.
type Expense struct {
	ID          uuid.UUID `json:"expense_id"`
	CarID       uuid.UUID `json:"car_id"`
	Date        string    `json:"date"` // DateLayout
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Description string    `json:"description,omitempty"`
}

// NewExpense carries the client-supplied fields of an expense create/update.
type NewExpense struct {
	CarID       uuid.UUID `json:"car_id"`
	Date        string    `json:"date"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Description string    `json:"description,omitempty"`
}

// ExpenseFilter narrows expense listings and summaries. Zero values mean
// "no constraint". Dates are inclusive bounds in DateLayout.
type ExpenseFilter struct {
	CarID     uuid.UUID
	StartDate string
	EndDate   string
	Category  Category
}

// Summary is the server-computed aggregate for a filter. The client never
// recomputes it locally; it is fetched fresh per view.
type Summary struct {
	TotalAmount float64              `json:"total_amount"`
	TotalCount  int                  `json:"total_count"`
	ByCategory  map[Category]float64 `json:"by_category"`
}
