package client

import (
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// Cache is the in-memory snapshot of server state the views render from.
// It holds at most one session, the user's cars and the last fetched expense
// listing. Collections are replaced wholesale, never patched.
//
// Replacements are ordered by issue sequence: a reload started earlier can
// never overwrite data from a reload started later, regardless of which
// response arrives first.
type Cache struct {
	mu       sync.RWMutex
	session  model.Session
	cars     []model.Car
	expenses []model.Expense

	carsIssued  uint64
	carsApplied uint64
	expIssued   uint64
	expApplied  uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// SetSession stores the authenticated session.
func (c *Cache) SetSession(sess model.Session) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
}

// Session returns the current session and whether one is set.
func (c *Cache) Session() (model.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.session.Valid()
}

// Clear wipes the session and both collections in one step. A reader can
// never observe a cleared session alongside leftover data. In-flight reloads
// issued before the clear are invalidated.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.session = model.Session{}
	c.cars = nil
	c.expenses = nil
	c.carsApplied = c.carsIssued
	c.expApplied = c.expIssued
	c.mu.Unlock()
}

// BeginCarsReload reserves an ordering slot for a cars reload. The returned
// sequence must be passed to CommitCars.
func (c *Cache) BeginCarsReload() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carsIssued++
	return c.carsIssued
}

// CommitCars replaces the car collection if seq is newer than the last
// applied reload. Reports whether the replacement was applied.
func (c *Cache) CommitCars(seq uint64, cars []model.Car) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.carsApplied {
		return false
	}
	c.carsApplied = seq
	c.cars = append([]model.Car(nil), cars...)
	return true
}

// Cars returns a copy of the cached car collection.
func (c *Cache) Cars() []model.Car {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Car(nil), c.cars...)
}

// BeginExpensesReload reserves an ordering slot for an expenses reload.
func (c *Cache) BeginExpensesReload() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expIssued++
	return c.expIssued
}

// CommitExpenses replaces the expense collection if seq is newer than the
// last applied reload. Reports whether the replacement was applied.
func (c *Cache) CommitExpenses(seq uint64, expenses []model.Expense) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.expApplied {
		return false
	}
	c.expApplied = seq
	c.expenses = append([]model.Expense(nil), expenses...)
	return true
}

// Expenses returns a copy of the cached expense collection.
func (c *Cache) Expenses() []model.Expense {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Expense(nil), c.expenses...)
}

// FindExpense looks up a cached expense by id.
func (c *Cache) FindExpense(id uuid.UUID) (model.Expense, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return model.Expense{}, false
}
