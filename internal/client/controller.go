package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/gotovkk/MyCarExpenses/internal/client/session"
	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// State is the session lifecycle state of the controller.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateSessionExpired
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

// Route names a screen the view can be sent to.
type Route string

const (
	RouteLogin  Route = "login"
	RouteGarage Route = "garage"
)

// View receives display commands from the controller. Implementations render
// the cache; they never mutate it.
type View interface {
	// Refresh tells the view to re-render from the cache.
	Refresh()
	// Navigate switches the view to the given route.
	Navigate(Route)
}

// NopView ignores all commands.
type NopView struct{}

func (NopView) Refresh()       {}
func (NopView) Navigate(Route) {}

// API is the remote surface the controller drives. *Gateway implements it.
type API interface {
	Register(ctx context.Context, username, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
	SetToken(token string)

	ListCars(ctx context.Context) ([]model.Car, error)
	AddCar(ctx context.Context, draft model.NewCar) (model.Car, error)
	DeleteCar(ctx context.Context, id uuid.UUID) error

	ListExpenses(ctx context.Context, filter model.ExpenseFilter) ([]model.Expense, error)
	AddExpense(ctx context.Context, draft model.NewExpense) (model.Expense, error)
	UpdateExpense(ctx context.Context, id uuid.UUID, draft model.NewExpense) (model.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error

	Summary(ctx context.Context, filter model.ExpenseFilter) (model.Summary, error)
}

var _ API = (*Gateway)(nil)

// SessionStore persists the session between runs. session.Store implements it.
type SessionStore interface {
	Save(model.Session) error
	Load() (model.Session, error)
	Clear() error
}

var _ SessionStore = (*session.Store)(nil)

// Controller orchestrates the session lifecycle and keeps the cache in sync
// with the server. It is the sole writer of the cache and the session store.
//
// Every mutation is mutate-then-refetch: the gateway call goes first and a
// failure propagates without touching the cache; on success the affected
// collection is reloaded in full, so the cache never carries client-guessed
// values for server-assigned fields.
type Controller struct {
	api   API
	cache *Cache
	store SessionStore
	view  View
	log   *zap.Logger

	mu     sync.Mutex
	state  State
	filter model.ExpenseFilter // active expense listing filter
}

// NewController wires the controller. view and log may be nil.
func NewController(api API, cache *Cache, store SessionStore, view View, log *zap.Logger) *Controller {
	if view == nil {
		view = NopView{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{api: api, cache: cache, store: store, view: view, log: log, state: StateAnonymous}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(next State) {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()
	if prev != next {
		c.log.Debug("state", zap.Stringer("from", prev), zap.Stringer("to", next))
	}
}

// --- Session lifecycle ---

// Register creates an account. It does not log the user in; the flow stays
// in its current state.
func (c *Controller) Register(ctx context.Context, username, email, password string) (model.User, error) {
	if username == "" || email == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: username, email and password are required", errs.ErrInvalidInput)
	}
	return c.api.Register(ctx, username, email, password)
}

// Login authenticates, persists the session and loads all collections.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", errs.ErrInvalidInput)
	}
	c.setState(StateAuthenticating)

	sess, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.setState(StateAnonymous)
		return err
	}

	c.api.SetToken(sess.Token)
	c.cache.SetSession(sess)
	if err := c.store.Save(sess); err != nil {
		// non-fatal: the session just won't survive a restart
		c.log.Warn("persist session", zap.Error(err))
	}
	c.setState(StateAuthenticated)
	c.log.Info("login", zap.String("user", sess.User.ID.String()))

	c.reloadAll(ctx)
	c.view.Navigate(RouteGarage)
	return nil
}

// Restore loads a persisted session and, if one exists, enters Authenticated
// optimistically without re-validating credentials. The first reload call
// acts as the validity probe: a 401 there expires the session. Reports
// whether a session was restored.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	sess, err := c.store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return false, nil
		}
		return false, err
	}

	c.api.SetToken(sess.Token)
	c.cache.SetSession(sess)
	c.setState(StateAuthenticated)
	c.log.Info("session restored", zap.String("user", sess.User.ID.String()))

	c.reloadAll(ctx)
	if c.State() == StateAuthenticated {
		c.view.Navigate(RouteGarage)
		return true, nil
	}
	return false, nil
}

// Logout drops the session everywhere and returns to Anonymous.
func (c *Controller) Logout() error {
	err := c.store.Clear()
	c.api.SetToken("")
	c.cache.Clear()
	c.setState(StateAnonymous)
	c.view.Navigate(RouteLogin)
	c.log.Info("logout")
	return err
}

// expireSession handles a 401 observed while authenticated: the session is
// gone server-side, so drop it client-side and send the view to login.
func (c *Controller) expireSession() {
	c.setState(StateSessionExpired)
	c.log.Info("session expired")
	if err := c.store.Clear(); err != nil {
		c.log.Warn("clear session store", zap.Error(err))
	}
	c.api.SetToken("")
	c.cache.Clear()
	c.setState(StateAnonymous)
	c.view.Navigate(RouteLogin)
}

// checkAuth routes authentication failures into the state machine. Any other
// error passes through untouched.
func (c *Controller) checkAuth(err error) error {
	if err != nil && errors.Is(err, errs.ErrUnauthorized) && c.State() == StateAuthenticated {
		c.expireSession()
	}
	return err
}

// --- Read access ---

// Cars returns the cached car snapshot.
func (c *Controller) Cars() []model.Car { return c.cache.Cars() }

// Expenses returns the cached expense snapshot under the active filter.
func (c *Controller) Expenses() []model.Expense { return c.cache.Expenses() }

// Session returns the active session, if any.
func (c *Controller) Session() (model.Session, bool) { return c.cache.Session() }

// --- Reloads ---

// ReloadCars refetches the car collection. A failed reload keeps the
// previous cache contents.
func (c *Controller) ReloadCars(ctx context.Context) error {
	seq := c.cache.BeginCarsReload()
	cars, err := c.api.ListCars(ctx)
	if err != nil {
		return c.checkAuth(err)
	}
	if c.cache.CommitCars(seq, cars) {
		c.view.Refresh()
	}
	return nil
}

// ReloadExpenses refetches the expense collection under the active filter.
func (c *Controller) ReloadExpenses(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()

	seq := c.cache.BeginExpensesReload()
	list, err := c.api.ListExpenses(ctx, filter)
	if err != nil {
		return c.checkAuth(err)
	}
	if c.cache.CommitExpenses(seq, list) {
		c.view.Refresh()
	}
	return nil
}

func (c *Controller) reloadAll(ctx context.Context) {
	if err := c.ReloadCars(ctx); err != nil {
		c.log.Warn("reload cars", zap.Error(err))
		return
	}
	if err := c.ReloadExpenses(ctx); err != nil {
		c.log.Warn("reload expenses", zap.Error(err))
	}
}

// SetExpenseFilter changes the active listing filter and refetches.
func (c *Controller) SetExpenseFilter(ctx context.Context, filter model.ExpenseFilter) error {
	if filter.Category != "" && !model.ValidCategory(filter.Category) {
		return fmt.Errorf("%w: unknown category %q", errs.ErrInvalidInput, filter.Category)
	}
	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d != "" && !model.ValidDate(d) {
			return fmt.Errorf("%w: date must be %s", errs.ErrInvalidInput, model.DateLayout)
		}
	}
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	return c.ReloadExpenses(ctx)
}

// --- Mutations ---

// AddCar creates a car and refetches the collection.
func (c *Controller) AddCar(ctx context.Context, draft model.NewCar) (model.Car, error) {
	if draft.Make == "" || draft.Model == "" {
		return model.Car{}, fmt.Errorf("%w: make and model are required", errs.ErrInvalidInput)
	}
	car, err := c.api.AddCar(ctx, draft)
	if err != nil {
		return model.Car{}, c.checkAuth(err)
	}
	if err := c.ReloadCars(ctx); err != nil {
		c.log.Warn("reload after add car", zap.Error(err))
	}
	return car, nil
}

// DeleteCar removes a car. Its expenses go with it server-side, so both
// collections are refetched.
func (c *Controller) DeleteCar(ctx context.Context, id uuid.UUID) error {
	if err := c.api.DeleteCar(ctx, id); err != nil {
		return c.checkAuth(err)
	}
	if err := c.ReloadCars(ctx); err != nil {
		c.log.Warn("reload after delete car", zap.Error(err))
	}
	if err := c.ReloadExpenses(ctx); err != nil {
		c.log.Warn("reload after delete car", zap.Error(err))
	}
	return nil
}

// validateExpenseDraft is the pre-flight check before an expense mutation,
// saving a round trip on input the server would reject anyway.
func validateExpenseDraft(draft model.NewExpense, needCar bool) error {
	if needCar && draft.CarID == uuid.Nil {
		return fmt.Errorf("%w: car is required", errs.ErrInvalidInput)
	}
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

// AddExpense creates an expense and refetches the collection.
func (c *Controller) AddExpense(ctx context.Context, draft model.NewExpense) (model.Expense, error) {
	if err := validateExpenseDraft(draft, true); err != nil {
		return model.Expense{}, err
	}
	e, err := c.api.AddExpense(ctx, draft)
	if err != nil {
		return model.Expense{}, c.checkAuth(err)
	}
	if err := c.ReloadExpenses(ctx); err != nil {
		c.log.Warn("reload after add expense", zap.Error(err))
	}
	return e, nil
}

// UpdateExpense replaces an expense's fields and refetches the collection.
func (c *Controller) UpdateExpense(ctx context.Context, id uuid.UUID, draft model.NewExpense) (model.Expense, error) {
	if id == uuid.Nil {
		return model.Expense{}, errs.ErrNotFound
	}
	if err := validateExpenseDraft(draft, false); err != nil {
		return model.Expense{}, err
	}
	e, err := c.api.UpdateExpense(ctx, id, draft)
	if err != nil {
		return model.Expense{}, c.checkAuth(err)
	}
	if err := c.ReloadExpenses(ctx); err != nil {
		c.log.Warn("reload after update expense", zap.Error(err))
	}
	return e, nil
}

// DeleteExpense removes an expense and refetches the collection.
func (c *Controller) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := c.api.DeleteExpense(ctx, id); err != nil {
		return c.checkAuth(err)
	}
	if err := c.ReloadExpenses(ctx); err != nil {
		c.log.Warn("reload after delete expense", zap.Error(err))
	}
	return nil
}

// Summary fetches the aggregate fresh from the server; it is never cached.
func (c *Controller) Summary(ctx context.Context, filter model.ExpenseFilter) (model.Summary, error) {
	sum, err := c.api.Summary(ctx, filter)
	if err != nil {
		return model.Summary{}, c.checkAuth(err)
	}
	return sum, nil
}
