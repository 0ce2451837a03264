// Package client implements the local state layer of the MyCarExpenses
// application: the remote gateway, the domain cache and the synchronization
// controller driving them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
)

// RequestError is a failed API call. Status is the HTTP status, Message the
// server-provided text (or "HTTP <status>" when the body carried none).
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Unwrap maps the status onto the shared sentinel set so callers can
// errors.Is against it.
func (e *RequestError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return errs.ErrInvalidInput
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	case http.StatusTooManyRequests:
		return errs.ErrRateLimited
	default:
		return nil
	}
}

// Gateway is a typed client for the /api endpoints. Calls are at-most-once;
// no retries, no caching. Safe for concurrent use.
type Gateway struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// NewGateway constructs a gateway for the given server base URL
// (e.g. "https://api.example.com"). httpc may be nil.
func NewGateway(baseURL string, httpc *http.Client) *Gateway {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Gateway{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

// SetToken attaches a bearer token to subsequent calls. Empty clears it.
func (g *Gateway) SetToken(token string) {
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
}

func (g *Gateway) bearer() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// do performs one JSON request. out may be nil when the response body is
// irrelevant.
func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := g.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var eb struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return &RequestError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// --- Auth ---

// Register creates an account and returns the server record.
func (g *Gateway) Register(ctx context.Context, username, email, password string) (model.User, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var u model.User
	if err := g.do(ctx, http.MethodPost, "/api/register", nil, in, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Login authenticates and returns the token plus user record.
func (g *Gateway) Login(ctx context.Context, email, password string) (model.Session, error) {
	in := map[string]string{"email": email, "password": password}
	var sess model.Session
	if err := g.do(ctx, http.MethodPost, "/api/login", nil, in, &sess); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// --- Cars ---

func (g *Gateway) ListCars(ctx context.Context) ([]model.Car, error) {
	var cars []model.Car
	if err := g.do(ctx, http.MethodGet, "/api/cars", nil, nil, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

func (g *Gateway) AddCar(ctx context.Context, draft model.NewCar) (model.Car, error) {
	var car model.Car
	if err := g.do(ctx, http.MethodPost, "/api/cars", nil, draft, &car); err != nil {
		return model.Car{}, err
	}
	return car, nil
}

func (g *Gateway) DeleteCar(ctx context.Context, id uuid.UUID) error {
	return g.do(ctx, http.MethodDelete, "/api/cars/"+id.String(), nil, nil, nil)
}

// --- Expenses ---

func filterQuery(filter model.ExpenseFilter) url.Values {
	q := url.Values{}
	if filter.CarID != uuid.Nil {
		q.Set("car_id", filter.CarID.String())
	}
	if filter.StartDate != "" {
		q.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		q.Set("end_date", filter.EndDate)
	}
	if filter.Category != "" {
		q.Set("category", string(filter.Category))
	}
	return q
}

func (g *Gateway) ListExpenses(ctx context.Context, filter model.ExpenseFilter) ([]model.Expense, error) {
	var list []model.Expense
	if err := g.do(ctx, http.MethodGet, "/api/expenses", filterQuery(filter), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (g *Gateway) AddExpense(ctx context.Context, draft model.NewExpense) (model.Expense, error) {
	var e model.Expense
	if err := g.do(ctx, http.MethodPost, "/api/expenses", nil, draft, &e); err != nil {
		return model.Expense{}, err
	}
	return e, nil
}

func (g *Gateway) UpdateExpense(ctx context.Context, id uuid.UUID, draft model.NewExpense) (model.Expense, error) {
	var e model.Expense
	if err := g.do(ctx, http.MethodPut, "/api/expenses/"+id.String(), nil, draft, &e); err != nil {
		return model.Expense{}, err
	}
	return e, nil
}

func (g *Gateway) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return g.do(ctx, http.MethodDelete, "/api/expenses/"+id.String(), nil, nil, nil)
}

// --- Analytics ---

func (g *Gateway) Summary(ctx context.Context, filter model.ExpenseFilter) (model.Summary, error) {
	var sum model.Summary
	if err := g.do(ctx, http.MethodGet, "/api/analytics/summary", filterQuery(filter), nil, &sum); err != nil {
		return model.Summary{}, err
	}
	return sum, nil
}
