// Package httpapi exposes the MyCarExpenses REST handlers.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
	"github.com/gotovkk/MyCarExpenses/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth   service.AuthService
	garage service.GarageService
	log    *zap.Logger
}

// New constructs the HTTP server with injected services.
func New(auth service.AuthService, garage service.GarageService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, garage: garage, log: log}
}

// Router builds the gin engine with middleware and all /api routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(s.log), Logging(s.log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.RequireAuth())
	authed.GET("/cars", s.handleListCars)
	authed.POST("/cars", s.handleAddCar)
	authed.DELETE("/cars/:id", s.handleDeleteCar)
	authed.GET("/expenses", s.handleListExpenses)
	authed.POST("/expenses", s.handleAddExpense)
	authed.PUT("/expenses/:id", s.handleUpdateExpense)
	authed.DELETE("/expenses/:id", s.handleDeleteExpense)
	authed.GET("/analytics/summary", s.handleSummary)

	return r
}

// writeError maps service errors onto HTTP statuses with a {"message"} body.
func writeError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": msg})
	case errors.Is(err, errs.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "too many attempts, try again later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func (s *Server) userID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(userIDKey)
	id, _ := v.(uuid.UUID)
	return id
}

// --- Auth ---

func (s *Server) handleRegister(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}
	u, err := s.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}
	token, u, err := s.auth.LoginWithIP(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Session{Token: token, User: u})
}

// --- Cars ---

func (s *Server) handleListCars(c *gin.Context) {
	cars, err := s.garage.ListCars(c.Request.Context(), s.userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if cars == nil {
		cars = []model.Car{}
	}
	c.JSON(http.StatusOK, cars)
}

func (s *Server) handleAddCar(c *gin.Context) {
	var draft model.NewCar
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}
	car, err := s.garage.AddCar(c.Request.Context(), s.userID(c), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, car)
}

func (s *Server) handleDeleteCar(c *gin.Context) {
	carID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	if err := s.garage.DeleteCar(c.Request.Context(), s.userID(c), carID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "car deleted"})
}

// --- Expenses ---

func expenseFilter(c *gin.Context) (model.ExpenseFilter, error) {
	var f model.ExpenseFilter
	if v := c.Query("car_id"); v != "" {
		id, err := uuid.FromString(v)
		if err != nil {
			return f, errs.ErrInvalidInput
		}
		f.CarID = id
	}
	for _, q := range []struct {
		val string
		dst *string
	}{
		{c.Query("start_date"), &f.StartDate},
		{c.Query("end_date"), &f.EndDate},
	} {
		if q.val == "" {
			continue
		}
		if !model.ValidDate(q.val) {
			return f, errs.ErrInvalidInput
		}
		*q.dst = q.val
	}
	f.Category = model.Category(c.Query("category"))
	return f, nil
}

func (s *Server) handleListExpenses(c *gin.Context) {
	filter, err := expenseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed filter"})
		return
	}
	list, err := s.garage.ListExpenses(c.Request.Context(), s.userID(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []model.Expense{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleAddExpense(c *gin.Context) {
	var draft model.NewExpense
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}
	e, err := s.garage.AddExpense(c.Request.Context(), s.userID(c), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) handleUpdateExpense(c *gin.Context) {
	expenseID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	var draft model.NewExpense
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}
	e, err := s.garage.UpdateExpense(c.Request.Context(), s.userID(c), expenseID, draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	expenseID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	if err := s.garage.DeleteExpense(c.Request.Context(), s.userID(c), expenseID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense deleted"})
}

// --- Analytics ---

func (s *Server) handleSummary(c *gin.Context) {
	filter, err := expenseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed filter"})
		return
	}
	sum, err := s.garage.Summarize(c.Request.Context(), s.userID(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if sum.ByCategory == nil {
		sum.ByCategory = map[model.Category]float64{}
	}
	c.JSON(http.StatusOK, sum)
}
