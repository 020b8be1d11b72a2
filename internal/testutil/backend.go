// Package testutil provides test helpers: an in-process fake of the advisor
// backend, an in-memory SQLite database, fixtures, and assertions.
package testutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finadvisor/internal/errors"
	"finadvisor/internal/logger"
	"finadvisor/internal/models"
)

// RecordedRequest is one request the fake backend received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Token  string
}

type failure struct {
	status int
	detail string
}

type user struct {
	models.User
	passwordHash []byte
}

// Backend is an in-memory implementation of the advisor REST contract. It
// keeps just enough server-side behaviour (ownership, categorization,
// computed budget and goal fields) for client tests to run end to end.
type Backend struct {
	t      *testing.T
	server *httptest.Server

	mu           sync.Mutex
	now          func() time.Time
	secret       []byte
	tokenGen     int
	nextID       int
	users        map[int]*user
	transactions map[int]*models.Transaction
	budgets      map[int]*models.Budget
	goals        map[int]*models.Goal
	failures     map[string]failure
	requests     []RecordedRequest
	forecast     models.ForecastMethod
}

// NewBackend starts a fake backend that is shut down when t finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		t:            t,
		now:          time.Now,
		secret:       []byte("test-secret"),
		users:        make(map[int]*user),
		transactions: make(map[int]*models.Transaction),
		budgets:      make(map[int]*models.Budget),
		goals:        make(map[int]*models.Goal),
		failures:     make(map[string]failure),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL clients should use.
func (b *Backend) URL() string { return b.server.URL }

// Client returns an http.Client wired to the server.
func (b *Backend) Client() *http.Client { return b.server.Client() }

// SetNow fixes the backend clock used for goal computations and default
// transaction dates.
func (b *Backend) SetNow(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = func() time.Time { return now }
}

// SetForecastMethod makes /ai/forecast tag its response with method. An
// empty method omits the tag, as older backends do.
func (b *Backend) SetForecastMethod(method models.ForecastMethod) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forecast = method
}

// Fail makes every request to method+path answer status with detail until
// ClearFailures is called.
func (b *Backend) Fail(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, detail: detail}
}

// ClearFailures removes all injected failures.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]failure)
}

// RevokeTokens invalidates every access token issued so far; requests that
// carry one get a 401.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenGen++
}

// Requests returns a copy of every request received.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestCount returns how many requests were received.
func (b *Backend) RequestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// CountRequests returns how many requests matched method and path.
func (b *Backend) CountRequests(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.record(), b.injectFailures())

	auth := r.Group("/auth")
	auth.POST("/register", b.register)
	auth.POST("/login", b.login)
	auth.POST("/refresh", b.refresh)
	auth.POST("/logout", b.logout)

	protected := r.Group("")
	protected.Use(b.authenticate())

	tx := protected.Group("/transactions")
	tx.GET("", b.listTransactions)
	tx.GET("/filter", b.listTransactions)
	tx.GET("/export", b.exportTransactions)
	tx.GET("/stats/category", b.categoryStats)
	tx.GET("/stats/timeline", b.timelineStats)
	tx.POST("", b.createTransaction)
	tx.GET("/:id", b.getTransaction)
	tx.PUT("/:id", b.updateTransaction)
	tx.DELETE("/:id", b.deleteTransaction)

	analytics := protected.Group("/analytics")
	analytics.GET("/summary", b.summary)
	analytics.GET("/monthly", b.monthly)

	ai := protected.Group("/ai")
	ai.POST("/chat", b.chat)
	ai.GET("/insights", b.insights)
	ai.GET("/tips", b.tips)
	ai.POST("/forecast", b.forecastExpenses)
	ai.GET("/category-forecast", b.categoryForecast)

	budgets := protected.Group("/budgets")
	budgets.GET("", b.listBudgets)
	budgets.POST("", b.createBudget)
	budgets.GET("/:id", b.getBudget)
	budgets.PUT("/:id", b.updateBudget)
	budgets.DELETE("/:id", b.deleteBudget)

	goals := protected.Group("/goals")
	goals.GET("", b.listGoals)
	goals.POST("", b.createGoal)
	goals.GET("/:id", b.getGoal)
	goals.PUT("/:id", b.updateGoal)
	goals.POST("/:id/contribute", b.contribute)
	goals.DELETE("/:id", b.deleteGoal)

	users := protected.Group("/users")
	users.GET("/me", b.me)
	users.PUT("/me", b.updateMe)
	users.PUT("/me/password", b.changePassword)
	users.DELETE("/me", b.deactivate)
	users.POST("/me/reactivate", b.reactivate)

	return r
}

func (b *Backend) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Token:  strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "),
		})
		b.mu.Unlock()
		c.Next()
	}
}

func (b *Backend) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		f, ok := b.failures[c.Request.Method+" "+c.Request.URL.Path]
		b.mu.Unlock()
		if ok {
			respondWithError(c, apperrors.WithStatus(apperrors.ErrBackend, f.status, f.detail))
			c.Abort()
			return
		}
		c.Next()
	}
}

// respondWithError writes a FastAPI-style {"detail": "..."} body.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		c.JSON(appErr.StatusCode, gin.H{"detail": appErr.Message})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

func fail(c *gin.Context, status int, detail string) {
	respondWithError(c, apperrors.WithStatus(apperrors.ErrBackend, status, detail))
}

// respondValidation mirrors FastAPI's 422 body: a list of {"msg": ...}.
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"detail": []gin.H{{"msg": apperrors.UserMessage(err)}},
	})
}

// parsePathID parses the :id path parameter.
func parsePathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		fail(c, http.StatusUnprocessableEntity, "Invalid id")
		return 0, false
	}
	return id, true
}

func getUserID(c *gin.Context) int {
	return c.GetInt("userID")
}

func (b *Backend) newID() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) clock() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now()
}
