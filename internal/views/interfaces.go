package views

import (
	"context"

	"finadvisor/internal/api"
	"finadvisor/internal/models"
)

// AuthAPI defines the calls behind the sign-in and registration screens.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
}

// DashboardAPI defines the reads the overview screen combines.
type DashboardAPI interface {
	Summary(ctx context.Context) (*models.AnalyticsSummary, error)
	ListTransactions(ctx context.Context, q api.TransactionQuery) ([]models.Transaction, error)
	Insights(ctx context.Context) ([]models.Insight, error)
}

// TransactionsAPI defines the calls behind the tracking screen.
type TransactionsAPI interface {
	ListTransactions(ctx context.Context, q api.TransactionQuery) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id int, in models.TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int) error
}

// BudgetsAPI defines the calls behind the budgets screen.
type BudgetsAPI interface {
	ListBudgets(ctx context.Context, month, year int) ([]models.Budget, error)
	CreateBudget(ctx context.Context, in models.BudgetInput) (*models.Budget, error)
	UpdateBudget(ctx context.Context, id int, in models.BudgetUpdate) (*models.Budget, error)
	DeleteBudget(ctx context.Context, id int) error
}

// GoalsAPI defines the calls behind the goals screen.
type GoalsAPI interface {
	ListGoals(ctx context.Context, includeCompleted bool) ([]models.Goal, error)
	CreateGoal(ctx context.Context, in models.GoalInput) (*models.Goal, error)
	Contribute(ctx context.Context, id int, amount float64) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id int) error
}

// ForecastAPI defines the calls behind the forecast screen.
type ForecastAPI interface {
	Forecast(ctx context.Context, months int, category string) (*models.Forecast, error)
	CategoryForecast(ctx context.Context, months int) (*models.CategoryForecastResponse, error)
}

// ChatAPI defines the advisor conversation call.
type ChatAPI interface {
	Chat(ctx context.Context, message string, history []models.ChatMessage) (*models.ChatResponse, error)
}

// ProfileAPI defines the calls behind the profile screen.
type ProfileAPI interface {
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, in models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, in models.PasswordChange) (*models.Message, error)
	Deactivate(ctx context.Context) error
	Logout(ctx context.Context) error
}

var (
	_ AuthAPI         = (*api.API)(nil)
	_ DashboardAPI    = (*api.API)(nil)
	_ TransactionsAPI = (*api.API)(nil)
	_ BudgetsAPI      = (*api.API)(nil)
	_ GoalsAPI        = (*api.API)(nil)
	_ ForecastAPI     = (*api.API)(nil)
	_ ChatAPI         = (*api.API)(nil)
	_ ProfileAPI      = (*api.API)(nil)
)
