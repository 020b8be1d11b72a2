package models

// BudgetStatus is the server-assigned spending state of a budget.
type BudgetStatus string

const (
	BudgetUnderBudget BudgetStatus = "under_budget"
	BudgetNearLimit   BudgetStatus = "near_limit"
	BudgetOverBudget  BudgetStatus = "over_budget"
)

// Budget is a monthly spending limit for one category. Remaining,
// PercentageUsed and Status are computed by the backend and may be absent.
type Budget struct {
	ID             int          `json:"id"`
	UserID         int          `json:"user_id,omitempty"`
	Category       string       `json:"category"`
	MonthlyLimit   float64      `json:"monthly_limit"`
	CurrentSpent   float64      `json:"current_spent"`
	Remaining      *float64     `json:"remaining,omitempty"`
	PercentageUsed *float64     `json:"percentage_used,omitempty"`
	Month          int          `json:"month"`
	Year           int          `json:"year"`
	Status         BudgetStatus `json:"status,omitempty"`
}

// BudgetInput is the body of a create call.
type BudgetInput struct {
	Category     string  `json:"category" validate:"required"`
	MonthlyLimit float64 `json:"monthly_limit" validate:"gt=0"`
	Month        int     `json:"month" validate:"min=1,max=12"`
	Year         int     `json:"year" validate:"min=2020"`
}

// BudgetUpdate is the body of an update call. Nil fields are left unchanged.
type BudgetUpdate struct {
	MonthlyLimit *float64 `json:"monthly_limit,omitempty" validate:"omitempty,gt=0"`
	Month        *int     `json:"month,omitempty" validate:"omitempty,min=1,max=12"`
	Year         *int     `json:"year,omitempty" validate:"omitempty,min=2020"`
}
