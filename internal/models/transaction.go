package models

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a financial transaction as returned by the backend.
// The category is assigned server-side from the description.
type Transaction struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id,omitempty"`
	Amount          float64         `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category,omitempty"`
	TransactionType TransactionType `json:"transaction_type"`
	Date            Timestamp       `json:"date"`
	CreatedAt       *Timestamp      `json:"created_at,omitempty"`
}

// TransactionInput is the body of a create or update call.
type TransactionInput struct {
	Description     string          `json:"description" validate:"required,max=255"`
	Amount          float64         `json:"amount" validate:"gt=0"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,transaction_type"`
	Category        string          `json:"category,omitempty"`
	Date            *Date           `json:"date,omitempty"`
}

// CategoryStat is one row of the per-category statistics endpoint.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// TimelinePoint is one bucket of the timeline statistics endpoint.
type TimelinePoint struct {
	Period   string  `json:"period"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}
