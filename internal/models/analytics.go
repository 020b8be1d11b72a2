package models

// AnalyticsSummary is the dashboard totals computed by the backend.
type AnalyticsSummary struct {
	TotalIncome       float64            `json:"total_income"`
	TotalExpenses     float64            `json:"total_expenses"`
	NetSavings        float64            `json:"net_savings"`
	SavingsRate       float64            `json:"savings_rate"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
}

// MonthlyData is one month of the monthly analytics endpoint.
type MonthlyData struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}
