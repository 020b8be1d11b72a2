package derive

import (
	"github.com/shopspring/decimal"

	"finadvisor/internal/models"
)

// Budget status thresholds, in percent of the limit.
const (
	NearLimitPercent  = 80
	OverBudgetPercent = 100
)

// ResolvedBudget is a budget with every derived field filled in.
type ResolvedBudget struct {
	models.Budget
	Remaining      float64
	PercentageUsed float64
	Status         models.BudgetStatus
	BarWidth       float64
}

// ResolveBudget fills in remaining, percentage used and status. Values the
// backend sent are kept; missing ones are computed as
// remaining = limit - spent and percentage = spent / limit * 100.
func ResolveBudget(b models.Budget) ResolvedBudget {
	r := ResolvedBudget{Budget: b}

	limit := decimal.NewFromFloat(b.MonthlyLimit)
	spent := decimal.NewFromFloat(b.CurrentSpent)

	if b.Remaining != nil {
		r.Remaining = *b.Remaining
	} else {
		r.Remaining = limit.Sub(spent).InexactFloat64()
	}

	// Thresholds apply to the unrounded share; only the shown value is rounded.
	raw := budgetShare(limit, spent).InexactFloat64()
	if b.PercentageUsed != nil {
		r.PercentageUsed = *b.PercentageUsed
		raw = *b.PercentageUsed
	} else {
		r.PercentageUsed = BudgetPercent(b.MonthlyLimit, b.CurrentSpent)
	}

	if b.Status != "" {
		r.Status = b.Status
	} else {
		r.Status = BudgetStatusFor(raw)
	}

	r.BarWidth = clampPercent(r.PercentageUsed)
	return r
}

// BudgetPercent returns spent as a percentage of limit, rounded to two
// decimals. A non-positive limit yields zero.
func BudgetPercent(limit, spent float64) float64 {
	return budgetShare(decimal.NewFromFloat(limit), decimal.NewFromFloat(spent)).Round(2).InexactFloat64()
}

func budgetShare(limit, spent decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}
	return spent.Mul(hundred).Div(limit)
}

// BudgetStatusFor applies the status thresholds to an unrounded percentage.
func BudgetStatusFor(percent float64) models.BudgetStatus {
	switch {
	case percent >= OverBudgetPercent:
		return models.BudgetOverBudget
	case percent >= NearLimitPercent:
		return models.BudgetNearLimit
	default:
		return models.BudgetUnderBudget
	}
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
