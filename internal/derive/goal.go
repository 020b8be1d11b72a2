package derive

import (
	"time"

	"github.com/shopspring/decimal"

	"finadvisor/internal/models"
)

// ResolvedGoal is a goal with every derived field filled in.
type ResolvedGoal struct {
	models.Goal
	Remaining            float64
	Progress             float64
	BarWidth             float64
	DaysRemaining        int
	MonthlySavingsNeeded float64
	Status               models.GoalStatus
}

// ResolveGoal fills in the goal's derived fields as of today. Values the
// backend sent are kept. Progress may exceed 100 after over-contribution;
// BarWidth never does.
func ResolveGoal(g models.Goal, today time.Time) ResolvedGoal {
	r := ResolvedGoal{Goal: g}

	target := decimal.NewFromFloat(g.TargetAmount)
	current := decimal.NewFromFloat(g.CurrentAmount)

	remaining := decimal.Max(decimal.Zero, target.Sub(current))
	if g.RemainingAmount != nil {
		r.Remaining = *g.RemainingAmount
		remaining = decimal.NewFromFloat(*g.RemainingAmount)
	} else {
		r.Remaining = remaining.InexactFloat64()
	}

	if g.ProgressPercentage != nil {
		r.Progress = *g.ProgressPercentage
	} else {
		r.Progress = GoalProgress(g.TargetAmount, g.CurrentAmount)
	}
	r.BarWidth = clampPercent(r.Progress)

	days := daysBetween(today, g.TargetDate.Time)
	if g.DaysRemaining != nil {
		r.DaysRemaining = *g.DaysRemaining
	} else {
		r.DaysRemaining = max(0, days)
	}

	if g.MonthlySavingsNeeded != nil {
		r.MonthlySavingsNeeded = *g.MonthlySavingsNeeded
	} else if !g.IsCompleted {
		months := decimal.Max(decimal.NewFromInt(1), decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(30)))
		r.MonthlySavingsNeeded = remaining.Div(months).Round(2).InexactFloat64()
	}

	if g.Status != "" {
		r.Status = g.Status
	} else {
		r.Status = goalStatus(g.IsCompleted, days, target, current)
	}
	return r
}

// GoalProgress returns current as a percentage of target, rounded to two
// decimals. It is not capped.
func GoalProgress(target, current float64) float64 {
	t := decimal.NewFromFloat(target)
	if !t.IsPositive() {
		return 0
	}
	return decimal.NewFromFloat(current).Mul(hundred).Div(t).Round(2).InexactFloat64()
}

// goalStatus is on_track when unrounded progress has reached the share of
// the goal that the remaining time allows, 100/(days+1) percent. Compared
// as current*(days+1) >= target so no division rounds the boundary.
func goalStatus(completed bool, days int, target, current decimal.Decimal) models.GoalStatus {
	switch {
	case completed:
		return models.GoalCompleted
	case days < 0:
		return models.GoalOverdue
	case !target.IsPositive():
		return models.GoalBehind
	case current.Mul(decimal.NewFromInt(int64(days + 1))).GreaterThanOrEqual(target):
		return models.GoalOnTrack
	default:
		return models.GoalBehind
	}
}

// daysBetween counts whole calendar days from today to target.
func daysBetween(today, target time.Time) int {
	y, m, d := today.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = target.Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
