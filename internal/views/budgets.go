package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finadvisor/internal/derive"
	"finadvisor/internal/events"
	"finadvisor/internal/models"
)

// Period is a budget month.
type Period struct {
	Month int
	Year  int
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) String() string {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// BudgetsData is the budget list for one period.
type BudgetsData struct {
	Period  Period
	Budgets []derive.ResolvedBudget
}

// Budgets is the budgets screen.
type Budgets struct {
	base
	api  BudgetsAPI
	list Resource[BudgetsData]

	mu     sync.Mutex
	period Period
}

// NewBudgets creates the budgets screen showing the current month.
func NewBudgets(a BudgetsAPI, env *Env) *Budgets {
	v := &Budgets{base: newBase(env), api: a}
	v.period = PeriodOf(v.env.Now())
	v.watch("budgets", v.Load, events.Budgets)
	return v
}

// Period returns the selected month.
func (v *Budgets) Period() Period {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.period
}

// SetPeriod selects another month and reloads.
func (v *Budgets) SetPeriod(ctx context.Context, p Period) error {
	v.mu.Lock()
	v.period = p
	v.mu.Unlock()
	return v.Load(ctx)
}

// Load fetches the budgets of the selected month.
func (v *Budgets) Load(ctx context.Context) error {
	p := v.Period()
	return v.list.Load(ctx, func(ctx context.Context) (BudgetsData, error) {
		budgets, err := v.api.ListBudgets(ctx, p.Month, p.Year)
		if err != nil {
			return BudgetsData{}, err
		}
		resolved := make([]derive.ResolvedBudget, 0, len(budgets))
		for _, b := range budgets {
			resolved = append(resolved, derive.ResolveBudget(b))
		}
		return BudgetsData{Period: p, Budgets: resolved}, nil
	})
}

// State returns the current budgets state.
func (v *Budgets) State() State[BudgetsData] {
	return v.list.Snapshot()
}

// Add creates a budget. Month and year default to the selected period.
func (v *Budgets) Add(ctx context.Context, in models.BudgetInput) (*models.Budget, error) {
	p := v.Period()
	if in.Month == 0 {
		in.Month = p.Month
	}
	if in.Year == 0 {
		in.Year = p.Year
	}
	var created *models.Budget
	err := v.mutate("Budget created", func() error {
		b, err := v.api.CreateBudget(ctx, in)
		created = b
		return err
	})
	return created, err
}

// Edit changes a budget.
func (v *Budgets) Edit(ctx context.Context, id int, in models.BudgetUpdate) (*models.Budget, error) {
	var updated *models.Budget
	err := v.mutate("Budget updated", func() error {
		b, err := v.api.UpdateBudget(ctx, id, in)
		updated = b
		return err
	})
	return updated, err
}

// Delete removes a budget after confirmation.
func (v *Budgets) Delete(ctx context.Context, id int) error {
	if err := v.confirm(fmt.Sprintf("Delete budget #%d?", id)); err != nil {
		return err
	}
	return v.mutate("Budget deleted", func() error {
		return v.api.DeleteBudget(ctx, id)
	})
}
