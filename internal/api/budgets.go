package api

import (
	"context"
	"net/url"
	"strconv"

	"finadvisor/internal/events"
	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

const budgetsPath = "/budgets"

// ListBudgets returns the budgets for a month. Zero month or year leaves
// the choice to the backend.
func (a *API) ListBudgets(ctx context.Context, month, year int) ([]models.Budget, error) {
	q := url.Values{}
	if month != 0 {
		q.Set("month", strconv.Itoa(month))
	}
	if year != 0 {
		q.Set("year", strconv.Itoa(year))
	}
	var budgets []models.Budget
	if err := a.get(ctx, budgetsPath, q, &budgets); err != nil {
		return nil, err
	}
	return nonNil(budgets), nil
}

// GetBudget fetches one budget.
func (a *API) GetBudget(ctx context.Context, id int) (*models.Budget, error) {
	var b models.Budget
	if err := a.get(ctx, itemPath(budgetsPath, id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBudget sets a monthly limit for a category.
func (a *API) CreateBudget(ctx context.Context, in models.BudgetInput) (*models.Budget, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var b models.Budget
	err := a.post(ctx, budgetsPath, in, &b)
	if err := a.mutated(err, events.Budgets); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBudget changes a budget's limit or period.
func (a *API) UpdateBudget(ctx context.Context, id int, in models.BudgetUpdate) (*models.Budget, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var b models.Budget
	err := a.put(ctx, itemPath(budgetsPath, id), in, &b)
	if err := a.mutated(err, events.Budgets); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBudget removes a budget.
func (a *API) DeleteBudget(ctx context.Context, id int) error {
	return a.mutated(a.delete(ctx, itemPath(budgetsPath, id)), events.Budgets)
}
