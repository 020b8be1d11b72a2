package api

import (
	"context"

	"finadvisor/internal/models"
)

// Summary returns the backend's dashboard totals.
func (a *API) Summary(ctx context.Context) (*models.AnalyticsSummary, error) {
	var s models.AnalyticsSummary
	if err := a.get(ctx, "/analytics/summary", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Monthly returns income, expenses and savings per month.
func (a *API) Monthly(ctx context.Context) ([]models.MonthlyData, error) {
	var months []models.MonthlyData
	if err := a.get(ctx, "/analytics/monthly", nil, &months); err != nil {
		return nil, err
	}
	return nonNil(months), nil
}
