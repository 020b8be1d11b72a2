package api

import (
	"context"
	"net/url"
	"strconv"

	"finadvisor/internal/events"
	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

const goalsPath = "/goals"

// ListGoals returns the user's goals ordered by target date. Completed goals
// are included only when includeCompleted is set.
func (a *API) ListGoals(ctx context.Context, includeCompleted bool) ([]models.Goal, error) {
	q := url.Values{"include_completed": {strconv.FormatBool(includeCompleted)}}
	var goals []models.Goal
	if err := a.get(ctx, goalsPath, q, &goals); err != nil {
		return nil, err
	}
	return nonNil(goals), nil
}

// GetGoal fetches one goal.
func (a *API) GetGoal(ctx context.Context, id int) (*models.Goal, error) {
	var g models.Goal
	if err := a.get(ctx, itemPath(goalsPath, id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGoal adds a savings goal.
func (a *API) CreateGoal(ctx context.Context, in models.GoalInput) (*models.Goal, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var g models.Goal
	err := a.post(ctx, goalsPath, in, &g)
	if err := a.mutated(err, events.Goals); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGoal changes a goal's fields.
func (a *API) UpdateGoal(ctx context.Context, id int, in models.GoalUpdate) (*models.Goal, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var g models.Goal
	err := a.put(ctx, itemPath(goalsPath, id), in, &g)
	if err := a.mutated(err, events.Goals); err != nil {
		return nil, err
	}
	return &g, nil
}

// Contribute adds amount to a goal's current amount on the server.
func (a *API) Contribute(ctx context.Context, id int, amount float64) (*models.Goal, error) {
	in := models.Contribution{Amount: amount}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var g models.Goal
	err := a.post(ctx, itemPath(goalsPath, id)+"/contribute", in, &g)
	if err := a.mutated(err, events.Goals); err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteGoal removes a goal.
func (a *API) DeleteGoal(ctx context.Context, id int) error {
	return a.mutated(a.delete(ctx, itemPath(goalsPath, id)), events.Goals)
}
