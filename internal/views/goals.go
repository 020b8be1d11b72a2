package views

import (
	"context"
	"fmt"
	"sync"

	"finadvisor/internal/derive"
	"finadvisor/internal/events"
	"finadvisor/internal/models"
)

// Goals is the savings goals screen.
type Goals struct {
	base
	api  GoalsAPI
	list Resource[[]derive.ResolvedGoal]

	mu            sync.Mutex
	showCompleted bool
}

// NewGoals creates the goals screen. Completed goals are hidden until
// toggled on.
func NewGoals(a GoalsAPI, env *Env) *Goals {
	v := &Goals{base: newBase(env), api: a}
	v.watch("goals", v.Load, events.Goals)
	return v
}

// ShowCompleted reports whether completed goals are listed.
func (v *Goals) ShowCompleted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.showCompleted
}

// SetShowCompleted flips the completed-goals toggle and reloads.
func (v *Goals) SetShowCompleted(ctx context.Context, show bool) error {
	v.mu.Lock()
	v.showCompleted = show
	v.mu.Unlock()
	return v.Load(ctx)
}

// Load fetches the goals.
func (v *Goals) Load(ctx context.Context) error {
	include := v.ShowCompleted()
	return v.list.Load(ctx, func(ctx context.Context) ([]derive.ResolvedGoal, error) {
		goals, err := v.api.ListGoals(ctx, include)
		if err != nil {
			return nil, err
		}
		today := v.env.Now()
		resolved := make([]derive.ResolvedGoal, 0, len(goals))
		for _, g := range goals {
			resolved = append(resolved, derive.ResolveGoal(g, today))
		}
		return resolved, nil
	})
}

// State returns the current goals state.
func (v *Goals) State() State[[]derive.ResolvedGoal] {
	return v.list.Snapshot()
}

// Add creates a goal.
func (v *Goals) Add(ctx context.Context, in models.GoalInput) (*models.Goal, error) {
	var created *models.Goal
	err := v.mutate("Goal created", func() error {
		g, err := v.api.CreateGoal(ctx, in)
		created = g
		return err
	})
	return created, err
}

// Contribute adds money to a goal.
func (v *Goals) Contribute(ctx context.Context, id int, amount float64) (*models.Goal, error) {
	var updated *models.Goal
	err := v.mutate(fmt.Sprintf("Added %s to goal", derive.Money(amount)), func() error {
		g, err := v.api.Contribute(ctx, id, amount)
		updated = g
		return err
	})
	return updated, err
}

// Delete removes a goal after confirmation.
func (v *Goals) Delete(ctx context.Context, id int) error {
	if err := v.confirm(fmt.Sprintf("Delete goal #%d?", id)); err != nil {
		return err
	}
	return v.mutate("Goal deleted", func() error {
		return v.api.DeleteGoal(ctx, id)
	})
}
