package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidate_TransactionsCascade(t *testing.T) {
	bus := New()

	var got []Topic
	bus.Subscribe(func(tp Topic) { got = append(got, tp) }, Analytics, Budgets)

	bus.Invalidate(Transactions)

	assert.Equal(t, []Topic{Analytics, Budgets}, got)
}

func TestInvalidate_OnlySubscribedTopics(t *testing.T) {
	bus := New()

	var goals, budgets int
	bus.Subscribe(func(Topic) { goals++ }, Goals)
	bus.Subscribe(func(Topic) { budgets++ }, Budgets)

	bus.Invalidate(Goals)

	assert.Equal(t, 1, goals)
	assert.Equal(t, 0, budgets)
}

func TestInvalidate_Deduplicates(t *testing.T) {
	bus := New()

	var calls int
	bus.Subscribe(func(Topic) { calls++ }, Analytics)

	bus.Invalidate(Transactions, Analytics, Transactions)

	assert.Equal(t, 1, calls)
}

func TestUnsubscribe(t *testing.T) {
	bus := New()

	var calls int
	unsubscribe := bus.Subscribe(func(Topic) { calls++ }, Goals)
	bus.Invalidate(Goals)
	unsubscribe()
	bus.Invalidate(Goals)

	assert.Equal(t, 1, calls)
}

func TestExpand(t *testing.T) {
	assert.Equal(t, []Topic{Transactions, Analytics, Budgets, Forecast}, expand([]Topic{Transactions}))
	assert.Equal(t, []Topic{Goals}, expand([]Topic{Goals}))
}
