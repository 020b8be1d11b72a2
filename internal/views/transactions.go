package views

import (
	"context"
	"fmt"
	"sync"

	"finadvisor/internal/api"
	"finadvisor/internal/derive"
	"finadvisor/internal/events"
	"finadvisor/internal/models"
)

// TransactionFilter narrows the loaded list on the client.
type TransactionFilter struct {
	Search   string
	Category string
	Type     models.TransactionType
}

// TransactionsData is what the tracking screen shows for the current
// filter.
type TransactionsData struct {
	All        []models.Transaction
	Visible    []models.Transaction
	Totals     derive.TransactionTotals
	Categories []string
}

// Empty reports whether there is nothing to list for the current filter.
func (d TransactionsData) Empty() bool { return len(d.Visible) == 0 }

// Transactions is the tracking screen.
type Transactions struct {
	base
	api  TransactionsAPI
	list Resource[[]models.Transaction]

	mu     sync.Mutex
	filter TransactionFilter
}

// NewTransactions creates the tracking screen.
func NewTransactions(a TransactionsAPI, env *Env) *Transactions {
	v := &Transactions{base: newBase(env), api: a}
	v.watch("transactions", v.Load, events.Transactions)
	return v
}

// Load fetches the full list. Filtering happens locally, so changing the
// filter does not refetch.
func (v *Transactions) Load(ctx context.Context) error {
	return v.list.Load(ctx, func(ctx context.Context) ([]models.Transaction, error) {
		return v.api.ListTransactions(ctx, api.TransactionQuery{})
	})
}

// SetFilter replaces the active filter.
func (v *Transactions) SetFilter(f TransactionFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

// Filter returns the active filter.
func (v *Transactions) Filter() TransactionFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// State returns the list with the filter applied and totals over the
// visible rows.
func (v *Transactions) State() State[TransactionsData] {
	s := v.list.Snapshot()
	f := v.Filter()

	visible := derive.FilterTransactions(s.Data, f.Search, f.Category)
	if f.Type != "" {
		kept := visible[:0]
		for _, tx := range visible {
			if tx.TransactionType == f.Type {
				kept = append(kept, tx)
			}
		}
		visible = kept
	}

	return State[TransactionsData]{
		Status:  s.Status,
		HasData: s.HasData,
		Err:     s.Err,
		Data: TransactionsData{
			All:        s.Data,
			Visible:    visible,
			Totals:     derive.Totals(visible),
			Categories: derive.Categories(s.Data),
		},
	}
}

// Add records a transaction.
func (v *Transactions) Add(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	var created *models.Transaction
	err := v.mutate("Transaction added", func() error {
		tx, err := v.api.CreateTransaction(ctx, in)
		created = tx
		return err
	})
	return created, err
}

// Edit replaces a transaction's fields.
func (v *Transactions) Edit(ctx context.Context, id int, in models.TransactionInput) (*models.Transaction, error) {
	var updated *models.Transaction
	err := v.mutate("Transaction updated", func() error {
		tx, err := v.api.UpdateTransaction(ctx, id, in)
		updated = tx
		return err
	})
	return updated, err
}

// Delete removes a transaction after confirmation.
func (v *Transactions) Delete(ctx context.Context, id int) error {
	if err := v.confirm(fmt.Sprintf("Delete transaction #%d?", id)); err != nil {
		return err
	}
	return v.mutate("Transaction deleted", func() error {
		return v.api.DeleteTransaction(ctx, id)
	})
}
