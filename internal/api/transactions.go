package api

import (
	"context"
	"net/http"

	"finadvisor/internal/client"
	"finadvisor/internal/events"
	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

const transactionsPath = "/transactions"

// ListTransactions returns the user's transactions, newest first.
func (a *API) ListTransactions(ctx context.Context, q TransactionQuery) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := a.get(ctx, transactionsPath, q.Values(), &txs); err != nil {
		return nil, err
	}
	return nonNil(txs), nil
}

// FilterTransactions runs q against the server-side filter endpoint.
func (a *API) FilterTransactions(ctx context.Context, q TransactionQuery) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := a.get(ctx, transactionsPath+"/filter", q.Values(), &txs); err != nil {
		return nil, err
	}
	return nonNil(txs), nil
}

// GetTransaction fetches one transaction.
func (a *API) GetTransaction(ctx context.Context, id int) (*models.Transaction, error) {
	var tx models.Transaction
	if err := a.get(ctx, itemPath(transactionsPath, id), nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransaction records a transaction. The backend assigns the category.
func (a *API) CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var tx models.Transaction
	err := a.post(ctx, transactionsPath, in, &tx)
	if err := a.mutated(err, events.Transactions); err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateTransaction replaces a transaction's fields.
func (a *API) UpdateTransaction(ctx context.Context, id int, in models.TransactionInput) (*models.Transaction, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	var tx models.Transaction
	err := a.put(ctx, itemPath(transactionsPath, id), in, &tx)
	if err := a.mutated(err, events.Transactions); err != nil {
		return nil, err
	}
	return &tx, nil
}

// DeleteTransaction removes a transaction.
func (a *API) DeleteTransaction(ctx context.Context, id int) error {
	return a.mutated(a.delete(ctx, itemPath(transactionsPath, id)), events.Transactions)
}

// CategoryStats returns spending totals per category.
func (a *API) CategoryStats(ctx context.Context, q StatsQuery) ([]models.CategoryStat, error) {
	var stats []models.CategoryStat
	if err := a.get(ctx, transactionsPath+"/stats/category", q.Values(), &stats); err != nil {
		return nil, err
	}
	return nonNil(stats), nil
}

// TimelineStats returns income and expenses bucketed by q.GroupBy.
func (a *API) TimelineStats(ctx context.Context, q StatsQuery) ([]models.TimelinePoint, error) {
	var points []models.TimelinePoint
	if err := a.get(ctx, transactionsPath+"/stats/timeline", q.Values(), &points); err != nil {
		return nil, err
	}
	return nonNil(points), nil
}

// ExportTransactions downloads the transactions in the requested format and
// returns the raw file contents with their content type.
func (a *API) ExportTransactions(ctx context.Context, q ExportQuery) ([]byte, string, error) {
	return a.client.Raw(ctx, client.Request{
		Method: http.MethodGet,
		Path:   transactionsPath + "/export",
		Query:  q.Values(),
	})
}

// nonNil turns a decoded JSON null into an empty slice so that callers can
// tell "no items" from "not loaded".
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
