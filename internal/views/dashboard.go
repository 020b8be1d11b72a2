package views

import (
	"context"

	"golang.org/x/sync/errgroup"

	"finadvisor/internal/api"
	"finadvisor/internal/derive"
	"finadvisor/internal/events"
	"finadvisor/internal/logger"
	"finadvisor/internal/models"
)

// RecentTransactionsLimit is how many transactions the overview lists.
const RecentTransactionsLimit = 5

// DashboardData is everything the overview screen shows.
type DashboardData struct {
	Summary       models.AnalyticsSummary
	SummarySource derive.Source
	Recent        []models.Transaction
	Insights      []models.Insight
	Breakdown     []derive.CategoryShare
}

// Dashboard is the overview screen.
type Dashboard struct {
	base
	api  DashboardAPI
	data Resource[DashboardData]
}

// NewDashboard creates the overview. Transaction changes reach it through
// the Analytics cascade, so one subscription covers both.
func NewDashboard(a DashboardAPI, env *Env) *Dashboard {
	d := &Dashboard{base: newBase(env), api: a}
	d.watch("dashboard", d.Load, events.Analytics)
	return d
}

// Load fetches the summary, the transactions and the insights concurrently.
// The transactions are required; a failed summary falls back to totals
// computed from them and failed insights leave the insights list empty.
func (d *Dashboard) Load(ctx context.Context) error {
	return d.data.Load(ctx, d.fetch)
}

func (d *Dashboard) fetch(ctx context.Context) (DashboardData, error) {
	var (
		summary  *models.AnalyticsSummary
		txs      []models.Transaction
		insights []models.Insight
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := d.api.Summary(gctx)
		if err != nil {
			logger.Get().Warnw("summary unavailable, using fallback totals", "error", err)
			return nil
		}
		summary = s
		return nil
	})
	g.Go(func() error {
		list, err := d.api.ListTransactions(gctx, api.TransactionQuery{})
		if err != nil {
			return err
		}
		txs = list
		return nil
	})
	g.Go(func() error {
		list, err := d.api.Insights(gctx)
		if err != nil {
			logger.Get().Warnw("insights unavailable", "error", err)
			insights = []models.Insight{}
			return nil
		}
		insights = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardData{}, err
	}

	resolved, source := derive.SummaryOrFallback(summary, txs)
	recent := txs
	if len(recent) > RecentTransactionsLimit {
		recent = recent[:RecentTransactionsLimit]
	}
	return DashboardData{
		Summary:       resolved,
		SummarySource: source,
		Recent:        recent,
		Insights:      insights,
		Breakdown:     derive.SortedBreakdown(resolved.CategoryBreakdown),
	}, nil
}

// State returns the current overview state.
func (d *Dashboard) State() State[DashboardData] {
	return d.data.Snapshot()
}
