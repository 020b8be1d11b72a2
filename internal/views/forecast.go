package views

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"finadvisor/internal/events"
	"finadvisor/internal/logger"
	"finadvisor/internal/models"
)

// DefaultForecastMonths is the horizon shown before the user picks one.
const DefaultForecastMonths = 3

// ForecastParams are the forecast screen's inputs.
type ForecastParams struct {
	Months   int
	Category string
}

// ForecastData holds both forecasts shown on the screen.
type ForecastData struct {
	Params     ForecastParams
	Forecast   models.ForecastVariant
	Categories models.CategoryForecastResponse
}

// Forecast is the expense forecast screen.
type Forecast struct {
	base
	api  ForecastAPI
	data Resource[ForecastData]

	mu     sync.Mutex
	params ForecastParams
}

// NewForecast creates the forecast screen.
func NewForecast(a ForecastAPI, env *Env) *Forecast {
	v := &Forecast{base: newBase(env), api: a, params: ForecastParams{Months: DefaultForecastMonths}}
	v.watch("forecast", v.Load, events.Forecast)
	return v
}

// Params returns the current inputs.
func (v *Forecast) Params() ForecastParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// SetParams changes the horizon or category and reloads.
func (v *Forecast) SetParams(ctx context.Context, p ForecastParams) error {
	v.mu.Lock()
	v.params = p
	v.mu.Unlock()
	return v.Load(ctx)
}

// Load fetches the overall and the per-category forecast together. Only the
// overall forecast is required; without categories the list stays empty.
func (v *Forecast) Load(ctx context.Context) error {
	p := v.Params()
	return v.data.Load(ctx, func(ctx context.Context) (ForecastData, error) {
		var (
			forecast   *models.Forecast
			categories models.CategoryForecastResponse
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			f, err := v.api.Forecast(gctx, p.Months, p.Category)
			forecast = f
			return err
		})
		g.Go(func() error {
			c, err := v.api.CategoryForecast(gctx, 1)
			if err != nil {
				logger.Get().Warnw("category forecast unavailable", "error", err)
				return nil
			}
			categories = *c
			return nil
		})
		if err := g.Wait(); err != nil {
			return ForecastData{}, err
		}
		return ForecastData{Params: p, Forecast: forecast.Variant(), Categories: categories}, nil
	})
}

// State returns the current forecast state.
func (v *Forecast) State() State[ForecastData] {
	return v.data.Snapshot()
}
