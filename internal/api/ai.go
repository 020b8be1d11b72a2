package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finadvisor/internal/client"
	"finadvisor/internal/models"
	"finadvisor/internal/validator"
)

// ChatHistoryLimit is how many earlier messages accompany a chat request.
const ChatHistoryLimit = 10

// Chat sends message to the advisor along with the tail of history.
// Messages that failed to send are not part of the conversation.
func (a *API) Chat(ctx context.Context, message string, history []models.ChatMessage) (*models.ChatResponse, error) {
	req := models.ChatRequest{
		Message:             strings.TrimSpace(message),
		ConversationHistory: recentHistory(history, ChatHistoryLimit),
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	var resp models.ChatResponse
	if err := a.post(ctx, "/ai/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func recentHistory(history []models.ChatMessage, limit int) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(history))
	for _, m := range history {
		if !m.Failed {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Insights returns AI observations about the user's finances.
func (a *API) Insights(ctx context.Context) ([]models.Insight, error) {
	var resp models.InsightsResponse
	if err := a.get(ctx, "/ai/insights", nil, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Insights), nil
}

// Tips returns actionable savings suggestions.
func (a *API) Tips(ctx context.Context) ([]models.Tip, error) {
	var resp models.TipsResponse
	if err := a.get(ctx, "/ai/tips", nil, &resp); err != nil {
		return nil, err
	}
	return nonNil(resp.Tips), nil
}

// Forecast predicts expenses for the next months, optionally for a single
// category. The response's method tag is validated while decoding.
func (a *API) Forecast(ctx context.Context, months int, category string) (*models.Forecast, error) {
	if err := validator.Var("Months", months, "min=1,max=12"); err != nil {
		return nil, err
	}
	q := url.Values{"months": {strconv.Itoa(months)}}
	setString(q, "category", category)

	var f models.Forecast
	err := a.client.Do(ctx, client.Request{Method: http.MethodPost, Path: "/ai/forecast", Query: q}, &f)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CategoryForecast predicts next month's spending per category.
func (a *API) CategoryForecast(ctx context.Context, months int) (*models.CategoryForecastResponse, error) {
	if err := validator.Var("Months", months, "min=1,max=12"); err != nil {
		return nil, err
	}
	var resp models.CategoryForecastResponse
	if err := a.get(ctx, "/ai/category-forecast", url.Values{"months": {strconv.Itoa(months)}}, &resp); err != nil {
		return nil, err
	}
	resp.CategoryForecasts = nonNil(resp.CategoryForecasts)
	return &resp, nil
}
