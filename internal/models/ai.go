package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleBot  ChatRole = "bot"
)

// ChatMessage is one line of the advisor conversation. It only lives in
// memory for the lifetime of a chat view.
type ChatMessage struct {
	ID        string    `json:"-"`
	Type      ChatRole  `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"-"`
	Failed    bool      `json:"-"`
}

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	Message             string        `json:"message" validate:"required,max=1000"`
	ConversationHistory []ChatMessage `json:"conversation_history"`
}

// ChatResponse is the advisor's reply.
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// InsightType classifies an AI insight.
type InsightType string

const (
	InsightPositive    InsightType = "positive"
	InsightWarning     InsightType = "warning"
	InsightOpportunity InsightType = "opportunity"
)

// Insight is one AI-generated observation about the user's finances.
type Insight struct {
	Type       InsightType `json:"type"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	Confidence string      `json:"confidence"`
}

// InsightsResponse is returned by GET /ai/insights.
type InsightsResponse struct {
	Insights []Insight `json:"insights"`
}

// Tip is one actionable suggestion.
type Tip struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Difficulty  string `json:"difficulty"`
}

// TipsResponse is returned by GET /ai/tips.
type TipsResponse struct {
	Tips []Tip `json:"tips"`
}

// ForecastMethod names the model the backend used to produce a forecast.
type ForecastMethod string

const (
	ForecastProphet     ForecastMethod = "prophet"
	ForecastStatistical ForecastMethod = "statistical"
	ForecastNone        ForecastMethod = "none"
)

// MonthlyForecast is the prediction for one future month.
type MonthlyForecast struct {
	Month             string `json:"month"`
	PredictedExpenses int64  `json:"predicted_expenses"`
	LowerBound        *int64 `json:"lower_bound,omitempty"`
	UpperBound        *int64 `json:"upper_bound,omitempty"`
	Confidence        int    `json:"confidence"`
}

// ModelInfo describes the training data behind a forecast.
type ModelInfo struct {
	Algorithm      string `json:"algorithm"`
	DataPoints     int    `json:"data_points"`
	TrainingPeriod string `json:"training_period"`
}

// TrendAnalysis summarizes the direction of a forecast.
type TrendAnalysis struct {
	Direction        string  `json:"direction"`
	ChangePercentage float64 `json:"change_percentage"`
	Message          string  `json:"message"`
}

// Forecast is the decoded response of POST /ai/forecast. Consumers should
// switch on Variant rather than reading the optional fields directly.
type Forecast struct {
	Months        []MonthlyForecast `json:"forecast"`
	Method        ForecastMethod    `json:"method"`
	ModelInfo     *ModelInfo        `json:"model_info,omitempty"`
	TrendAnalysis *TrendAnalysis    `json:"trend_analysis,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// UnmarshalJSON validates the method tag. An absent method is inferred from
// the payload: predictions without a tag are statistical, an empty payload
// is none.
func (f *Forecast) UnmarshalJSON(b []byte) error {
	type raw Forecast
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	switch r.Method {
	case ForecastProphet, ForecastStatistical, ForecastNone:
	case "":
		if len(r.Months) > 0 {
			r.Method = ForecastStatistical
		} else {
			r.Method = ForecastNone
		}
	default:
		return fmt.Errorf("unknown forecast method %q", r.Method)
	}
	*f = Forecast(r)
	return nil
}

// ForecastVariant is implemented by ProphetForecast, StatisticalForecast and
// NoForecast.
type ForecastVariant interface {
	forecastMethod() ForecastMethod
}

// ProphetForecast is a model-based forecast with confidence bounds.
type ProphetForecast struct {
	Months []MonthlyForecast
	Model  ModelInfo
	Trend  *TrendAnalysis
}

// StatisticalForecast is an average-based projection.
type StatisticalForecast struct {
	Months []MonthlyForecast
	Trend  *TrendAnalysis
}

// NoForecast means the backend had too little data to predict anything.
type NoForecast struct {
	Reason string
}

func (ProphetForecast) forecastMethod() ForecastMethod     { return ForecastProphet }
func (StatisticalForecast) forecastMethod() ForecastMethod { return ForecastStatistical }
func (NoForecast) forecastMethod() ForecastMethod          { return ForecastNone }

// Variant returns the tagged form of the forecast.
func (f Forecast) Variant() ForecastVariant {
	switch f.Method {
	case ForecastProphet:
		p := ProphetForecast{Months: f.Months, Trend: f.TrendAnalysis}
		if f.ModelInfo != nil {
			p.Model = *f.ModelInfo
		}
		return p
	case ForecastStatistical:
		return StatisticalForecast{Months: f.Months, Trend: f.TrendAnalysis}
	default:
		return NoForecast{Reason: f.Message}
	}
}

// CategoryForecast is the projection for a single expense category.
type CategoryForecast struct {
	Category           string  `json:"category"`
	CurrentMonthlyAvg  int64   `json:"current_monthly_avg"`
	PredictedNextMonth int64   `json:"predicted_next_month"`
	TrendPercentage    float64 `json:"trend_percentage"`
	Confidence         int     `json:"confidence"`
}

// CategoryForecastResponse is returned by GET /ai/category-forecast.
type CategoryForecastResponse struct {
	CategoryForecasts []CategoryForecast `json:"category_forecasts"`
	TotalPredicted    int64              `json:"total_predicted"`
	ForecastPeriod    string             `json:"forecast_period"`
	Message           string             `json:"message,omitempty"`
}
