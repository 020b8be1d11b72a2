package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestForecast_Variant(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ForecastMethod
	}{
		{"prophet", `{"method":"prophet","forecast":[{"month":"Feb 2025","predicted_expenses":100,"lower_bound":90,"upper_bound":110,"confidence":80}],"model_info":{"algorithm":"Prophet","data_points":40}}`, ForecastProphet},
		{"statistical", `{"method":"statistical","forecast":[{"month":"Feb 2025","predicted_expenses":100,"confidence":70}]}`, ForecastStatistical},
		{"untagged with months", `{"forecast":[{"month":"Feb 2025","predicted_expenses":100,"confidence":70}]}`, ForecastStatistical},
		{"untagged empty", `{"forecast":[],"message":"Not enough data"}`, ForecastNone},
		{"none", `{"method":"none","forecast":[],"message":"Not enough data"}`, ForecastNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Forecast
			if err := json.Unmarshal([]byte(tt.body), &f); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := f.Variant().forecastMethod(); got != tt.want {
				t.Errorf("variant = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestForecast_VariantCarriesFields(t *testing.T) {
	var f Forecast
	body := `{"method":"prophet","forecast":[{"month":"Feb 2025","predicted_expenses":100,"lower_bound":90,"upper_bound":110,"confidence":80}],"model_info":{"algorithm":"Prophet","data_points":40}}`
	if err := json.Unmarshal([]byte(body), &f); err != nil {
		t.Fatal(err)
	}
	p, ok := f.Variant().(ProphetForecast)
	if !ok {
		t.Fatalf("expected ProphetForecast, got %T", f.Variant())
	}
	if p.Model.DataPoints != 40 || *p.Months[0].LowerBound != 90 {
		t.Errorf("unexpected prophet forecast %+v", p)
	}

	var none Forecast
	if err := json.Unmarshal([]byte(`{"method":"none","forecast":[],"message":"Need 2 months"}`), &none); err != nil {
		t.Fatal(err)
	}
	if n := none.Variant().(NoForecast); n.Reason != "Need 2 months" {
		t.Errorf("Reason = %q", n.Reason)
	}
}

func TestForecast_UnknownMethod(t *testing.T) {
	var f Forecast
	if err := json.Unmarshal([]byte(`{"method":"arima","forecast":[]}`), &f); err == nil {
		t.Error("unknown methods should be rejected")
	}
}

func TestDate(t *testing.T) {
	var d Date
	for _, in := range []string{`"2025-03-04"`, `"2025-03-04T10:30:00"`, `"2025-03-04T10:30:00Z"`} {
		if err := json.Unmarshal([]byte(in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if d.String() != "2025-03-04" {
			t.Errorf("%s decoded to %s", in, d)
		}
	}
	if _, err := ParseDate("04/03/2025"); err == nil {
		t.Error("expected an error for a non ISO date")
	}
	b, _ := json.Marshal(NewDate(2025, time.March, 4))
	if string(b) != `"2025-03-04"` {
		t.Errorf("marshal = %s", b)
	}
}

func TestTimestamp_AcceptsBackendFormats(t *testing.T) {
	for _, in := range []string{`"2025-03-04T10:30:00.123456"`, `"2025-03-04T10:30:00Z"`, `"2025-03-04"`} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Errorf("unmarshal %s: %v", in, err)
			continue
		}
		if ts.Year() != 2025 || ts.Month() != time.March || ts.Day() != 4 {
			t.Errorf("%s decoded to %v", in, ts.Time)
		}
	}
}
