package weather

import (
	"encoding/json"
	"math"
)

// ForecastDays is the fixed length of every forecast sequence.
const ForecastDays = 5

// Location is an opaque, provider-agnostic place query (e.g. "Tomsk").
// It is forwarded to providers as-is.
type Location string

// DayTemp is an optional temperature in degrees Celsius for one forecast day.
type DayTemp struct {
	Celsius float64
	Valid   bool
}

// Temp returns a present DayTemp.
func Temp(c float64) DayTemp {
	return DayTemp{Celsius: c, Valid: true}
}

// MarshalJSON encodes an absent day as null.
func (d DayTemp) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Celsius)
}

// Forecast is a day-indexed sequence, index 0 being today.
type Forecast [ForecastDays]DayTemp

// Failure classifies an aggregation in which no provider succeeded.
type Failure int

const (
	// FailureNone means at least one provider succeeded.
	FailureNone Failure = iota
	// FailureAllNotFound means every provider reported the location as unknown.
	FailureAllNotFound
	// FailureAllOther means no provider succeeded and at least one failed for another reason.
	FailureAllOther
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "ok"
	case FailureAllNotFound:
		return "all_not_found"
	case FailureAllOther:
		return "all_other_failure"
	default:
		return "unknown"
	}
}

// AggregateResult is the merged answer for current conditions.
type AggregateResult struct {
	Location Location
	// Temperature is the unrounded mean of all successful outcomes.
	// Only meaningful when Failure == FailureNone.
	Temperature float64
	Failure     Failure
	Outcomes    []Outcome
}

// OK reports whether at least one provider contributed.
func (r AggregateResult) OK() bool {
	return r.Failure == FailureNone
}

// AggregateForecast is the merged answer for the forecast.
type AggregateForecast struct {
	Location Location
	Days     Forecast
	Failure  Failure
	Outcomes []ForecastOutcome
}

// OK reports whether at least one forecast provider contributed.
func (f AggregateForecast) OK() bool {
	return f.Failure == FailureNone
}

// Round1 rounds to one decimal place for presentation.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
