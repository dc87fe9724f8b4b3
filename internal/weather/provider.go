package weather

import (
	"context"
	"time"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Weatherbit).
// Fetch issues exactly one upstream call and returns the current temperature in Celsius.
// Errors should wrap ErrLocationNotFound when the provider does not know the location.
type Provider interface {
	Name() string
	Timeout() time.Duration
	Fetch(ctx context.Context, loc Location) (float64, error)
}

// ForecastProvider is implemented by providers that can return a multi-day forecast.
// The returned slice may be shorter or longer than ForecastDays.
type ForecastProvider interface {
	Provider
	FetchForecast(ctx context.Context, loc Location) ([]DayTemp, error)
}

// Outcome is the classified result of one current-conditions provider call.
type Outcome struct {
	Provider    string
	Temperature float64
	Err         error
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Kind returns the failure kind, or KindNone on success.
func (o Outcome) Kind() ErrorKind {
	return KindOf(o.Err)
}

// ForecastOutcome is the classified result of one forecast provider call.
// Days is already padded to ForecastDays; it is all-absent on failure.
type ForecastOutcome struct {
	Provider string
	Days     Forecast
	Err      error
}

// OK reports whether the call succeeded.
func (o ForecastOutcome) OK() bool {
	return o.Err == nil
}

// Kind returns the failure kind, or KindNone on success.
func (o ForecastOutcome) Kind() ErrorKind {
	return KindOf(o.Err)
}
