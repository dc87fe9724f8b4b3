package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// WeatherbitBaseURL is the default Weatherbit.io API root.
const WeatherbitBaseURL = "http://api.weatherbit.io/v2.0"

// WeatherbitProvider implements weather.ForecastProvider for Weatherbit.io.
// Weatherbit signals an unknown city with 204 No Content.
type WeatherbitProvider struct {
	endpoint
}

func NewWeatherbitProvider(client *http.Client, s Settings) *WeatherbitProvider {
	return &WeatherbitProvider{endpoint: newEndpoint("weatherbit", WeatherbitBaseURL, client, s)}
}

type weatherbitPayload struct {
	Data []struct {
		Temp *float64 `json:"temp"`
	} `json:"data"`
}

func (p *WeatherbitProvider) Fetch(ctx context.Context, loc weather.Location) (float64, error) {
	var payload weatherbitPayload
	if err := p.call(ctx, "/current", loc, nil, &payload); err != nil {
		return 0, err
	}
	if len(payload.Data) == 0 || payload.Data[0].Temp == nil {
		return 0, errMissingField
	}
	return *payload.Data[0].Temp, nil
}

func (p *WeatherbitProvider) FetchForecast(ctx context.Context, loc weather.Location) ([]weather.DayTemp, error) {
	extra := url.Values{}
	extra.Set("days", strconv.Itoa(weather.ForecastDays))

	var payload weatherbitPayload
	if err := p.call(ctx, "/forecast/daily", loc, extra, &payload); err != nil {
		return nil, err
	}

	days := make([]weather.DayTemp, 0, len(payload.Data))
	for _, d := range payload.Data {
		if d.Temp == nil {
			days = append(days, weather.DayTemp{})
			continue
		}
		days = append(days, weather.Temp(*d.Temp))
	}
	return days, nil
}

func (p *WeatherbitProvider) call(ctx context.Context, path string, loc weather.Location, extra url.Values, out any) error {
	values := url.Values{}
	values.Set("key", p.settings.APIKey)
	values.Set("city", string(loc))
	for k, v := range extra {
		values[k] = v
	}

	resp, err := p.get(ctx, path, values)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return fmt.Errorf("%s: %w", p.name, weather.ErrLocationNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return unexpectedStatus(resp)
	}

	body, blank, err := readBody(resp)
	if err != nil {
		return err
	}
	if blank {
		return fmt.Errorf("%s: empty body: %w", p.name, weather.ErrLocationNotFound)
	}
	return decode(body, out)
}
