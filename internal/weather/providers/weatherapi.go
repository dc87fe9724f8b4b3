package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// WeatherAPIBaseURL is the default WeatherAPI.com (formerly apixu) API root.
const WeatherAPIBaseURL = "http://api.weatherapi.com/v1"

// weatherAPINoLocation is the error code WeatherAPI returns with HTTP 400
// when no location matches the query.
const weatherAPINoLocation = 1006

// WeatherAPIProvider implements weather.ForecastProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	endpoint
}

func NewWeatherAPIProvider(client *http.Client, s Settings) *WeatherAPIProvider {
	return &WeatherAPIProvider{endpoint: newEndpoint("weatherapi", WeatherAPIBaseURL, client, s)}
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (float64, error) {
	var payload struct {
		Current struct {
			TempC *float64 `json:"temp_c"`
		} `json:"current"`
	}
	if err := p.call(ctx, "/current.json", loc, nil, &payload); err != nil {
		return 0, err
	}
	if payload.Current.TempC == nil {
		return 0, errMissingField
	}
	return *payload.Current.TempC, nil
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location) ([]weather.DayTemp, error) {
	extra := url.Values{}
	extra.Set("days", strconv.Itoa(weather.ForecastDays))

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Day struct {
					AvgTempC *float64 `json:"avgtemp_c"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := p.call(ctx, "/forecast.json", loc, extra, &payload); err != nil {
		return nil, err
	}

	days := make([]weather.DayTemp, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		if fd.Day.AvgTempC == nil {
			days = append(days, weather.DayTemp{})
			continue
		}
		days = append(days, weather.Temp(*fd.Day.AvgTempC))
	}
	return days, nil
}

func (p *WeatherAPIProvider) call(ctx context.Context, path string, loc weather.Location, extra url.Values, out any) error {
	values := url.Values{}
	values.Set("key", p.settings.APIKey)
	values.Set("q", string(loc))
	for k, v := range extra {
		values[k] = v
	}

	resp, err := p.get(ctx, path, values)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _, err := readBody(resp)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		var apiErr struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if decode(body, &apiErr) == nil && apiErr.Error.Code == weatherAPINoLocation {
			return fmt.Errorf("%s: %w", p.name, weather.ErrLocationNotFound)
		}
		return unexpectedStatus(resp)
	case resp.StatusCode != http.StatusOK:
		return unexpectedStatus(resp)
	}

	return decode(body, out)
}
