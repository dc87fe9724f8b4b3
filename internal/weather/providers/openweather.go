package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// OpenWeatherBaseURL is the default OpenWeatherMap API root.
const OpenWeatherBaseURL = "http://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
// It answers current conditions only.
type OpenWeatherProvider struct {
	endpoint
}

func NewOpenWeatherProvider(client *http.Client, s Settings) *OpenWeatherProvider {
	return &OpenWeatherProvider{endpoint: newEndpoint("openweathermap", OpenWeatherBaseURL, client, s)}
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (float64, error) {
	values := url.Values{}
	values.Set("q", string(loc))
	values.Set("APPID", p.settings.APIKey)
	values.Set("units", "metric")

	resp, err := p.get(ctx, "/weather", values)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%s: %w", p.name, weather.ErrLocationNotFound)
	case resp.StatusCode != http.StatusOK:
		return 0, unexpectedStatus(resp)
	}

	var payload struct {
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
	}
	if err := decodeResponse(resp, &payload); err != nil {
		return 0, err
	}
	if payload.Main.Temp == nil {
		return 0, errMissingField
	}

	return *payload.Main.Temp, nil
}
