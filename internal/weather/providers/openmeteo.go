package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/kelvins/geocoder/structs"

	"github.com/i474232898/weather-consensus/internal/common"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// OpenMeteoBaseURL is the default Open-Meteo API root.
const OpenMeteoBaseURL = "https://api.open-meteo.com/v1"

// Geocoder resolves a free-form location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc weather.Location) (lat, lon float64, err error)
}

// Google Geocoding API statuses, compared case-insensitively.
const (
	geocodeStatusOK          = "OK"
	geocodeStatusZeroResults = "ZERO_RESULTS"
)

// GoogleGeocoder resolves locations through the Google Geocoding API. It sends
// one request per lookup on the shared client, so the call honours ctx.
type GoogleGeocoder struct {
	client *http.Client
	apiURL string
	apiKey string
}

func NewGoogleGeocoder(client *http.Client, apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{client: client, apiURL: geocoder.ApiUrl, apiKey: apiKey}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	if g.client == nil {
		return 0, 0, errNoHTTPClient
	}

	address := geocoder.Address{City: string(loc)}
	values := url.Values{}
	values.Set("address", address.FormatAddress())
	if g.apiKey != "" {
		values.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+values.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", loc, err)
	}
	resp, err := send(g.client, req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode %q: %w", loc, unexpectedStatus(resp))
	}

	var results structs.Results
	if err := decodeResponse(resp, &results); err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", loc, err)
	}

	switch {
	case common.HasAny(results.Status, geocodeStatusZeroResults):
		return 0, 0, fmt.Errorf("geocode %q: %w", loc, weather.ErrLocationNotFound)
	case !strings.EqualFold(results.Status, geocodeStatusOK):
		return 0, 0, fmt.Errorf("geocode %q: status %q: %s", loc, results.Status, results.ErrorMessage)
	case len(results.Results) == 0:
		return 0, 0, fmt.Errorf("geocode %q: %w", loc, weather.ErrLocationNotFound)
	}

	point := results.Results[0].Geometry.Location
	return point.Lat, point.Lng, nil
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo needs coordinates, so each call geocodes the location first and
// makes two upstream requests.
type OpenMeteoProvider struct {
	endpoint
	geocoder Geocoder
}

func NewOpenMeteoProvider(client *http.Client, gc Geocoder, s Settings) *OpenMeteoProvider {
	e := newEndpoint("openmeteo", OpenMeteoBaseURL, client, s)
	e.keyless = true
	return &OpenMeteoProvider{endpoint: e, geocoder: gc}
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (float64, error) {
	if p.geocoder == nil {
		return 0, fmt.Errorf("openmeteo requires a geocoder")
	}
	lat, lon, err := p.geocoder.Geocode(ctx, loc)
	if err != nil {
		return 0, err
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current_weather", "true")

	resp, err := p.get(ctx, "/forecast", values)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, unexpectedStatus(resp)
	}

	var payload struct {
		CurrentWeather struct {
			Temperature *float64 `json:"temperature"`
		} `json:"current_weather"`
	}
	if err := decodeResponse(resp, &payload); err != nil {
		return 0, err
	}
	if payload.CurrentWeather.Temperature == nil {
		return 0, errMissingField
	}

	return *payload.CurrentWeather.Temperature, nil
}
