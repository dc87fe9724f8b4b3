package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-consensus/internal/weather/providers"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "OWM_KEY", "OWM_TIMEOUT", "APIXU_KEY", "WEATHERBIT_KEY",
		"GEOCODER_API_KEY", "PROBE_LOCATIONS", "BREAKER_ENABLED", "PROBE_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, providers.OpenWeatherBaseURL, cfg.OpenWeather.BaseURL)
	assert.Equal(t, providers.WeatherAPIBaseURL, cfg.WeatherAPI.BaseURL)
	assert.Equal(t, providers.WeatherbitBaseURL, cfg.Weatherbit.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.OpenWeather.Timeout)
	assert.False(t, cfg.BreakerEnabled)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 15*time.Minute, cfg.ProbeInterval)
	assert.Equal(t, 96, cfg.ProbeMaxHistory)
	assert.Equal(t, 24*time.Hour, cfg.ProbeMaxAge)
	assert.Empty(t, cfg.ProbeLocations)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OWM_KEY", "owm-secret")
	t.Setenv("OWM_TIMEOUT", "5s")
	t.Setenv("APIXU_KEY", "apixu-secret")
	t.Setenv("APIXU_BASE_URL", "http://localhost:1234/v1")
	t.Setenv("WEATHERBIT_KEY", "wb-secret")
	t.Setenv("WEATHERBIT_TIMEOUT", "1s")
	t.Setenv("BREAKER_ENABLED", "true")
	t.Setenv("BREAKER_FAILURES", "3")
	t.Setenv("PROBE_LOCATIONS", "Tomsk, Perm,,Ufa ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "owm-secret", cfg.OpenWeather.APIKey)
	assert.Equal(t, 5*time.Second, cfg.OpenWeather.Timeout)
	assert.Equal(t, "http://localhost:1234/v1", cfg.WeatherAPI.BaseURL)
	assert.Equal(t, time.Second, cfg.Weatherbit.Timeout)
	assert.Equal(t, []string{"Tomsk", "Perm", "Ufa"}, cfg.ProbeLocations)

	s := cfg.Settings(cfg.Weatherbit)
	assert.Equal(t, "wb-secret", s.APIKey)
	assert.True(t, s.Breaker.Enabled)
	assert.EqualValues(t, 3, s.Breaker.ConsecutiveFailures)
	assert.Equal(t, time.Minute, s.Breaker.Cooldown)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable timeout", "OWM_TIMEOUT", "soon"},
		{"zero timeout", "WEATHERBIT_TIMEOUT", "0s"},
		{"negative timeout", "APIXU_TIMEOUT", "-1s"},
		{"bad base url", "OWM_BASE_URL", "not a url"},
		{"bad port", "PORT", "http"},
		{"bad probe interval", "PROBE_INTERVAL", "often"},
		{"zero breaker failures", "BREAKER_FAILURES", "0"},
		{"unparseable breaker failures", "BREAKER_FAILURES", "abc"},
		{"unparseable breaker flag", "BREAKER_ENABLED", "sometimes"},
		{"unparseable probe history", "PROBE_MAX_HISTORY", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
