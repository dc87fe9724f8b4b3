package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-consensus/internal/weather/providers"
)

// ProviderConfig is the injected configuration of one upstream provider.
type ProviderConfig struct {
	APIKey  string
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogLevel string

	OpenWeather ProviderConfig
	WeatherAPI  ProviderConfig
	Weatherbit  ProviderConfig
	OpenMeteo   ProviderConfig

	// GeocoderAPIKey enables the Open-Meteo provider when set.
	GeocoderAPIKey string

	BreakerEnabled  bool
	BreakerFailures int           `validate:"gte=1"`
	BreakerCooldown time.Duration `validate:"gt=0"`

	// Locations probed periodically to report provider health.
	ProbeLocations []string
	ProbeInterval  time.Duration `validate:"gt=0"`

	// In-memory probe report retention.
	ProbeMaxHistory int           // max number of reports per location (0 = unlimited)
	ProbeMaxAge     time.Duration // max age of reports (0 = unlimited)
}

var validate = validator.New()

// Load reads configuration from .env (if present) and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:     getenvDefault("PORT", "8080"),
		LogLevel: getenvDefault("LOG_LEVEL", "INFO"),

		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),
		ProbeLocations: splitList(os.Getenv("PROBE_LOCATIONS")),
	}

	var err error
	if cfg.BreakerEnabled, err = getenvBool("BREAKER_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.BreakerFailures, err = getenvInt("BREAKER_FAILURES", 5); err != nil {
		return nil, err
	}
	// roughly 24h at 15-minute intervals
	if cfg.ProbeMaxHistory, err = getenvInt("PROBE_MAX_HISTORY", 96); err != nil {
		return nil, err
	}
	if cfg.OpenWeather, err = loadProvider("OWM", providers.OpenWeatherBaseURL); err != nil {
		return nil, err
	}
	if cfg.WeatherAPI, err = loadProvider("APIXU", providers.WeatherAPIBaseURL); err != nil {
		return nil, err
	}
	if cfg.Weatherbit, err = loadProvider("WEATHERBIT", providers.WeatherbitBaseURL); err != nil {
		return nil, err
	}
	if cfg.OpenMeteo, err = loadProvider("OPENMETEO", providers.OpenMeteoBaseURL); err != nil {
		return nil, err
	}

	if cfg.BreakerCooldown, err = getenvDuration("BREAKER_COOLDOWN", "1m"); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.ProbeMaxAge, err = getenvDuration("PROBE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Settings converts a provider's config into adapter settings.
func (c *AppConfig) Settings(p ProviderConfig) providers.Settings {
	return providers.Settings{
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Timeout: p.Timeout,
		Breaker: providers.BreakerConfig{
			Enabled:             c.BreakerEnabled,
			ConsecutiveFailures: uint32(c.BreakerFailures),
			Cooldown:            c.BreakerCooldown,
		},
	}
}

// loadProvider reads <PREFIX>_KEY, <PREFIX>_BASE_URL and <PREFIX>_TIMEOUT.
func loadProvider(prefix, defaultBaseURL string) (ProviderConfig, error) {
	timeout, err := getenvDuration(prefix+"_TIMEOUT", providers.DefaultTimeout.String())
	if err != nil {
		return ProviderConfig{}, err
	}
	return ProviderConfig{
		APIKey:  os.Getenv(prefix + "_KEY"),
		BaseURL: getenvDefault(prefix+"_BASE_URL", defaultBaseURL),
		Timeout: timeout,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
