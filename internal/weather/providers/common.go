package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultTimeout bounds a provider call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// BreakerConfig controls the optional per-provider circuit breaker.
type BreakerConfig struct {
	Enabled             bool
	ConsecutiveFailures uint32
	Cooldown            time.Duration
}

// Settings bundles the injected configuration of one provider.
type Settings struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errMissingAPIKey = errors.New("api key is not configured")
	errMissingField  = errors.New("temperature missing from response")
)

// endpoint holds what every adapter shares: identity, credentials and transport.
type endpoint struct {
	name     string
	settings Settings
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
	keyless  bool
}

func newEndpoint(name, defaultBaseURL string, client *http.Client, s Settings) endpoint {
	if s.BaseURL == "" {
		s.BaseURL = defaultBaseURL
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return endpoint{
		name:     name,
		settings: s,
		client:   client,
		circuit:  newBreaker(name, s.Breaker),
	}
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})
}

// Name implements weather.Provider.
func (e endpoint) Name() string {
	return e.name
}

// Timeout implements weather.Provider.
func (e endpoint) Timeout() time.Duration {
	return e.settings.Timeout
}

// get issues exactly one GET to path with the given query values.
// Transport failures, 429 and 5xx are errors; every other status is returned
// for the adapter to interpret.
func (e endpoint) get(ctx context.Context, path string, values url.Values) (*http.Response, error) {
	if e.client == nil {
		return nil, errNoHTTPClient
	}
	if e.settings.APIKey == "" && !e.keyless {
		return nil, fmt.Errorf("%s %w", e.name, errMissingAPIKey)
	}

	u := fmt.Sprintf("%s%s?%s", strings.TrimRight(e.settings.BaseURL, "/"), path, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if e.circuit == nil {
		return send(e.client, req)
	}

	result, err := e.circuit.Execute(func() (interface{}, error) {
		return send(e.client, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w: %v", e.name, errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

func send(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	// Handle rate limiting and server errors explicitly.
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, errRateLimited
	}
	if resp.StatusCode >= 500 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	}
	return resp, nil
}

func unexpectedStatus(resp *http.Response) error {
	return fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
}

// readBody reads the whole body and reports whether it was blank.
func readBody(resp *http.Response) ([]byte, bool, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read response body: %w", err)
	}
	return body, len(bytes.TrimSpace(body)) == 0, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func decodeResponse(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
