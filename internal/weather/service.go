package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/i474232898/weather-consensus/internal/observability"
)

var errNoForecastProvider = errors.New("forecast provider not configured")

// Service fans a location query out to all providers and merges their answers.
// It holds no per-query state; every call is an independent fan-out/join/merge.
type Service struct {
	providers   []Provider
	forecasters [2]ForecastProvider
	clock       clockwork.Clock
	logger      *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the clock used for provider timeouts.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// NewService creates a new Service. providers answer current conditions;
// forecasters are the two providers whose forecasts get merged.
func NewService(providers []Provider, forecasters [2]ForecastProvider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		providers:   providers,
		forecasters: forecasters,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers returns the names of the current-conditions providers.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// GetCurrent queries every provider concurrently, waits for all of them to
// settle, and averages the successful temperatures.
func (s *Service) GetCurrent(loc Location) AggregateResult {
	// Aggregations are not cancellable by the caller; each call carries its own bound.
	ctx := context.Background()

	outcomes := make([]Outcome, len(s.providers))

	var wg sync.WaitGroup
	for i, p := range s.providers {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.fetchCurrent(ctx, p, loc)
		}()
	}
	wg.Wait()

	result := AggregateResult{Location: loc, Outcomes: outcomes}

	mean, n := MeanTemperature(outcomes)
	if n == 0 {
		kinds := make([]ErrorKind, len(outcomes))
		for i, o := range outcomes {
			kinds[i] = o.Kind()
		}
		result.Failure = ClassifyFailures(kinds)
		s.logger.Info("no successful provider readings",
			zap.String("location", string(loc)),
			zap.Stringer("failure", result.Failure),
		)
	} else {
		result.Temperature = mean
		s.logger.Debug("current temperature aggregated",
			zap.String("location", string(loc)),
			zap.Int("contributors", n),
			zap.Int("providers", len(outcomes)),
			zap.Float64("temperatureC", mean),
		)
	}

	observability.RecordAggregation("current", result.Failure.String())
	return result
}

// GetForecast queries both forecast providers concurrently and merges their
// sequences day by day.
func (s *Service) GetForecast(loc Location) AggregateForecast {
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		outcomes [2]ForecastOutcome
	)
	for i, fp := range s.forecasters {
		i, fp := i, fp
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.fetchForecast(ctx, fp, loc)
		}()
	}
	wg.Wait()

	result := AggregateForecast{Location: loc, Outcomes: outcomes[:]}

	if !outcomes[0].OK() && !outcomes[1].OK() {
		result.Failure = ClassifyFailures([]ErrorKind{outcomes[0].Kind(), outcomes[1].Kind()})
		s.logger.Info("no successful forecast readings",
			zap.String("location", string(loc)),
			zap.Stringer("failure", result.Failure),
		)
	} else {
		// A failed provider's Days is all-absent, so it never contributes.
		result.Days = MergeForecasts(outcomes[0].Days, outcomes[1].Days)
	}

	observability.RecordAggregation("forecast", result.Failure.String())
	return result
}

func (s *Service) fetchCurrent(ctx context.Context, p Provider, loc Location) Outcome {
	start := s.clock.Now()
	temp, err := Bounded(ctx, s.clock, p.Timeout(), func(ctx context.Context) (float64, error) {
		return p.Fetch(ctx, loc)
	})

	o := Outcome{Provider: p.Name(), Temperature: temp, Err: err}
	s.record(p.Name(), "current", loc, o.Kind(), start, err)
	return o
}

func (s *Service) fetchForecast(ctx context.Context, fp ForecastProvider, loc Location) ForecastOutcome {
	if fp == nil {
		return ForecastOutcome{Provider: "unconfigured", Err: errNoForecastProvider}
	}

	start := s.clock.Now()
	days, err := Bounded(ctx, s.clock, fp.Timeout(), func(ctx context.Context) ([]DayTemp, error) {
		return fp.FetchForecast(ctx, loc)
	})

	o := ForecastOutcome{Provider: fp.Name(), Err: err}
	if err == nil {
		o.Days = PadForecast(days)
	}
	s.record(fp.Name(), "forecast", loc, o.Kind(), start, err)
	return o
}

func (s *Service) record(provider, operation string, loc Location, kind ErrorKind, start time.Time, err error) {
	observability.RecordProviderCall(provider, operation, kind.String(), s.clock.Since(start))
	if err != nil {
		// Log and continue; partial success is still a result.
		s.logger.Warn("provider fetch failed",
			zap.String("provider", provider),
			zap.String("operation", operation),
			zap.String("location", string(loc)),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
	}
}
