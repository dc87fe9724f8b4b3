package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-consensus/internal/observability"
	"github.com/i474232898/weather-consensus/internal/store"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// maxConcurrentProbes caps how many locations are probed at once.
const maxConcurrentProbes = 4

// Checker runs one current-conditions aggregation.
type Checker interface {
	GetCurrent(loc weather.Location) weather.AggregateResult
}

// ReportSaver persists probe reports.
type ReportSaver interface {
	SaveReport(report store.Report)
}

// Scheduler periodically probes the providers for configured locations and
// records how each of them answered.
type Scheduler struct {
	scheduler *gocron.Scheduler
	checker   Checker
	reports   ReportSaver
	locations []weather.Location
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, checker Checker, reports ReportSaver, logger *zap.Logger) *Scheduler {
	locs := make([]weather.Location, 0, len(locations))
	for _, l := range locations {
		locs = append(locs, weather.Location(l))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		checker:   checker,
		reports:   reports,
		locations: locs,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the periodic probe and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("scheduler: no probe locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("scheduler: probe run failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future probes.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce probes every configured location and saves one report per location.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("runId", runID))
	logger.Info("scheduler: running provider probe", zap.Int("locations", len(s.locations)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)

	for _, loc := range s.locations {
		loc := loc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res := s.checker.GetCurrent(loc)
			report := BuildReport(runID, res, s.now())
			s.reports.SaveReport(report)
			observability.ProbeRunsTotal.WithLabelValues(report.Status).Inc()

			logger.Debug("scheduler: probe finished",
				zap.String("location", string(loc)),
				zap.String("status", report.Status),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("scheduler: completed provider probe")
	return nil
}

// BuildReport condenses an aggregation result into a probe report.
func BuildReport(runID string, res weather.AggregateResult, at time.Time) store.Report {
	report := store.Report{
		RunID:     runID,
		Location:  string(res.Location),
		Timestamp: at.UTC(),
		Status:    res.Failure.String(),
		Providers: make([]store.ProviderStatus, 0, len(res.Outcomes)),
	}
	if res.OK() {
		t := weather.Round1(res.Temperature)
		report.TemperatureC = &t
	}
	for _, o := range res.Outcomes {
		report.Providers = append(report.Providers, store.ProviderStatus{
			Provider: o.Provider,
			Kind:     o.Kind().String(),
		})
	}
	return report
}
