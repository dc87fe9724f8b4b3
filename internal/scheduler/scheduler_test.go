package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/weather-consensus/internal/store"
	"github.com/i474232898/weather-consensus/internal/weather"
)

type stubChecker struct {
	mu      sync.Mutex
	results map[weather.Location]weather.AggregateResult
	seen    []weather.Location
}

func (c *stubChecker) GetCurrent(loc weather.Location) weather.AggregateResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, loc)
	return c.results[loc]
}

func TestRunOnce_SavesOneReportPerLocation(t *testing.T) {
	checker := &stubChecker{results: map[weather.Location]weather.AggregateResult{
		"Tomsk": {
			Location:    "Tomsk",
			Temperature: -13.54,
			Outcomes: []weather.Outcome{
				{Provider: "openweathermap", Temperature: -14.0},
				{Provider: "weatherapi", Temperature: -13.08},
				{Provider: "weatherbit", Err: weather.ErrTimeout},
			},
		},
		"Qwerty": {
			Location: "Qwerty",
			Failure:  weather.FailureAllNotFound,
			Outcomes: []weather.Outcome{
				{Provider: "openweathermap", Err: weather.ErrLocationNotFound},
			},
		},
	}}
	reports := store.NewMemoryStore(10, 0)
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	s := New([]string{"Tomsk", "Qwerty"}, time.Minute, checker, reports, zaptest.NewLogger(t))
	s.now = func() time.Time { return at }

	require.NoError(t, s.RunOnce(context.Background()))
	assert.ElementsMatch(t, []weather.Location{"Tomsk", "Qwerty"}, checker.seen)

	tomsk, err := reports.GetLatest("Tomsk")
	require.NoError(t, err)
	assert.Equal(t, "ok", tomsk.Status)
	require.NotNil(t, tomsk.TemperatureC)
	assert.Equal(t, -13.5, *tomsk.TemperatureC)
	assert.Equal(t, at, tomsk.Timestamp)
	assert.NotEmpty(t, tomsk.RunID)
	assert.Equal(t, []store.ProviderStatus{
		{Provider: "openweathermap", Kind: "ok"},
		{Provider: "weatherapi", Kind: "ok"},
		{Provider: "weatherbit", Kind: "timeout"},
	}, tomsk.Providers)

	qwerty, err := reports.GetLatest("qwerty")
	require.NoError(t, err)
	assert.Equal(t, "all_not_found", qwerty.Status)
	assert.Nil(t, qwerty.TemperatureC)
	assert.Equal(t, tomsk.RunID, qwerty.RunID)
}

func TestRunOnce_CancelledContext(t *testing.T) {
	checker := &stubChecker{results: map[weather.Location]weather.AggregateResult{}}
	reports := store.NewMemoryStore(10, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New([]string{"Tomsk"}, time.Minute, checker, reports, nil)
	err := s.RunOnce(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, checker.seen)
}

func TestStart_NoLocations(t *testing.T) {
	s := New(nil, time.Minute, &stubChecker{}, store.NewMemoryStore(1, 0), zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	s.Stop()
}
