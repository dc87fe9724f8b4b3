package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(loc string, ts time.Time, status string) Report {
	return Report{Location: loc, Timestamp: ts, Status: status}
}

func TestMemoryStore_LatestAndRange(t *testing.T) {
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, 0)

	s.SaveReport(report("Tomsk", base, "ok"))
	s.SaveReport(report("tomsk ", base.Add(15*time.Minute), "all_other_failure"))
	s.SaveReport(report("Tomsk", base.Add(30*time.Minute), "ok"))

	latest, err := s.GetLatest("TOMSK")
	require.NoError(t, err)
	assert.Equal(t, base.Add(30*time.Minute), latest.Timestamp)

	got, err := s.GetRange("Tomsk", base.Add(15*time.Minute), base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "all_other_failure", got[0].Status)

	_, err = s.GetRange("Tomsk", base.Add(time.Hour), base.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"tomsk"}, s.Locations())
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)

	_, err := s.GetLatest("Perm")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetRange("Perm", time.Time{}, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	base := time.Now().UTC()
	s := NewMemoryStore(2, 0)

	for i := 0; i < 5; i++ {
		s.SaveReport(report("Ufa", base.Add(time.Duration(i)*time.Minute), "ok"))
	}

	got, err := s.GetRange("Ufa", base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, base.Add(3*time.Minute), got[0].Timestamp)
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveReport(report("Ufa", now.Add(-3*time.Hour), "ok"))
	s.SaveReport(report("Ufa", now.Add(-2*time.Hour), "ok"))
	s.SaveReport(report("Ufa", now.Add(-10*time.Minute), "ok"))

	got, err := s.GetRange("Ufa", now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, now.Add(-10*time.Minute), got[0].Timestamp)
}
