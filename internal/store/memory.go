package store

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe report is available for a given location.
	ErrNotFound = errors.New("no probe reports for location")
)

// ProviderStatus is one provider's outcome kind within a probe.
type ProviderStatus struct {
	Provider string `json:"provider"`
	Kind     string `json:"kind"`
}

// Report is the result of probing all providers for one location.
type Report struct {
	RunID        string           `json:"runId"`
	Location     string           `json:"location"`
	Timestamp    time.Time        `json:"timestamp"` // always UTC
	Status       string           `json:"status"`
	TemperatureC *float64         `json:"temperatureC,omitempty"`
	Providers    []ProviderStatus `json:"providers"`
}

// Key returns a canonical string key for indexing a location.
func Key(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// MemoryStore is a concurrency-safe in-memory store of probe reports.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: time-ordered reports
	data map[string][]Report

	// retention configuration
	maxHistory int           // max number of reports per location
	maxAge     time.Duration // optional max age for reports
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]Report),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveReport appends a new report for its location and enforces retention.
func (s *MemoryStore) SaveReport(report Report) {
	key := Key(report.Location)

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], report)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history = history[i:]
	}

	s.data[key] = history
}

// GetLatest returns the most recent report for a location.
func (s *MemoryStore) GetLatest(location string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[Key(location)]
	if len(history) == 0 {
		return Report{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetRange returns all reports for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(location string, from, to time.Time) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[Key(location)]
	if len(history) == 0 {
		return nil, ErrNotFound
	}

	var result []Report
	for _, r := range history {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// Locations returns the keys of all locations with at least one report.
func (s *MemoryStore) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k, v := range s.data {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}
