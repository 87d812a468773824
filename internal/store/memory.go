package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/merra-climatology/internal/climate"
)

var (
	// ErrNotFound is returned when no probe result matches.
	ErrNotFound = errors.New("no archive probe results")
)

// MemoryStore is a concurrency-safe in-memory history of archive probe results.
// It never holds sampled archive data.
type MemoryStore struct {
	mu sync.RWMutex

	// time-ordered, oldest first
	results []climate.ProbeResult

	// retention configuration
	maxHistory int           // max number of results kept
	maxAge     time.Duration // optional max age for results

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveProbe appends a probe result and enforces retention.
func (s *MemoryStore) SaveProbe(result climate.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.results) > s.maxHistory {
		over := len(s.results) - s.maxHistory
		s.results = s.results[over:]
	}

	// Enforce retention by age. The newest result is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.results)-1; i++ {
			if !s.results[i].Timestamp.Before(cutoff) {
				break
			}
		}
		s.results = s.results[i:]
	}
}

// GetLatest returns the most recent probe result.
func (s *MemoryStore) GetLatest() (climate.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.results) == 0 {
		return climate.ProbeResult{}, ErrNotFound
	}
	return s.results[len(s.results)-1], nil
}

// GetRange returns all probe results between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]climate.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []climate.ProbeResult
	for _, r := range s.results {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			out = append(out, r)
		}
	}

	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
