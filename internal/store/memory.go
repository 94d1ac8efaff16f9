package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-now/internal/pipeline"
)

var (
	// ErrNotFound is returned when no outcome has been rendered in the requested window.
	ErrNotFound = errors.New("no rendered outcomes")
)

// Entry is one rendered outcome and the time it was rendered.
type Entry struct {
	Timestamp time.Time        `json:"timestamp"` // always UTC
	Outcome   pipeline.Outcome `json:"outcome"`
}

// MemoryStore keeps the outcomes a presenter has rendered, for display only.
// It is never consulted by the pipeline.
type MemoryStore struct {
	mu sync.RWMutex

	entries []Entry

	// retention configuration
	maxHistory int           // max number of entries
	maxAge     time.Duration // optional max age for entries

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Save appends an outcome and enforces retention.
func (s *MemoryStore) Save(out pipeline.Outcome) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entry{Timestamp: s.now(), Outcome: out}
	s.entries = append(s.entries, e)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.entries) > s.maxHistory {
		over := len(s.entries) - s.maxHistory
		s.entries = s.entries[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := e.Timestamp.Add(-s.maxAge)
		i := 0
		for ; i < len(s.entries); i++ {
			if !s.entries[i].Timestamp.Before(cutoff) {
				break
			}
		}
		s.entries = s.entries[i:]
	}
	return e
}

// Latest returns the most recently rendered outcome.
func (s *MemoryStore) Latest() (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return Entry{}, ErrNotFound
	}
	return s.entries[len(s.entries)-1], nil
}

// Range returns all entries between from and to (inclusive).
func (s *MemoryStore) Range(from, to time.Time) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Entry
	for _, e := range s.entries {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			result = append(result, e)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
