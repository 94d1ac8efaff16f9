package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-now/internal/pipeline"
)

func fixedClock(start time.Time, step time.Duration) func() time.Time {
	t := start.Add(-step)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore(10, 0)
	if _, err := s.Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s.Save(pipeline.Outcome{Kind: pipeline.KindLocationDisabled})
	s.Save(pipeline.Outcome{Kind: pipeline.KindSuccess})

	e, err := s.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Outcome.Kind != pipeline.KindSuccess {
		t.Fatalf("expected latest success, got %s", e.Outcome.Kind)
	}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = fixedClock(base, time.Minute)

	for i := 0; i < 5; i++ {
		s.Save(pipeline.Outcome{Kind: pipeline.KindCancelled})
	}

	all, err := s.Range(base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 retained entries, got %d", len(all))
	}
	if !all[0].Timestamp.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("expected oldest entries dropped, first is %v", all[0].Timestamp)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, 90*time.Minute)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = fixedClock(base, time.Hour)

	for i := 0; i < 4; i++ {
		s.Save(pipeline.Outcome{Kind: pipeline.KindSuccess})
	}

	all, err := s.Range(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected entries within 90 minutes, got %d", len(all))
	}
}

func TestMemoryStoreRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = fixedClock(base, time.Hour)

	for i := 0; i < 3; i++ {
		s.Save(pipeline.Outcome{Kind: pipeline.KindSuccess})
	}

	got, err := s.Range(base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil || len(got) != 2 {
		t.Fatalf("expected 2 entries in inclusive range, got %d (%v)", len(got), err)
	}

	if _, err := s.Range(base.Add(10*time.Hour), base.Add(11*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty window, got %v", err)
	}
}
