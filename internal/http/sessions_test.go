package http

import (
	"context"
	"testing"
	"time"

	"github.com/kjstillabower/city-weather/internal/display"
	"github.com/kjstillabower/city-weather/internal/query"
)

// TestSessions_GetTouchesAndSweepExpires verifies idle expiry based on last access.
func TestSessions_GetTouchesAndSweepExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(10 * time.Minute)
	s.now = func() time.Time { return now }

	active := s.Create(display.New(&mockWeatherClient{}, nil))
	idle := s.Create(display.New(&mockWeatherClient{}, nil))

	now = now.Add(8 * time.Minute)
	if _, ok := s.Get(active.ID); !ok {
		t.Fatal("Get(active) not found")
	}
	now = now.Add(5 * time.Minute)

	if removed := s.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, ok := s.Get(idle.ID); ok {
		t.Error("idle session should have been swept")
	}
	if _, ok := s.Get(active.ID); !ok {
		t.Error("recently used session should survive the sweep")
	}
}

// TestSessions_SweepUnmountsDisplay verifies that an expired session's display
// discards its outstanding fetch.
func TestSessions_SweepUnmountsDisplay(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(time.Minute)
	s.now = func() time.Time { return now }
	sess := s.Create(display.New(&mockWeatherClient{}, nil))

	ticket, outcome := sess.Display.Enter(query.CityQuery("Paris"))
	if outcome != display.OutcomeFetch {
		t.Fatalf("Enter() outcome = %v, want OutcomeFetch", outcome)
	}
	now = now.Add(2 * time.Minute)
	s.Sweep()

	if sess.Display.Run(context.Background(), ticket) {
		t.Error("result for a swept session should be discarded")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

// TestSessions_GetEmptyID verifies that an empty ID never matches.
func TestSessions_GetEmptyID(t *testing.T) {
	s := NewSessions(time.Minute)
	if _, ok := s.Get(""); ok {
		t.Error("Get(\"\") should not find a session")
	}
}

// TestSessions_SweepEveryStopsOnCancel verifies the sweeper loop exits with the context.
func TestSessions_SweepEveryStopsOnCancel(t *testing.T) {
	s := NewSessions(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.SweepEvery(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("SweepEvery() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("SweepEvery did not return after cancel")
	}
}
