// Package traffic keeps a short sliding window of provider fetch outcomes and
// rate-limit denials for the health report.
package traffic

import (
	"sync"
	"time"
)

// Retention is how long outcomes are kept.
const Retention = 5 * time.Minute

var defaultWindow = NewWindow()

// RecordFetch records one provider call; a non-nil err counts as a failure.
func RecordFetch(err error) {
	defaultWindow.RecordFetch(err)
}

// RecordDenied records a rate-limit denial.
func RecordDenied() {
	defaultWindow.RecordDenied()
}

// Snapshot summarises the default window over the last d.
func Snapshot(d time.Duration) Summary {
	return defaultWindow.Summary(d)
}

// Reset clears the default window. For tests only.
func Reset() {
	defaultWindow.Reset()
}

// Summary counts outcomes inside a window.
type Summary struct {
	Fetches  int `json:"fetches"`
	Failures int `json:"failures"`
	Denied   int `json:"denied"`
}

// Window holds outcome timestamps no older than Retention.
type Window struct {
	mu       sync.Mutex
	now      func() time.Time
	fetches  []time.Time
	failures []time.Time
	denied   []time.Time
}

// NewWindow returns an empty window on the wall clock.
func NewWindow() *Window {
	return &Window{now: time.Now}
}

// RecordFetch records one provider call. Failures also count as fetches.
func (w *Window) RecordFetch(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.fetches = append(w.fetches, now)
	if err != nil {
		w.failures = append(w.failures, now)
	}
	w.pruneLocked(now)
}

// RecordDenied records a rate-limit denial.
func (w *Window) RecordDenied() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.denied = append(w.denied, now)
	w.pruneLocked(now)
}

// Summary counts outcomes recorded within the last d (capped at Retention).
func (w *Window) Summary(d time.Duration) Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.now().Add(-d)
	return Summary{
		Fetches:  countSince(w.fetches, cutoff),
		Failures: countSince(w.failures, cutoff),
		Denied:   countSince(w.denied, cutoff),
	}
}

// Reset clears all recorded outcomes.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fetches, w.failures, w.denied = nil, nil, nil
}

func countSince(times []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			n++
		}
	}
	return n
}

// pruneLocked drops timestamps older than Retention. w.mu must be held.
func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-Retention)
	prune := func(slice *[]time.Time) {
		times := *slice
		i := 0
		for ; i < len(times) && times[i].Before(cutoff); i++ {
		}
		if i > 0 {
			*slice = append(times[:0], times[i:]...)
		}
	}
	prune(&w.fetches)
	prune(&w.failures)
	prune(&w.denied)
}
