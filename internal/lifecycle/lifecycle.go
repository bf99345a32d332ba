// Package lifecycle tracks process-wide run state reported by the health endpoint.
package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	startedAt    atomic.Int64 // unix nanos
)

func init() {
	MarkStarted(time.Now())
}

// MarkStarted records when the process began serving. Set once at init; tests may override it.
func MarkStarted(t time.Time) {
	startedAt.Store(t.UnixNano())
}

// Uptime returns the time elapsed since MarkStarted.
func Uptime() time.Duration {
	return time.Since(time.Unix(0, startedAt.Load()))
}

// SetShuttingDown sets the drain flag when SIGTERM/SIGINT is received.
// While true the health handler answers 503 with status shutting-down.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}
