package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter throttles submissions per client identifier using a sliding window.
// Allow reports whether the request should be admitted; the attempt is
// recorded only when admitted.
type Limiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// MemoryLimiter keeps per-identifier request timestamps in process memory.
// State is lost on restart, which is acceptable for a throttle.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter allowing max requests per trailing window
// for each client identifier.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string][]time.Time),
		max:     max,
		window:  window,
		now:     time.Now,
	}
	// Periodically evict idle identifiers to prevent memory growth.
	go l.cleanup()
	return l
}

// Allow prunes timestamps older than the window, denies without recording when
// the identifier is at capacity, and records the attempt otherwise. The whole
// prune-check-append sequence runs under one lock so two concurrent requests
// for the same identifier cannot both slip past the limit.
func (l *MemoryLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.windows[clientID][:0]
	for _, ts := range l.windows[clientID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.max {
		l.windows[clientID] = recent
		return false, nil
	}

	l.windows[clientID] = append(recent, now)
	return true, nil
}

func (l *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		cutoff := l.now().Add(-l.window)
		for id, stamps := range l.windows {
			if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
				delete(l.windows, id)
			}
		}
		l.mu.Unlock()
	}
}

var _ Limiter = (*MemoryLimiter)(nil)
