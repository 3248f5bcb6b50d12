package handlers

import (
	"sync"
	"time"
)

// RateLimiter throttles an operation to once per key per cooldown window.
// State is held in process memory only: it does not survive restarts and
// does not coordinate across instances.
type RateLimiter struct {
	mu       sync.Mutex
	lastRun  map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewRateLimiter creates a limiter with the given cooldown.
func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		lastRun:  make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Allow reports whether the key may run now. When it may not, the returned
// duration says how long until it may. A permitted call marks the key as
// having run.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastRun[key]; ok {
		if remaining := l.cooldown - now.Sub(last); remaining > 0 {
			return false, remaining
		}
	}
	l.lastRun[key] = now
	return true, 0
}
