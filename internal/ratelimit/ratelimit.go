// Package ratelimit throttles admin API clients with per-key token buckets.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryLimiter keeps one token bucket per key. Buckets idle for longer
// than the idle window are swept periodically. Suitable for a single
// instance only.
type InMemoryLimiter struct {
	rate  rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor

	stop     chan struct{}
	stopOnce sync.Once
}

// NewInMemoryLimiter allows rps requests per second per key with bursts of
// up to burst requests.
func NewInMemoryLimiter(rps float64, burst int) *InMemoryLimiter {
	l := newLimiter(rps, burst, time.Now)
	go l.sweep(5 * time.Minute)
	return l
}

func newLimiter(rps float64, burst int, now func() time.Time) *InMemoryLimiter {
	return &InMemoryLimiter{
		rate:     rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      now,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
}

// Allow consumes one token from the bucket for key
func (l *InMemoryLimiter) Allow(_ context.Context, key string) bool {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys
func (l *InMemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Stop ends the background sweep. Safe to call more than once.
func (l *InMemoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *InMemoryLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

func (l *InMemoryLimiter) evictIdle() int {
	cutoff := l.now().Add(-l.idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	evicted := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			evicted++
		}
	}
	return evicted
}
