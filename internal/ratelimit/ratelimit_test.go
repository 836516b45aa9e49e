package ratelimit

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestInMemoryLimiter_Burst(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)}
	l := newLimiter(1, 3, clock.now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "a") {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}
	if l.Allow(ctx, "a") {
		t.Error("fourth request allowed, want denied")
	}
	if !l.Allow(ctx, "b") {
		t.Error("other key denied, want its own bucket")
	}

	clock.t = clock.t.Add(time.Second)
	if !l.Allow(ctx, "a") {
		t.Error("request after refill denied")
	}
}

func TestInMemoryLimiter_EvictIdle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)}
	l := newLimiter(10, 10, clock.now)
	ctx := context.Background()

	l.Allow(ctx, "old")
	clock.t = clock.t.Add(9 * time.Minute)
	l.Allow(ctx, "recent")
	clock.t = clock.t.Add(2 * time.Minute)

	if n := l.evictIdle(); n != 1 {
		t.Errorf("evictIdle() = %d, want 1", n)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestInMemoryLimiter_StopTwice(t *testing.T) {
	l := NewInMemoryLimiter(1, 1)
	l.Stop()
	l.Stop()
}
