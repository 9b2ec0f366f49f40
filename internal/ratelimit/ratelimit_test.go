package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("client") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	if !rl.Allow("a") {
		t.Fatal("first request for a should pass")
	}
	if rl.Allow("a") {
		t.Error("second request for a should be limited")
	}
	if !rl.Allow("b") {
		t.Error("b must not share a's bucket")
	}
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(100, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for range 3 {
		if err := rl.Wait(ctx, "k"); err != nil {
			t.Fatalf("Wait() error: %v", err)
		}
	}
}

func TestKeyedRateLimiter_WaitCanceled(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	rl.Allow("k")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx, "k"); err == nil {
		t.Error("Wait() should fail on a canceled context")
	}
}

func TestKeyedRateLimiter_SweepEvictsIdleKeys(t *testing.T) {
	rl := NewWithTTL(1, 1, time.Hour)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(30 * time.Minute)
	rl.Allow("fresh")
	now = now.Add(31 * time.Minute)

	rl.sweep()

	if got := rl.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if !rl.Allow("old") {
		t.Error("evicted key should start with a full bucket")
	}
}

func TestKeyedRateLimiter_StopIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	rl.Stop()
}
