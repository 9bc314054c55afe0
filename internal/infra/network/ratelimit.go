package network

import (
	"context"
	"sync"
	"time"
)

// Adaptive token bucket that reduces burst when median RTT degrades >2x baseline

type TokenBucket struct {
	mu            sync.Mutex
	capacity      int
	tokens        float64
	rate          float64 // tokens per second
	last          time.Time
	baselineRTTms float64
}

func NewTokenBucket(capacity int, rate float64, baselineRTTms float64) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{capacity: capacity, tokens: float64(capacity), rate: rate, last: time.Now(), baselineRTTms: baselineRTTms}
}

// Wait blocks until a token is available or ctx is done. It reports whether
// the caller had to wait at all.
func (b *TokenBucket) Wait(ctx context.Context) (waited bool, err error) {
	for {
		b.mu.Lock()
		b.refill(time.Now())
		if b.tokens >= 1 {
			b.tokens -= 1
			b.mu.Unlock()
			return waited, nil
		}
		var delay time.Duration
		if b.rate > 0 {
			delay = time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
		} else {
			delay = time.Second
		}
		b.mu.Unlock()

		waited = true
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return waited, ctx.Err()
		case <-t.C:
		}
	}
}

func (b *TokenBucket) refill(now time.Time) {
	dt := now.Sub(b.last).Seconds()
	if dt <= 0 {
		return
	}
	b.last = now
	b.tokens += b.rate * dt
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
}

// AdjustForRTT halves burst and rate when the observed RTT is more than twice the baseline.
func (b *TokenBucket) AdjustForRTT(medianRTTms float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.baselineRTTms <= 0 {
		return
	}
	ratio := medianRTTms / b.baselineRTTms
	if ratio > 2.0 {
		b.capacity = max(1, b.capacity/2)
		b.rate = b.rate * 0.5
		if b.tokens > float64(b.capacity) {
			b.tokens = float64(b.capacity)
		}
	}
}
