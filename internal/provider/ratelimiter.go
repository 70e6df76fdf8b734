package provider

import (
	"context"
	"sync"
	"time"
)

// tokenBucket paces outbound API calls against free-tier quotas.
// Tokens accrue continuously at one per refill period, up to capacity.
type tokenBucket struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	period   time.Duration
	updated  time.Time
}

func newTokenBucket(capacity int, period time.Duration) *tokenBucket {
	return &tokenBucket{
		capacity: float64(capacity),
		tokens:   float64(capacity),
		period:   period,
		updated:  time.Now(),
	}
}

// take consumes a token if one is available and otherwise reports how
// long the caller must wait for the next one.
func (b *tokenBucket) take() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += float64(now.Sub(b.updated)) / float64(b.period)
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.updated = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) * float64(b.period))
	return false, wait
}

// wait blocks until a token is available or ctx is cancelled.
func (b *tokenBucket) wait(ctx context.Context) error {
	for {
		ok, sleep := b.take()
		if ok {
			return nil
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
