// Package ratelimit provides the token bucket shared by every marketplace
// request of a process.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket refills at a steady per-minute rate up to a fixed capacity and
// starts full. Tokens are computed lazily on every acquisition, so an idle
// bucket costs nothing. Safe for concurrent use.
type TokenBucket struct {
	limiter  *rate.Limiter
	capacity int
}

// NewTokenBucket returns a bucket refilling ratePerMin tokens per minute. A
// capacity of zero or less defaults to the per-minute rate.
func NewTokenBucket(ratePerMin float64, capacity int) *TokenBucket {
	if capacity <= 0 {
		capacity = max(int(ratePerMin), 1)
	}
	return &TokenBucket{
		limiter:  rate.NewLimiter(rate.Limit(ratePerMin/60.0), capacity),
		capacity: capacity,
	}
}

// Acquire blocks until n tokens are available or ctx is done.
func (b *TokenBucket) Acquire(ctx context.Context, n int) error {
	if n > b.capacity {
		return fmt.Errorf("acquire %d tokens: exceeds bucket capacity %d", n, b.capacity)
	}
	if err := b.limiter.WaitN(ctx, n); err != nil {
		return fmt.Errorf("acquire %d tokens: %w", n, err)
	}
	return nil
}

// TryAcquire takes n tokens if they are available right now.
func (b *TokenBucket) TryAcquire(n int) bool {
	return b.limiter.AllowN(time.Now(), n)
}

// Capacity is the most tokens the bucket can hold.
func (b *TokenBucket) Capacity() int {
	return b.capacity
}

// Available reports the tokens currently in the bucket.
func (b *TokenBucket) Available() float64 {
	return b.limiter.Tokens()
}
