package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenBucketCapacity(t *testing.T) {
	tests := []struct {
		name       string
		ratePerMin float64
		capacity   int
		expected   int
	}{
		{"defaults to rate", 90, 0, 90},
		{"explicit", 90, 10, 10},
		{"tiny rate still holds one token", 0.5, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTokenBucket(tt.ratePerMin, tt.capacity)
			assert.Equal(t, tt.expected, b.Capacity())
		})
	}
}

func TestTryAcquireDrains(t *testing.T) {
	b := NewTokenBucket(1, 2)

	assert.True(t, b.TryAcquire(1))
	assert.True(t, b.TryAcquire(1))
	assert.False(t, b.TryAcquire(1))
}

func TestAcquireStartsFull(t *testing.T) {
	b := NewTokenBucket(1, 5)

	start := time.Now()
	require.NoError(t, b.Acquire(context.Background(), 5))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquireWaitsForRefill(t *testing.T) {
	// 6000 per minute refills one token every 10ms.
	b := NewTokenBucket(6000, 1)
	require.NoError(t, b.Acquire(context.Background(), 1))

	start := time.Now()
	require.NoError(t, b.Acquire(context.Background(), 1))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestAcquireHonorsCancellation(t *testing.T) {
	b := NewTokenBucket(1, 1)
	require.True(t, b.TryAcquire(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Acquire(ctx, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAcquireBlocksWhenEmpty(t *testing.T) {
	b := NewTokenBucket(1, 1)
	require.True(t, b.TryAcquire(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, b.Acquire(ctx, 1))
}

func TestAcquireOverCapacity(t *testing.T) {
	b := NewTokenBucket(60, 3)
	err := b.Acquire(context.Background(), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds bucket capacity")
}
