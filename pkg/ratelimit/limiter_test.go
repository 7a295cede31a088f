package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket(t *testing.T) {
	b := NewBucket(5, 200*time.Millisecond, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, b.Allow(), "token %d", i+1)
	}
	assert.False(t, b.Allow())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, b.Allow(), "one token regained after period/capacity")

	b.Reset()
	for i := 0; i < 5; i++ {
		assert.True(t, b.Allow(), "token %d after reset", i+1)
	}
}

func TestBucketWait(t *testing.T) {
	b := NewBucket(1, 100*time.Millisecond, 1)
	require.True(t, b.Allow())

	start := time.Now()
	require.NoError(t, b.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, 200*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow(), "request %d", i+1)
	}
	assert.False(t, sw.Allow())

	time.Sleep(250 * time.Millisecond)
	assert.True(t, sw.Allow(), "window should slide")

	sw.Reset()
	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow(), "request %d after reset", i+1)
	}
	assert.False(t, sw.Allow())
}

func TestWaitCancelled(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	require.True(t, sw.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sw.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSlidingWindowConcurrent(t *testing.T) {
	sw := NewSlidingWindow(10, time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sw.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Unlimited{}, New(0, 10))
	assert.IsType(t, &SlidingWindow{}, New(30, 0))

	b := New(1, 3)
	require.IsType(t, &Bucket{}, b)
	for i := 0; i < 3; i++ {
		assert.True(t, b.Allow(), "burst %d", i+1)
	}
	assert.False(t, b.Allow())
}

func TestUnlimited(t *testing.T) {
	u := New(-1, 0)
	for i := 0; i < 1000; i++ {
		require.True(t, u.Allow())
	}
	assert.NoError(t, u.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, u.Wait(ctx), context.Canceled)
}
