package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests. Implementations are safe for concurrent use.
type Limiter interface {
	// Allow takes a slot without blocking and reports whether one was free.
	Allow() bool
	// Wait blocks until a slot is taken or ctx is done.
	Wait(ctx context.Context) error
	// Reset forgets all past requests.
	Reset()
}

// New picks a limiter for perMinute requests. A positive burst selects a
// Bucket of that size; otherwise requests are held to a strict window.
func New(perMinute, burst int) Limiter {
	switch {
	case perMinute <= 0:
		return Unlimited{}
	case burst > 0:
		return NewBucket(perMinute, time.Minute, burst)
	}
	return NewSlidingWindow(perMinute, time.Minute)
}

// Unlimited never blocks.
type Unlimited struct{}

func (Unlimited) Allow() bool                    { return true }
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (Unlimited) Reset()                         {}

// Bucket is a token bucket holding up to burst tokens and regaining n of
// them per period, one at a time.
type Bucket struct {
	mu    sync.Mutex
	lim   *rate.Limiter
	burst int
	every rate.Limit
}

// NewBucket returns a full bucket.
func NewBucket(n int, period time.Duration, burst int) *Bucket {
	b := &Bucket{burst: burst, every: rate.Every(period / time.Duration(n))}
	b.Reset()
	return b
}

func (b *Bucket) current() *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lim
}

func (b *Bucket) Allow() bool { return b.current().Allow() }

func (b *Bucket) Wait(ctx context.Context) error { return b.current().Wait(ctx) }

// Reset refills the bucket.
func (b *Bucket) Reset() {
	b.mu.Lock()
	b.lim = rate.NewLimiter(b.every, b.burst)
	b.mu.Unlock()
}

// SlidingWindow admits at most max requests within any window. It keeps the
// start time of the last max admissions in a ring; a new request is admitted
// when the oldest of them has left the window.
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	ring   []time.Time
	next   int
}

func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{window: window, ring: make([]time.Time, max)}
}

// admit takes a slot at now, or returns how long until the oldest one frees.
func (w *SlidingWindow) admit(now time.Time) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	oldest := w.ring[w.next]
	if !oldest.IsZero() {
		if wait := w.window - now.Sub(oldest); wait > 0 {
			return false, wait
		}
	}
	w.ring[w.next] = now
	w.next = (w.next + 1) % len(w.ring)
	return true, 0
}

func (w *SlidingWindow) Allow() bool {
	ok, _ := w.admit(time.Now())
	return ok
}

func (w *SlidingWindow) Wait(ctx context.Context) error {
	for {
		ok, wait := w.admit(time.Now())
		if ok {
			return nil
		}
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

func (w *SlidingWindow) Reset() {
	w.mu.Lock()
	clear(w.ring)
	w.next = 0
	w.mu.Unlock()
}
