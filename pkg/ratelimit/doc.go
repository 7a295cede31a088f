// Package ratelimit paces upstream requests.
//
// Bucket regains capacity tokens per period; SlidingWindow admits
// at most N requests in any trailing window. Both are safe for concurrent
// use, and Wait honours context cancellation:
//
//	limiter := ratelimit.New(60, 0)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
