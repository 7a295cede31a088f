// Package retry re-runs operations that failed with a transient error.
//
// The crawler core never retries; the HTTP transport opts in when
// configured to. DefaultRetryIf treats transport failures and upstream
// 429/5xx responses as transient, and NewHTTPConfig picks a separate
// backoff for each of them:
//
//	cfg := retry.NewHTTPConfig(3, time.Second, 30*time.Second, log)
//	resp, err := retry.DoWithResult(ctx, func(ctx context.Context) (*Response, error) {
//		return fetch(ctx)
//	}, cfg)
package retry
