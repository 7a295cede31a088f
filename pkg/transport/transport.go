// Package transport performs the crawler's upstream GET requests.
//
// The Transport interface is the only network dependency of the fetch
// client and the batch resolver, so tests substitute an in-memory fake.
// HTTP implements it on resty.
package transport

import (
	"context"
	"net/url"
)

// Response is a completed upstream exchange, whatever its status
type Response struct {
	Status int
	Body   []byte
	// URL is the final request URL including the query string
	URL string
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Result is delivered on the channel returned by GetAsync
type Result struct {
	Response *Response
	Err      error
}

// Transport issues GET requests relative to a fixed base address
type Transport interface {
	// Get returns the response for any HTTP status. An error means no
	// response was received.
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	// GetAsync starts the request and returns immediately. The channel is
	// buffered and receives exactly one Result.
	GetAsync(ctx context.Context, path string, query url.Values) <-chan Result
}

// Async runs get in a goroutine and delivers its outcome. Implementations
// of Transport use it for GetAsync.
func Async(ctx context.Context, get func(context.Context) (*Response, error)) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		resp, err := get(ctx)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}
