// Package transporttest provides an in-memory transport.Transport for tests.
package transporttest

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"igcrawler/pkg/transport"
)

// Route is the canned reply for one request path
type Route struct {
	Status int
	Body   string
	Err    error
	// Delay holds the reply back, honouring ctx
	Delay time.Duration
}

// Call records one request
type Call struct {
	Path  string
	Query url.Values
}

// Fake serves canned routes. Unknown paths answer 404.
type Fake struct {
	mu     sync.Mutex
	routes map[string]Route
	calls  []Call
}

// New creates a fake serving routes keyed by path
func New(routes map[string]Route) *Fake {
	f := &Fake{routes: make(map[string]Route, len(routes))}
	for path, route := range routes {
		f.routes[path] = route
	}
	return f
}

// Handle adds or replaces a route
func (f *Fake) Handle(path string, route Route) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = route
}

// JSON adds a 200 route with the given body
func (f *Fake) JSON(path, body string) {
	f.Handle(path, Route{Status: 200, Body: body})
}

// Calls returns the requests seen so far
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Get implements transport.Transport
func (f *Fake) Get(ctx context.Context, path string, query url.Values) (*transport.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Path: path, Query: query})
	route, ok := f.routes[path]
	f.mu.Unlock()

	if !ok {
		route = Route{Status: 404, Body: "not found"}
	}
	if route.Delay > 0 {
		timer := time.NewTimer(route.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if route.Err != nil {
		return nil, route.Err
	}

	return &transport.Response{
		Status: route.Status,
		Body:   []byte(route.Body),
		URL:    path,
	}, nil
}

// GetAsync implements transport.Transport
func (f *Fake) GetAsync(ctx context.Context, path string, query url.Values) <-chan transport.Result {
	return transport.Async(ctx, func(ctx context.Context) (*transport.Response, error) {
		return f.Get(ctx, path, query)
	})
}

// ErrConnectionRefused is a ready-made transport failure
var ErrConnectionRefused = errors.New("connection refused")
