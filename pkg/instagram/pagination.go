package instagram

import (
	"net/url"
	"sync"

	"igcrawler/pkg/schema"
)

// Cursor is the continuation point of the last paginated listing
type Cursor struct {
	Resource schema.Resource
	// Key identifies the listing: tag name, location id or username
	Key         string
	EndCursor   string
	HasNextPage bool
}

type cursorState struct {
	mu       sync.Mutex
	recorded *Cursor
	armed    *Cursor
}

// Cursor returns the cursor recorded by the last listing fetch
func (c *Client) Cursor() (Cursor, bool) {
	c.cursor.mu.Lock()
	defer c.cursor.mu.Unlock()

	if c.cursor.recorded == nil {
		return Cursor{}, false
	}
	return *c.cursor.recorded, true
}

// NextPage arms the recorded cursor, so the next fetch of the same listing
// continues after it. It reports false when there is no further page.
func (c *Client) NextPage() bool {
	c.cursor.mu.Lock()
	defer c.cursor.mu.Unlock()

	rec := c.cursor.recorded
	if rec == nil || !rec.HasNextPage || rec.EndCursor == "" {
		return false
	}
	armed := *rec
	c.cursor.armed = &armed
	return true
}

// ResetCursor forgets both the recorded and the armed cursor
func (c *Client) ResetCursor() {
	c.cursor.mu.Lock()
	defer c.cursor.mu.Unlock()

	c.cursor.recorded = nil
	c.cursor.armed = nil
}

// apply adds the armed cursor to query when it belongs to this
// listing, and disarms it.
func (s *cursorState) apply(res schema.Resource, key string, query url.Values) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed == nil || s.armed.Resource != res || s.armed.Key != key {
		return query
	}

	out := url.Values{}
	for k, v := range query {
		out[k] = v
	}
	out.Set(CursorParam, s.armed.EndCursor)
	s.armed = nil
	return out
}

// record keeps the page info of a paginated listing and drops it for an
// unpaginated one.
func (s *cursorState) record(res schema.Resource, key string, listing schema.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !listing.Paginated {
		s.recorded = nil
		return
	}
	s.recorded = &Cursor{
		Resource:    res,
		Key:         key,
		EndCursor:   listing.EndCursor,
		HasNextPage: listing.HasNextPage,
	}
}
