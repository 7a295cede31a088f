package instagram

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"igcrawler/internal/resolver"
	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/factory"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
	"igcrawler/pkg/schema"
	"igcrawler/pkg/transport"
)

// ErrInvalidUsername is returned before any request for a malformed username
var ErrInvalidUsername = errors.New("invalid username")

// Client fetches public Instagram pages and turns them into entities.
// Apart from the pagination cursor it holds no mutable state, so one
// Client may serve concurrent callers.
type Client struct {
	transport transport.Transport
	registry  *schema.Registry
	resolver  *resolver.Resolver
	logger    logger.Logger
	cursor    cursorState
}

// Option customizes a Client
type Option func(*Client)

// WithRegistry replaces the envelope adapters, e.g. to add a variant
func WithRegistry(r *schema.Registry) Option {
	return func(c *Client) {
		c.registry = r
	}
}

// NewClient creates a client issuing requests through t. The transport
// must already carry the base URL and the default query.
func NewClient(t transport.Transport, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		transport: t,
		registry:  schema.DefaultRegistry(),
		logger:    logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver = resolver.New(t, MediaPath, c.decodeMedia, c.logger)
	return c
}

// FetchTag fetches the raw listing document of a hashtag
func (c *Client) FetchTag(ctx context.Context, name string) (schema.Document, error) {
	doc, _, err := c.fetchEntity(ctx, schema.ResourceTag, name, TagPath(name))
	return doc, err
}

// FetchLocation fetches the raw listing document of a location
func (c *Client) FetchLocation(ctx context.Context, id int64) (schema.Document, error) {
	doc, _, err := c.fetchEntity(ctx, schema.ResourceLocation, locationKey(id), LocationPath(id))
	return doc, err
}

// FetchUser fetches the raw profile document of a user
func (c *Client) FetchUser(ctx context.Context, username string) (schema.Document, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	doc, _, err := c.fetchEntity(ctx, schema.ResourceUser, username, UserPath(username))
	return doc, err
}

// FetchMedia fetches the raw page document of a post
func (c *Client) FetchMedia(ctx context.Context, code string) (schema.Document, error) {
	doc, _, err := c.fetchEntity(ctx, schema.ResourceMedia, code, MediaPath(code))
	return doc, err
}

// FetchSearch fetches the raw blended search document. The body must carry
// at least one result list.
func (c *Client) FetchSearch(ctx context.Context, query string) (schema.Document, error) {
	doc, err := c.fetch(ctx, SearchEndpoint, SearchQuery(query))
	if err != nil {
		return nil, err
	}
	if !doc.Has("hashtags") && !doc.Has("places") && !doc.Has("users") {
		return nil, igerrors.MalformedResponse("search response carries no result lists", nil)
	}
	return doc, nil
}

// fetchEntity fetches one resource page and selects its adapter. Listing
// pages consume an armed cursor and record the next one.
func (c *Client) fetchEntity(ctx context.Context, res schema.Resource, key, path string) (schema.Document, schema.Adapter, error) {
	var query url.Values
	if res.IsListing() {
		query = c.cursor.apply(res, key, query)
	}

	doc, err := c.fetch(ctx, path, query)
	if err != nil {
		return nil, nil, err
	}

	adapter, err := c.registry.Detect(doc, res)
	if err != nil {
		c.logger.WarnWithFields("unrecognized envelope", map[string]interface{}{
			"resource": string(res),
			"key":      key,
		})
		return nil, nil, err
	}

	if res.IsListing() {
		c.cursor.record(res, key, adapter.Listing(doc, res))
	}

	c.logger.DebugWithFields("fetched resource", map[string]interface{}{
		"resource": string(res),
		"key":      key,
		"envelope": adapter.Name(),
	})
	return doc, adapter, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) (schema.Document, error) {
	resp, err := c.transport.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return decodeResponse(resp)
}

// decodeResponse checks the status and decodes the body
func decodeResponse(resp *transport.Response) (schema.Document, error) {
	if !resp.OK() {
		return nil, igerrors.Upstream(resp.Status, resp.Body)
	}
	return schema.Decode(resp.Body)
}

// decodeMedia builds a Media from a post page response; the resolver calls
// it for every settled fetch.
func (c *Client) decodeMedia(resp *transport.Response) (models.Media, error) {
	doc, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}
	adapter, err := c.registry.Detect(doc, schema.ResourceMedia)
	if err != nil {
		return nil, err
	}
	return factory.NewMedia(adapter.Media(doc))
}

func normalizeUsername(username string) (string, error) {
	username = SanitizeUsername(username)
	if !IsValidUsername(username) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return username, nil
}
