package instagram

import (
	"context"

	"igcrawler/pkg/factory"
	"igcrawler/pkg/models"
	"igcrawler/pkg/schema"
)

// Media fetches a single post by its shortcode
func (c *Client) Media(ctx context.Context, code string) (models.Media, error) {
	doc, adapter, err := c.fetchEntity(ctx, schema.ResourceMedia, code, MediaPath(code))
	if err != nil {
		return nil, err
	}
	return factory.NewMedia(adapter.Media(doc))
}

// User fetches a profile. The username is sanitized first and an invalid
// one fails with ErrInvalidUsername without issuing a request.
func (c *Client) User(ctx context.Context, username string) (models.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return models.User{}, err
	}
	doc, adapter, err := c.fetchEntity(ctx, schema.ResourceUser, username, UserPath(username))
	if err != nil {
		return models.User{}, err
	}
	return factory.NewUser(adapter.User(doc))
}

// Location fetches a location page
func (c *Client) Location(ctx context.Context, id int64) (models.Location, error) {
	doc, adapter, err := c.fetchEntity(ctx, schema.ResourceLocation, locationKey(id), LocationPath(id))
	if err != nil {
		return models.Location{}, err
	}
	return factory.NewLocation(adapter.Location(doc))
}

// Tag fetches a hashtag page
func (c *Client) Tag(ctx context.Context, name string) (models.Tag, error) {
	doc, adapter, err := c.fetchEntity(ctx, schema.ResourceTag, name, TagPath(name))
	if err != nil {
		return models.Tag{}, err
	}
	return factory.NewTag(adapter.Tag(doc))
}

// MediaByTag resolves the media listed on a hashtag page
func (c *Client) MediaByTag(ctx context.Context, name string) ([]models.Media, error) {
	return c.mediaByListing(ctx, schema.ResourceTag, name, TagPath(name))
}

// MediaByLocation resolves the media listed on a location page
func (c *Client) MediaByLocation(ctx context.Context, id int64) ([]models.Media, error) {
	return c.mediaByListing(ctx, schema.ResourceLocation, locationKey(id), LocationPath(id))
}

// MediaByUser resolves the recent media of a user
func (c *Client) MediaByUser(ctx context.Context, username string) ([]models.Media, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	return c.mediaByListing(ctx, schema.ResourceUser, username, UserPath(username))
}

// mediaByListing fails only when the listing itself fails; media that
// cannot be resolved are left out of the result.
func (c *Client) mediaByListing(ctx context.Context, res schema.Resource, key, path string) ([]models.Media, error) {
	doc, adapter, err := c.fetchEntity(ctx, res, key, path)
	if err != nil {
		return nil, err
	}
	listing := adapter.Listing(doc, res)
	return c.resolver.Resolve(ctx, listing.Codes), nil
}

// MediaByCodes resolves a batch of shortcodes concurrently. Codes that
// fail are logged and left out; the order follows completion.
func (c *Client) MediaByCodes(ctx context.Context, codes []string) []models.Media {
	return c.resolver.Resolve(ctx, codes)
}
