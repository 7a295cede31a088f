package instagram

import (
	"context"

	"igcrawler/pkg/factory"
	"igcrawler/pkg/models"
	"igcrawler/pkg/schema"
)

// Search runs a blended search and splits the results into tags,
// locations and users, each in upstream order. A single malformed entry
// fails the whole search.
func (c *Client) Search(ctx context.Context, query string) (models.SearchResult, error) {
	doc, err := c.FetchSearch(ctx, query)
	if err != nil {
		return models.SearchResult{}, err
	}

	fields, err := schema.Search(doc)
	if err != nil {
		return models.SearchResult{}, err
	}

	result := models.SearchResult{
		Tags:      make([]models.Tag, 0, len(fields.Tags)),
		Locations: make([]models.Location, 0, len(fields.Locations)),
		Users:     make([]models.User, 0, len(fields.Users)),
	}
	for _, f := range fields.Tags {
		tag, err := factory.NewTag(f)
		if err != nil {
			return models.SearchResult{}, err
		}
		result.Tags = append(result.Tags, tag)
	}
	for _, f := range fields.Locations {
		loc, err := factory.NewLocation(f)
		if err != nil {
			return models.SearchResult{}, err
		}
		result.Locations = append(result.Locations, loc)
	}
	for _, f := range fields.Users {
		user, err := factory.NewUser(f)
		if err != nil {
			return models.SearchResult{}, err
		}
		result.Users = append(result.Users, user)
	}

	c.logger.DebugWithFields("search completed", map[string]interface{}{
		"query":     query,
		"tags":      len(result.Tags),
		"locations": len(result.Locations),
		"users":     len(result.Users),
	})
	return result, nil
}
