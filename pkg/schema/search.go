package schema

import (
	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/factory"
)

// SearchFields holds the raw entries of a blended search response
type SearchFields struct {
	Tags      []factory.TagFields
	Locations []factory.LocationFields
	Users     []factory.UserFields
}

// Search maps a topsearch response. The body has no envelope of its own:
// it must carry at least one of "hashtags", "places" or "users". An entry
// without its wrapper object fails the whole response with SchemaMismatch.
func Search(doc Document) (SearchFields, error) {
	if !doc.Has("hashtags") && !doc.Has("places") && !doc.Has("users") {
		return SearchFields{}, igerrors.MalformedResponse("search response carries no result lists", nil)
	}

	root := map[string]any(doc)
	fields := SearchFields{
		Tags:      make([]factory.TagFields, 0),
		Locations: make([]factory.LocationFields, 0),
		Users:     make([]factory.UserFields, 0),
	}

	for _, entry := range array(root, "hashtags") {
		tag := object(entry, "hashtag")
		if tag == nil {
			return SearchFields{}, igerrors.SchemaMismatch(factory.EntityTag, "hashtag")
		}
		fields.Tags = append(fields.Tags, factory.TagFields{
			Name:  tag["name"],
			Count: tag["media_count"],
		})
	}

	for _, entry := range array(root, "places") {
		place := object(entry, "place")
		if place == nil {
			return SearchFields{}, igerrors.SchemaMismatch(factory.EntityLocation, "place")
		}
		location := object(place, "location")
		fields.Locations = append(fields.Locations, factory.LocationFields{
			ID:        first(location["pk"], location["id"]),
			Name:      first(place["title"], location["name"]),
			Slug:      place["slug"],
			Latitude:  location["lat"],
			Longitude: location["lng"],
		})
	}

	for _, entry := range array(root, "users") {
		user := object(entry, "user")
		if user == nil {
			return SearchFields{}, igerrors.SchemaMismatch(factory.EntityUser, "user")
		}
		fields.Users = append(fields.Users, factory.UserFields{
			ID:        first(user["pk"], user["id"]),
			Username:  user["username"],
			Picture:   user["profile_pic_url"],
			Name:      user["full_name"],
			Private:   user["is_private"],
			Verified:  user["is_verified"],
			Followers: user["follower_count"],
		})
	}

	return fields, nil
}
