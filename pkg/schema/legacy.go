package schema

import "igcrawler/pkg/factory"

// Legacy maps the flat envelope served before the GraphQL pages
type Legacy struct{}

var legacyKeys = map[Resource]string{
	ResourceTag:      "tag",
	ResourceLocation: "location",
	ResourceUser:     "user",
	ResourceMedia:    "media",
}

// Name implements Adapter
func (Legacy) Name() string { return "legacy" }

// Matches implements Adapter
func (Legacy) Matches(doc Document, r Resource) bool {
	key, ok := legacyKeys[r]
	if !ok {
		return false
	}
	_, isObject := doc[key].(map[string]any)
	return isObject
}

// Tag implements Adapter
func (Legacy) Tag(doc Document) factory.TagFields {
	tag := object(map[string]any(doc), "tag")
	return factory.TagFields{
		Name:  tag["name"],
		Count: lookup(tag, "media", "count"),
	}
}

// Location implements Adapter
func (Legacy) Location(doc Document) factory.LocationFields {
	return legacyLocation(object(map[string]any(doc), "location"))
}

// User implements Adapter
func (Legacy) User(doc Document) factory.UserFields {
	return legacyUser(object(map[string]any(doc), "user"))
}

// Media implements Adapter
func (Legacy) Media(doc Document) factory.MediaFields {
	media := object(map[string]any(doc), "media")

	fields := factory.MediaFields{
		ID:         media["id"],
		Code:       first(media["code"], media["shortcode"]),
		IsVideo:    media["is_video"],
		DisplayURL: first(media["display_src"], media["display_url"]),
		VideoURL:   media["video_url"],
		Views:      media["video_views"],
		Width:      lookup(media, "dimensions", "width"),
		Height:     lookup(media, "dimensions", "height"),
		Created:    media["date"],
		Likes:      lookup(media, "likes", "count"),
		Comments:   lookup(media, "comments", "count"),
		IsAd:       media["is_ad"],
		Caption:    media["caption"],
	}
	if owner, ok := media["owner"].(map[string]any); ok {
		user := legacyUser(owner)
		fields.Owner = &user
	}
	if location, ok := media["location"].(map[string]any); ok {
		l := legacyLocation(location)
		fields.Location = &l
	}

	return fields
}

// Listing implements Adapter. The legacy envelope is never paginated.
func (Legacy) Listing(doc Document, r Resource) Listing {
	key, ok := legacyKeys[r]
	if !ok || r == ResourceMedia {
		return Listing{Codes: []string{}}
	}
	nodes := array(map[string]any(doc), key, "media", "nodes")
	return Listing{Codes: codes(nodes, "code")}
}

func legacyLocation(location map[string]any) factory.LocationFields {
	return factory.LocationFields{
		ID:        location["id"],
		Name:      location["name"],
		Slug:      location["slug"],
		Latitude:  location["lat"],
		Longitude: location["lng"],
	}
}

func legacyUser(user map[string]any) factory.UserFields {
	return factory.UserFields{
		ID:         user["id"],
		Username:   user["username"],
		Picture:    first(user["profile_pic_url"], user["profile_pic_url_hd"]),
		Name:       user["full_name"],
		Private:    user["is_private"],
		Verified:   user["is_verified"],
		Biography:  user["biography"],
		Website:    user["external_url"],
		Followers:  lookup(user, "followed_by", "count"),
		Follows:    lookup(user, "follows", "count"),
		MediaCount: lookup(user, "media", "count"),
	}
}
