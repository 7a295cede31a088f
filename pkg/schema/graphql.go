package schema

import "igcrawler/pkg/factory"

// GraphQL maps the nested envelope served under the "graphql" key
type GraphQL struct{}

var graphqlKeys = map[Resource]string{
	ResourceTag:      "hashtag",
	ResourceLocation: "location",
	ResourceUser:     "user",
	ResourceMedia:    "shortcode_media",
}

// media edge of each listing resource
var graphqlEdges = map[Resource]string{
	ResourceTag:      "edge_hashtag_to_media",
	ResourceLocation: "edge_location_to_media",
	ResourceUser:     "edge_owner_to_timeline_media",
}

// Name implements Adapter
func (GraphQL) Name() string { return "graphql" }

// Matches implements Adapter
func (GraphQL) Matches(doc Document, r Resource) bool {
	key, ok := graphqlKeys[r]
	if !ok {
		return false
	}
	return object(map[string]any(doc), "graphql", key) != nil
}

func (GraphQL) root(doc Document, r Resource) map[string]any {
	return object(map[string]any(doc), "graphql", graphqlKeys[r])
}

// Tag implements Adapter
func (g GraphQL) Tag(doc Document) factory.TagFields {
	tag := g.root(doc, ResourceTag)
	return factory.TagFields{
		Name:  tag["name"],
		Count: lookup(tag, "edge_hashtag_to_media", "count"),
	}
}

// Location implements Adapter
func (g GraphQL) Location(doc Document) factory.LocationFields {
	return graphqlLocation(g.root(doc, ResourceLocation))
}

// User implements Adapter
func (g GraphQL) User(doc Document) factory.UserFields {
	return graphqlUser(g.root(doc, ResourceUser))
}

// Media implements Adapter
func (g GraphQL) Media(doc Document) factory.MediaFields {
	media := g.root(doc, ResourceMedia)

	var caption any
	if edges := array(media, "edge_media_to_caption", "edges"); len(edges) > 0 {
		caption = lookup(edges[0], "node", "text")
	}

	fields := factory.MediaFields{
		ID:         media["id"],
		Code:       media["shortcode"],
		IsVideo:    media["is_video"],
		DisplayURL: media["display_url"],
		VideoURL:   media["video_url"],
		Views:      media["video_view_count"],
		Width:      lookup(media, "dimensions", "width"),
		Height:     lookup(media, "dimensions", "height"),
		Created:    media["taken_at_timestamp"],
		Likes: first(
			lookup(media, "edge_media_preview_like", "count"),
			lookup(media, "edge_liked_by", "count"),
		),
		Comments: first(
			lookup(media, "edge_media_to_comment", "count"),
			lookup(media, "edge_media_to_parent_comment", "count"),
		),
		IsAd:    media["is_ad"],
		Caption: caption,
	}
	if owner, ok := media["owner"].(map[string]any); ok {
		user := graphqlUser(owner)
		fields.Owner = &user
	}
	if location, ok := media["location"].(map[string]any); ok {
		l := graphqlLocation(location)
		fields.Location = &l
	}

	return fields
}

// Listing implements Adapter
func (g GraphQL) Listing(doc Document, r Resource) Listing {
	edge, ok := graphqlEdges[r]
	if !ok {
		return Listing{Codes: []string{}}
	}
	media := object(g.root(doc, r), edge)
	listing := Listing{
		Codes:     codes(array(media, "edges"), "node", "shortcode"),
		Paginated: true,
	}
	if cursor, ok := lookup(media, "page_info", "end_cursor").(string); ok {
		listing.EndCursor = cursor
	}
	if next, ok := lookup(media, "page_info", "has_next_page").(bool); ok {
		listing.HasNextPage = next
	}
	return listing
}

func graphqlLocation(location map[string]any) factory.LocationFields {
	return factory.LocationFields{
		ID:        location["id"],
		Name:      location["name"],
		Slug:      location["slug"],
		Latitude:  location["lat"],
		Longitude: location["lng"],
	}
}

func graphqlUser(user map[string]any) factory.UserFields {
	return factory.UserFields{
		ID:         user["id"],
		Username:   user["username"],
		Picture:    first(user["profile_pic_url"], user["profile_pic_url_hd"]),
		Name:       user["full_name"],
		Private:    user["is_private"],
		Verified:   user["is_verified"],
		Biography:  user["biography"],
		Website:    user["external_url"],
		Followers:  lookup(user, "edge_followed_by", "count"),
		Follows:    lookup(user, "edge_follow", "count"),
		MediaCount: lookup(user, "edge_owner_to_timeline_media", "count"),
	}
}
