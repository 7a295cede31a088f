// Package instagram fetches public Instagram pages and normalizes them into
// the models package entities.
//
// A Client is built over a transport.Transport that already carries the
// base URL and the default query. Single-resource operations (Media, User,
// Location, Tag, Search) return every failure unchanged; the listing
// operations (MediaByTag, MediaByLocation, MediaByUser) resolve the listed
// shortcodes concurrently and leave out the ones that fail.
//
//	t := transport.NewHTTP(transport.Options{
//	    BaseURL:      instagram.BaseURL,
//	    DefaultQuery: instagram.DefaultQuery,
//	})
//	client := instagram.NewClient(t, log)
//
//	media, err := client.MediaByTag(ctx, "golang")
//	if client.NextPage() {
//	    more, err := client.MediaByTag(ctx, "golang")
//	}
//
// Paginated (GraphQL) listings record a Cursor. NextPage arms it for the
// next fetch of the same listing, which sends it as max_id.
package instagram
