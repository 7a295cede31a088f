// Package schema isolates the upstream payload formats from the rest of the
// crawler.
//
// A response is decoded once into a Document. The Registry then asks its
// adapters in turn for the envelope of the requested resource and the first match
// maps the payload onto the loosely-typed field sets of pkg/factory. Two
// envelopes are known:
//
//   - Legacy: flat top-level "tag", "user", "location" or "media" objects
//     with "nodes" and "count" substructures.
//   - GraphQL: "graphql.hashtag", "graphql.user", "graphql.location" or
//     "graphql.shortcode_media" with "edges", "edge_*" and "page_info".
//
// Adapters only copy values; coercion and required-field checks happen in
// the factories. Supporting a third variant means registering another
// Adapter.
package schema

import (
	"fmt"

	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/factory"
)

// Resource is a kind of upstream page
type Resource string

const (
	ResourceTag      Resource = "tag"
	ResourceLocation Resource = "location"
	ResourceUser     Resource = "user"
	ResourceMedia    Resource = "media"
	ResourceSearch   Resource = "search"
)

// IsListing reports whether pages of this resource list media
func (r Resource) IsListing() bool {
	switch r {
	case ResourceTag, ResourceLocation, ResourceUser:
		return true
	}
	return false
}

// Listing is the media list of a tag, location or user page
type Listing struct {
	Codes []string
	// Paginated is set when the envelope carries page_info.
	Paginated   bool
	EndCursor   string
	HasNextPage bool
}

// Adapter maps one envelope onto factory field sets
type Adapter interface {
	Name() string
	// Matches reports whether doc carries this envelope for r
	Matches(doc Document, r Resource) bool
	Tag(doc Document) factory.TagFields
	Location(doc Document) factory.LocationFields
	User(doc Document) factory.UserFields
	Media(doc Document) factory.MediaFields
	Listing(doc Document, r Resource) Listing
}

// Registry selects the adapter for a document
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry trying adapters in the given order
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// DefaultRegistry tries the GraphQL envelope first, then the legacy one
func DefaultRegistry() *Registry {
	return NewRegistry(GraphQL{}, Legacy{})
}

// Register appends an adapter. It must not be called while documents are
// being detected.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Detect returns the first adapter whose envelope is present in doc
func (r *Registry) Detect(doc Document, res Resource) (Adapter, error) {
	for _, a := range r.adapters {
		if a.Matches(doc, res) {
			return a, nil
		}
	}
	return nil, igerrors.MalformedResponse(fmt.Sprintf("no known envelope for %s", res), nil)
}

// codes collects the shortcodes of a node list, skipping nodes without one
func codes(nodes []any, path ...string) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if code, ok := lookup(n, path...).(string); ok && code != "" {
			out = append(out, code)
		}
	}
	return out
}
