package instagram

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the public web address of Instagram
	BaseURL = "https://www.instagram.com"

	// SearchEndpoint is the blended top search path
	SearchEndpoint = "/web/search/topsearch"

	// SearchContext restricts top search to tags, places and users
	SearchContext = "blended"

	// CursorParam carries the continuation cursor of an armed listing fetch
	CursorParam = "max_id"

	// maxUsernameLength is Instagram's limit on username length
	maxUsernameLength = 30
)

// DefaultQuery is sent with every request so pages answer with JSON
var DefaultQuery = map[string]string{"__a": "1"}

// TagPath returns the listing path of a hashtag
func TagPath(name string) string {
	return fmt.Sprintf("/explore/tags/%s", url.PathEscape(name))
}

// LocationPath returns the listing path of a location
func LocationPath(id int64) string {
	return fmt.Sprintf("/explore/locations/%d", id)
}

// UserPath returns the profile path of a user
func UserPath(username string) string {
	return "/" + url.PathEscape(username)
}

// MediaPath returns the page path of a post
func MediaPath(code string) string {
	return "/p/" + url.PathEscape(code)
}

// SearchQuery returns the query parameters of a blended search
func SearchQuery(query string) url.Values {
	return url.Values{
		"query":   {query},
		"context": {SearchContext},
	}
}

// PostURL returns the public web address of a post
func PostURL(code string) string {
	if code == "" {
		return ""
	}
	return BaseURL + MediaPath(code)
}

// ProfileURL returns the public web address of a user
func ProfileURL(username string) string {
	if username == "" {
		return ""
	}
	return BaseURL + UserPath(username)
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > maxUsernameLength {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces, as
// left by copying a handle or profile link.
func SanitizeUsername(username string) string {
	username = strings.TrimPrefix(username, "@")
	return strings.TrimRight(username, "/ ")
}

func locationKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
