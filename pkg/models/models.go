// Package models holds the normalized Instagram domain entities.
//
// Entities are built once by pkg/factory and handed to callers by value.
// Optional attributes are pointers (nil means the upstream payload did not
// supply them) and Profile verification is tri-state, see OptionalBool.
package models

import (
	"encoding/json"
	"time"

	igerrors "igcrawler/pkg/errors"
)

// MediaType distinguishes the Media variants
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// Tag is a hashtag. Count is zero when it is unknown, e.g. for tags parsed
// out of a caption.
type Tag struct {
	Name  string `json:"name" yaml:"name"`
	Count int64  `json:"count" yaml:"count"`
}

// Dimension is the pixel size of a media item
type Dimension struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Coordinate is a latitude/longitude pair
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Location is a place media can be tagged with
type Location struct {
	ID         int64       `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Slug       string      `json:"slug" yaml:"slug"`
	Coordinate *Coordinate `json:"coordinate,omitempty" yaml:"coordinate,omitempty"`
}

// HasCoordinate reports whether the location carries a coordinate pair
func (l Location) HasCoordinate() bool {
	return l.Coordinate != nil
}

// OptionalBool is a boolean that may never have been supplied.
type OptionalBool struct {
	value bool
	set   bool
}

// NewOptionalBool returns a known boolean
func NewOptionalBool(v bool) OptionalBool {
	return OptionalBool{value: v, set: true}
}

// Get returns the value and whether it is known
func (o OptionalBool) Get() (bool, bool) {
	return o.value, o.set
}

// MarshalJSON encodes an unknown value as null
func (o OptionalBool) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// MarshalYAML encodes an unknown value as null
func (o OptionalBool) MarshalYAML() (interface{}, error) {
	if !o.set {
		return nil, nil
	}
	return o.value, nil
}

// Profile holds the public profile attributes of a user
type Profile struct {
	Private    bool         `json:"private" yaml:"private"`
	Verified   OptionalBool `json:"verified" yaml:"verified"`
	Biography  *string      `json:"biography,omitempty" yaml:"biography,omitempty"`
	Website    *string      `json:"website,omitempty" yaml:"website,omitempty"`
	Followers  int64        `json:"followers" yaml:"followers"`
	Follows    int64        `json:"follows" yaml:"follows"`
	MediaCount int64        `json:"media_count" yaml:"media_count"`
}

// IsVerified returns the verification flag. It fails with
// ErrUnknownProfileState when the payload never established it; an unknown
// state is not reported as false.
func (p Profile) IsVerified() (bool, error) {
	v, ok := p.Verified.Get()
	if !ok {
		return false, igerrors.ErrUnknownProfileState
	}
	return v, nil
}

// User is an Instagram account
type User struct {
	ID       int64   `json:"id" yaml:"id"`
	Username string  `json:"username" yaml:"username"`
	Picture  string  `json:"picture" yaml:"picture"`
	Name     *string `json:"name,omitempty" yaml:"name,omitempty"`
	Profile  Profile `json:"profile" yaml:"profile"`
}

// Post holds the attributes shared by every media variant
type Post struct {
	ID        int64     `json:"id" yaml:"id"`
	Code      string    `json:"code" yaml:"code"`
	URL       string    `json:"url" yaml:"url"`
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Created   time.Time `json:"created" yaml:"created"`
	Owner     User      `json:"owner" yaml:"owner"`
	// Tags are parsed from the caption, in order of first occurrence.
	Tags     []Tag     `json:"tags" yaml:"tags"`
	Likes    int64     `json:"likes" yaml:"likes"`
	Comments int64     `json:"comments" yaml:"comments"`
	IsAd     bool      `json:"is_ad" yaml:"is_ad"`
	Caption  *string   `json:"caption,omitempty" yaml:"caption,omitempty"`
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
}

// Media is either a Photo or a Video
type Media interface {
	Type() MediaType
	Details() Post
}

// Photo is an image post
type Photo struct {
	Post `yaml:",inline"`
}

// Type implements Media
func (p Photo) Type() MediaType { return MediaTypePhoto }

// Details implements Media
func (p Photo) Details() Post { return p.Post }

// Video is a video post. URL points at the video stream.
type Video struct {
	Post         `yaml:",inline"`
	ThumbnailURL string `json:"thumbnail_url" yaml:"thumbnail_url"`
	ViewCount    int64  `json:"view_count" yaml:"view_count"`
}

// Type implements Media
func (v Video) Type() MediaType { return MediaTypeVideo }

// Details implements Media
func (v Video) Details() Post { return v.Post }

// SearchResult is a blended search response split by kind. Each list keeps
// the upstream order.
type SearchResult struct {
	Tags      []Tag      `json:"tags" yaml:"tags"`
	Locations []Location `json:"locations" yaml:"locations"`
	Users     []User     `json:"users" yaml:"users"`
}
