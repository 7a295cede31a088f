// Package factory builds domain entities from loosely-typed field sets.
//
// Schema adapters copy values out of a decoded payload into the *Fields
// structs without interpreting them. The factories own every coercion and
// every required-field check, so upstream schema drift surfaces here as a
// SchemaMismatch naming the entity and the field.
package factory

import (
	"time"

	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/hashtag"
	"igcrawler/pkg/models"
)

// Entity names used in SchemaMismatch errors
const (
	EntityTag      = "tag"
	EntityLocation = "location"
	EntityUser     = "user"
	EntityMedia    = "media"
)

// TagFields are the raw attributes of a hashtag
type TagFields struct {
	Name  any
	Count any
}

// LocationFields are the raw attributes of a location
type LocationFields struct {
	ID        any
	Name      any
	Slug      any
	Latitude  any
	Longitude any
}

// UserFields are the raw attributes of a user. Only ID, Username and
// Picture are required; the rest default when absent.
type UserFields struct {
	ID         any
	Username   any
	Picture    any
	Name       any
	Private    any
	Verified   any
	Biography  any
	Website    any
	Followers  any
	Follows    any
	MediaCount any
}

// MediaFields are the raw attributes of a photo or video
type MediaFields struct {
	ID      any
	Code    any
	IsVideo any
	// DisplayURL is the image url. For videos it becomes the thumbnail.
	DisplayURL any
	VideoURL   any
	Views      any
	Width      any
	Height     any
	Created    any
	Likes      any
	Comments   any
	IsAd       any
	Caption    any
	Owner      *UserFields
	Location   *LocationFields
}

// NewTag builds a Tag
func NewTag(f TagFields) (models.Tag, error) {
	name, ok := toString(f.Name)
	if !ok {
		return models.Tag{}, igerrors.SchemaMismatch(EntityTag, "name")
	}
	return models.Tag{Name: name, Count: toCount(f.Count)}, nil
}

// NewLocation builds a Location. The coordinate is only set when both
// latitude and longitude are truthy, so absent data never turns into a
// Coordinate at 0,0.
func NewLocation(f LocationFields) (models.Location, error) {
	id, ok := toInt64(f.ID)
	if !ok {
		return models.Location{}, igerrors.SchemaMismatch(EntityLocation, "id")
	}
	name, ok := toString(f.Name)
	if !ok {
		return models.Location{}, igerrors.SchemaMismatch(EntityLocation, "name")
	}
	slug, _ := toString(f.Slug)

	location := models.Location{ID: id, Name: name, Slug: slug}
	if truthy(f.Latitude) && truthy(f.Longitude) {
		lat, latOK := toFloat(f.Latitude)
		lng, lngOK := toFloat(f.Longitude)
		if latOK && lngOK {
			location.Coordinate = &models.Coordinate{Latitude: lat, Longitude: lng}
		}
	}

	return location, nil
}

// NewUser builds a User with its Profile
func NewUser(f UserFields) (models.User, error) {
	id, ok := toInt64(f.ID)
	if !ok {
		return models.User{}, igerrors.SchemaMismatch(EntityUser, "id")
	}
	username, ok := toString(f.Username)
	if !ok {
		return models.User{}, igerrors.SchemaMismatch(EntityUser, "username")
	}
	picture, ok := toString(f.Picture)
	if !ok {
		return models.User{}, igerrors.SchemaMismatch(EntityUser, "profile_pic_url")
	}

	profile := models.Profile{
		Biography:  toOptionalString(f.Biography),
		Website:    toOptionalString(f.Website),
		Followers:  toCount(f.Followers),
		Follows:    toCount(f.Follows),
		MediaCount: toCount(f.MediaCount),
	}
	if private, ok := toBool(f.Private); ok {
		profile.Private = private
	}
	if verified, ok := toBool(f.Verified); ok {
		profile.Verified = models.NewOptionalBool(verified)
	}

	return models.User{
		ID:       id,
		Username: username,
		Picture:  picture,
		Name:     toOptionalString(f.Name),
		Profile:  profile,
	}, nil
}

// NewMedia builds a Photo, or a Video when IsVideo is truthy. Tags are
// extracted from the caption.
func NewMedia(f MediaFields) (models.Media, error) {
	post, err := newPost(f)
	if err != nil {
		return nil, err
	}

	isVideo, _ := toBool(f.IsVideo)
	if !isVideo {
		url, ok := toString(f.DisplayURL)
		if !ok {
			return nil, igerrors.SchemaMismatch(EntityMedia, "display_url")
		}
		post.URL = url
		return models.Photo{Post: post}, nil
	}

	url, ok := toString(f.VideoURL)
	if !ok {
		return nil, igerrors.SchemaMismatch(EntityMedia, "video_url")
	}
	post.URL = url
	thumb, _ := toString(f.DisplayURL)

	return models.Video{
		Post:         post,
		ThumbnailURL: thumb,
		ViewCount:    toCount(f.Views),
	}, nil
}

func newPost(f MediaFields) (models.Post, error) {
	id, ok := toInt64(f.ID)
	if !ok {
		return models.Post{}, igerrors.SchemaMismatch(EntityMedia, "id")
	}
	code, ok := toString(f.Code)
	if !ok {
		return models.Post{}, igerrors.SchemaMismatch(EntityMedia, "code")
	}
	width, ok := toInt64(f.Width)
	if !ok {
		return models.Post{}, igerrors.SchemaMismatch(EntityMedia, "dimensions.width")
	}
	height, ok := toInt64(f.Height)
	if !ok {
		return models.Post{}, igerrors.SchemaMismatch(EntityMedia, "dimensions.height")
	}
	created, ok := toInt64(f.Created)
	if !ok {
		return models.Post{}, igerrors.SchemaMismatch(EntityMedia, "date")
	}
	if f.Owner == nil {
		return models.Post{}, igerrors.SchemaMismatch(EntityMedia, "owner")
	}
	owner, err := NewUser(*f.Owner)
	if err != nil {
		return models.Post{}, err
	}

	var location *models.Location
	if f.Location != nil {
		l, err := NewLocation(*f.Location)
		if err != nil {
			return models.Post{}, err
		}
		location = &l
	}

	caption := toOptionalString(f.Caption)
	tags := []models.Tag{}
	if caption != nil {
		tags = hashtag.Extract(*caption)
	}
	isAd, _ := toBool(f.IsAd)

	return models.Post{
		ID:        id,
		Code:      code,
		Dimension: models.Dimension{Width: int(width), Height: int(height)},
		Created:   time.Unix(created, 0).UTC(),
		Owner:     owner,
		Tags:      tags,
		Likes:     toCount(f.Likes),
		Comments:  toCount(f.Comments),
		IsAd:      isAd,
		Caption:   caption,
		Location:  location,
	}, nil
}
