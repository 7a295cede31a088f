package factory

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/models"
)

func strPtr(s string) *string { return &s }

func owner() *UserFields {
	return &UserFields{
		ID:       "1",
		Username: "a",
		Picture:  "u",
		Name:     nil,
		Private:  false,
	}
}

func requireMismatch(t *testing.T, err error, entity, field string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, igerrors.ErrSchemaMismatch), "got %v", err)
	var igErr *igerrors.Error
	require.ErrorAs(t, err, &igErr)
	assert.Equal(t, entity, igErr.Entity)
	assert.Equal(t, field, igErr.Field)
}

func TestNewTag(t *testing.T) {
	tag, err := NewTag(TagFields{Name: "taipei", Count: json.Number("9000000")})
	require.NoError(t, err)
	assert.Equal(t, models.Tag{Name: "taipei", Count: 9000000}, tag)

	tag, err = NewTag(TagFields{Name: "php"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), tag.Count)

	_, err = NewTag(TagFields{Count: 3.0})
	requireMismatch(t, err, EntityTag, "name")
}

func TestNewLocationCoordinate(t *testing.T) {
	tests := []struct {
		name      string
		lat, lng  any
		wantCoord *models.Coordinate
	}{
		{"absent", nil, nil, nil},
		{"zero numbers", 0.0, 0.0, nil},
		{"zero strings", "0", "0", nil},
		{"empty strings", "", "", nil},
		{"only latitude", -8.67597444337, nil, nil},
		{"only longitude", nil, -35.5767717627, nil},
		{"numbers", -8.67597444337, -35.5767717627, &models.Coordinate{Latitude: -8.67597444337, Longitude: -35.5767717627}},
		{"json numbers", json.Number("25.0330"), json.Number("121.5654"), &models.Coordinate{Latitude: 25.0330, Longitude: 121.5654}},
		{"numeric strings", "25.0330", "121.5654", &models.Coordinate{Latitude: 25.0330, Longitude: 121.5654}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := NewLocation(LocationFields{
				ID:        "225963881",
				Name:      "Recife - Pernambuco",
				Slug:      "recife-pernambuco",
				Latitude:  tt.lat,
				Longitude: tt.lng,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(225963881), loc.ID)
			assert.Equal(t, tt.wantCoord != nil, loc.HasCoordinate())
			if diff := cmp.Diff(tt.wantCoord, loc.Coordinate); diff != "" {
				t.Errorf("coordinate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewLocationRequiredFields(t *testing.T) {
	_, err := NewLocation(LocationFields{Name: "x"})
	requireMismatch(t, err, EntityLocation, "id")

	_, err = NewLocation(LocationFields{ID: 1})
	requireMismatch(t, err, EntityLocation, "name")
}

func TestNewUser(t *testing.T) {
	user, err := NewUser(UserFields{
		ID:         json.Number("204496727"),
		Username:   "jamersonweb",
		Picture:    "http://pic",
		Name:       "Jamerson Silva",
		Private:    false,
		Verified:   false,
		Biography:  "bio",
		Website:    "",
		Followers:  json.Number("10"),
		Follows:    "20",
		MediaCount: 30.0,
	})
	require.NoError(t, err)

	want := models.User{
		ID:       204496727,
		Username: "jamersonweb",
		Picture:  "http://pic",
		Name:     strPtr("Jamerson Silva"),
		Profile: models.Profile{
			Verified:   models.NewOptionalBool(false),
			Biography:  strPtr("bio"),
			Website:    strPtr(""),
			Followers:  10,
			Follows:    20,
			MediaCount: 30,
		},
	}
	if diff := cmp.Diff(want, user, cmp.AllowUnexported(models.OptionalBool{})); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	verified, err := user.Profile.IsVerified()
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestNewUserDefaults(t *testing.T) {
	user, err := NewUser(*owner())
	require.NoError(t, err)

	assert.Nil(t, user.Name)
	assert.False(t, user.Profile.Private)
	assert.Equal(t, int64(0), user.Profile.Followers)
	_, err = user.Profile.IsVerified()
	assert.True(t, errors.Is(err, igerrors.ErrUnknownProfileState))
}

func TestNewUserRequiredFields(t *testing.T) {
	_, err := NewUser(UserFields{Username: "a", Picture: "u"})
	requireMismatch(t, err, EntityUser, "id")

	_, err = NewUser(UserFields{ID: 1, Picture: "u"})
	requireMismatch(t, err, EntityUser, "username")

	_, err = NewUser(UserFields{ID: 1, Username: "a"})
	requireMismatch(t, err, EntityUser, "profile_pic_url")
}

func TestNewUserRejectsOutOfRangeIDs(t *testing.T) {
	for _, id := range []any{
		json.Number("99999999999999999999"),
		json.Number("-99999999999999999999"),
		"9.3e18",
		9.3e18,
		math.Inf(1),
		math.NaN(),
		uint64(math.MaxUint64),
	} {
		_, err := NewUser(UserFields{ID: id, Username: "a", Picture: "u"})
		requireMismatch(t, err, EntityUser, "id")
	}
}

func TestToInt64Bounds(t *testing.T) {
	n, ok := toInt64(json.Number("-9223372036854775808"))
	require.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), n)

	n, ok = toInt64(json.Number("1.5e3"))
	require.True(t, ok)
	assert.Equal(t, int64(1500), n)

	_, ok = toInt64(json.Number("9223372036854775808"))
	assert.False(t, ok)
	_, ok = toInt64(float32(math.Inf(-1)))
	assert.False(t, ok)

	assert.Equal(t, int64(0), toCount(json.Number("99999999999999999999")))
}

func TestNewUserKeepsLargeIDs(t *testing.T) {
	user, err := NewUser(UserFields{ID: json.Number("1733363628813438621"), Username: "a", Picture: "u"})
	require.NoError(t, err)
	assert.Equal(t, int64(1733363628813438621), user.ID)
}

func TestNewMediaPhoto(t *testing.T) {
	m, err := NewMedia(MediaFields{
		ID:         "123",
		Code:       "abc",
		IsVideo:    false,
		DisplayURL: "http://x",
		Width:      json.Number("10"),
		Height:     json.Number("20"),
		Created:    json.Number("1000"),
		Likes:      json.Number("5"),
		Comments:   json.Number("2"),
		IsAd:       false,
		Caption:    nil,
		Owner:      owner(),
	})
	require.NoError(t, err)

	photo, ok := m.(models.Photo)
	require.True(t, ok, "expected a photo, got %T", m)
	assert.Equal(t, int64(123), photo.ID)
	assert.Equal(t, "abc", photo.Code)
	assert.Equal(t, "http://x", photo.URL)
	assert.Equal(t, models.Dimension{Width: 10, Height: 20}, photo.Dimension)
	assert.Equal(t, time.Unix(1000, 0).UTC(), photo.Created)
	assert.Nil(t, photo.Location)
	assert.NotNil(t, photo.Tags)
	assert.Empty(t, photo.Tags)
	assert.Equal(t, int64(5), photo.Likes)
	assert.Equal(t, int64(2), photo.Comments)
	assert.False(t, photo.IsAd)
	assert.Nil(t, photo.Caption)
	assert.Equal(t, int64(1), photo.Owner.ID)
}

func TestNewMediaVideo(t *testing.T) {
	m, err := NewMedia(MediaFields{
		ID:         json.Number("1733363628813438621"),
		Code:       "BgWhnmalRwU",
		IsVideo:    true,
		DisplayURL: "http://thumb",
		VideoURL:   "http://video",
		Views:      json.Number("42"),
		Width:      640,
		Height:     640,
		Created:    1500000000,
		Caption:    "#30 Fairy #fairy #30",
		Owner:      owner(),
		Location:   &LocationFields{ID: "7", Name: "Recife", Slug: "recife"},
	})
	require.NoError(t, err)

	video, ok := m.(models.Video)
	require.True(t, ok, "expected a video, got %T", m)
	assert.Equal(t, int64(1733363628813438621), video.ID)
	assert.Equal(t, "http://video", video.URL)
	assert.Equal(t, "http://thumb", video.ThumbnailURL)
	assert.Equal(t, int64(42), video.ViewCount)
	assert.Equal(t, []models.Tag{{Name: "30"}, {Name: "fairy"}}, video.Tags)
	require.NotNil(t, video.Location)
	assert.Equal(t, int64(7), video.Location.ID)
	assert.False(t, video.Location.HasCoordinate())
}

func TestNewMediaRequiredFields(t *testing.T) {
	base := func() MediaFields {
		return MediaFields{
			ID: "1", Code: "c", DisplayURL: "u", Width: 1, Height: 1, Created: 1, Owner: owner(),
		}
	}

	tests := []struct {
		field  string
		mutate func(f *MediaFields)
		entity string
	}{
		{"id", func(f *MediaFields) { f.ID = nil }, EntityMedia},
		{"code", func(f *MediaFields) { f.Code = "" }, EntityMedia},
		{"display_url", func(f *MediaFields) { f.DisplayURL = nil }, EntityMedia},
		{"video_url", func(f *MediaFields) { f.IsVideo = true }, EntityMedia},
		{"dimensions.width", func(f *MediaFields) { f.Width = nil }, EntityMedia},
		{"date", func(f *MediaFields) { f.Created = nil }, EntityMedia},
		{"owner", func(f *MediaFields) { f.Owner = nil }, EntityMedia},
		{"username", func(f *MediaFields) { f.Owner.Username = nil }, EntityUser},
		{"name", func(f *MediaFields) { f.Location = &LocationFields{ID: 1} }, EntityLocation},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := base()
			tt.mutate(&f)
			_, err := NewMedia(f)
			requireMismatch(t, err, tt.entity, tt.field)
		})
	}
}

func TestCountsNeverNegative(t *testing.T) {
	m, err := NewMedia(MediaFields{
		ID: "1", Code: "c", DisplayURL: "u", Width: 1, Height: 1, Created: 1, Owner: owner(),
		Likes: -4, Comments: "nope",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Details().Likes)
	assert.Equal(t, int64(0), m.Details().Comments)
}
