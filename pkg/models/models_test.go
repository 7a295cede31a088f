package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igerrors "igcrawler/pkg/errors"
)

func TestProfileVerifiedTriState(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		p := Profile{}
		_, err := p.IsVerified()
		assert.True(t, errors.Is(err, igerrors.ErrUnknownProfileState))
	})

	t.Run("known false", func(t *testing.T) {
		p := Profile{Verified: NewOptionalBool(false)}
		v, err := p.IsVerified()
		require.NoError(t, err)
		assert.False(t, v)
	})

	t.Run("known true", func(t *testing.T) {
		p := Profile{Verified: NewOptionalBool(true)}
		v, err := p.IsVerified()
		require.NoError(t, err)
		assert.True(t, v)
	})
}

func TestOptionalBoolJSON(t *testing.T) {
	out, err := json.Marshal(Profile{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"verified":null`)

	out, err = json.Marshal(Profile{Verified: NewOptionalBool(false)})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"verified":false`)
}

func TestLocationHasCoordinate(t *testing.T) {
	assert.False(t, Location{ID: 1}.HasCoordinate())
	assert.True(t, Location{ID: 1, Coordinate: &Coordinate{Latitude: -8.6, Longitude: -35.5}}.HasCoordinate())
}

func TestMediaVariants(t *testing.T) {
	post := Post{ID: 1, Code: "abc", Created: time.Unix(1000, 0).UTC()}

	var m Media = Photo{Post: post}
	assert.Equal(t, MediaTypePhoto, m.Type())
	assert.Equal(t, "abc", m.Details().Code)

	m = Video{Post: post, ThumbnailURL: "http://thumb", ViewCount: 7}
	assert.Equal(t, MediaTypeVideo, m.Type())
	assert.Equal(t, "abc", m.Details().Code)

	v, ok := m.(Video)
	require.True(t, ok)
	assert.Equal(t, int64(7), v.ViewCount)
}
