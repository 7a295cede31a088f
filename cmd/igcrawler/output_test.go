package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcrawler/pkg/config"
	"igcrawler/pkg/models"
)

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, config.FormatJSON, resolveFormat(config.FormatAuto, &buf))
	assert.Equal(t, config.FormatJSON, resolveFormat("", &buf))
	assert.Equal(t, config.FormatTable, resolveFormat("TABLE", &buf))
	assert.Equal(t, config.FormatYAML, resolveFormat(config.FormatYAML, &buf))
}

func TestMediaRecordFlattensVideo(t *testing.T) {
	video := models.Video{
		Post:         models.Post{Code: "VID", Created: time.Unix(0, 0).UTC()},
		ThumbnailURL: "https://cdn.example/t.jpg",
		ViewCount:    12,
	}

	var buf bytes.Buffer
	p := newPrinter(&buf, config.FormatYAML)
	require.NoError(t, p.Media([]models.Media{video}))

	out := buf.String()
	assert.Contains(t, out, "type: video")
	assert.Contains(t, out, "code: VID")
	assert.Contains(t, out, "view_count: 12")
	assert.Contains(t, out, "permalink: https://www.instagram.com/p/VID")
	assert.NotContains(t, out, "post:")
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, config.FormatTable)

	require.NoError(t, p.Locations([]models.Location{
		{ID: 1, Name: "Nowhere"},
		{ID: 2, Name: "Taipei 101", Coordinate: &models.Coordinate{Latitude: 25.0339, Longitude: 121.5645}},
	}))
	out := buf.String()
	assert.Contains(t, out, "Nowhere")
	assert.Contains(t, out, "25.0339")

	buf.Reset()
	require.NoError(t, p.User(models.User{ID: 5, Username: "gopher"}))
	out = buf.String()
	assert.Contains(t, out, "@gopher")
	assert.Contains(t, out, "unknown")
	assert.Contains(t, out, "https://www.instagram.com/gopher")

	buf.Reset()
	require.NoError(t, p.Media([]models.Media{models.Photo{Post: models.Post{
		Code: "A1",
		Tags: []models.Tag{{Name: "go"}, {Name: "gopher"}},
	}}}))
	assert.Contains(t, buf.String(), "#go #gopher")
	assert.Contains(t, buf.String(), "https://www.instagram.com/p/A1")
}
