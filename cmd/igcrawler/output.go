package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"igcrawler/pkg/config"
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/models"
)

// printer renders results in the configured format
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: resolveFormat(format, w)}
}

// resolveFormat picks table for a terminal and json otherwise when format
// is auto.
func resolveFormat(format string, w io.Writer) string {
	format = strings.ToLower(format)
	if format != config.FormatAuto && format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return config.FormatTable
	}
	return config.FormatJSON
}

// mediaRecord flattens a Media variant for json and yaml
type mediaRecord struct {
	Type         models.MediaType `json:"type" yaml:"type"`
	models.Post  `yaml:",inline"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	ViewCount    int64  `json:"view_count,omitempty" yaml:"view_count,omitempty"`
	// Permalink is the public page of the post, URL being its display image.
	Permalink string `json:"permalink" yaml:"permalink"`
}

func newMediaRecord(m models.Media) mediaRecord {
	rec := mediaRecord{Type: m.Type(), Post: m.Details()}
	rec.Permalink = instagram.PostURL(rec.Code)
	if v, ok := m.(models.Video); ok {
		rec.ThumbnailURL = v.ThumbnailURL
		rec.ViewCount = v.ViewCount
	}
	return rec
}

// encode writes v as json or yaml. It reports false for the table format.
func (p *printer) encode(v any) (bool, error) {
	switch p.format {
	case config.FormatJSON:
		data, err := sonic.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return true, err
	case config.FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return true, enc.Close()
	}
	return false, nil
}

func (p *printer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle("%s", title)
	}
	return t
}

// Media prints media records
func (p *printer) Media(media []models.Media) error {
	records := make([]mediaRecord, 0, len(media))
	for _, m := range media {
		records = append(records, newMediaRecord(m))
	}
	if done, err := p.encode(records); done {
		return err
	}

	t := p.newTable("")
	t.AppendHeader(table.Row{"Code", "Link", "Type", "Owner", "Likes", "Comments", "Created", "Tags"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Code,
			r.Permalink,
			r.Type,
			r.Owner.Username,
			r.Likes,
			r.Comments,
			r.Created.Format(time.DateTime),
			tagList(r.Tags),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(records)})
	t.Render()
	return nil
}

// User prints one profile as field/value rows
func (p *printer) User(user models.User) error {
	if done, err := p.encode(user); done {
		return err
	}

	t := p.newTable("@" + user.Username)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"ID", user.ID},
		{"Name", optional(user.Name)},
		{"Private", user.Profile.Private},
		{"Verified", verifiedText(user.Profile)},
		{"Followers", user.Profile.Followers},
		{"Follows", user.Profile.Follows},
		{"Media", user.Profile.MediaCount},
		{"Biography", optional(user.Profile.Biography)},
		{"Website", optional(user.Profile.Website)},
		{"Picture", user.Picture},
		{"Profile", instagram.ProfileURL(user.Username)},
	})
	t.Render()
	return nil
}

// Tags prints hashtags
func (p *printer) Tags(tags []models.Tag) error {
	if done, err := p.encode(tags); done {
		return err
	}
	p.tagTable("", tags).Render()
	return nil
}

// Locations prints locations
func (p *printer) Locations(locations []models.Location) error {
	if done, err := p.encode(locations); done {
		return err
	}
	p.locationTable("", locations).Render()
	return nil
}

// Search prints the three result lists as separate tables
func (p *printer) Search(result models.SearchResult) error {
	if done, err := p.encode(result); done {
		return err
	}

	p.tagTable("Tags", result.Tags).Render()
	p.locationTable("Locations", result.Locations).Render()

	t := p.newTable("Users")
	t.AppendHeader(table.Row{"ID", "Username", "Name", "Verified", "Followers"})
	for _, u := range result.Users {
		t.AppendRow(table.Row{u.ID, u.Username, optional(u.Name), verifiedText(u.Profile), u.Profile.Followers})
	}
	t.Render()
	return nil
}

func (p *printer) tagTable(title string, tags []models.Tag) table.Writer {
	t := p.newTable(title)
	t.AppendHeader(table.Row{"Name", "Count"})
	for _, tag := range tags {
		t.AppendRow(table.Row{"#" + tag.Name, tag.Count})
	}
	return t
}

func (p *printer) locationTable(title string, locations []models.Location) table.Writer {
	t := p.newTable(title)
	t.AppendHeader(table.Row{"ID", "Name", "Slug", "Latitude", "Longitude"})
	for _, l := range locations {
		lat, lng := "-", "-"
		if l.HasCoordinate() {
			lat = strconv.FormatFloat(l.Coordinate.Latitude, 'f', -1, 64)
			lng = strconv.FormatFloat(l.Coordinate.Longitude, 'f', -1, 64)
		}
		t.AppendRow(table.Row{l.ID, l.Name, l.Slug, lat, lng})
	}
	return t
}

func tagList(tags []models.Tag) string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, "#"+tag.Name)
	}
	return strings.Join(names, " ")
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func verifiedText(p models.Profile) string {
	verified, err := p.IsVerified()
	if err != nil {
		return "unknown"
	}
	return strconv.FormatBool(verified)
}
