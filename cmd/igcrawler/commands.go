package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"igcrawler/pkg/models"
)

// listOptions are the flags of the commands backed by a media listing
type listOptions struct {
	media bool
	pages int
}

func (o *listOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.media, "media", false, "list the media of the page instead of the page itself")
	cmd.Flags().IntVar(&o.pages, "pages", 1, "number of listing pages to follow with --media")
}

func (a *app) mediaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "media <code>...",
		Short: "Show posts by shortcode",
		Long: `Show one or more posts by their shortcode, the identifier in
https://www.instagram.com/p/<code>/.

A single code fails on any error. Several codes are fetched concurrently and
the ones that cannot be fetched are left out.`,
		Example: `  igcrawler media CkD3pQ0LxYz
  igcrawler media CkD3pQ0LxYz Bx2aBcdEfGh -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				media, err := a.client.Media(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printer.Media([]models.Media{media})
			}
			return a.printer.Media(a.client.MediaByCodes(cmd.Context(), args))
		},
	}
}

func (a *app) userCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Show a user profile or its recent media",
		Example: `  igcrawler user natgeo
  igcrawler user @natgeo --media --pages 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if opts.media {
				return a.listMedia(cmd.Context(), opts, func(ctx context.Context) ([]models.Media, error) {
					return a.client.MediaByUser(ctx, username)
				})
			}
			user, err := a.client.User(cmd.Context(), username)
			if err != nil {
				return err
			}
			return a.printer.User(user)
		},
	}
	opts.register(cmd)
	return cmd
}

func (a *app) locationCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "location <id>",
		Short: "Show a location or the media tagged with it",
		Example: `  igcrawler location 212988663
  igcrawler location 212988663 --media`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid location id %q: %w", args[0], err)
			}
			if opts.media {
				return a.listMedia(cmd.Context(), opts, func(ctx context.Context) ([]models.Media, error) {
					return a.client.MediaByLocation(ctx, id)
				})
			}
			location, err := a.client.Location(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printer.Locations([]models.Location{location})
		},
	}
	opts.register(cmd)
	return cmd
}

func (a *app) tagCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "tag <name>",
		Short: "Show a hashtag or its recent media",
		Example: `  igcrawler tag golang
  igcrawler tag golang --media --pages 2 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if opts.media {
				return a.listMedia(cmd.Context(), opts, func(ctx context.Context) ([]models.Media, error) {
					return a.client.MediaByTag(ctx, name)
				})
			}
			tag, err := a.client.Tag(cmd.Context(), name)
			if err != nil {
				return err
			}
			return a.printer.Tags([]models.Tag{tag})
		},
	}
	opts.register(cmd)
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "search <query>",
		Short:   "Search hashtags, locations and users",
		Example: `  igcrawler search taipei`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer.Search(result)
		},
	}
}

// listMedia runs fetch once per page, following the client's cursor
// until opts.pages pages were read or the listing has no next page.
func (a *app) listMedia(ctx context.Context, opts listOptions, fetch func(context.Context) ([]models.Media, error)) error {
	if opts.pages < 1 {
		return fmt.Errorf("--pages must be at least 1, got %d", opts.pages)
	}

	a.client.ResetCursor()
	all := make([]models.Media, 0)
	for page := 1; ; page++ {
		media, err := fetch(ctx)
		if err != nil {
			return err
		}
		all = append(all, media...)

		if page >= opts.pages || !a.client.NextPage() {
			break
		}
		a.log.DebugWithFields("following cursor", map[string]interface{}{
			"page": page + 1,
		})
	}
	return a.printer.Media(all)
}
