package main

import (
	"context"
	"fmt"

	"github.com/donalf/yt2spot/internal/services"
	"github.com/donalf/yt2spot/internal/shared"
	"github.com/urfave/cli/v3"
)

// playlistListing pairs a playlist's metadata with its entries for JSON output.
type playlistListing struct {
	Playlist *services.SourcePlaylist `json:"playlist"`
	Items    []services.SourceItem    `json:"items"`
}

// YouTubeList prints the entries of a public playlist.
func (r *Runner) YouTubeList(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	youtube, err := r.newYouTube(ctx)
	if err != nil {
		return err
	}

	playlist, err := youtube.Playlist(ctx, playlistID)
	if err != nil {
		return err
	}

	items, err := youtube.Items(ctx, playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlistListing{Playlist: playlist, Items: items}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%s)", playlist.Title, playlist.Channel))
	for _, item := range items {
		r.writePlain("%3d. %s\n", item.Position, item.RawTitle)
	}
	return r.writePlainln("%d items", len(items))
}
