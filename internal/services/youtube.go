// YouTube Data API v3 [SourceService] implementation.
//
// Read-only; authenticated with an API key. Playlist items are fetched in
// pages of 50 (the API maximum) following page tokens.
package services

import (
	"context"
	"fmt"

	"github.com/donalf/yt2spot/internal/shared"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const playlistPageSize = 50

// YouTubeService implements SourceService against the public Data API.
type YouTubeService struct {
	yt *youtube.Service
}

// NewYouTubeService creates a YouTube client with the given API key.
//
// Extra options (endpoint, HTTP client) are accepted for tests.
func NewYouTubeService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: youtube api key not set", shared.ErrMissingCredentials)
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	yt, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	return &YouTubeService{yt: yt}, nil
}

// Name returns the service name.
func (s *YouTubeService) Name() string {
	return "YouTube"
}

// Playlist retrieves playlist metadata via playlists.list.
func (s *YouTubeService) Playlist(ctx context.Context, playlistID string) (*SourcePlaylist, error) {
	resp, err := s.yt.Playlists.
		List([]string{"snippet", "contentDetails", "status"}).
		Id(playlistID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceAccess, err)
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrPlaylistNotFound, playlistID)
	}

	pl := resp.Items[0]
	playlist := &SourcePlaylist{
		ID:      pl.Id,
		Title:   pl.Snippet.Title,
		Channel: pl.Snippet.ChannelTitle,
	}
	if pl.ContentDetails != nil {
		playlist.ItemCount = pl.ContentDetails.ItemCount
	}
	if pl.Status != nil {
		playlist.Visibility = pl.Status.PrivacyStatus
	}

	return playlist, nil
}

// Items retrieves all playlist entries in playlist order via
// playlistItems.list, following page tokens.
//
// Entries without a video ID (deleted or region-blocked videos) are skipped.
func (s *YouTubeService) Items(ctx context.Context, playlistID string) ([]SourceItem, error) {
	var items []SourceItem
	pageToken := ""

	for {
		call := s.yt.PlaylistItems.
			List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(playlistPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 404 {
				return nil, fmt.Errorf("%w: playlist %s", shared.ErrPlaylistNotFound, playlistID)
			}
			return nil, fmt.Errorf("%w: %v", shared.ErrSourceAccess, err)
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil || item.Snippet.ResourceId.VideoId == "" {
				continue
			}
			items = append(items, SourceItem{
				SourceID: item.Snippet.ResourceId.VideoId,
				RawTitle: item.Snippet.Title,
				Channel:  item.Snippet.VideoOwnerChannelTitle,
				Position: len(items) + 1,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrEmptyPlaylist, playlistID)
	}

	return items, nil
}
