package services

import (
	"context"
)

// SourceItem is one entry of the source playlist.
//
// Immutable once produced; Position is 1-based playlist order.
type SourceItem struct {
	SourceID string `json:"source_id"` // video ID
	RawTitle string `json:"raw_title"`
	Channel  string `json:"channel,omitempty"`
	Position int    `json:"position"`
}

// URL returns the shareable video URL for the item.
func (i SourceItem) URL() string {
	return "https://youtu.be/" + i.SourceID
}

// SourcePlaylist is the source playlist's metadata.
type SourcePlaylist struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Channel    string `json:"channel,omitempty"`
	ItemCount  int64  `json:"item_count"`
	Visibility string `json:"visibility,omitempty"`
}

// SourceService enumerates a playlist on the video platform.
type SourceService interface {
	// Playlist retrieves the playlist's metadata.
	Playlist(ctx context.Context, playlistID string) (*SourcePlaylist, error)

	// Items retrieves all playlist entries in playlist order.
	Items(ctx context.Context, playlistID string) ([]SourceItem, error)

	// Name returns the service name for logging and reports.
	Name() string
}

// Candidate is a single track returned by the streaming service's search.
// Ephemeral; only matched candidates make it into the report.
type Candidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album,omitempty"`
	DurationSec int    `json:"duration_seconds"`
	URI         string `json:"uri"`
	Popularity  int    `json:"popularity,omitempty"`
}

// TargetPlaylist is the destination playlist's metadata.
type TargetPlaylist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"`
	Public     bool   `json:"public"`
}

// SearchService is the track-search capability consumed by the matcher.
type SearchService interface {
	// SearchTracks returns up to limit candidates ranked by the service,
	// empty (not an error) when nothing matches the query.
	SearchTracks(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// LibraryService is the full music-streaming capability: search plus
// playlist mutation.
type LibraryService interface {
	SearchService

	// Playlist retrieves a playlist's metadata, used to validate the target.
	Playlist(ctx context.Context, playlistID string) (*TargetPlaylist, error)

	// CreatePlaylist creates an empty playlist for the authenticated user.
	CreatePlaylist(ctx context.Context, name string, public bool) (*TargetPlaylist, error)

	// AddTracks appends track URIs to a playlist in order. Adding an
	// already-present track is a no-op at the service.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the service name for logging and reports.
	Name() string
}
