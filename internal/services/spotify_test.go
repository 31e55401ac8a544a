package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/donalf/yt2spot/internal/shared"
	"golang.org/x/oauth2"
)

func newTestSpotifyService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenCache:   filepath.Join(t.TempDir(), "token.json"),
	})
	if err != nil {
		t.Fatalf("NewSpotifyService: %v", err)
	}

	service.baseURL = server.URL
	service.token = &oauth2.Token{AccessToken: "test-token"}
	service.httpClient = server.Client()

	return service, server
}

func TestNewSpotifyServiceMissingCredentials(t *testing.T) {
	_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "only-id"})
	if !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestSpotifySearchTracks(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "artist:Queen track:Bohemian Rhapsody" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}

		resp := spotifySearchResponse{}
		resp.Tracks.Items = []SpotifyTrack{
			{
				ID:         "track-1",
				Name:       "Bohemian Rhapsody",
				Artists:    []SpotifyArtist{{ID: "artist-1", Name: "Queen"}},
				Album:      spotifyAlbum{Name: "A Night at the Opera"},
				DurationMS: 354000,
				Popularity: 85,
				URI:        "spotify:track:track-1",
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	service, _ := newTestSpotifyService(t, handler)

	candidates, err := service.SearchTracks(context.Background(), "artist:Queen track:Bohemian Rhapsody", 5)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	got := candidates[0]
	if got.ID != "track-1" || got.Artist != "Queen" || got.Title != "Bohemian Rhapsody" {
		t.Errorf("unexpected candidate: %+v", got)
	}
	if got.DurationSec != 354 {
		t.Errorf("duration = %d, want 354", got.DurationSec)
	}
}

func TestSpotifySearchTracksEmpty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(spotifySearchResponse{})
	})

	service, _ := newTestSpotifyService(t, handler)

	candidates, err := service.SearchTracks(context.Background(), "no such track", 5)
	if err != nil {
		t.Fatalf("SearchTracks: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestSpotifySearchTracksAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"status":429,"message":"rate limit exceeded"}}`))
	})

	service, _ := newTestSpotifyService(t, handler)

	_, err := service.SearchTracks(context.Background(), "anything", 5)
	if !errors.Is(err, shared.ErrAPIRequest) {
		t.Errorf("expected ErrAPIRequest, got %v", err)
	}
}

func TestSpotifyAddTracksChunking(t *testing.T) {
	var chunkSizes []int

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/playlists/target/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body struct {
			URIs []string `json:"uris"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		chunkSizes = append(chunkSizes, len(body.URIs))
		w.Write([]byte(`{"snapshot_id":"abc"}`))
	})

	service, _ := newTestSpotifyService(t, handler)

	uris := make([]string, 250)
	for i := range uris {
		uris[i] = "spotify:track:t"
	}

	if err := service.AddTracks(context.Background(), "target", uris); err != nil {
		t.Fatalf("AddTracks: %v", err)
	}

	want := []int{100, 100, 50}
	if len(chunkSizes) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(chunkSizes))
	}
	for i, size := range want {
		if chunkSizes[i] != size {
			t.Errorf("chunk %d size = %d, want %d", i, chunkSizes[i], size)
		}
	}
}

func TestSpotifyAddTracksEmpty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty uri list")
	})

	service, _ := newTestSpotifyService(t, handler)

	if err := service.AddTracks(context.Background(), "target", nil); err != nil {
		t.Errorf("AddTracks(nil): %v", err)
	}
}

func TestSpotifyAddTracksFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":403,"message":"insufficient scope"}}`))
	})

	service, _ := newTestSpotifyService(t, handler)

	err := service.AddTracks(context.Background(), "target", []string{"spotify:track:t"})
	if !errors.Is(err, shared.ErrAddCall) {
		t.Errorf("expected ErrAddCall, got %v", err)
	}
}

func TestSpotifyCreatePlaylist(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me":
			json.NewEncoder(w).Encode(SpotifyUser{ID: "user-1", DisplayName: "Test User"})
		case "/users/user-1/playlists":
			var body struct {
				Name   string `json:"name"`
				Public bool   `json:"public"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Name != "Imported" {
				t.Errorf("playlist name = %q, want Imported", body.Name)
			}

			pl := spotifyPlaylist{ID: "new-playlist", Name: body.Name, Public: body.Public}
			json.NewEncoder(w).Encode(pl)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	service, _ := newTestSpotifyService(t, handler)

	playlist, err := service.CreatePlaylist(context.Background(), "Imported", false)
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if playlist.ID != "new-playlist" || playlist.Name != "Imported" {
		t.Errorf("unexpected playlist: %+v", playlist)
	}
}

func TestSpotifyPlaylist(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		pl := spotifyPlaylist{ID: "pl-1", Name: "Road Trip", Public: true}
		pl.Tracks.Total = 42
		json.NewEncoder(w).Encode(pl)
	})

	service, _ := newTestSpotifyService(t, handler)

	playlist, err := service.Playlist(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("Playlist: %v", err)
	}
	if playlist.Name != "Road Trip" || playlist.TrackCount != 42 || !playlist.Public {
		t.Errorf("unexpected playlist: %+v", playlist)
	}
}

func TestSpotifyNotAuthenticated(t *testing.T) {
	service, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenCache:   filepath.Join(t.TempDir(), "token.json"),
	})
	if err != nil {
		t.Fatalf("NewSpotifyService: %v", err)
	}

	_, err = service.SearchTracks(context.Background(), "anything", 5)
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSpotifyTokenCacheRoundTrip(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "nested", "token.json")

	service, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenCache:   tokenPath,
	})
	if err != nil {
		t.Fatalf("NewSpotifyService: %v", err)
	}

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
	}
	if err := service.SetToken(token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	loaded, err := service.loadToken()
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Errorf("unexpected cached token: %+v", loaded)
	}
}

func TestSpotifyLoadTokenMissing(t *testing.T) {
	service, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenCache:   filepath.Join(t.TempDir(), "absent.json"),
	})
	if err != nil {
		t.Fatalf("NewSpotifyService: %v", err)
	}

	if _, err := service.loadToken(); !errors.Is(err, shared.ErrNoCachedToken) {
		t.Errorf("expected ErrNoCachedToken, got %v", err)
	}
}
