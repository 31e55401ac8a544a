// Spotify Web API [LibraryService] implementation.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/donalf/yt2spot/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	addTracksChunkSize = 100 // API maximum per add call
	searchLimitMax     = 50
)

// SpotifyUser represents the authenticated user's profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyArtist represents an artist in track responses.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name string `json:"name"`
}

// SpotifyTrack represents a track in search and playlist responses.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// SpotifyService implements LibraryService with a hand-rolled client over
// [oauth2]. The access token is cached to a JSON file between runs and
// refreshed from it when expired.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
	tokenPath  string
	userID     string
}

// NewSpotifyService creates a Spotify client from credentials.
func NewSpotifyService(creds shared.SpotifyConfig) (*SpotifyService, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id/client_secret not set", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8888/callback"
	}

	tokenPath := creds.TokenCache
	if tokenPath == "" {
		tokenPath = ".spotify_token.json"
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
		tokenPath:  tokenPath,
	}, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetHTTPClient replaces the base HTTP client, typically to apply a
// request timeout. Call before Authenticate.
func (s *SpotifyService) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// OAuthConfig exposes the underlying OAuth2 config for the callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthURL returns the authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// TokenPath returns the token cache file location.
func (s *SpotifyService) TokenPath() string {
	return s.tokenPath
}

// Authenticated reports whether the service holds a usable token.
func (s *SpotifyService) Authenticated() bool {
	return s.token != nil && s.token.AccessToken != ""
}

// Authenticate loads the cached token and wires up the authenticated HTTP
// client, refreshing and re-caching the token when expired.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	tok, err := s.loadToken()
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	source := s.config.TokenSource(ctx, tok)

	fresh, err := source.Token()
	if err != nil {
		return fmt.Errorf("%w: token refresh failed: %v", shared.ErrAuthFailed, err)
	}
	if fresh.AccessToken != tok.AccessToken {
		if err := s.SetToken(fresh); err != nil {
			return err
		}
	}

	s.token = fresh
	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

// Exchange completes the authorization-code flow and caches the token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}

	return s.SetToken(token)
}

// SetToken stores a token in memory and in the cache file.
func (s *SpotifyService) SetToken(token *oauth2.Token) error {
	s.token = token

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if dir := filepath.Dir(s.tokenPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token cache directory: %w", err)
		}
	}

	if err := os.WriteFile(s.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}

	return nil
}

func (s *SpotifyService) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNoCachedToken, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: corrupt token cache: %v", shared.ErrNoCachedToken, err)
	}

	if token.RefreshToken == "" && token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty token cache", shared.ErrNoCachedToken)
	}

	return &token, nil
}

// doRequest performs an authenticated request against the Spotify API,
// JSON-encoding body when present and decoding the response into result.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: spotify API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Me retrieves the current authenticated user's profile.
func (s *SpotifyService) Me(ctx context.Context) (*SpotifyUser, error) {
	if s.userID != "" {
		return &SpotifyUser{ID: s.userID}, nil
	}

	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	s.userID = user.ID
	return &user, nil
}

// SearchTracks searches for tracks matching the query.
//
// Returns the service's ranked candidates, empty when nothing matched.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > searchLimitMax {
		limit = searchLimitMax
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var response spotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(response.Tracks.Items))
	for _, track := range response.Tracks.Items {
		candidates = append(candidates, trackToCandidate(track))
	}

	return candidates, nil
}

// Playlist retrieves a playlist's metadata.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*TargetPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s?fields=id,name,public,tracks.total", playlistID)

	var pl spotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &pl); err != nil {
		return nil, err
	}

	return &TargetPlaylist{
		ID:         pl.ID,
		Name:       pl.Name,
		TrackCount: pl.Tracks.Total,
		Public:     pl.Public,
	}, nil
}

// CreatePlaylist creates an empty playlist for the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name string, public bool) (*TargetPlaylist, error) {
	user, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}

	body := struct {
		Name   string `json:"name"`
		Public bool   `json:"public"`
	}{Name: name, Public: public}

	var pl spotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(user.ID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &pl); err != nil {
		return nil, err
	}

	return &TargetPlaylist{
		ID:     pl.ID,
		Name:   pl.Name,
		Public: pl.Public,
	}, nil
}

// AddTracks appends track URIs to a playlist, chunked at the API maximum of
// 100 per call. Order within and across chunks follows the input slice.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += addTracksChunkSize {
		end := start + addTracksChunkSize
		if end > len(uris) {
			end = len(uris)
		}

		body := struct {
			URIs []string `json:"uris"`
		}{URIs: uris[start:end]}

		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAddCall, err)
		}
	}

	return nil
}

func trackToCandidate(track SpotifyTrack) Candidate {
	candidate := Candidate{
		ID:          track.ID,
		Title:       track.Name,
		Album:       track.Album.Name,
		DurationSec: track.DurationMS / 1000,
		URI:         track.URI,
		Popularity:  track.Popularity,
	}
	if len(track.Artists) > 0 {
		candidate.Artist = track.Artists[0].Name
	}
	return candidate
}
