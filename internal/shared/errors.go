package shared

import "fmt"

var (
	// Configuration errors (fatal, abort before processing)
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrNoCachedToken    = fmt.Errorf("no cached token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Source access errors (fatal, the run cannot start without the playlist)
	ErrSourceAccess     = fmt.Errorf("source playlist unreachable")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrEmptyPlaylist    = fmt.Errorf("playlist has no items")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Per-item errors (absorbed into the report, never abort the run)
	ErrEmptyTitle = fmt.Errorf("title is empty after cleaning")
	ErrAddCall    = fmt.Errorf("add to playlist failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
