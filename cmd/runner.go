package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/donalf/yt2spot/internal/services"
	"github.com/donalf/yt2spot/internal/shared"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	spotify *services.SpotifyService
	logger  *log.Logger
	output  io.Writer

	// youtubeOpts carries extra client options, used by tests to point the
	// YouTube client at a local server.
	youtubeOpts []option.ClientOption
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Spotify     *services.SpotifyService
	Logger      *log.Logger
	Output      io.Writer
	YouTubeOpts []option.ClientOption
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:      opts.Config,
		spotify:     opts.Spotify,
		logger:      opts.Logger,
		output:      opts.Output,
		youtubeOpts: opts.YouTubeOpts,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		importCommand, authCommand, youtubeCommand, cacheCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// applyConfig loads the config file at path and rebuilds the Spotify
// client from its credentials.
func (r *Runner) applyConfig(path string) error {
	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.config = config

	creds := config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil
	}

	spotify, err := services.NewSpotifyService(creds)
	if err != nil {
		return err
	}
	if timeout := time.Duration(config.Import.HTTPTimeoutSecs) * time.Second; timeout > 0 {
		spotify.SetHTTPClient(&http.Client{Timeout: timeout})
	}

	r.spotify = spotify
	return nil
}

// requireSpotify returns the Spotify client or a setup hint when
// credentials are missing.
func (r *Runner) requireSpotify() (*services.SpotifyService, error) {
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: set spotify client_id and client_secret in config.toml or the environment", shared.ErrMissingCredentials)
	}
	return r.spotify, nil
}

// newYouTube constructs the YouTube client from configured credentials.
func (r *Runner) newYouTube(ctx context.Context) (*services.YouTubeService, error) {
	return services.NewYouTubeService(ctx, r.config.Credentials.YouTube.APIKey, r.youtubeOpts...)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
