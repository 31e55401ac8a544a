package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/donalf/yt2spot/internal/services"
	"github.com/donalf/yt2spot/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	var spotifyService *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify); err == nil {
			timeout := time.Duration(config.Import.HTTPTimeoutSecs) * time.Second
			if timeout > 0 {
				svc.SetHTTPClient(&http.Client{Timeout: timeout})
			}
			spotifyService = svc
		} else {
			logger.Warn("spotify client unavailable", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "yt2spot",
		Usage:    "Import public YouTube playlists into Spotify",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
