// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// importCommand runs the playlist import pipeline
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "import",
		Aliases: []string{"run"},
		Usage:   "Import a YouTube playlist into a Spotify playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "YouTube playlist ID to import from",
			},
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "Spotify playlist ID to add tracks to (created when omitted)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Name for a newly created target playlist",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: csv or json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file path (extension added when missing)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Match and report without modifying the target playlist",
			},
			&cli.BoolFlag{
				Name:  "ui",
				Usage: "Show interactive progress instead of log output",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the local match cache",
			},
		},
		Action: r.ImportRun,
	}
}

// authCommand handles the Spotify OAuth2 flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser redirect",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

// youtubeCommand handles read-only YouTube playlist operations
func youtubeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "youtube",
		Aliases: []string{"yt"},
		Usage:   "YouTube playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the entries of a public playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.YouTubeList,
			},
		},
	}
}

// cacheCommand inspects and clears the local match cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Local match cache operations",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cached match count",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached matches",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand initializes configuration and the local database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
