package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/donalf/yt2spot/internal/formatter"
	"github.com/donalf/yt2spot/internal/match"
	"github.com/donalf/yt2spot/internal/repositories"
	"github.com/donalf/yt2spot/internal/shared"
	"github.com/donalf/yt2spot/internal/tasks"
	"github.com/donalf/yt2spot/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// ImportRun executes the full import pipeline: fetch, normalize, match,
// add, report. Per-item failures are recorded in the report and never
// fail the command.
func (r *Runner) ImportRun(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String("config"); path != "" {
		if err := r.applyConfig(path); err != nil {
			return err
		}
	}

	sourceID := cmd.String("source")
	if sourceID == "" {
		sourceID = r.config.Import.SourcePlaylistID
	}
	if sourceID == "" {
		return fmt.Errorf("%w: source playlist ID (--source or config)", shared.ErrMissingArgument)
	}

	targetID := cmd.String("target")
	if targetID == "" {
		targetID = r.config.Import.TargetPlaylistID
	}

	format := cmd.String("format")
	if format == "" {
		format = r.config.Import.OutputFormat
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("%w: output format must be csv or json, got %q", shared.ErrInvalidFlag, format)
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = r.config.Import.OutputPath
	}

	spotify, err := r.requireSpotify()
	if err != nil {
		return err
	}

	if err := spotify.Authenticate(ctx); err != nil {
		if errors.Is(err, shared.ErrNoCachedToken) {
			return fmt.Errorf("%w: run `yt2spot auth login` first", shared.ErrNotAuthenticated)
		}
		return err
	}

	youtube, err := r.newYouTube(ctx)
	if err != nil {
		return err
	}

	engine := tasks.NewEngine(youtube, spotify, match.NewMatcher(spotify), r.logger)
	if limit := r.config.Import.SearchRateLimit; limit > 0 {
		engine.Limiter = rate.NewLimiter(rate.Limit(limit), 1)
	}

	if !cmd.Bool("no-cache") {
		if cache, cleanup, err := r.openCache(); err != nil {
			r.logger.Warn("match cache unavailable, continuing without it", "error", err)
		} else {
			defer cleanup()
			engine.Cache = cache
		}
	}

	opts := tasks.ImportOpts{
		SourceID:   sourceID,
		TargetID:   targetID,
		TargetName: cmd.String("name"),
		DryRun:     cmd.Bool("dry-run"),
	}

	var result *tasks.ImportResult
	if cmd.Bool("ui") {
		result, err = ui.Run(ctx, engine, opts)
	} else {
		result, err = r.runWithLogging(ctx, engine, opts)
	}
	if err != nil {
		return err
	}

	reportPath, err := formatter.WriteReport(result, format, outputPath)
	if err != nil {
		return err
	}

	r.writePlainHeader("Import Summary")
	if result.Source != nil {
		r.writePlain("Source:      %s (%d items)\n", result.Source.Title, len(result.Results))
	}
	if result.Target != nil {
		r.writePlain("Target:      %s\n", result.Target.Name)
	}
	if opts.DryRun {
		r.writePlain("Mode:        dry run (target untouched)\n")
	}
	r.writePlain("Matched:     %d\n", result.Matched)
	r.writePlain("Ambiguous:   %d\n", result.Ambiguous)
	r.writePlain("Not found:   %d\n", result.NotFound)
	if result.AddFailed > 0 {
		r.writePlain("Add failed:  %d\n", result.AddFailed)
	}
	r.writePlain("Match rate:  %.1f%%\n", result.MatchPercentage())
	return r.writePlainln("Report written to %s", reportPath)
}

// runWithLogging drains the engine's progress channel into the logger
// while the run executes.
func (r *Runner) runWithLogging(ctx context.Context, engine *tasks.Engine, opts tasks.ImportOpts) (*tasks.ImportResult, error) {
	progress := make(chan tasks.ProgressUpdate, 64)
	engine.Progress = progress

	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.PhaseMatch {
				r.logger.Debug("matching", "item", update.Current, "of", update.Total, "title", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, opts)
	close(progress)
	<-done

	return result, err
}

// openCache opens the configured database and returns the match cache
// plus a cleanup func closing the connection.
func (r *Runner) openCache() (*repositories.MatchCache, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return repositories.NewMatchCache(db), func() { db.Close() }, nil
}
