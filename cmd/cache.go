package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CacheStats prints the number of cached matches.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	cache, cleanup, err := r.openCache()
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := cache.Count(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader("Match Cache")
	r.writePlain("Database: %s\n", r.config.Database.Path)
	return r.writePlain("Entries:  %d\n", count)
}

// CacheClear deletes all cached matches.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, cleanup, err := r.openCache()
	if err != nil {
		return err
	}
	defer cleanup()

	deleted, err := cache.Purge(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("match cache cleared", "deleted", deleted)
	return r.writePlain("Deleted %d cached matches\n", deleted)
}
