package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/donalf/yt2spot/internal/services"
	"github.com/donalf/yt2spot/internal/shared"
)

// MatchCache implements tasks.MatchCacher over a match_cache table.
type MatchCache struct {
	db *sql.DB
}

// NewMatchCache creates a match cache with the given database connection.
func NewMatchCache(db *sql.DB) *MatchCache {
	return &MatchCache{db: db}
}

// Lookup retrieves the cached candidate for a query key. A miss is not an
// error; the second return value reports whether the key was present.
func (c *MatchCache) Lookup(ctx context.Context, key string) (*services.Candidate, bool, error) {
	query := `
		SELECT track_id, title, artist, album, duration, uri
		FROM match_cache
		WHERE query_key = ?
	`

	var (
		candidate services.Candidate
		artist    sql.NullString
		album     sql.NullString
		uri       sql.NullString
	)

	err := c.db.QueryRowContext(ctx, query, key).Scan(
		&candidate.ID, &candidate.Title, &artist, &album, &candidate.DurationSec, &uri,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query match cache: %w", err)
	}

	candidate.Artist = artist.String
	candidate.Album = album.String
	candidate.URI = uri.String

	return &candidate, true, nil
}

// Store upserts a resolved match. Storing the same key again refreshes the
// cached candidate rather than failing on the UNIQUE constraint.
func (c *MatchCache) Store(ctx context.Context, key string, candidate services.Candidate) error {
	query := `
		INSERT INTO match_cache (id, query_key, track_id, title, artist, album, duration, uri, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(query_key) DO UPDATE SET
			track_id = excluded.track_id,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration = excluded.duration,
			uri = excluded.uri,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	_, err := c.db.ExecContext(ctx, query,
		shared.GenerateID(), key,
		candidate.ID, candidate.Title, candidate.Artist, candidate.Album,
		candidate.DurationSec, candidate.URI,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to store match: %w", err)
	}

	return nil
}

// Purge removes all cached matches, returning the number deleted.
func (c *MatchCache) Purge(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM match_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge match cache: %w", err)
	}

	return result.RowsAffected()
}

// Count returns the number of cached matches.
func (c *MatchCache) Count(ctx context.Context) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count match cache: %w", err)
	}

	return count, nil
}
