// Package repositories implements SQLite persistence for resolved matches.
//
// The match cache keys on the normalized query key so that re-running an
// import, or importing a second playlist with overlapping tracks, skips the
// search round-trips for titles already resolved. Duplicate stores are
// upserts; the cache never fails an import.
package repositories
