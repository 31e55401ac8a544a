// package tasks orchestrates the playlist import: it fetches the source
// playlist, normalizes and matches every entry, adds the matched tracks to
// the target playlist, and tallies the outcome.
//
// Failures on a single item never abort the run; only source or target
// playlist access failures are fatal. Long-running work reports progress
// over a channel that the caller may drain for UI or logging.
package tasks
