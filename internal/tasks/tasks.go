package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/donalf/yt2spot/internal/match"
	"github.com/donalf/yt2spot/internal/normalize"
	"github.com/donalf/yt2spot/internal/services"
	"github.com/donalf/yt2spot/internal/shared"
	"golang.org/x/time/rate"
)

const addChunkSize = 100

// MatchCacher memoizes resolved matches across runs, keyed by the
// normalized query key.
type MatchCacher interface {
	Lookup(ctx context.Context, key string) (*services.Candidate, bool, error)
	Store(ctx context.Context, key string, candidate services.Candidate) error
}

// ImportOpts configures a single import run.
type ImportOpts struct {
	SourceID   string
	TargetID   string // empty means create a new playlist
	TargetName string // name for a created playlist; defaults to the source title
	DryRun     bool   // match and report without touching the target
}

// ImportResult is the complete outcome of an import run. Results holds
// exactly one entry per source item, in source playlist order.
type ImportResult struct {
	Source  *services.SourcePlaylist `json:"source"`
	Target  *services.TargetPlaylist `json:"target,omitempty"`
	Results []match.Result           `json:"results"`

	Matched   int `json:"matched"`
	Ambiguous int `json:"ambiguous"`
	NotFound  int `json:"not_found"`
	AddFailed int `json:"add_failed"`
}

// MatchPercentage returns the share of items matched, in percent.
func (r *ImportResult) MatchPercentage() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.Matched) / float64(len(r.Results)) * 100
}

// Engine runs imports against a source and library service pair.
//
// Cache and Progress are optional. Limiter paces search calls and must
// not be nil; NewEngine installs a default.
type Engine struct {
	Source   services.SourceService
	Library  services.LibraryService
	Matcher  *match.Matcher
	Cache    MatchCacher
	Limiter  *rate.Limiter
	Logger   *log.Logger
	Progress chan<- ProgressUpdate
}

// NewEngine creates an engine with a default search rate limit of two
// calls per second.
func NewEngine(source services.SourceService, library services.LibraryService, matcher *match.Matcher, logger *log.Logger) *Engine {
	return &Engine{
		Source:  source,
		Library: library,
		Matcher: matcher,
		Limiter: rate.NewLimiter(rate.Limit(2), 1),
		Logger:  logger,
	}
}

// Run executes the import. Source and target playlist access failures are
// fatal; anything that goes wrong on a single item is recorded in that
// item's result and the run continues.
func (e *Engine) Run(ctx context.Context, opts ImportOpts) (*ImportResult, error) {
	e.sendProgress(ProgressUpdate{Phase: PhaseFetch, Message: "fetching source playlist"})

	source, err := e.Source.Playlist(ctx, opts.SourceID)
	if err != nil {
		return nil, fmt.Errorf("source playlist lookup failed: %w", err)
	}

	items, err := e.Source.Items(ctx, opts.SourceID)
	if err != nil {
		return nil, fmt.Errorf("source playlist listing failed: %w", err)
	}

	e.Logger.Info("fetched source playlist", "service", e.Source.Name(), "title", source.Title, "items", len(items))

	target, err := e.resolveTarget(ctx, opts, source)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Source:  source,
		Target:  target,
		Results: make([]match.Result, 0, len(items)),
	}

	for i, item := range items {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		e.sendProgress(ProgressUpdate{
			Phase:   PhaseMatch,
			Message: item.RawTitle,
			Current: i + 1,
			Total:   len(items),
		})

		result.Results = append(result.Results, e.matchItem(ctx, item))
	}

	if !opts.DryRun {
		if err := e.addMatched(ctx, target.ID, result); err != nil {
			return nil, err
		}
	}

	e.tally(result)

	e.sendProgress(ProgressUpdate{Phase: PhaseDone, Current: len(items), Total: len(items)})
	e.Logger.Info("import complete",
		"matched", result.Matched,
		"ambiguous", result.Ambiguous,
		"not_found", result.NotFound,
		"add_failed", result.AddFailed,
		"match_pct", fmt.Sprintf("%.1f", result.MatchPercentage()))

	return result, nil
}

// resolveTarget validates an existing target playlist or creates a new one.
// Dry runs without an explicit target skip playlist access entirely.
func (e *Engine) resolveTarget(ctx context.Context, opts ImportOpts, source *services.SourcePlaylist) (*services.TargetPlaylist, error) {
	if opts.TargetID != "" {
		target, err := e.Library.Playlist(ctx, opts.TargetID)
		if err != nil {
			return nil, fmt.Errorf("target playlist lookup failed: %w", err)
		}
		return target, nil
	}

	if opts.DryRun {
		return nil, nil
	}

	name := opts.TargetName
	if name == "" {
		name = source.Title
	}

	target, err := e.Library.CreatePlaylist(ctx, name, false)
	if err != nil {
		return nil, fmt.Errorf("target playlist creation failed: %w", err)
	}

	e.Logger.Info("created target playlist", "service", e.Library.Name(), "name", target.Name, "id", target.ID)
	return target, nil
}

// matchItem resolves a single source item to a result. It never returns an
// error; failures become not_found results with a reason.
func (e *Engine) matchItem(ctx context.Context, item services.SourceItem) match.Result {
	query, err := normalize.Title(item.RawTitle)
	if err != nil {
		if errors.Is(err, shared.ErrEmptyTitle) {
			return match.Result{
				Item:    item,
				Outcome: match.OutcomeNotFound,
				Reason:  "title empty after cleaning",
			}
		}
		return match.Result{Item: item, Outcome: match.OutcomeNotFound, Reason: err.Error()}
	}

	if e.Cache != nil {
		if candidate, ok, err := e.Cache.Lookup(ctx, query.Key()); err != nil {
			e.Logger.Debug("cache lookup failed", "key", query.Key(), "error", err)
		} else if ok {
			return match.Result{
				Item:      item,
				Query:     query,
				Candidate: candidate,
				Outcome:   match.OutcomeMatched,
				Reason:    "cached",
			}
		}
	}

	result, err := e.matchWithRetry(ctx, item, query)
	if err != nil {
		e.Logger.Warn("search failed", "title", item.RawTitle, "error", err)
		return match.Result{
			Item:    item,
			Query:   query,
			Outcome: match.OutcomeNotFound,
			Reason:  fmt.Sprintf("search failed: %v", err),
		}
	}

	if result.Outcome == match.OutcomeMatched && e.Cache != nil && result.Reason != "cached" {
		if err := e.Cache.Store(ctx, query.Key(), *result.Candidate); err != nil {
			e.Logger.Debug("cache store failed", "key", query.Key(), "error", err)
		}
	}

	return result
}

// matchWithRetry paces the search through the limiter and retries once on
// a transport error.
func (e *Engine) matchWithRetry(ctx context.Context, item services.SourceItem, query normalize.Query) (match.Result, error) {
	if err := e.Limiter.Wait(ctx); err != nil {
		return match.Result{}, err
	}

	result, err := e.Matcher.Match(ctx, item, query)
	if err == nil {
		return result, nil
	}

	e.Logger.Debug("retrying search", "title", item.RawTitle, "error", err)
	if err := e.Limiter.Wait(ctx); err != nil {
		return match.Result{}, err
	}

	return e.Matcher.Match(ctx, item, query)
}

// addMatched appends matched track URIs to the target in chunks, so a
// failed add call only downgrades the items of that chunk to add_failed.
func (e *Engine) addMatched(ctx context.Context, targetID string, result *ImportResult) error {
	var matched []*match.Result
	for i := range result.Results {
		if result.Results[i].Outcome == match.OutcomeMatched {
			matched = append(matched, &result.Results[i])
		}
	}

	for start := 0; start < len(matched); start += addChunkSize {
		end := start + addChunkSize
		if end > len(matched) {
			end = len(matched)
		}
		chunk := matched[start:end]

		uris := make([]string, len(chunk))
		for i, r := range chunk {
			uris[i] = r.Candidate.URI
		}

		e.sendProgress(ProgressUpdate{
			Phase:   PhaseAdd,
			Message: fmt.Sprintf("adding %d tracks", len(uris)),
			Current: end,
			Total:   len(matched),
		})

		if err := e.Library.AddTracks(ctx, targetID, uris); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.Logger.Error("add call failed", "playlist", targetID, "tracks", len(uris), "error", err)
			for _, r := range chunk {
				r.Outcome = match.OutcomeAddFailed
				r.Reason = err.Error()
			}
		}
	}

	return nil
}

func (e *Engine) tally(result *ImportResult) {
	for i := range result.Results {
		switch result.Results[i].Outcome {
		case match.OutcomeMatched:
			result.Matched++
		case match.OutcomeAmbiguous:
			result.Ambiguous++
		case match.OutcomeAddFailed:
			result.AddFailed++
		default:
			result.NotFound++
		}
	}
}
