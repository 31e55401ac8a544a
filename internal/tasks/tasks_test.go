package tasks

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/donalf/yt2spot/internal/match"
	"github.com/donalf/yt2spot/internal/services"
	"github.com/donalf/yt2spot/internal/shared"
	"golang.org/x/time/rate"
)

type mockSource struct {
	playlist    *services.SourcePlaylist
	items       []services.SourceItem
	playlistErr error
	itemsErr    error
}

func (m *mockSource) Playlist(context.Context, string) (*services.SourcePlaylist, error) {
	return m.playlist, m.playlistErr
}

func (m *mockSource) Items(context.Context, string) ([]services.SourceItem, error) {
	return m.items, m.itemsErr
}

func (m *mockSource) Name() string { return "MockSource" }

type mockLibrary struct {
	results    map[string][]services.Candidate
	searchErr  error
	searches   int
	added      [][]string
	addErr     error
	created    *services.TargetPlaylist
	createName string
	playlist   *services.TargetPlaylist
}

func (m *mockLibrary) SearchTracks(_ context.Context, query string, _ int) ([]services.Candidate, error) {
	m.searches++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results[query], nil
}

func (m *mockLibrary) Playlist(context.Context, string) (*services.TargetPlaylist, error) {
	if m.playlist == nil {
		return nil, shared.ErrPlaylistNotFound
	}
	return m.playlist, nil
}

func (m *mockLibrary) CreatePlaylist(_ context.Context, name string, _ bool) (*services.TargetPlaylist, error) {
	m.createName = name
	if m.created == nil {
		m.created = &services.TargetPlaylist{ID: "created", Name: name}
	}
	return m.created, nil
}

func (m *mockLibrary) AddTracks(_ context.Context, _ string, uris []string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, uris)
	return nil
}

func (m *mockLibrary) Name() string { return "MockLibrary" }

type mockCache struct {
	entries map[string]services.Candidate
	stored  map[string]services.Candidate
}

func (m *mockCache) Lookup(_ context.Context, key string) (*services.Candidate, bool, error) {
	if c, ok := m.entries[key]; ok {
		return &c, true, nil
	}
	return nil, false, nil
}

func (m *mockCache) Store(_ context.Context, key string, candidate services.Candidate) error {
	if m.stored == nil {
		m.stored = map[string]services.Candidate{}
	}
	m.stored[key] = candidate
	return nil
}

func newTestEngine(source *mockSource, library *mockLibrary) *Engine {
	engine := NewEngine(source, library, match.NewMatcher(library), shared.NewLogger(io.Discard))
	engine.Limiter = rate.NewLimiter(rate.Inf, 1)
	return engine
}

func testSource() *mockSource {
	return &mockSource{
		playlist: &services.SourcePlaylist{ID: "PL1", Title: "Road Trip"},
		items: []services.SourceItem{
			{SourceID: "v1", RawTitle: "Queen - Bohemian Rhapsody (Official Video)", Position: 1},
			{SourceID: "v2", RawTitle: "Radiohead - Karma Police", Position: 2},
		},
	}
}

func testLibrary() *mockLibrary {
	return &mockLibrary{
		results: map[string][]services.Candidate{
			`artist:"Queen" track:"Bohemian Rhapsody"`: {
				{ID: "t1", Title: "Bohemian Rhapsody", Artist: "Queen", URI: "spotify:track:t1"},
			},
			`artist:"Radiohead" track:"Karma Police"`: {
				{ID: "t2", Title: "Karma Police", Artist: "Radiohead", URI: "spotify:track:t2"},
			},
		},
		playlist: &services.TargetPlaylist{ID: "target", Name: "My Mix"},
	}
}

func TestRun(t *testing.T) {
	source := testSource()
	library := testLibrary()
	engine := newTestEngine(source, library)

	result, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Results) != len(source.items) {
		t.Fatalf("expected %d results, got %d", len(source.items), len(result.Results))
	}
	for i, r := range result.Results {
		if r.Item.SourceID != source.items[i].SourceID {
			t.Errorf("result %d is for %s, want %s", i, r.Item.SourceID, source.items[i].SourceID)
		}
		if r.Outcome != match.OutcomeMatched {
			t.Errorf("result %d outcome = %s, want matched", i, r.Outcome)
		}
	}

	if result.Matched != 2 || result.NotFound != 0 {
		t.Errorf("tallies = %d matched / %d not found, want 2/0", result.Matched, result.NotFound)
	}
	if got := result.MatchPercentage(); got != 100 {
		t.Errorf("match percentage = %.1f, want 100", got)
	}

	if len(library.added) != 1 {
		t.Fatalf("expected 1 add call, got %d", len(library.added))
	}
	wantURIs := []string{"spotify:track:t1", "spotify:track:t2"}
	for i, uri := range wantURIs {
		if library.added[0][i] != uri {
			t.Errorf("added uri %d = %s, want %s", i, library.added[0][i], uri)
		}
	}
}

func TestRunDryRun(t *testing.T) {
	source := testSource()
	library := testLibrary()
	engine := newTestEngine(source, library)

	result, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Matched != 2 {
		t.Errorf("matched = %d, want 2", result.Matched)
	}
	if result.Target != nil {
		t.Errorf("dry run should not resolve a target, got %+v", result.Target)
	}
	if len(library.added) != 0 {
		t.Errorf("dry run must not add tracks, got %d add calls", len(library.added))
	}
	if library.createName != "" {
		t.Errorf("dry run must not create a playlist, created %q", library.createName)
	}
}

func TestRunCreatesTargetPlaylist(t *testing.T) {
	source := testSource()
	library := testLibrary()
	engine := newTestEngine(source, library)

	result, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if library.createName != "Road Trip" {
		t.Errorf("created playlist name = %q, want source title", library.createName)
	}
	if result.Target == nil || result.Target.ID != "created" {
		t.Errorf("unexpected target: %+v", result.Target)
	}
}

func TestRunSourceFailureIsFatal(t *testing.T) {
	source := testSource()
	source.playlistErr = shared.ErrSourceAccess
	engine := newTestEngine(source, testLibrary())

	if _, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"}); !errors.Is(err, shared.ErrSourceAccess) {
		t.Errorf("expected ErrSourceAccess, got %v", err)
	}
}

func TestRunContinuesPastSearchFailures(t *testing.T) {
	source := testSource()
	library := testLibrary()
	library.searchErr = errors.New("connection reset")
	engine := newTestEngine(source, library)

	result, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"})
	if err != nil {
		t.Fatalf("Run should survive per-item failures: %v", err)
	}

	if result.NotFound != 2 {
		t.Errorf("not found = %d, want 2", result.NotFound)
	}
	for _, r := range result.Results {
		if r.Outcome != match.OutcomeNotFound {
			t.Errorf("outcome = %s, want not_found", r.Outcome)
		}
		if r.Reason == "" {
			t.Error("failed item should carry a reason")
		}
	}
}

func TestRunRetriesSearchOnce(t *testing.T) {
	source := testSource()
	source.items = source.items[:1]
	library := testLibrary()
	library.searchErr = errors.New("connection reset")
	engine := newTestEngine(source, library)

	if _, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if library.searches != 2 {
		t.Errorf("expected 2 search attempts for a failing item, got %d", library.searches)
	}
}

func TestRunAddFailureDowngradesChunk(t *testing.T) {
	source := testSource()
	library := testLibrary()
	library.addErr = errors.New("insufficient scope")
	engine := newTestEngine(source, library)

	result, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"})
	if err != nil {
		t.Fatalf("add failures are per-item, not fatal: %v", err)
	}

	if result.AddFailed != 2 || result.Matched != 0 {
		t.Errorf("tallies = %d add_failed / %d matched, want 2/0", result.AddFailed, result.Matched)
	}
	for _, r := range result.Results {
		if r.Outcome != match.OutcomeAddFailed {
			t.Errorf("outcome = %s, want add_failed", r.Outcome)
		}
		if r.Candidate == nil {
			t.Error("add_failed result should retain its candidate")
		}
	}
}

func TestRunEmptyTitleItem(t *testing.T) {
	source := testSource()
	source.items = []services.SourceItem{{SourceID: "v1", RawTitle: "(Official Video)", Position: 1}}
	library := testLibrary()
	engine := newTestEngine(source, library)

	result, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Results[0].Outcome != match.OutcomeNotFound {
		t.Errorf("outcome = %s, want not_found", result.Results[0].Outcome)
	}
	if library.searches != 0 {
		t.Errorf("empty title should not be searched, got %d searches", library.searches)
	}
}

func TestRunUsesCache(t *testing.T) {
	source := testSource()
	source.items = source.items[:1]
	library := testLibrary()
	engine := newTestEngine(source, library)

	cached := services.Candidate{ID: "t1", Title: "Bohemian Rhapsody", Artist: "Queen", URI: "spotify:track:t1"}
	engine.Cache = &mockCache{
		entries: map[string]services.Candidate{
			"bohemian rhapsody|queen": cached,
		},
	}

	result, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if library.searches != 0 {
		t.Errorf("cache hit should skip search, got %d searches", library.searches)
	}
	if result.Results[0].Reason != "cached" {
		t.Errorf("reason = %q, want cached", result.Results[0].Reason)
	}
}

func TestRunStoresMatchesInCache(t *testing.T) {
	source := testSource()
	library := testLibrary()
	engine := newTestEngine(source, library)

	cache := &mockCache{}
	engine.Cache = cache

	if _, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(cache.stored) != 2 {
		t.Fatalf("expected 2 cache stores, got %d", len(cache.stored))
	}
	if c, ok := cache.stored["bohemian rhapsody|queen"]; !ok || c.ID != "t1" {
		t.Errorf("unexpected cached entry: %+v (present %v)", c, ok)
	}
}

func TestRunProgressUpdates(t *testing.T) {
	source := testSource()
	library := testLibrary()
	engine := newTestEngine(source, library)

	progress := make(chan ProgressUpdate, 32)
	engine.Progress = progress

	if _, err := engine.Run(context.Background(), ImportOpts{SourceID: "PL1", TargetID: "target"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(progress)

	var phases []Phase
	for update := range progress {
		phases = append(phases, update.Phase)
	}

	if len(phases) == 0 {
		t.Fatal("expected progress updates")
	}
	if phases[0] != PhaseFetch {
		t.Errorf("first phase = %s, want fetch", phases[0])
	}
	if phases[len(phases)-1] != PhaseDone {
		t.Errorf("last phase = %s, want done", phases[len(phases)-1])
	}
}
