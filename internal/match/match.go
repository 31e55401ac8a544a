// package match decides which search candidate, if any, corresponds to a
// normalized source title. It builds progressively broader search queries,
// scores candidates by string similarity, and classifies each item into one
// of four outcomes.
package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/donalf/yt2spot/internal/normalize"
	"github.com/donalf/yt2spot/internal/services"
)

const (
	defaultSearchLimit = 5
	defaultThreshold   = 0.55

	titleWeight  = 0.7
	artistWeight = 0.3
)

// Outcome classifies a single item's match result.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeMatched
	OutcomeAmbiguous
	OutcomeAddFailed
)

// String returns the outcome's report label.
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeAddFailed:
		return "add_failed"
	default:
		return "not_found"
	}
}

// MarshalJSON encodes the outcome as its report label.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// Result is the per-item outcome of the matching pipeline.
//
// Invariants: Candidate is non-nil when Outcome is matched or add_failed,
// nil when not_found. Ambiguous results carry the best rejected candidate
// when one exists.
type Result struct {
	Item        services.SourceItem `json:"item"`
	Query       normalize.Query     `json:"query"`
	QueryString string              `json:"query_string,omitempty"`
	Candidate   *services.Candidate `json:"candidate,omitempty"`
	Outcome     Outcome             `json:"outcome"`
	Reason      string              `json:"reason,omitempty"`
}

// Matcher searches a streaming service and scores the returned candidates.
type Matcher struct {
	search    services.SearchService
	limit     int
	threshold float64
}

// NewMatcher creates a matcher with the default search limit and
// acceptance threshold.
func NewMatcher(search services.SearchService) *Matcher {
	return &Matcher{
		search:    search,
		limit:     defaultSearchLimit,
		threshold: defaultThreshold,
	}
}

// BuildQueries returns search query strings from most to least precise.
// The first query that yields candidates wins; later queries are only
// tried when earlier ones come back empty.
func BuildQueries(q normalize.Query) []string {
	if q.Artist == "" {
		return []string{q.Title}
	}

	return []string{
		fmt.Sprintf("artist:%q track:%q", q.Artist, q.Title),
		q.Artist + " " + q.Title,
		q.Title,
	}
}

// Match resolves one normalized query against the search service.
//
// A transport or API error aborts the item and is returned to the caller;
// an empty result set is not an error and yields a not_found result.
func (m *Matcher) Match(ctx context.Context, item services.SourceItem, query normalize.Query) (Result, error) {
	result := Result{Item: item, Query: query}

	queries := BuildQueries(query)
	for tier, qs := range queries {
		candidates, err := m.search.SearchTracks(ctx, qs, m.limit)
		if err != nil {
			return result, err
		}
		if len(candidates) == 0 {
			continue
		}

		result.QueryString = qs
		m.classify(&result, query, candidates, tier)
		return result, nil
	}

	result.Outcome = OutcomeNotFound
	result.Reason = "no search results for any query"
	return result, nil
}

// classify picks the best candidate by similarity and decides the outcome.
// Tier 0 is the fielded artist:track query; its results are already
// artist-filtered by the service, so the best candidate is accepted as-is.
// Below-threshold results are still accepted for high-confidence queries
// (best effort), and downgraded to ambiguous for low-confidence ones.
func (m *Matcher) classify(result *Result, query normalize.Query, candidates []services.Candidate, tier int) {
	best, score := m.best(query, candidates)

	switch {
	case tier == 0 && query.Artist != "":
		result.Outcome = OutcomeMatched
	case score >= m.threshold:
		result.Outcome = OutcomeMatched
	case contained(query.Title, best.Title):
		result.Outcome = OutcomeMatched
	case query.Confidence == normalize.High:
		result.Outcome = OutcomeMatched
		result.Reason = fmt.Sprintf("best effort: top result scored %.2f, below %.2f", score, m.threshold)
	default:
		result.Outcome = OutcomeAmbiguous
		result.Reason = fmt.Sprintf("best candidate %q by %q scored %.2f, below %.2f", best.Title, best.Artist, score, m.threshold)
	}

	result.Candidate = best
}

// best returns the highest-scoring candidate and its score.
func (m *Matcher) best(query normalize.Query, candidates []services.Candidate) (*services.Candidate, float64) {
	bestIdx := 0
	bestScore := -1.0

	for i := range candidates {
		s := m.score(query, candidates[i])
		if s > bestScore {
			bestIdx = i
			bestScore = s
		}
	}

	return &candidates[bestIdx], bestScore
}

// score combines title and artist similarity, weighted toward the title.
// Without an artist the title similarity stands alone.
func (m *Matcher) score(query normalize.Query, candidate services.Candidate) float64 {
	titleSim := similarity(query.Title, candidate.Title)
	if query.Artist == "" {
		return titleSim
	}

	return titleWeight*titleSim + artistWeight*similarity(query.Artist, candidate.Artist)
}

// similarity is normalized Levenshtein similarity in [0, 1], case and
// whitespace insensitive.
func similarity(a, b string) float64 {
	a = canonical(a)
	b = canonical(b)

	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// contained reports whether one canonical title contains the other,
// which covers remaster and version suffixes the service appends.
func contained(a, b string) bool {
	a = canonical(a)
	b = canonical(b)
	if a == "" || b == "" {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}

func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
