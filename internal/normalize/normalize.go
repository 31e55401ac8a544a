// package normalize turns raw video titles into candidate (artist, title) pairs.
//
// Video titles carry decoration that never appears in catalog metadata:
// "(Official Video)", "[HD]", channel suffixes like "- Topic", stray quotes.
// The normalizer strips that noise, then splits on the first separator token
// into artist and title. Titles that don't fit the "Artist - Title" shape are
// passed through whole with low confidence so the matcher can treat them
// conservatively.
package normalize

import (
	"regexp"
	"strings"

	"github.com/donalf/yt2spot/internal/shared"
)

// Confidence classifies how cleanly a title split into artist and title.
type Confidence int

const (
	// Low marks titles that didn't match the expected "Artist - Title" shape.
	Low Confidence = iota
	// High marks titles that split cleanly on a separator.
	High
)

func (c Confidence) String() string {
	if c == High {
		return "high"
	}
	return "low"
}

// MarshalJSON encodes the confidence as its label.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// Query is a normalized search query derived from a raw title.
//
// Artist is empty when the title had no separator to split on.
type Query struct {
	Artist     string     `json:"artist,omitempty"`
	Title      string     `json:"title"`
	Confidence Confidence `json:"confidence"`
}

// Key returns the cache/lookup key for this query.
func (q Query) Key() string {
	return shared.NormalizeTrackKey(q.Title, q.Artist)
}

var (
	// Text in parentheses or brackets is almost always decoration
	// ("(Official Video)", "[2019 Remaster]", "(feat. X)").
	bracketed = regexp.MustCompile(`[(\[][^)\]]*[)\]]`)

	// Trailing noise keywords, removed repeatedly until none remain.
	noiseTail = regexp.MustCompile(`(?i)[\s\-:|~]*(official\s*(music\s*)?(video|audio)?|lyric\s*video|music\s*video|lyrics?|audio|visuali[sz]er|hd|4k|mv)\s*$`)

	// Channel suffixes YouTube appends to auto-generated uploads.
	channelTail = regexp.MustCompile(`(?i)\s*-\s*(vevo|topic)\s*$`)

	quotes     = regexp.MustCompile(`["'“”]`)
	whitespace = regexp.MustCompile(`\s+`)

	// First separator wins; the remainder stays in the title since titles
	// may legitimately contain hyphens.
	separator = regexp.MustCompile(`\s+[-–—|~]\s+`)

	// "(X cover)" means X is the original artist of the song.
	coverPattern = regexp.MustCompile(`(?i)\(([^)]+?)\s+cover\)`)

	mixKeywords = []string{"mix", "playlist", "full album", "full ep", "compilation", "mixtape"}

	edgeCutset = " -:|~"
)

// Title cleans a raw title and splits it into a Query.
//
// Returns shared.ErrEmptyTitle when nothing survives cleaning.
func Title(raw string) (Query, error) {
	if artist, song, ok := coverOf(raw); ok {
		return Query{Artist: artist, Title: song, Confidence: High}, nil
	}

	cleaned := Clean(raw)
	if cleaned == "" {
		return Query{}, shared.ErrEmptyTitle
	}

	if isMixTitle(cleaned) {
		// Mixes and compilations aren't single tracks; keep the first
		// segment as a search hint but never auto-accept a match.
		title := strings.TrimSpace(strings.SplitN(cleaned, "|", 2)[0])
		return Query{Title: title, Confidence: Low}, nil
	}

	if loc := separator.FindStringIndex(cleaned); loc != nil {
		artist := strings.TrimSpace(cleaned[:loc[0]])
		title := strings.TrimSpace(cleaned[loc[1]:])
		if artist != "" && title != "" {
			return Query{Artist: artist, Title: title, Confidence: High}, nil
		}
	}

	return Query{Title: cleaned, Confidence: Low}, nil
}

// Clean strips decoration from a raw title without splitting it.
func Clean(raw string) string {
	s := channelTail.ReplaceAllString(raw, "")
	s = bracketed.ReplaceAllString(s, " ")
	s = quotes.ReplaceAllString(s, "")

	for {
		next := noiseTail.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}

	s = whitespace.ReplaceAllString(s, " ")
	return strings.Trim(s, edgeCutset)
}

// coverOf detects "(X cover)" titles, promoting the original artist.
func coverOf(raw string) (artist, title string, ok bool) {
	m := coverPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", false
	}

	artist = strings.TrimSpace(m[1])
	title = Clean(coverPattern.ReplaceAllString(raw, ""))

	// The cover title often still carries the covering artist before the
	// separator; the song name is what follows it.
	if loc := separator.FindStringIndex(title); loc != nil {
		title = strings.TrimSpace(title[loc[1]:])
	}

	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

// isMixTitle reports whether a cleaned title looks like a mix or compilation
// rather than a single track.
func isMixTitle(cleaned string) bool {
	lower := strings.ToLower(cleaned)
	for _, kw := range mixKeywords {
		if kw == "mix" || kw == "playlist" || kw == "mixtape" {
			// Word-boundary check so "remix" doesn't trip "mix".
			for _, field := range strings.Fields(lower) {
				if field == kw {
					return true
				}
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
