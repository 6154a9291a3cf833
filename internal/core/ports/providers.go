// Package ports defines the interfaces between the enrichment core and
// the external data sources. Source adapters never surface transport
// errors: a failed or empty lookup is reported through the found flag,
// and the distinction between "confirmed absent" and "lookup failed" is
// an adapter-internal caching concern.
package ports

import (
	"context"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// LibraryTrack is a media-library record for a matched track.
type LibraryTrack struct {
	ID           string
	Name         string
	Artists      []string
	Album        string
	Year         string
	Genres       []string
	Tags         []string
	Tempo        int // parsed from a "tempo:" or "bpm:" tag, 0 when absent
	RunTimeTicks int64
	PlayCount    int
	Lyrics       string
}

// LibraryProvider looks tracks up in the user's media library.
type LibraryProvider interface {
	FindTrack(ctx context.Context, title, artist string) (LibraryTrack, bool)
}

// TagInfo is the tag/listener service's view of a track.
type TagInfo struct {
	Tags        []string // ordered, most relevant first
	Listeners   int
	Album       string
	ReleaseDate string
}

// TagProvider fetches social tags and aggregate listener counts.
type TagProvider interface {
	Lookup(ctx context.Context, title, artist string) (TagInfo, bool)
}

// AudioFeatureProvider fetches tempo, key and audio features from the
// BPM service. Adapters without credentials report absent for everything.
type AudioFeatureProvider interface {
	Features(ctx context.Context, title, artist string) (domain.AudioFeatures, bool)
}

// MoodClassifier turns lyrics text into a single mood word.
type MoodClassifier interface {
	ClassifyLyrics(ctx context.Context, lyrics string) (string, bool)
}

// CatalogTrack is the slim record a streaming catalog returns.
type CatalogTrack struct {
	Album      string
	Year       string
	DurationMS int
}

// CatalogProvider searches one streaming catalog for album/year/duration
// gap-filling data.
type CatalogProvider interface {
	Name() string
	Search(ctx context.Context, title, artist string) (CatalogTrack, bool)
}

// SuggestionProvider generates playlist suggestion lines from an LLM.
// Each returned line follows "Title - Artist - Album - Year - Reason".
type SuggestionProvider interface {
	SuggestTracks(ctx context.Context, existing []string, count int, summary string) ([]string, error)
}
