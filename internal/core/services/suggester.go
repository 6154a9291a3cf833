package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/cadence/internal/core/analysis"
	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// duplicateThreshold is the Jaro-Winkler similarity above which a
// suggested track is considered a repeat of a playlist entry. The LLM is
// told not to repeat tracks, but it does.
const duplicateThreshold = 0.92

// Suggester turns a playlist into enriched LLM track suggestions.
type Suggester struct {
	enricher *Enricher
	library  ports.LibraryProvider
	llm      ports.SuggestionProvider
	log      hclog.Logger
}

// NewSuggester constructs a Suggester.
func NewSuggester(enricher *Enricher, library ports.LibraryProvider, llm ports.SuggestionProvider, log hclog.Logger) *Suggester {
	return &Suggester{
		enricher: enricher,
		library:  library,
		llm:      llm,
		log:      log.Named("suggester"),
	}
}

// Suggest asks the LLM for count suggestions based on the playlist and
// its summary, enriches every parseable line, and scores the batch.
// Malformed lines and near-duplicates of the playlist are skipped, not
// fatal. In-library tracks sort ahead of the rest.
func (s *Suggester) Suggest(ctx context.Context, playlist []string, count int, summary string) ([]domain.Suggestion, error) {
	lines, err := s.llm.SuggestTracks(ctx, playlist, count, summary)
	if err != nil {
		return nil, fmt.Errorf("services: suggestion request: %w", err)
	}

	type parsed struct {
		raw    domain.RawTrack
		text   string
		reason string
	}
	candidates := make([]parsed, 0, len(lines))
	for _, line := range lines {
		text, reason, err := domain.ParseSuggestionLine(line)
		if err != nil {
			s.log.Warn("skipping suggestion line", "error", err)
			continue
		}
		raw := domain.ParseTrackLabel(text)
		if s.isDuplicate(raw, playlist) {
			s.log.Debug("skipping duplicate suggestion", "title", raw.Title, "artist", raw.Artist)
			continue
		}
		candidates = append(candidates, parsed{raw: raw, text: text, reason: reason})
	}

	suggestions := make([]*domain.Suggestion, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enricher.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			raw := c.raw
			lib, inLibrary := s.library.FindTrack(gctx, raw.Title, raw.Artist)
			if inLibrary {
				playCount := lib.PlayCount
				raw.PlayCount = &playCount
				raw.Genres = lib.Genres
				raw.Tempo = lib.Tempo
				raw.RunTimeTicks = lib.RunTimeTicks
				raw.Lyrics = lib.Lyrics
				if raw.Year == "" {
					raw.Year = lib.Year
				}
			} else {
				zero := 0
				raw.PlayCount = &zero
			}

			enriched, err := s.enricher.EnrichTrack(gctx, raw)
			if err != nil {
				s.log.Warn("skipping suggestion", "title", raw.Title, "error", err)
				return nil
			}
			suggestions[i] = &domain.Suggestion{
				EnrichedTrack: enriched,
				Text:          c.text,
				Reason:        c.reason,
				InLibrary:     inLibrary,
			}
			return nil
		})
	}
	_ = g.Wait()

	result := make([]domain.Suggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		if sg != nil {
			result = append(result, *sg)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].InLibrary && !result[j].InLibrary
	})

	scoreSuggestions(result, s.enricher.popularity)
	return result, nil
}

func (s *Suggester) isDuplicate(raw domain.RawTrack, playlist []string) bool {
	jw := metrics.NewJaroWinkler()
	candidate := strings.ToLower(raw.Label())
	for _, entry := range playlist {
		if strutil.Similarity(candidate, strings.ToLower(entry), jw) >= duplicateThreshold {
			return true
		}
	}
	return false
}

// scoreSuggestions runs batch popularity fusion over the embedded
// enriched tracks.
func scoreSuggestions(suggestions []domain.Suggestion, cfg analysis.PopularityConfig) {
	tracks := make([]domain.EnrichedTrack, len(suggestions))
	for i := range suggestions {
		tracks[i] = suggestions[i].EnrichedTrack
	}
	analysis.AddCombinedPopularity(tracks, cfg)
	for i := range suggestions {
		suggestions[i].CombinedPopularity = tracks[i].CombinedPopularity
	}
}
