// Package services wires the source adapters and the analysis engine
// into the track enrichment pipeline.
package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/cadence/internal/core/analysis"
	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// Enricher coordinates the per-track fan-out to the external sources and
// fuses their answers into an EnrichedTrack.
type Enricher struct {
	tags       ports.TagProvider
	features   ports.AudioFeatureProvider
	classifier ports.MoodClassifier
	catalogs   []ports.CatalogProvider // fixed priority order, first hit wins

	weights       analysis.SourceWeights
	popularity    analysis.PopularityConfig
	lyricsEnabled bool
	concurrency   int
	log           hclog.Logger
}

// EnricherOptions configures an Enricher.
type EnricherOptions struct {
	Weights       analysis.SourceWeights
	Popularity    analysis.PopularityConfig
	LyricsEnabled bool
	Concurrency   int
}

// NewEnricher constructs an Enricher. classifier may be nil when lyrics
// classification is disabled; catalogs may be empty.
func NewEnricher(
	tags ports.TagProvider,
	features ports.AudioFeatureProvider,
	classifier ports.MoodClassifier,
	catalogs []ports.CatalogProvider,
	opts EnricherOptions,
	log hclog.Logger,
) *Enricher {
	if opts.Concurrency < 1 {
		opts.Concurrency = 10
	}
	if opts.Weights == (analysis.SourceWeights{}) {
		opts.Weights = analysis.DefaultSourceWeights
	}
	if opts.Popularity == (analysis.PopularityConfig{}) {
		opts.Popularity = analysis.DefaultPopularityConfig
	}
	return &Enricher{
		tags:          tags,
		features:      features,
		classifier:    classifier,
		catalogs:      catalogs,
		weights:       opts.Weights,
		popularity:    opts.Popularity,
		lyricsEnabled: opts.LyricsEnabled,
		concurrency:   opts.Concurrency,
		log:           log.Named("enricher"),
	}
}

// EnrichTrack runs the single-pass enrichment pipeline for one track.
// The only error it can return is a MissingMetadataError from input
// validation; every adapter failure degrades to an absent field.
func (e *Enricher) EnrichTrack(ctx context.Context, raw domain.RawTrack) (domain.EnrichedTrack, error) {
	if err := raw.Validate(); err != nil {
		return domain.EnrichedTrack{}, fmt.Errorf("services: %w", err)
	}

	var (
		tagInfo      ports.TagInfo
		feats        domain.AudioFeatures
		catalog      ports.CatalogTrack
		featsFound   bool
		catalogFound bool
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		tagInfo, _ = e.tags.Lookup(ctx, raw.Title, raw.Artist)
	}()
	go func() {
		defer wg.Done()
		feats, featsFound = e.features.Features(ctx, raw.Title, raw.Artist)
	}()
	go func() {
		defer wg.Done()
		catalog, catalogFound = e.searchCatalogs(ctx, raw.Title, raw.Artist)
	}()
	wg.Wait()

	genre := analysis.SelectGenre(raw.Genres, tagInfo.Tags)
	if genre == "" {
		genre = "Unknown"
	}

	tempo := e.resolveTempo(raw, feats, featsFound)
	duration := resolveDuration(raw, feats, catalog, catalogFound)
	finalYear, yearFlag := resolveYear(raw.Year, feats, featsFound)
	if finalYear == "" && catalogFound {
		finalYear = catalog.Year
	}

	mood, confidence := e.resolveMood(ctx, raw, tagInfo.Tags, feats)

	album := tagInfo.Album
	if album == "" && catalogFound {
		album = catalog.Album
	}

	e.log.Debug("enriched track",
		"title", raw.Title, "artist", raw.Artist,
		"genre", genre, "mood", mood, "listeners", tagInfo.Listeners)

	return domain.EnrichedTrack{
		RawTrack:         raw,
		Tags:             tagInfo.Tags,
		Genre:            genre,
		Mood:             mood,
		MoodConfidence:   confidence,
		ResolvedTempo:    tempo,
		Decade:           domain.InferDecade(finalYear),
		Duration:         duration,
		Popularity:       tagInfo.Listeners,
		LibraryPlayCount: raw.PlayCount,
		YearFlag:         yearFlag,
		FinalYear:        finalYear,
		ResolvedAlbum:    album,
	}, nil
}

// EnrichBatch enriches tracks concurrently, bounded to keep third-party
// rate limits intact, then computes batch-relative combined popularity.
// Tracks rejected for missing metadata are skipped, never the batch.
func (e *Enricher) EnrichBatch(ctx context.Context, raws []domain.RawTrack) []domain.EnrichedTrack {
	results := make([]*domain.EnrichedTrack, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, raw := range raws {
		g.Go(func() error {
			enriched, err := e.EnrichTrack(gctx, raw)
			if err != nil {
				e.log.Warn("skipping track", "title", raw.Title, "artist", raw.Artist, "error", err)
				return nil
			}
			results[i] = &enriched
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	enriched := make([]domain.EnrichedTrack, 0, len(raws))
	for _, r := range results {
		if r != nil {
			enriched = append(enriched, *r)
		}
	}
	analysis.AddCombinedPopularity(enriched, e.popularity)
	return enriched
}

// SummarizeBatch computes batch statistics for enriched tracks.
func (e *Enricher) SummarizeBatch(tracks []domain.EnrichedTrack) analysis.SummaryStats {
	return analysis.Summarize(tracks)
}

func (e *Enricher) searchCatalogs(ctx context.Context, title, artist string) (ports.CatalogTrack, bool) {
	for _, catalog := range e.catalogs {
		if track, ok := catalog.Search(ctx, title, artist); ok {
			e.log.Debug("catalog hit", "catalog", catalog.Name(), "title", title)
			return track, true
		}
	}
	return ports.CatalogTrack{}, false
}

func (e *Enricher) resolveTempo(raw domain.RawTrack, feats domain.AudioFeatures, featsFound bool) *int {
	if featsFound && feats.BPM != 0 {
		bpm := feats.BPM
		return &bpm
	}
	if raw.Tempo != 0 {
		tempo := raw.Tempo
		return &tempo
	}
	return nil
}

func resolveDuration(raw domain.RawTrack, feats domain.AudioFeatures, catalog ports.CatalogTrack, catalogFound bool) int {
	if raw.RunTimeTicks > 0 {
		return int(raw.RunTimeTicks / domain.TicksPerSecond)
	}
	if feats.Duration > 0 {
		return feats.Duration
	}
	if catalogFound && catalog.DurationMS > 0 {
		return catalog.DurationMS / 1000
	}
	return 0
}

// resolveYear prefers the BPM service's year over the library's. When
// both exist and disagree by more than one year the conflict is worth a
// note, not a failure.
func resolveYear(libraryYear string, feats domain.AudioFeatures, featsFound bool) (finalYear, yearFlag string) {
	featYear := 0
	if featsFound {
		featYear = feats.Year
	}

	switch {
	case featYear != 0:
		finalYear = strconv.Itoa(featYear)
	case libraryYear != "":
		finalYear = libraryYear
	}

	if featYear != 0 && libraryYear != "" {
		if libYear, err := strconv.Atoi(libraryYear); err == nil {
			diff := libYear - featYear
			if diff < 0 {
				diff = -diff
			}
			if diff > 1 {
				yearFlag = fmt.Sprintf("BPM service year %d or library year %d", featYear, libYear)
			}
		}
	}
	return finalYear, yearFlag
}

func (e *Enricher) resolveMood(ctx context.Context, raw domain.RawTrack, tags []string, feats domain.AudioFeatures) (string, float64) {
	tagScores := analysis.TagScores(tags)
	featScores := analysis.FeatureScores(feats)

	var lyricsScores map[string]float64
	if e.lyricsEnabled && e.classifier != nil && raw.Lyrics != "" {
		if word, ok := e.classifier.ClassifyLyrics(ctx, raw.Lyrics); ok {
			lyricsScores = analysis.LyricsScores(word)
		}
	}

	return analysis.CombineMoodScores(tagScores, featScores, lyricsScores, e.weights)
}
