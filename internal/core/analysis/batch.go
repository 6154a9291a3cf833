package analysis

import "github.com/ewilliams-labs/cadence/internal/core/domain"

// PopularityConfig bounds and weights for cross-source popularity fusion.
// GlobalMinListeners/GlobalMaxListeners anchor the log scale: the floor of
// "obscure" and the ceiling of "globally huge" listener counts. The
// library-local play count weighs higher than global fame because plays in
// this user's library are the stronger relevance signal.
type PopularityConfig struct {
	GlobalMinListeners float64
	GlobalMaxListeners float64
	GlobalWeight       float64
	LibraryWeight      float64
}

// DefaultPopularityConfig mirrors the tuned production values.
var DefaultPopularityConfig = PopularityConfig{
	GlobalMinListeners: 10_000,
	GlobalMaxListeners: 15_000_000,
	GlobalWeight:       0.3,
	LibraryWeight:      0.7,
}

// AddCombinedPopularity computes CombinedPopularity for a whole batch.
// Library play counts are normalized against the batch's own min/max, so
// the range pass must complete before any track is scored (two passes,
// never streaming). A track with neither signal keeps a nil score; nil
// must propagate, never default to zero.
func AddCombinedPopularity(tracks []domain.EnrichedTrack, cfg PopularityConfig) {
	minPlays, maxPlays := playCountRange(tracks)

	for i := range tracks {
		t := &tracks[i]

		var normGlobal *float64
		if t.Popularity > 0 {
			v := NormalizeLog(float64(t.Popularity), cfg.GlobalMinListeners, cfg.GlobalMaxListeners)
			normGlobal = &v
		}
		var normLocal *float64
		if t.LibraryPlayCount != nil {
			v := NormalizeLinear(float64(*t.LibraryPlayCount), minPlays, maxPlays)
			normLocal = &v
		}

		t.CombinedPopularity = FusePopularity(normGlobal, normLocal, cfg.GlobalWeight, cfg.LibraryWeight)
	}
}

func playCountRange(tracks []domain.EnrichedTrack) (min, max float64) {
	first := true
	for _, t := range tracks {
		if t.LibraryPlayCount == nil {
			continue
		}
		v := float64(*t.LibraryPlayCount)
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
