// Package analysis implements the pure scoring logic of the enrichment
// pipeline: popularity normalization and fusion, the mood engine, and
// batch summary statistics.
package analysis

import "math"

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeLinear scales value to 0-100 within [min, max]. A degenerate
// range (min == max) carries no signal and maps to 0.
func NormalizeLinear(value, min, max float64) float64 {
	if min == max {
		return 0
	}
	return round2(100 * (value - min) / (max - min))
}

// NormalizeLog scales value to 0-100 on a log10 scale within [min, max].
// Listener counts span orders of magnitude, so a handful of global hits
// must not saturate the scale. Returns 0 for non-positive values and for
// ranges where the log is undefined.
func NormalizeLog(value, min, max float64) float64 {
	if value <= 0 || min <= 0 || min == max {
		return 0
	}
	score := 100 * (math.Log10(value) - math.Log10(min)) / (math.Log10(max) - math.Log10(min))
	return round2(math.Max(0, math.Min(score, 100)))
}

// FusePopularity combines a global popularity score with a library-local
// one. A nil or zero source is treated as absent and the other wins
// unscaled. Both absent yields nil, which callers must propagate rather
// than coerce to 0.
func FusePopularity(global, local *float64, wGlobal, wLocal float64) *float64 {
	switch {
	case (local == nil || *local == 0) && global != nil:
		v := round2(*global)
		return &v
	case (global == nil || *global == 0) && local != nil:
		v := round2(*local)
		return &v
	case global != nil && local != nil:
		v := round2((*global*wGlobal + *local*wLocal) / (wGlobal + wLocal))
		return &v
	default:
		return nil
	}
}
