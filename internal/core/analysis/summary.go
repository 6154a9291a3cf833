package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// Tempo range bucket labels.
const (
	TempoSlow = "<90 BPM"
	TempoMid  = "90-120 BPM"
	TempoFast = ">120 BPM"
)

// SummaryStats describes a batch of enriched tracks for the UI and for
// suggestion prompts.
type SummaryStats struct {
	DominantGenre     string            `json:"dominant_genre"`
	MoodProfile       map[string]string `json:"mood_profile"`
	TempoAvg          int               `json:"tempo_avg"`
	Decades           map[string]string `json:"decades"`
	GenreDiversity    float64           `json:"genre_diversity_score"`
	AvgDuration       int               `json:"avg_duration"`
	GenreDistribution map[string]string `json:"genre_distribution"`
	MoodDistribution  map[string]string `json:"mood_distribution"`
	TempoRanges       map[string]string `json:"tempo_ranges"`
	AvgListeners      float64           `json:"avg_listeners"`
	AvgPopularity     float64           `json:"avg_popularity"`
	Outliers          []Outlier         `json:"outliers"`
}

// Outlier flags a track that deviates from the batch profile.
type Outlier struct {
	Title   string   `json:"title"`
	Reasons []string `json:"reasons"`
}

// MostCommon returns the mode of values, or "Unknown" when empty. Ties go
// to the value seen first.
func MostCommon(values []string) string {
	if len(values) == 0 {
		return "Unknown"
	}
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// PercentDistribution maps each value to its floored percentage share.
func PercentDistribution(values []string) map[string]string {
	total := len(values)
	if total == 0 {
		return map[string]string{}
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	out := make(map[string]string, len(counts))
	for v, n := range counts {
		out[v] = fmt.Sprintf("%d%%", n*100/total)
	}
	return out
}

// NormalizedEntropy is the Shannon entropy of values scaled to [0,1].
// Fewer than two distinct values means maximum entropy is undefined, so
// the diversity is 0.
func NormalizedEntropy(values []string) float64 {
	total := len(values)
	if total == 0 {
		return 0
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	maxEntropy := math.Log2(float64(len(counts)))
	if maxEntropy <= 0 {
		return 0
	}
	var entropy float64
	for _, n := range counts {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return round2(entropy / maxEntropy)
}

func averageTempo(tracks []domain.EnrichedTrack) int {
	var sum, n int
	for _, t := range tracks {
		if t.ResolvedTempo != nil {
			sum += *t.ResolvedTempo
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func averageDuration(tracks []domain.EnrichedTrack) int {
	var sum, n int
	for _, t := range tracks {
		if t.Duration > 0 {
			sum += t.Duration
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func classifyTempoRanges(tracks []domain.EnrichedTrack) map[string]string {
	var buckets []string
	for _, t := range tracks {
		if t.ResolvedTempo == nil {
			continue
		}
		switch tempo := *t.ResolvedTempo; {
		case tempo < 90:
			buckets = append(buckets, TempoSlow)
		case tempo <= 120:
			buckets = append(buckets, TempoMid)
		default:
			buckets = append(buckets, TempoFast)
		}
	}
	return PercentDistribution(buckets)
}

// Summarize computes batch statistics over enriched tracks. Tracks with a
// nil combined popularity are excluded from the popularity average rather
// than counted as zero.
func Summarize(tracks []domain.EnrichedTrack) SummaryStats {
	var genres, moods, decades []string
	var listenerSum float64
	var popularitySum float64
	popularityCount := 0
	for _, t := range tracks {
		if t.Genre != "" {
			genres = append(genres, t.Genre)
		}
		if t.Mood != "" {
			moods = append(moods, t.Mood)
		}
		if t.Decade != "" {
			decades = append(decades, t.Decade)
		}
		listenerSum += float64(t.Popularity)
		if t.CombinedPopularity != nil {
			popularitySum += *t.CombinedPopularity
			popularityCount++
		}
	}

	var avgListeners, avgPopularity float64
	if len(tracks) > 0 {
		avgListeners = listenerSum / float64(len(tracks))
	}
	if popularityCount > 0 {
		avgPopularity = popularitySum / float64(popularityCount)
	}

	stats := SummaryStats{
		DominantGenre:     MostCommon(genres),
		MoodProfile:       PercentDistribution(moods),
		TempoAvg:          averageTempo(tracks),
		Decades:           PercentDistribution(decades),
		GenreDiversity:    NormalizedEntropy(genres),
		AvgDuration:       averageDuration(tracks),
		GenreDistribution: PercentDistribution(genres),
		MoodDistribution:  PercentDistribution(moods),
		TempoRanges:       classifyTempoRanges(tracks),
		AvgListeners:      avgListeners,
		AvgPopularity:     avgPopularity,
	}
	stats.Outliers = DetectOutliers(tracks, stats)
	return stats
}

// DetectOutliers flags tracks deviating strongly from the batch profile
// and returns at most five, ordered by how many criteria they trip.
func DetectOutliers(tracks []domain.EnrichedTrack, stats SummaryStats) []Outlier {
	outliers := make([]Outlier, 0, len(tracks))
	for _, t := range tracks {
		var reasons []string

		if t.ResolvedTempo != nil && math.Abs(float64(*t.ResolvedTempo-stats.TempoAvg)) > 40 {
			reasons = append(reasons, "tempo")
		}
		if t.Genre != "" && stats.DominantGenre != "Unknown" &&
			!strings.EqualFold(t.Genre, stats.DominantGenre) {
			reasons = append(reasons, "genre")
		}
		if t.Mood == "" || t.Mood == MoodUnknown || t.MoodConfidence < 0.3 {
			reasons = append(reasons, "mood")
		}
		if float64(t.Popularity) < stats.AvgListeners*0.05 {
			reasons = append(reasons, "popularity")
		}
		if t.YearFlag != "" {
			reasons = append(reasons, "year")
		}

		if len(reasons) > 0 {
			outliers = append(outliers, Outlier{Title: t.Title, Reasons: reasons})
		}
	}
	sort.SliceStable(outliers, func(i, j int) bool {
		return len(outliers[i].Reasons) > len(outliers[j].Reasons)
	})
	if len(outliers) > 5 {
		outliers = outliers[:5]
	}
	return outliers
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ExtractYear pulls a four-digit year out of a free-form release date
// string, "" when absent.
func ExtractYear(releaseDate string) string {
	return yearPattern.FindString(releaseDate)
}
