package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestMostCommon(t *testing.T) {
	assert.Equal(t, "rock", MostCommon([]string{"rock", "jazz", "rock"}))
	assert.Equal(t, "Unknown", MostCommon(nil))
	// Ties go to the value seen first.
	assert.Equal(t, "jazz", MostCommon([]string{"jazz", "rock"}))
}

func TestPercentDistribution(t *testing.T) {
	got := PercentDistribution([]string{"rock", "rock", "jazz"})
	assert.Equal(t, map[string]string{"rock": "66%", "jazz": "33%"}, got)

	assert.Empty(t, PercentDistribution(nil))
}

func TestNormalizedEntropy(t *testing.T) {
	// A single distinct value has no diversity.
	assert.Equal(t, 0.0, NormalizedEntropy([]string{"rock", "rock"}))
	assert.Equal(t, 0.0, NormalizedEntropy(nil))

	// An even two-way split is maximally diverse.
	assert.Equal(t, 1.0, NormalizedEntropy([]string{"rock", "jazz"}))

	// Skew reduces diversity below the maximum.
	skewed := NormalizedEntropy([]string{"rock", "rock", "rock", "jazz"})
	assert.Greater(t, skewed, 0.0)
	assert.Less(t, skewed, 1.0)
}

func TestSummarize(t *testing.T) {
	tracks := []domain.EnrichedTrack{
		{
			RawTrack:           domain.RawTrack{Title: "A"},
			Genre:              "rock",
			Mood:               "happy",
			Decade:             "1990s",
			ResolvedTempo:      intPtr(120),
			Duration:           200,
			Popularity:         1000,
			CombinedPopularity: floatPtr(80),
		},
		{
			RawTrack:           domain.RawTrack{Title: "B"},
			Genre:              "rock",
			Mood:               "party",
			Decade:             "1990s",
			ResolvedTempo:      intPtr(100),
			Duration:           180,
			Popularity:         3000,
			CombinedPopularity: floatPtr(40),
		},
		{
			RawTrack: domain.RawTrack{Title: "C"},
			Genre:    "rock",
			Mood:     "happy",
			Decade:   "2000s",
			Duration: 220,
			// No popularity signal; must not drag the average down.
			CombinedPopularity: nil,
		},
	}

	stats := Summarize(tracks)

	assert.Equal(t, "rock", stats.DominantGenre)
	assert.Equal(t, 110, stats.TempoAvg)
	assert.Equal(t, 200, stats.AvgDuration)
	assert.Equal(t, map[string]string{"1990s": "66%", "2000s": "33%"}, stats.Decades)
	assert.Equal(t, "66%", stats.MoodProfile["happy"])
	assert.Equal(t, 0.0, stats.GenreDiversity)

	assert.InDelta(t, 1333.33, stats.AvgListeners, 0.01)
	// Average over the two tracks that have a score, not all three.
	assert.InDelta(t, 60.0, stats.AvgPopularity, 0.001)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil)
	assert.Equal(t, "Unknown", stats.DominantGenre)
	assert.Zero(t, stats.TempoAvg)
	assert.Zero(t, stats.AvgPopularity)
	assert.Empty(t, stats.Outliers)
}

func TestDetectOutliers(t *testing.T) {
	tracks := []domain.EnrichedTrack{
		{RawTrack: domain.RawTrack{Title: "fits"}, Genre: "rock", Mood: "happy", MoodConfidence: 0.8, ResolvedTempo: intPtr(120), Popularity: 10_000},
		{RawTrack: domain.RawTrack{Title: "tempo outlier"}, Genre: "rock", Mood: "happy", MoodConfidence: 0.8, ResolvedTempo: intPtr(190), Popularity: 10_000},
		{RawTrack: domain.RawTrack{Title: "genre outlier"}, Genre: "jazz", Mood: "happy", MoodConfidence: 0.8, ResolvedTempo: intPtr(120), Popularity: 10_000},
		{RawTrack: domain.RawTrack{Title: "shaky"}, Genre: "jazz", Mood: "unknown", MoodConfidence: 0, ResolvedTempo: intPtr(120), Popularity: 10, YearFlag: "conflict"},
	}
	tracks = append(tracks, domain.EnrichedTrack{
		RawTrack: domain.RawTrack{Title: "pad"}, Genre: "rock", Mood: "happy",
		MoodConfidence: 0.8, ResolvedTempo: intPtr(120), Popularity: 10_000,
	})

	stats := Summarize(tracks)
	outliers := stats.Outliers

	require.NotEmpty(t, outliers)
	// The track tripping the most criteria sorts first.
	assert.Equal(t, "shaky", outliers[0].Title)
	assert.Contains(t, outliers[0].Reasons, "mood")
	assert.Contains(t, outliers[0].Reasons, "year")
	assert.Contains(t, outliers[0].Reasons, "genre")

	titles := make([]string, 0, len(outliers))
	for _, o := range outliers {
		titles = append(titles, o.Title)
	}
	assert.Contains(t, titles, "tempo outlier")
	assert.Contains(t, titles, "genre outlier")
	assert.NotContains(t, titles, "fits")
	assert.LessOrEqual(t, len(outliers), 5)
}

func TestDetectOutliersUnknownDominantGenre(t *testing.T) {
	// With no dominant genre there is nothing to deviate from.
	tracks := []domain.EnrichedTrack{
		{RawTrack: domain.RawTrack{Title: "A"}, Genre: "", Mood: "happy", MoodConfidence: 0.8, Popularity: 100},
		{RawTrack: domain.RawTrack{Title: "B"}, Genre: "", Mood: "happy", MoodConfidence: 0.8, Popularity: 100},
	}

	stats := Summarize(tracks)
	for _, o := range stats.Outliers {
		assert.NotContains(t, o.Reasons, "genre")
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01 Jan 2001, 12:00", "2001"},
		{"released 1985-03-01", "1985"},
		{"2026", "2026"},
		{"n/a", ""},
		{"", ""},
		{"12345", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractYear(tt.in), "input %q", tt.in)
	}
}
