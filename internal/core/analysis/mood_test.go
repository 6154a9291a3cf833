package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

func TestTagScores(t *testing.T) {
	scores := TagScores([]string{"Happy", "Dance", "Party", "Dark vibe"})

	assert.Equal(t, 1.0, scores["happy"])
	// "dance" and "party" are both exact party keywords.
	assert.Equal(t, 2.0, scores["party"])
	// "dark" is an intense keyword first; intense precedes dark in
	// scoring order.
	assert.Equal(t, 1.0, scores["intense"])
	assert.Equal(t, 0.0, scores["dark"])
}

func TestTagScoresFirstMatchWins(t *testing.T) {
	// A tag scores at most one mood even when it matches several
	// keyword sets.
	scores := TagScores([]string{"dark"})
	assert.Equal(t, 1.0, scores["intense"])
	assert.Equal(t, 0.0, scores["dark"])
}

func TestTagScoresPartyNeedsExactMatch(t *testing.T) {
	scores := TagScores([]string{"dance-punk"})
	assert.Equal(t, 0.0, scores["party"])

	scores = TagScores([]string{"Dance"})
	assert.Equal(t, 1.0, scores["party"])
}

func TestTagScoresIgnoresPunctuation(t *testing.T) {
	scores := TagScores([]string{"Feel Good!!"})
	assert.Equal(t, 1.0, scores["happy"])
}

func TestFeatureScores(t *testing.T) {
	feats := domain.AudioFeatures{BPM: 120, Key: "C", Danceability: 80, Acousticness: 20}
	scores := FeatureScores(feats)

	assert.Equal(t, 1.5, scores["party"])
	assert.Equal(t, 2.0, scores["happy"])
	assert.Equal(t, 1.0, scores["uplifting"])
	assert.Equal(t, 0.0, scores["sad"])
}

func TestFeatureScoresMinorKeySlow(t *testing.T) {
	feats := domain.AudioFeatures{BPM: 75, Key: "Am", Danceability: 25, Acousticness: 30}
	scores := FeatureScores(feats)

	// sad primary + bpm<90, bpm<80 and danceability<30 fallbacks.
	assert.Equal(t, 1.0+0.5+0.5, scores["sad"])
	assert.Equal(t, 0.5+0.5, scores["chill"])
	assert.Equal(t, 1.0, scores["dark"])
}

func TestFeatureScoresZeroBPMSkipsTempoRules(t *testing.T) {
	scores := FeatureScores(domain.AudioFeatures{Key: "C", Danceability: 50, Acousticness: 50})
	for mood, score := range scores {
		assert.Zero(t, score, "mood %s", mood)
	}
}

func TestLyricsScores(t *testing.T) {
	scores := LyricsScores("Melancholy")
	assert.Equal(t, 1.0, scores["sad"])

	scores = LyricsScores("hopeful")
	assert.Equal(t, 1.0, scores["uplifting"])

	scores = LyricsScores("bewildering")
	assert.Equal(t, 0.0, sum(scores))
}

func TestCombineMoodScoresPartyTrack(t *testing.T) {
	tagScores := TagScores([]string{"Happy", "Dance", "Party", "Dark vibe"})
	featScores := FeatureScores(domain.AudioFeatures{BPM: 120, Key: "C", Danceability: 80, Acousticness: 20})

	mood, confidence := CombineMoodScores(tagScores, featScores, nil, DefaultSourceWeights)

	assert.Equal(t, "party", mood)
	assert.Greater(t, confidence, 0.7)
	assert.Less(t, confidence, 0.8)
}

func TestCombineMoodScoresSingleSourceBoost(t *testing.T) {
	tagScores := TagScores([]string{"happy"})

	mood, confidence := CombineMoodScores(tagScores, zeroScores(), nil, DefaultSourceWeights)

	assert.Equal(t, "happy", mood)
	// A clearly dominant lone source gets the confidence floor.
	assert.Equal(t, 0.6, confidence)
}

func TestCombineMoodScoresNoSignal(t *testing.T) {
	mood, confidence := CombineMoodScores(zeroScores(), zeroScores(), nil, DefaultSourceWeights)

	assert.Equal(t, MoodUnknown, mood)
	assert.Zero(t, confidence)
}

func TestCombineMoodScoresTieBreak(t *testing.T) {
	// sad and chill score identically; chill precedes sad in tie order.
	tagScores := TagScores([]string{"sad", "chill"})

	mood, _ := CombineMoodScores(tagScores, zeroScores(), nil, DefaultSourceWeights)
	assert.Equal(t, "chill", mood)
}

func TestCombineMoodScoresLyricsOnly(t *testing.T) {
	mood, confidence := CombineMoodScores(zeroScores(), zeroScores(), LyricsScores("melancholy"), DefaultSourceWeights)

	assert.Equal(t, "sad", mood)
	assert.Greater(t, confidence, 0.6)
}

func TestCombineMoodScoresDeterministic(t *testing.T) {
	tagScores := TagScores([]string{"Happy", "Dance", "Party", "Dark vibe"})
	featScores := FeatureScores(domain.AudioFeatures{BPM: 120, Key: "C", Danceability: 80, Acousticness: 20})

	firstMood, firstConf := CombineMoodScores(tagScores, featScores, nil, DefaultSourceWeights)
	for i := 0; i < 50; i++ {
		mood, conf := CombineMoodScores(tagScores, featScores, nil, DefaultSourceWeights)
		assert.Equal(t, firstMood, mood)
		assert.Equal(t, firstConf, conf)
	}
}
