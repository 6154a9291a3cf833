package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// MoodUnknown is the terminal label when no source carries enough signal.
const MoodUnknown = "unknown"

// Moods is the fixed vocabulary, in scoring order. Tag matching stops at
// the first mood whose keyword set matches, so this order is part of the
// contract.
var Moods = []string{
	"happy", "sad", "chill", "intense", "romantic",
	"dark", "uplifting", "nostalgic", "party",
}

// moodKeywords maps each mood to the tag substrings that score it.
var moodKeywords = map[string][]string{
	"happy":     {"happy", "fun", "cheerful", "feel good", "sunny"},
	"sad":       {"sad", "melancholy", "emotional", "heartbreak", "blue"},
	"chill":     {"chill", "relaxing", "calm", "downtempo", "smooth"},
	"intense":   {"aggressive", "intense", "dark", "heavy", "angry", "epic"},
	"romantic":  {"romantic", "love", "sensual"},
	"dark":      {"dark", "gothic", "ominous"},
	"uplifting": {"uplifting", "inspiring", "empowering", "anthem"},
	"nostalgic": {"nostalgic", "retro", "vintage"},
	"party":     {"party", "club", "dance"},
}

// moodMultipliers weight rarer, more specific moods up so the generic
// ones do not dominate ties.
var moodMultipliers = map[string]float64{
	"happy":     0.9,
	"sad":       1.0,
	"chill":     1.0,
	"intense":   1.0,
	"romantic":  1.2,
	"dark":      1.2,
	"uplifting": 1.3,
	"nostalgic": 1.3,
	"party":     1.3,
}

// tieOrder breaks exact score ties.
var tieOrder = []string{
	"romantic", "chill", "uplifting", "party",
	"happy", "nostalgic", "sad", "dark", "intense",
}

// SourceWeights are the relative weights of the three mood sources.
// Lyrics weigh highest: they are the most semantically direct signal.
type SourceWeights struct {
	Tags     float64
	Features float64
	Lyrics   float64
}

// DefaultSourceWeights mirrors the tuned production weighting.
var DefaultSourceWeights = SourceWeights{Tags: 0.7, Features: 1.0, Lyrics: 1.5}

func zeroScores() map[string]float64 {
	s := make(map[string]float64, len(Moods))
	for _, m := range Moods {
		s[m] = 0
	}
	return s
}

var tagCleaner = regexp.MustCompile(`[^a-z0-9\s\-]`)

// TagScores scores social tags against the mood keyword sets. Each tag
// matches at most one mood (first in scoring order wins). The party mood
// requires an exact match: "dance" and friends are substrings of too many
// generic tags.
func TagScores(tags []string) map[string]float64 {
	scores := zeroScores()
	for _, tag := range tags {
		cleaned := tagCleaner.ReplaceAllString(strings.ToLower(strings.TrimSpace(tag)), "")
		for _, mood := range Moods {
			matched := false
			for _, keyword := range moodKeywords[mood] {
				if mood == "party" {
					if cleaned == keyword {
						matched = true
					}
				} else if strings.Contains(cleaned, keyword) {
					matched = true
				}
				if matched {
					scores[mood]++
					break
				}
			}
			if matched {
				break
			}
		}
	}
	return scores
}

// featureRule is one row of the audio-feature scoring table. Rules are
// independent and additive: a track can satisfy several at once.
type featureRule struct {
	when   func(f domain.AudioFeatures) bool
	moods  []string
	weight float64
}

func isMinor(key string) bool {
	return strings.Contains(strings.ToLower(key), "m")
}

var featureRules = []featureRule{
	// High-confidence primary rules.
	{func(f domain.AudioFeatures) bool {
		return f.BPM >= 110 && f.BPM <= 140 && f.Danceability > 65 && f.Acousticness < 40
	}, []string{"party"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.BPM != 0 && f.BPM < 95 && f.Acousticness > 50 && f.Danceability < 55
	}, []string{"chill"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.BPM > 125 && f.Acousticness < 30 && f.Danceability > 55
	}, []string{"intense"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.BPM != 0 && f.BPM < 95 && f.Acousticness > 55 && !isMinor(f.Key)
	}, []string{"romantic"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.BPM > 95 && !isMinor(f.Key) && f.Acousticness < 50 && f.Danceability > 55
	}, []string{"uplifting"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.Year != 0 && f.Year < 2005 && f.Acousticness > 45 && f.BPM != 0 && f.BPM < 105
	}, []string{"nostalgic"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.BPM != 0 && f.BPM < 115 && isMinor(f.Key) && f.Acousticness < 40
	}, []string{"dark"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.BPM > 105 && !isMinor(f.Key) && f.Danceability > 55
	}, []string{"happy"}, 1.0},
	{func(f domain.AudioFeatures) bool {
		return f.BPM != 0 && f.BPM < 90 && isMinor(f.Key) && f.Danceability < 55
	}, []string{"sad"}, 1.0},

	// Low-confidence fallbacks on single thresholds.
	{func(f domain.AudioFeatures) bool { return f.BPM > 130 }, []string{"intense"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.BPM > 110 }, []string{"happy"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.BPM >= 90 && f.BPM <= 110 }, []string{"uplifting"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.BPM != 0 && f.BPM < 90 }, []string{"chill"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.BPM != 0 && f.BPM < 80 }, []string{"sad"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.Acousticness > 60 }, []string{"chill", "romantic"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.Acousticness < 20 }, []string{"intense"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.Danceability > 70 }, []string{"party", "happy"}, 0.5},
	{func(f domain.AudioFeatures) bool { return f.Danceability < 30 }, []string{"sad", "chill"}, 0.5},
}

// FeatureScores runs the audio-feature rule table. Scores accumulate
// across rules; agreement between heuristics is a richer signal than any
// single rule.
func FeatureScores(f domain.AudioFeatures) map[string]float64 {
	scores := zeroScores()
	for _, rule := range featureRules {
		if rule.when(f) {
			for _, mood := range rule.moods {
				scores[mood] += rule.weight
			}
		}
	}
	return scores
}

// lyricsMoodSynonyms maps the classifier's free-text mood word to the
// canonical vocabulary.
var lyricsMoodSynonyms = map[string]string{
	"happy":      "happy",
	"sad":        "sad",
	"melancholy": "sad",
	"chill":      "chill",
	"relaxing":   "chill",
	"calm":       "chill",
	"angry":      "intense",
	"aggressive": "intense",
	"romantic":   "romantic",
	"dark":       "dark",
	"uplifting":  "uplifting",
	"hopeful":    "uplifting",
	"nostalgic":  "nostalgic",
	"party":      "party",
}

// LyricsScores converts the lyrics classifier's one-word verdict into a
// score map: 1.0 on the mapped mood, zero elsewhere. Unmapped words yield
// all zeros, which fusion treats as an absent source.
func LyricsScores(moodWord string) map[string]float64 {
	scores := zeroScores()
	if mapped, ok := lyricsMoodSynonyms[strings.ToLower(strings.TrimSpace(moodWord))]; ok {
		scores[mapped] = 1.0
	}
	return scores
}

func sum(scores map[string]float64) float64 {
	var total float64
	for _, v := range scores {
		total += v
	}
	return total
}

func scale(scores map[string]float64, factor float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for m, v := range scores {
		out[m] = v * factor
	}
	return out
}

type moodScore struct {
	mood  string
	score float64
}

// CombineMoodScores fuses tag, audio-feature and optional lyrics scores
// into a single mood label with a confidence in [0,1]. lyricsScores may
// be nil when the source is absent.
func CombineMoodScores(tagScores, featScores, lyricsScores map[string]float64, w SourceWeights) (string, float64) {
	tagSum := sum(tagScores)
	featSum := sum(featScores)
	var lyricsSum float64
	if lyricsScores != nil {
		lyricsSum = sum(lyricsScores)
	}

	// A lone source gets amplified: it is not corroborated, but it is
	// not diluted by the weighting either.
	if tagSum > 0 && featSum == 0 && lyricsSum == 0 {
		tagScores = scale(tagScores, 1.5)
	}
	if featSum > 0 && tagSum == 0 && lyricsSum == 0 {
		featScores = scale(featScores, 1.5)
	}
	if lyricsSum > 0 && tagSum == 0 && featSum == 0 {
		lyricsScores = scale(lyricsScores, 1.5)
	}

	combined := make([]moodScore, 0, len(Moods))
	for _, mood := range Moods {
		score := w.Tags*tagScores[mood] + w.Features*featScores[mood]
		if lyricsScores != nil {
			score += w.Lyrics * lyricsScores[mood]
		}
		combined = append(combined, moodScore{mood, score * moodMultipliers[mood]})
	}

	// Keep the top 3 only; everything below is noise. The sort is keyed
	// on score with the vocabulary order as a stable secondary, so map
	// iteration order never leaks into the result.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].score > combined[j].score
	})
	top := combined[:3]

	if top[0].score < 0.3 {
		return MoodUnknown, 0.0
	}

	var totalExp float64
	for _, ms := range top {
		totalExp += math.Exp(ms.score)
	}
	confidence := math.Exp(top[0].score) / totalExp

	// A clearly dominant top score deserves at least moderate confidence
	// even when the softmax is flat.
	if top[0].score >= 1.5*top[1].score && confidence < 0.6 {
		confidence = 0.6
	}

	best := top[0].mood
	for _, mood := range tieOrder {
		if tied(top, mood, top[0].score) {
			best = mood
			break
		}
	}

	return best, round2(confidence)
}

func tied(top []moodScore, mood string, score float64) bool {
	for _, ms := range top {
		if ms.mood == mood && ms.score == score {
			return true
		}
	}
	return false
}
