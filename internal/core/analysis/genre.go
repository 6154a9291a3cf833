package analysis

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// CleanGenre normalizes capitalization and whitespace, " hip hop " -> "Hip Hop".
func CleanGenre(genre string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(genre)))
}

// genreSynonyms collapses common variants onto canonical genre names.
var genreSynonyms = map[string]string{
	// Hip hop and R&B
	"hip-hop":          "hip hop",
	"rap":              "hip hop",
	"trap":             "hip hop",
	"rnb":              "r&b",
	"rhythm and blues": "r&b",
	// Rock
	"alt rock":         "alternative",
	"alternative rock": "alternative",
	"classic rock":     "rock",
	"hard rock":        "rock",
	"indie rock":       "indie",
	"indie pop":        "indie",
	"garage rock":      "rock",
	"post-punk":        "punk",
	// Electronic
	"electronica": "edm",
	"electronic":  "edm",
	"dance":       "edm",
	"house":       "edm",
	"techno":      "edm",
	"trance":      "edm",
	"dnb":         "drum and bass",
	"drum & bass": "drum and bass",
	"breakbeats":  "breakbeat",
	"dub":         "dubstep",
	// Culture tags
	"britpop":       "pop",
	"lofi":          "lo-fi",
	"lo-fi hip hop": "lo-fi",
	// Other
	"soundtrack":          "ost",
	"original soundtrack": "ost",
	"musicals":            "musical",
	"broadway":            "musical",
	"latin pop":           "latin",
	"salsa":               "latin",
	"kpop":                "k-pop",
	"jpop":                "j-pop",
	"afrobeats":           "afrobeat",
	"synth pop":           "synthpop",
	"ambient music":       "ambient",
}

// NormalizeGenre maps a raw genre string through the synonym table.
func NormalizeGenre(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := genreSynonyms[cleaned]; ok {
		return canonical
	}
	return cleaned
}

var knownGenres = map[string]struct{}{
	"rock": {}, "pop": {}, "hip hop": {}, "rap": {}, "r&b": {}, "jazz": {},
	"blues": {}, "metal": {}, "punk": {}, "edm": {}, "electronic": {},
	"folk": {}, "classical": {}, "indie": {}, "alternative": {}, "reggae": {},
	"country": {}, "techno": {}, "trance": {}, "house": {}, "ambient": {},
	"soul": {}, "funk": {}, "grunge": {}, "ska": {}, "emo": {},
	"drum and bass": {}, "breakbeat": {}, "dubstep": {}, "trap": {},
	"lo-fi": {}, "garage": {}, "k-pop": {}, "j-pop": {}, "afrobeat": {},
	"new wave": {}, "grime": {}, "chillout": {}, "chillwave": {},
	"synthpop": {}, "industrial": {}, "world": {}, "latin": {},
	"reggaeton": {}, "opera": {}, "musical": {}, "post-rock": {},
}

// FilterValidGenre returns the first tag that normalizes to a known
// genre, or "" when none do.
func FilterValidGenre(tags []string) string {
	for _, tag := range tags {
		if _, ok := knownGenres[NormalizeGenre(tag)]; ok {
			return NormalizeGenre(tag)
		}
	}
	return ""
}

// SelectGenre prefers the library's own genre list over social tags, in
// both cases filtered through the known-genre allowlist.
func SelectGenre(libraryGenres, tags []string) string {
	genre := FilterValidGenre(libraryGenres)
	if genre == "" || strings.EqualFold(genre, "unknown") {
		genre = FilterValidGenre(tags)
	}
	return genre
}
