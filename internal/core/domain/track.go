// Package domain holds the core track model shared by the enrichment
// pipeline, the adapters and the REST surface.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("domain: not found")

// ErrMissingMetadata indicates a track without the minimum metadata
// (title and artist) needed for enrichment.
var ErrMissingMetadata = errors.New("missing track metadata")

// MissingMetadataError carries context for a track that cannot be enriched.
type MissingMetadataError struct {
	Title  string
	Artist string
}

func (e MissingMetadataError) Error() string {
	return fmt.Sprintf("missing track metadata (title %q, artist %q)", e.Title, e.Artist)
}

func (e MissingMetadataError) Is(target error) bool {
	return target == ErrMissingMetadata
}

// TicksPerSecond is the library's run-time tick resolution.
const TicksPerSecond = 10_000_000

// RawTrack is a track before enrichment. It comes either from a parsed
// suggestion line or from a library record.
type RawTrack struct {
	Raw          string   `json:"raw,omitempty"`
	Title        string   `json:"title"`
	Artist       string   `json:"artist"`
	Album        string   `json:"album,omitempty"`
	Year         string   `json:"year,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Lyrics       string   `json:"lyrics,omitempty"`
	Tempo        int      `json:"tempo,omitempty"` // from library tags, 0 when unknown
	RunTimeTicks int64    `json:"run_time_ticks,omitempty"`
	PlayCount    *int     `json:"play_count,omitempty"` // nil when the library has no signal
}

// Validate reports whether the track has enough metadata to enrich.
func (t RawTrack) Validate() error {
	if strings.TrimSpace(t.Title) == "" || strings.TrimSpace(t.Artist) == "" {
		return MissingMetadataError{Title: t.Title, Artist: t.Artist}
	}
	return nil
}

// Label returns the "Title - Artist" display form used for prompts and logs.
func (t RawTrack) Label() string {
	return t.Title + " - " + t.Artist
}

// AudioFeatures are the per-track features returned by the BPM service.
// A zero value means the source had no data for that field.
type AudioFeatures struct {
	BPM          int    `json:"bpm"`
	Key          string `json:"key"` // musical key, an "m" marks minor
	Danceability int    `json:"danceability"`
	Acousticness int    `json:"acousticness"`
	Year         int    `json:"year"`
	Duration     int    `json:"duration"` // seconds
}

// EnrichedTrack is the output of the enrichment pipeline.
type EnrichedTrack struct {
	RawTrack

	Tags               []string `json:"tags,omitempty"`
	Genre              string   `json:"genre"`
	Mood               string   `json:"mood"`
	MoodConfidence     float64  `json:"mood_confidence"`
	ResolvedTempo      *int     `json:"resolved_tempo,omitempty"`
	Decade             string   `json:"decade"`
	Duration           int      `json:"duration"`   // seconds
	Popularity         int      `json:"popularity"` // raw listener count
	LibraryPlayCount   *int     `json:"library_play_count,omitempty"`
	YearFlag           string   `json:"year_flag,omitempty"`
	CombinedPopularity *float64 `json:"combined_popularity"`
	FinalYear          string   `json:"final_year,omitempty"`
	ResolvedAlbum      string   `json:"resolved_album,omitempty"`
}

// InferDecade maps a year string to its decade, e.g. "1994" -> "1990s".
func InferDecade(year string) string {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return "Unknown"
	}
	return fmt.Sprintf("%ds", y/10*10)
}
