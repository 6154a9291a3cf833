package domain

import (
	"fmt"
	"strings"
)

// Suggestion is an LLM-proposed track after enrichment.
type Suggestion struct {
	EnrichedTrack

	Text      string `json:"text"`   // "Title - Artist - Album - Year"
	Reason    string `json:"reason"` // why the LLM picked it
	InLibrary bool   `json:"in_library"`
}

// ParseSuggestionLine splits an LLM suggestion line formatted as
// "Title - Artist - Album - Year - Reason" into the track label and the
// trailing reason. Lines with fewer than five fields are rejected.
func ParseSuggestionLine(line string) (text, reason string, err error) {
	parts := strings.SplitN(line, " - ", 5)
	if len(parts) < 5 {
		return "", "", fmt.Errorf("incomplete suggestion line: %q", line)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts[:4], " - "), parts[4], nil
}

// ParseTrackLabel builds a RawTrack from a free-text label of the form
// "Title - Artist - Album - Year". Missing trailing fields stay empty.
func ParseTrackLabel(label string) RawTrack {
	parts := strings.Split(label, " - ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	t := RawTrack{Raw: strings.TrimSpace(label)}
	if len(parts) > 0 {
		t.Title = parts[0]
	}
	if len(parts) > 1 {
		t.Artist = parts[1]
	}
	if len(parts) > 2 {
		t.Album = parts[2]
	}
	if len(parts) > 3 {
		t.Year = parts[3]
	}
	return t
}
