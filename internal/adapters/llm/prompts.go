package llm

import (
	"fmt"
	"strings"
)

const lyricsSystemPrompt = "You are a music mood classifier. " +
	"Read the lyrics you are given and reply with exactly one lowercase word naming their dominant mood. " +
	"Prefer one of: happy, sad, chill, intense, romantic, dark, uplifting, nostalgic, party, melancholy, hopeful, energetic, angry, love, reflective. " +
	"No punctuation, no explanation."

const suggestionSystemPrompt = "You are a music curator recommending tracks that fit an existing playlist. " +
	"You reply with one suggestion per line and nothing else. " +
	"Every line must follow exactly this format: Title - Artist - Album - Year - Reason. " +
	"The reason is a short phrase tying the track to the playlist's character."

// buildSuggestionPrompt assembles the user message for a suggestion
// request. The summary, when present, gives the model the playlist's
// statistical profile to match against.
func buildSuggestionPrompt(existing []string, count int, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d tracks that would fit the playlist below.\n", count)
	if summary != "" {
		fmt.Fprintf(&b, "\nPlaylist profile:\n%s\n", summary)
	}
	b.WriteString("\nExisting tracks:\n")
	for _, entry := range existing {
		fmt.Fprintf(&b, "- %s\n", entry)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Never repeat a track already in the playlist.\n")
	b.WriteString("- Use each artist at most once across your suggestions.\n")
	fmt.Fprintf(&b, "- Reply with exactly %d lines, no numbering, no extra text.\n", count)
	b.WriteString("- Format: Title - Artist - Album - Year - Reason\n")
	return b.String()
}
