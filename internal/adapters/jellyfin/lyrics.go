package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// lrcTimecode matches the bracketed timestamps and metadata headers of
// LRC-formatted lyrics, e.g. "[00:12.34]" or "[ar:Artist]".
var lrcTimecode = regexp.MustCompile(`\[[^\]]*\]`)

type lyricsResponse struct {
	Lyrics []struct {
		Text string `json:"Text"`
	} `json:"Lyrics"`
}

// fetchLyrics pulls the lyrics for a library item and strips any LRC
// timing markup. Failures are logged and return empty, never an error;
// lyrics only feed the optional mood classifier.
func (c *Client) fetchLyrics(ctx context.Context, itemID string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Audio/"+itemID+"/Lyrics", nil)
	if err != nil {
		return ""
	}
	req.Header.Set("X-Emby-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("lyrics fetch failed", "item", itemID, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var parsed lyricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Debug("lyrics decode failed", "item", itemID, "error", err)
		return ""
	}

	var b strings.Builder
	for _, line := range parsed.Lyrics {
		text := strings.TrimSpace(lrcTimecode.ReplaceAllString(line.Text, ""))
		if text == "" {
			continue
		}
		fmt.Fprintln(&b, text)
	}
	return strings.TrimSpace(b.String())
}
