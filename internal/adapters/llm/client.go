// Package llm provides an adapter for an OpenAI-compatible
// chat-completion endpoint. It backs both lyrics mood classification
// and playlist suggestion generation; the two use separate caches and
// temperatures.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/config"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// maxLyricsChars bounds the lyrics excerpt sent for classification.
const maxLyricsChars = 3000

// Client is an HTTP client for a chat-completion API.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	suggestTemp float64
	lyricsTemp  float64
	httpClient  *http.Client
	moodStore   *cache.Store
	promptStore *cache.Store
	log         hclog.Logger
}

// compile-time interface assertions
var (
	_ ports.MoodClassifier     = (*Client)(nil)
	_ ports.SuggestionProvider = (*Client)(nil)
)

// NewClient constructs a chat-completion client. moodStore caches
// classifications by lyrics fingerprint; promptStore caches suggestion
// responses by prompt fingerprint.
func NewClient(cfg config.LLM, httpClient *http.Client, moodStore, promptStore *cache.Store, log hclog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		suggestTemp: cfg.SuggestTemperature,
		lyricsTemp:  cfg.LyricsTemperature,
		httpClient:  httpClient,
		moodStore:   moodStore,
		promptStore: promptStore,
		log:         log.Named("llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ClassifyLyrics asks the model for a single mood word describing the
// lyrics. Results are cached by content fingerprint, so the same lyrics
// on a different track reuse the answer.
func (c *Client) ClassifyLyrics(ctx context.Context, lyrics string) (string, bool) {
	lyrics = strings.TrimSpace(lyrics)
	if lyrics == "" {
		return "", false
	}

	fp := cache.Fingerprint(lyrics)
	if v, ok := c.moodStore.Get(fp); ok {
		return v.(string), true
	}

	if len(lyrics) > maxLyricsChars {
		lyrics = lyrics[:maxLyricsChars]
	}

	out, err := c.complete(ctx, lyricsSystemPrompt, lyrics, c.lyricsTemp)
	if err != nil {
		c.log.Warn("lyrics classification failed", "error", err)
		return "", false
	}

	word := firstWord(out)
	c.moodStore.Set(fp, word)
	return word, true
}

// SuggestTracks asks the model for count suggestion lines matching the
// playlist and its summary. The full response is cached by prompt
// fingerprint.
func (c *Client) SuggestTracks(ctx context.Context, existing []string, count int, summary string) ([]string, error) {
	prompt := buildSuggestionPrompt(existing, count, summary)
	fp := cache.Fingerprint(prompt)
	if v, ok := c.promptStore.Get(fp); ok {
		return v.([]string), nil
	}

	out, err := c.complete(ctx, suggestionSystemPrompt, prompt, c.suggestTemp)
	if err != nil {
		return nil, fmt.Errorf("llm: suggestion request: %w", err)
	}

	lines := parseLines(out)
	if len(lines) == 0 {
		return nil, fmt.Errorf("llm: empty suggestion response")
	}
	c.promptStore.Set(fp, lines)
	return lines, nil
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("llm: empty response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// firstWord lowercases the response and keeps the first token, with
// trailing punctuation stripped. Models occasionally editorialize.
func firstWord(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!\"'")
}

// listMarker matches "1. ", "2) " or "* " style prefixes. A bare
// leading number stays; titles like "99 Luftballons" are legitimate.
var listMarker = regexp.MustCompile(`^(?:\d+[.)]|[*•])\s+`)

// parseLines splits a response into suggestion lines, dropping blanks
// and stripping any numbering or bullets the model added anyway.
func parseLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
