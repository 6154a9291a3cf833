package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.LLM{
		BaseURL:            srv.URL,
		APIKey:             "sk-test",
		Model:              "test-model",
		SuggestTemperature: 0.7,
		LyricsTemperature:  0.4,
	}
	return NewClient(cfg, srv.Client(), cache.New(time.Minute), cache.New(time.Minute), hclog.NewNullLogger())
}

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestClassifyLyrics(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 0.4, req.Temperature)

		fmt.Fprint(w, chatReply("Melancholy."))
	}))

	word, found := c.ClassifyLyrics(context.Background(), "tears fall slow tonight")
	require.True(t, found)
	assert.Equal(t, "melancholy", word)

	// Identical lyrics are served from the fingerprint cache.
	word, found = c.ClassifyLyrics(context.Background(), "tears fall slow tonight")
	require.True(t, found)
	assert.Equal(t, "melancholy", word)
	assert.EqualValues(t, 1, requests.Load())
}

func TestClassifyLyricsEmptyInput(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, found := c.ClassifyLyrics(context.Background(), "   ")
	assert.False(t, found)
}

func TestClassifyLyricsServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))

	_, found := c.ClassifyLyrics(context.Background(), "some lyrics")
	assert.False(t, found)
}

func TestSuggestTracks(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0.7, req.Temperature)

		fmt.Fprint(w, chatReply("1. Clocks - Coldplay - A Rush of Blood to the Head - 2002 - mellow\n\n2) Halo - Beyoncé - I Am... Sasha Fierce - 2008 - soaring"))
	}))

	lines, err := c.SuggestTracks(context.Background(), []string{"A - B"}, 2, "mostly chill")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Clocks - Coldplay - A Rush of Blood to the Head - 2002 - mellow", lines[0])
	assert.Equal(t, "Halo - Beyoncé - I Am... Sasha Fierce - 2008 - soaring", lines[1])

	// Identical prompt is served from cache.
	_, err = c.SuggestTracks(context.Background(), []string{"A - B"}, 2, "mostly chill")
	require.NoError(t, err)
	assert.EqualValues(t, 1, requests.Load())
}

func TestSuggestTracksAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"model not found"}}`)
	}))

	_, err := c.SuggestTracks(context.Background(), []string{"A - B"}, 2, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestFirstWord(t *testing.T) {
	assert.Equal(t, "sad", firstWord("Sad."))
	assert.Equal(t, "happy", firstWord("HAPPY, definitely"))
	assert.Empty(t, firstWord("  "))
}

func TestParseLines(t *testing.T) {
	lines := parseLines("1. First - A - B - 2000 - x\n* Second - C - D - 2001 - y\n\n99 Luftballons - Nena - 99 Luftballons - 1983 - z")
	require.Len(t, lines, 3)
	assert.Equal(t, "First - A - B - 2000 - x", lines[0])
	assert.Equal(t, "Second - C - D - 2001 - y", lines[1])
	// A bare leading number is part of the title, not a list marker.
	assert.Equal(t, "99 Luftballons - Nena - 99 Luftballons - 1983 - z", lines[2])
}
