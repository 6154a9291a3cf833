// Package songbpm fetches tempo, key and audio features from the
// GetSongBPM API. Every numeric field arrives as a string and parses
// leniently; a missing API key disables the source entirely.
package songbpm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/config"
	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// requestsPerSecond keeps the client inside the API's free-tier limit.
const requestsPerSecond = 3

// Client is an HTTP client for the GetSongBPM API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	store      *cache.Store
	limiter    *rate.Limiter
	log        hclog.Logger
}

// compile-time interface assertion
var _ ports.AudioFeatureProvider = (*Client)(nil)

// NewClient constructs an audio-feature client.
func NewClient(cfg config.SongBPM, httpClient *http.Client, store *cache.Store, log hclog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		store:      store,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		log:        log.Named("songbpm"),
	}
}

type cachedFeatures struct {
	Features domain.AudioFeatures
	Found    bool
}

type songResult struct {
	Tempo        string `json:"tempo"`
	KeyOf        string `json:"key_of"`
	Danceability string `json:"danceability"`
	Acousticness string `json:"acousticness"`
	Duration     string `json:"duration"` // "m:ss"
	Album        struct {
		Year string `json:"year"`
	} `json:"album"`
}

// Features looks a track up by combined song/artist query. A response
// with no songs is cached as a confirmed miss; transport errors are
// not cached so a later attempt retries.
func (c *Client) Features(ctx context.Context, title, artist string) (domain.AudioFeatures, bool) {
	if c.apiKey == "" {
		return domain.AudioFeatures{}, false
	}

	key := cache.Key(title, artist)
	if v, ok := c.store.Get(key); ok {
		hit := v.(cachedFeatures)
		return hit.Features, hit.Found
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.AudioFeatures{}, false
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("type", "both")
	q.Set("lookup", fmt.Sprintf("song:%s artist:%s", title, artist))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		c.log.Warn("feature lookup failed", "title", title, "error", err)
		return domain.AudioFeatures{}, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("feature lookup failed", "title", title, "error", err)
		return domain.AudioFeatures{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("feature lookup failed", "title", title, "status", resp.StatusCode)
		return domain.AudioFeatures{}, false
	}

	// The API answers {"search": [...]} on a hit but {"search": {"error":
	// ...}} on a miss, so the field has to be decoded in two steps.
	var envelope struct {
		Search json.RawMessage `json:"search"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.log.Warn("feature decode failed", "title", title, "error", err)
		return domain.AudioFeatures{}, false
	}

	var songs []songResult
	if err := json.Unmarshal(envelope.Search, &songs); err != nil || len(songs) == 0 {
		c.store.Set(key, cachedFeatures{})
		return domain.AudioFeatures{}, false
	}

	feats := mapSong(songs[0])
	c.store.Set(key, cachedFeatures{Features: feats, Found: true})
	return feats, true
}

func mapSong(s songResult) domain.AudioFeatures {
	return domain.AudioFeatures{
		BPM:          atoiLoose(s.Tempo),
		Key:          strings.TrimSpace(s.KeyOf),
		Danceability: atoiLoose(s.Danceability),
		Acousticness: atoiLoose(s.Acousticness),
		Year:         atoiLoose(s.Album.Year),
		Duration:     parseDuration(s.Duration),
	}
}

func atoiLoose(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// parseDuration converts the API's "m:ss" form to seconds.
func parseDuration(s string) int {
	minutes, seconds, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0
	}
	sec, err := strconv.Atoi(seconds)
	if err != nil {
		return 0
	}
	return m*60 + sec
}
