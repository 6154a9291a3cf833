// Package lastfm fetches social tags and aggregate listener counts from
// the Last.fm track API. Top tags and track info are requested
// concurrently under a shared rate limiter.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Last.fm asks API consumers to stay around 5 requests per second.
const requestsPerSecond = 5

// Client is an HTTP client for the Last.fm API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	store      *cache.Store
	log        hclog.Logger
}

// compile-time interface assertion
var _ ports.TagProvider = (*Client)(nil)

// NewClient constructs a tag client. An empty API key disables the
// source; every lookup then reports absent.
func NewClient(apiKey string, httpClient *http.Client, store *cache.Store, log hclog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		store:      store,
		log:        log.Named("lastfm"),
	}
}

type cachedInfo struct {
	Info  ports.TagInfo
	Found bool
}

// Lookup fetches top tags and track info for a track. A confirmed miss
// is cached; a lookup where both requests failed in transport is not,
// so the next attempt retries.
func (c *Client) Lookup(ctx context.Context, title, artist string) (ports.TagInfo, bool) {
	if c.apiKey == "" {
		return ports.TagInfo{}, false
	}

	key := cache.Key(title, artist)
	if v, ok := c.store.Get(key); ok {
		hit := v.(cachedInfo)
		return hit.Info, hit.Found
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return ports.TagInfo{}, false
	}

	var (
		tags       []string
		tagsFailed bool
		info       trackInfo
		infoFound  bool
		infoFailed bool
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tags, tagsFailed = c.topTags(ctx, title, artist)
	}()
	go func() {
		defer wg.Done()
		info, infoFound, infoFailed = c.trackInfo(ctx, title, artist)
	}()
	wg.Wait()

	if tagsFailed && infoFailed {
		return ports.TagInfo{}, false
	}
	if len(tags) == 0 && !infoFound {
		c.store.Set(key, cachedInfo{})
		return ports.TagInfo{}, false
	}

	result := ports.TagInfo{
		Tags:        tags,
		Listeners:   info.listeners,
		Album:       info.album,
		ReleaseDate: info.releaseDate,
	}
	c.store.Set(key, cachedInfo{Info: result, Found: true})
	return result, true
}

type topTagsResponse struct {
	TopTags struct {
		Tag []struct {
			Name string `json:"name"`
		} `json:"tag"`
	} `json:"toptags"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// topTags returns the track's tags ordered most relevant first. failed
// is true only for transport-level problems, not for "track unknown".
func (c *Client) topTags(ctx context.Context, title, artist string) (tags []string, failed bool) {
	var parsed topTagsResponse
	if err := c.get(ctx, "track.gettoptags", title, artist, &parsed); err != nil {
		c.log.Warn("top tags lookup failed", "title", title, "error", err)
		return nil, true
	}
	if parsed.Error != 0 {
		c.log.Debug("top tags unavailable", "title", title, "message", parsed.Message)
		return nil, false
	}
	for _, tag := range parsed.TopTags.Tag {
		if name := strings.TrimSpace(tag.Name); name != "" {
			tags = append(tags, name)
		}
	}
	return tags, false
}

type trackInfo struct {
	listeners   int
	album       string
	releaseDate string
}

type trackInfoResponse struct {
	Track struct {
		Listeners string `json:"listeners"`
		Album     struct {
			Title string `json:"title"`
		} `json:"album"`
		Wiki struct {
			Published string `json:"published"`
		} `json:"wiki"`
	} `json:"track"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

func (c *Client) trackInfo(ctx context.Context, title, artist string) (info trackInfo, found, failed bool) {
	var parsed trackInfoResponse
	if err := c.get(ctx, "track.getinfo", title, artist, &parsed); err != nil {
		c.log.Warn("track info lookup failed", "title", title, "error", err)
		return trackInfo{}, false, true
	}
	if parsed.Error != 0 {
		c.log.Debug("track info unavailable", "title", title, "message", parsed.Message)
		return trackInfo{}, false, false
	}

	// Last.fm serves listener counts as a decimal string.
	listeners, _ := strconv.Atoi(parsed.Track.Listeners)
	return trackInfo{
		listeners:   listeners,
		album:       parsed.Track.Album.Title,
		releaseDate: strings.TrimSpace(parsed.Track.Wiki.Published),
	}, true, false
}

func (c *Client) get(ctx context.Context, method, title, artist string, out any) error {
	q := url.Values{}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("track", title)
	q.Set("artist", artist)
	q.Set("autocorrect", "1")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("lastfm: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lastfm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lastfm: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lastfm: decode response: %w", err)
	}
	return nil
}
