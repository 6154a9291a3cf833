// Package jellyfin implements the media-library port against the
// Jellyfin HTTP API. Lookups are cached; a successful search that finds
// no match is cached as a confirmed miss, a transport failure is not.
package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/config"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// artistMatchThreshold is the Jaro-Winkler similarity at which a search
// hit's artist is accepted when plain containment fails.
const artistMatchThreshold = 0.85

const searchLimit = 25

// Client is an HTTP client for the Jellyfin library.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
	store      *cache.Store
	log        hclog.Logger
}

// compile-time interface assertion
var _ ports.LibraryProvider = (*Client)(nil)

// NewClient constructs a library client. An empty URL or API key leaves
// the client unconfigured; every lookup then reports not found.
func NewClient(cfg config.Jellyfin, httpClient *http.Client, store *cache.Store, log hclog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		userID:     cfg.UserID,
		httpClient: httpClient,
		store:      store,
		log:        log.Named("jellyfin"),
	}
}

type cachedLookup struct {
	Track ports.LibraryTrack
	Found bool
}

// FindTrack searches the library for a track by title and confirms the
// artist fuzzily. Transport errors degrade to not found.
func (c *Client) FindTrack(ctx context.Context, title, artist string) (ports.LibraryTrack, bool) {
	if c.baseURL == "" || c.apiKey == "" {
		return ports.LibraryTrack{}, false
	}

	key := cache.Key(title, artist)
	if v, ok := c.store.Get(key); ok {
		hit := v.(cachedLookup)
		return hit.Track, hit.Found
	}

	items, err := c.search(ctx, title)
	if err != nil {
		c.log.Warn("library search failed", "title", title, "error", err)
		return ports.LibraryTrack{}, false
	}

	item, ok := bestMatch(items, title, artist)
	if !ok {
		c.store.Set(key, cachedLookup{})
		return ports.LibraryTrack{}, false
	}

	track := mapItem(item)
	if item.HasLyrics {
		track.Lyrics = c.fetchLyrics(ctx, item.ID)
	}
	c.store.Set(key, cachedLookup{Track: track, Found: true})
	return track, true
}

type searchResponse struct {
	Items []libraryItem `json:"Items"`
}

type libraryItem struct {
	ID             string   `json:"Id"`
	Name           string   `json:"Name"`
	Artists        []string `json:"Artists"`
	Album          string   `json:"Album"`
	ProductionYear int      `json:"ProductionYear"`
	PremiereDate   string   `json:"PremiereDate"`
	Genres         []string `json:"Genres"`
	Tags           []string `json:"Tags"`
	RunTimeTicks   int64    `json:"RunTimeTicks"`
	HasLyrics      bool     `json:"HasLyrics"`
	UserData       struct {
		PlayCount int `json:"PlayCount"`
	} `json:"UserData"`
}

func (c *Client) search(ctx context.Context, title string) ([]libraryItem, error) {
	q := url.Values{}
	q.Set("IncludeItemTypes", "Audio")
	q.Set("Recursive", "true")
	q.Set("SearchTerm", title)
	q.Set("Fields", "Genres,Tags,PremiereDate")
	q.Set("Limit", strconv.Itoa(searchLimit))
	if c.userID != "" {
		q.Set("userId", c.userID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Items?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jellyfin: build request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jellyfin: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jellyfin: unexpected status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("jellyfin: decode response: %w", err)
	}
	return parsed.Items, nil
}

// bestMatch picks the first item whose title matches by containment and
// whose artist list confirms the requested artist. Smart quotes in
// either side are folded to ASCII before comparison.
func bestMatch(items []libraryItem, title, artist string) (libraryItem, bool) {
	wantTitle := normalizeText(title)
	wantArtist := normalizeText(artist)
	jw := metrics.NewJaroWinkler()

	for _, item := range items {
		gotTitle := normalizeText(item.Name)
		if !strings.Contains(gotTitle, wantTitle) && !strings.Contains(wantTitle, gotTitle) {
			continue
		}
		for _, a := range item.Artists {
			gotArtist := normalizeText(a)
			if strings.Contains(gotArtist, wantArtist) || strings.Contains(wantArtist, gotArtist) {
				return item, true
			}
			if strutil.Similarity(gotArtist, wantArtist, jw) >= artistMatchThreshold {
				return item, true
			}
		}
	}
	return libraryItem{}, false
}

var quoteFolder = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(quoteFolder.Replace(s)))
}

func mapItem(item libraryItem) ports.LibraryTrack {
	year := ""
	switch {
	case item.ProductionYear != 0:
		year = strconv.Itoa(item.ProductionYear)
	case len(item.PremiereDate) >= 4:
		year = item.PremiereDate[:4]
	}

	return ports.LibraryTrack{
		ID:           item.ID,
		Name:         item.Name,
		Artists:      item.Artists,
		Album:        item.Album,
		Year:         year,
		Genres:       item.Genres,
		Tags:         item.Tags,
		Tempo:        tempoFromTags(item.Tags),
		RunTimeTicks: item.RunTimeTicks,
		PlayCount:    item.UserData.PlayCount,
	}
}

// tempoFromTags reads a "tempo:128" or "bpm:128" style tag.
func tempoFromTags(tags []string) int {
	for _, tag := range tags {
		lower := strings.ToLower(strings.TrimSpace(tag))
		for _, prefix := range []string{"tempo:", "bpm:"} {
			if value, ok := strings.CutPrefix(lower, prefix); ok {
				if bpm, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && bpm > 0 {
					return bpm
				}
			}
		}
	}
	return 0
}
