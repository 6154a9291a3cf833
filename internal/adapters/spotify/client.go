// Package spotify implements the streaming-catalog port against the
// Spotify Web API. Auth uses the client-credentials flow; the token is
// fetched once and refreshed automatically when it expires.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/config"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"
	tokenURL       = "https://accounts.spotify.com/api/token"
)

// Client is an HTTP client for the Spotify catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      *cache.Store
	log        hclog.Logger
	configured bool
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient constructs a catalog client. Without credentials the client
// stays unconfigured and every search reports absent.
func NewClient(cfg config.Catalog, store *cache.Store, log hclog.Logger) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		store:      store,
		log:        log.Named("spotify"),
	}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
		}
		c.httpClient = cc.Client(context.Background())
		c.configured = true
	}
	return c
}

// Name identifies the catalog in logs and priority ordering.
func (c *Client) Name() string { return "spotify" }

type cachedTrack struct {
	Track ports.CatalogTrack
	Found bool
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			DurationMS int `json:"duration_ms"`
			Album      struct {
				Name        string `json:"name"`
				ReleaseDate string `json:"release_date"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

// Search looks a track up and returns its album, release year and
// duration. Empty results are cached as confirmed misses; transport
// failures are not cached and degrade to absent.
func (c *Client) Search(ctx context.Context, title, artist string) (ports.CatalogTrack, bool) {
	if !c.configured {
		return ports.CatalogTrack{}, false
	}

	key := cache.Key(title, artist)
	if v, ok := c.store.Get(key); ok {
		hit := v.(cachedTrack)
		return hit.Track, hit.Found
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("track:%s artist:%s", title, artist))
	q.Set("type", "track")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		c.log.Warn("catalog search failed", "title", title, "error", err)
		return ports.CatalogTrack{}, false
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		c.log.Warn("catalog search failed", "title", title, "error", err)
		return ports.CatalogTrack{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("catalog search failed", "title", title, "status", resp.StatusCode)
		return ports.CatalogTrack{}, false
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Warn("catalog decode failed", "title", title, "error", err)
		return ports.CatalogTrack{}, false
	}

	if len(parsed.Tracks.Items) == 0 {
		c.store.Set(key, cachedTrack{})
		return ports.CatalogTrack{}, false
	}

	item := parsed.Tracks.Items[0]
	track := ports.CatalogTrack{
		Album:      item.Album.Name,
		Year:       yearOf(item.Album.ReleaseDate),
		DurationMS: item.DurationMS,
	}
	c.store.Set(key, cachedTrack{Track: track, Found: true})
	return track, true
}

// yearOf extracts the year from a release date that may be "2007",
// "2007-06" or "2007-06-11".
func yearOf(releaseDate string) string {
	if len(releaseDate) >= 4 {
		return releaseDate[:4]
	}
	return ""
}
