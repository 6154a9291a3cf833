// Package applemusic implements the streaming-catalog port against the
// Apple Music catalog search API. It is the lower-priority catalog and
// fills gaps the primary catalog leaves.
package applemusic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/config"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

const (
	defaultBaseURL = "https://api.music.apple.com/v1/catalog/us"
	tokenURL       = "https://api.music.apple.com/auth/token"
)

// Client is an HTTP client for the Apple Music catalog.
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
		log:        log.Named("applemusic"),
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
func (c *Client) Name() string { return "applemusic" }

type cachedTrack struct {
	Track ports.CatalogTrack
	Found bool
}

type searchResponse struct {
	Results struct {
		Songs struct {
			Data []struct {
				Attributes struct {
					AlbumName        string `json:"albumName"`
					ReleaseDate      string `json:"releaseDate"`
					DurationInMillis int    `json:"durationInMillis"`
				} `json:"attributes"`
			} `json:"data"`
		} `json:"songs"`
	} `json:"results"`
}

// Search looks a track up and returns its album, release year and
// duration. Empty results are cached as confirmed misses.
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
	q.Set("term", title+" "+artist)
	q.Set("types", "songs")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		c.log.Warn("catalog search failed", "title", title, "error", err)
		return ports.CatalogTrack{}, false
	}

	resp, err := c.httpClient.Do(req)
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

	data := parsed.Results.Songs.Data
	if len(data) == 0 {
		c.store.Set(key, cachedTrack{})
		return ports.CatalogTrack{}, false
	}

	attrs := data[0].Attributes
	track := ports.CatalogTrack{
		Album:      attrs.AlbumName,
		Year:       yearOf(attrs.ReleaseDate),
		DurationMS: attrs.DurationInMillis,
	}
	c.store.Set(key, cachedTrack{Track: track, Found: true})
	return track, true
}

func yearOf(releaseDate string) string {
	if len(releaseDate) >= 4 {
		return releaseDate[:4]
	}
	return ""
}
