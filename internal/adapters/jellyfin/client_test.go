package jellyfin

import (
	"context"
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

	cfg := config.Jellyfin{URL: srv.URL, APIKey: "token", UserID: "user-1"}
	return NewClient(cfg, srv.Client(), cache.New(time.Minute), hclog.NewNullLogger())
}

func TestFindTrack(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "token", r.Header.Get("X-Emby-Token"))
		fmt.Fprint(w, `{"Items":[
			{"Id":"i1","Name":"Wrong Song","Artists":["Somebody Else"]},
			{"Id":"i2","Name":"Halo","Artists":["Beyoncé"],"Album":"I Am... Sasha Fierce",
			 "ProductionYear":2008,"Genres":["R&B"],"Tags":["tempo:120"],
			 "RunTimeTicks":2610000000,"UserData":{"PlayCount":14}}
		]}`)
	}))

	track, found := c.FindTrack(context.Background(), "Halo", "Beyoncé")
	require.True(t, found)
	assert.Equal(t, "i2", track.ID)
	assert.Equal(t, "I Am... Sasha Fierce", track.Album)
	assert.Equal(t, "2008", track.Year)
	assert.Equal(t, 120, track.Tempo)
	assert.Equal(t, int64(2_610_000_000), track.RunTimeTicks)
	assert.Equal(t, 14, track.PlayCount)

	// Cached on repeat.
	_, found = c.FindTrack(context.Background(), "Halo", "Beyoncé")
	assert.True(t, found)
	assert.EqualValues(t, 1, requests.Load())
}

func TestFindTrackCachesConfirmedMiss(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"Items":[]}`)
	}))

	_, found := c.FindTrack(context.Background(), "Nope", "Nobody")
	assert.False(t, found)

	_, found = c.FindTrack(context.Background(), "Nope", "Nobody")
	assert.False(t, found)
	assert.EqualValues(t, 1, requests.Load())
}

func TestFindTrackTransportFailureNotCached(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, found := c.FindTrack(context.Background(), "Halo", "Beyoncé")
	assert.False(t, found)

	_, found = c.FindTrack(context.Background(), "Halo", "Beyoncé")
	assert.False(t, found)
	assert.EqualValues(t, 2, requests.Load())
}

func TestFindTrackUnconfigured(t *testing.T) {
	c := NewClient(config.Jellyfin{}, http.DefaultClient, cache.New(time.Minute), hclog.NewNullLogger())

	_, found := c.FindTrack(context.Background(), "Halo", "Beyoncé")
	assert.False(t, found)
}

func TestBestMatch(t *testing.T) {
	items := []libraryItem{
		{ID: "1", Name: "Don’t Stop Me Now", Artists: []string{"Queen"}},
		{ID: "2", Name: "Another One", Artists: []string{"Someone"}},
	}

	t.Run("smart quotes fold to ascii", func(t *testing.T) {
		item, ok := bestMatch(items, "Don't Stop Me Now", "Queen")
		require.True(t, ok)
		assert.Equal(t, "1", item.ID)
	})

	t.Run("title containment", func(t *testing.T) {
		item, ok := bestMatch(items, "don’t stop me now (remastered)", "queen")
		require.True(t, ok)
		assert.Equal(t, "1", item.ID)
	})

	t.Run("fuzzy artist", func(t *testing.T) {
		_, ok := bestMatch(items, "Don't Stop Me Now", "Queeen")
		assert.True(t, ok)
	})

	t.Run("wrong artist", func(t *testing.T) {
		_, ok := bestMatch(items, "Don't Stop Me Now", "The Rolling Stones")
		assert.False(t, ok)
	})

	t.Run("no title match", func(t *testing.T) {
		_, ok := bestMatch(items, "Bohemian Rhapsody", "Queen")
		assert.False(t, ok)
	})
}

func TestTempoFromTags(t *testing.T) {
	assert.Equal(t, 128, tempoFromTags([]string{"favorite", "tempo:128"}))
	assert.Equal(t, 95, tempoFromTags([]string{"BPM: 95"}))
	assert.Zero(t, tempoFromTags([]string{"tempo:fast"}))
	assert.Zero(t, tempoFromTags(nil))
}

func TestMapItemYearFallsBackToPremiereDate(t *testing.T) {
	track := mapItem(libraryItem{PremiereDate: "1994-10-21T00:00:00Z"})
	assert.Equal(t, "1994", track.Year)

	track = mapItem(libraryItem{})
	assert.Empty(t, track.Year)
}
