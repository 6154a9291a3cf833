// Package config assembles the immutable runtime configuration. Values
// come from environment variables (a .env file is loaded by cmd/api);
// the struct is passed by value into services and adapters so tests can
// construct deterministic configs without ambient state.
package config

import (
	"os"
	"strconv"
	"time"
)

// Jellyfin holds media-library connection settings.
type Jellyfin struct {
	URL    string
	APIKey string
	UserID string
}

// LastFM holds tag/listener service settings.
type LastFM struct {
	APIKey string
}

// SongBPM holds audio-feature service settings. An empty APIKey disables
// the source entirely.
type SongBPM struct {
	BaseURL string
	APIKey  string
}

// LLM holds chat-completion settings for lyrics classification and
// playlist suggestions. Works against any OpenAI-compatible endpoint.
type LLM struct {
	BaseURL            string
	APIKey             string
	Model              string
	SuggestTemperature float64
	LyricsTemperature  float64
}

// Catalog holds client-credential settings for one streaming catalog.
// Both fields empty disables the source.
type Catalog struct {
	ClientID     string
	ClientSecret string
}

// Weights are the mood-source fusion weights.
type Weights struct {
	Tags     float64
	Features float64
	Lyrics   float64
}

// TTLs are per-cache expiry windows.
type TTLs struct {
	Tags       time.Duration
	BPM        time.Duration
	Library    time.Duration
	LyricsMood time.Duration
	Catalog    time.Duration
}

// Config is the full application configuration.
type Config struct {
	ListenAddr  string
	HistoryPath string

	Jellyfin   Jellyfin
	LastFM     LastFM
	SongBPM    SongBPM
	LLM        LLM
	Spotify    Catalog
	AppleMusic Catalog

	LyricsEnabled     bool
	EnrichConcurrency int

	GlobalMinListeners int
	GlobalMaxListeners int
	GlobalWeight       float64
	LibraryWeight      float64
	Weights            Weights

	ShortTimeout time.Duration
	LongTimeout  time.Duration
	TTL          TTLs
}

// FromEnv builds a Config from environment variables, falling back to
// production defaults.
func FromEnv() Config {
	return Config{
		ListenAddr:  envStr("LISTEN_ADDR", ":8080"),
		HistoryPath: envStr("HISTORY_DB_PATH", "cadence.db"),
		Jellyfin: Jellyfin{
			URL:    envStr("JELLYFIN_URL", ""),
			APIKey: envStr("JELLYFIN_API_KEY", ""),
			UserID: envStr("JELLYFIN_USER_ID", ""),
		},
		LastFM: LastFM{APIKey: envStr("LASTFM_API_KEY", "")},
		SongBPM: SongBPM{
			BaseURL: envStr("SONGBPM_BASE_URL", "https://api.getsong.co/search/"),
			APIKey:  envStr("SONGBPM_API_KEY", ""),
		},
		LLM: LLM{
			BaseURL:            envStr("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:             envStr("LLM_API_KEY", ""),
			Model:              envStr("LLM_MODEL", "gpt-4o-mini"),
			SuggestTemperature: envFloat("LLM_SUGGEST_TEMPERATURE", 0.7),
			LyricsTemperature:  envFloat("LLM_LYRICS_TEMPERATURE", 0.4),
		},
		Spotify: Catalog{
			ClientID:     envStr("SPOTIFY_CLIENT_ID", ""),
			ClientSecret: envStr("SPOTIFY_CLIENT_SECRET", ""),
		},
		AppleMusic: Catalog{
			ClientID:     envStr("APPLE_MUSIC_CLIENT_ID", ""),
			ClientSecret: envStr("APPLE_MUSIC_CLIENT_SECRET", ""),
		},
		LyricsEnabled:      envBool("LYRICS_ENABLED", true),
		EnrichConcurrency:  envInt("ENRICH_CONCURRENCY", 10),
		GlobalMinListeners: envInt("GLOBAL_MIN_LISTENERS", 10_000),
		GlobalMaxListeners: envInt("GLOBAL_MAX_LISTENERS", 15_000_000),
		GlobalWeight:       envFloat("POPULARITY_GLOBAL_WEIGHT", 0.3),
		LibraryWeight:      envFloat("POPULARITY_LIBRARY_WEIGHT", 0.7),
		Weights: Weights{
			Tags:     envFloat("MOOD_TAGS_WEIGHT", 0.7),
			Features: envFloat("MOOD_BPM_WEIGHT", 1.0),
			Lyrics:   envFloat("MOOD_LYRICS_WEIGHT", 1.5),
		},
		ShortTimeout: envDuration("HTTP_TIMEOUT_SHORT", 5*time.Second),
		LongTimeout:  envDuration("HTTP_TIMEOUT_LONG", 15*time.Second),
		TTL: TTLs{
			Tags:       envDuration("CACHE_TTL_TAGS", 7*24*time.Hour),
			BPM:        envDuration("CACHE_TTL_BPM", 30*24*time.Hour),
			Library:    envDuration("CACHE_TTL_LIBRARY", 24*time.Hour),
			LyricsMood: envDuration("CACHE_TTL_LYRICS_MOOD", 24*time.Hour),
			Catalog:    envDuration("CACHE_TTL_CATALOG", 24*time.Hour),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
