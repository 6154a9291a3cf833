package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/ewilliams-labs/cadence/internal/adapters/applemusic"
	"github.com/ewilliams-labs/cadence/internal/adapters/jellyfin"
	"github.com/ewilliams-labs/cadence/internal/adapters/lastfm"
	"github.com/ewilliams-labs/cadence/internal/adapters/llm"
	"github.com/ewilliams-labs/cadence/internal/adapters/rest"
	"github.com/ewilliams-labs/cadence/internal/adapters/songbpm"
	"github.com/ewilliams-labs/cadence/internal/adapters/spotify"
	"github.com/ewilliams-labs/cadence/internal/adapters/sqlite"
	"github.com/ewilliams-labs/cadence/internal/cache"
	"github.com/ewilliams-labs/cadence/internal/config"
	"github.com/ewilliams-labs/cadence/internal/core/analysis"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
	"github.com/ewilliams-labs/cadence/internal/core/services"
	"github.com/ewilliams-labs/cadence/internal/worker"
)

func main() {
	// 1. Configuration. A missing .env file is fine; real deployments
	// set the environment directly.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "cadence",
		Level: hclog.LevelFromString(os.Getenv("LOG_LEVEL")),
	})

	// 2. Driven adapters. Short-timeout client for metadata lookups,
	// long-timeout client for LLM completions.
	shortHTTP := &http.Client{Timeout: cfg.ShortTimeout}
	longHTTP := &http.Client{Timeout: cfg.LongTimeout}

	library := jellyfin.NewClient(cfg.Jellyfin, shortHTTP, cache.New(cfg.TTL.Library), log)
	tags := lastfm.NewClient(cfg.LastFM.APIKey, shortHTTP, cache.New(cfg.TTL.Tags), log)
	features := songbpm.NewClient(cfg.SongBPM, shortHTTP, cache.New(cfg.TTL.BPM), log)
	llmClient := llm.NewClient(cfg.LLM, longHTTP, cache.New(cfg.TTL.LyricsMood), cache.New(24*time.Hour), log)

	catalogs := []ports.CatalogProvider{
		spotify.NewClient(cfg.Spotify, cache.New(cfg.TTL.Catalog), log),
		applemusic.NewClient(cfg.AppleMusic, cache.New(cfg.TTL.Catalog), log),
	}

	history, err := sqlite.NewAdapter(cfg.HistoryPath, log)
	if err != nil {
		log.Error("failed to initialize history database", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	// 3. Core services.
	enricher := services.NewEnricher(tags, features, llmClient, catalogs, services.EnricherOptions{
		Weights: analysis.SourceWeights{
			Tags:     cfg.Weights.Tags,
			Features: cfg.Weights.Features,
			Lyrics:   cfg.Weights.Lyrics,
		},
		Popularity: analysis.PopularityConfig{
			GlobalMinListeners: float64(cfg.GlobalMinListeners),
			GlobalMaxListeners: float64(cfg.GlobalMaxListeners),
			GlobalWeight:       cfg.GlobalWeight,
			LibraryWeight:      cfg.LibraryWeight,
		},
		LyricsEnabled: cfg.LyricsEnabled,
		Concurrency:   cfg.EnrichConcurrency,
	}, log)
	suggester := services.NewSuggester(enricher, library, llmClient, log)

	// 4. Background analysis workers and the HTTP surface.
	pool := worker.NewPool(enricher, 100, log)
	pool.Start(2)
	defer pool.Stop()

	handler := rest.NewHandler(enricher, suggester, history, pool, log)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	log.Info("api listening", "addr", cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}
}
