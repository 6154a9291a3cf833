// Package rest exposes the enrichment pipeline over HTTP.
package rest

import (
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/cadence/internal/core/ports"
	"github.com/ewilliams-labs/cadence/internal/core/services"
	"github.com/ewilliams-labs/cadence/internal/worker"
)

// Handler manages the HTTP interface for the application.
type Handler struct {
	enricher  *services.Enricher
	suggester *services.Suggester
	history   ports.HistoryRepository
	pool      *worker.Pool
	router    *http.ServeMux
	log       hclog.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(
	enricher *services.Enricher,
	suggester *services.Suggester,
	history ports.HistoryRepository,
	pool *worker.Pool,
	log hclog.Logger,
) *Handler {
	h := &Handler{
		enricher:  enricher,
		suggester: suggester,
		history:   history,
		pool:      pool,
		router:    http.NewServeMux(),
		log:       log.Named("rest"),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	h.router.HandleFunc("POST /tracks/enrich", h.EnrichTrack)

	h.router.HandleFunc("POST /playlists/analyze", h.AnalyzePlaylist)
	h.router.HandleFunc("GET /jobs/{id}", h.JobStatus)

	h.router.HandleFunc("POST /suggestions", h.Suggest)
	h.router.HandleFunc("GET /history/{userID}", h.History)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
