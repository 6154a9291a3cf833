package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

type analyzeRequest struct {
	Tracks []trackRequest `json:"tracks"`
}

type analyzeResponse struct {
	JobID string `json:"job_id"`
}

// AnalyzePlaylist handles POST /playlists/analyze. Analysis runs in the
// background; the client polls the returned job ID.
func (h *Handler) AnalyzePlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "tracks are required")
		return
	}

	raws := make([]domain.RawTrack, len(req.Tracks))
	for i, t := range req.Tracks {
		raws[i] = t.toDomain()
	}

	id, ok := h.pool.Submit(raws)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "analysis queue is full")
		return
	}

	w.Header().Set("Location", "/jobs/"+id)
	writeJSON(w, http.StatusAccepted, analyzeResponse{JobID: id})
}

// JobStatus handles GET /jobs/{id}
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "job id is required")
		return
	}

	result, ok := h.pool.Status(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
