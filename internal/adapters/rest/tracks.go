package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

const errCodeMissingMetadata = "MISSING_METADATA"

// trackRequest defines what the client sends us for one track.
type trackRequest struct {
	Title        string   `json:"title"`
	Artist       string   `json:"artist"`
	Album        string   `json:"album,omitempty"`
	Year         string   `json:"year,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Lyrics       string   `json:"lyrics,omitempty"`
	Tempo        int      `json:"tempo,omitempty"`
	RunTimeTicks int64    `json:"run_time_ticks,omitempty"`
	PlayCount    *int     `json:"play_count,omitempty"`
}

func (r trackRequest) toDomain() domain.RawTrack {
	return domain.RawTrack{
		Title:        r.Title,
		Artist:       r.Artist,
		Album:        r.Album,
		Year:         r.Year,
		Genres:       r.Genres,
		Lyrics:       r.Lyrics,
		Tempo:        r.Tempo,
		RunTimeTicks: r.RunTimeTicks,
		PlayCount:    r.PlayCount,
	}
}

// EnrichTrack handles POST /tracks/enrich
func (h *Handler) EnrichTrack(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	enriched, err := h.enricher.EnrichTrack(r.Context(), req.toDomain())
	if err != nil {
		if errors.Is(err, domain.ErrMissingMetadata) {
			writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeMissingMetadata)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, enriched)
}
