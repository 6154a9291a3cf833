package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

type suggestRequest struct {
	Playlist []string `json:"playlist"`
	Count    int      `json:"count"`
	Summary  string   `json:"summary,omitempty"`

	// Optional: when both are set the result is persisted to history.
	UserID string `json:"user_id,omitempty"`
	Label  string `json:"label,omitempty"`
}

type suggestResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
	HistoryID   string              `json:"history_id,omitempty"`
}

// Suggest handles POST /suggestions
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Playlist) == 0 {
		writeError(w, http.StatusBadRequest, "playlist is required")
		return
	}
	if req.Count < 1 {
		req.Count = 5
	}

	suggestions, err := h.suggester.Suggest(r.Context(), req.Playlist, req.Count, req.Summary)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := suggestResponse{Suggestions: suggestions}
	if req.UserID != "" && req.Label != "" {
		entry, err := h.history.Append(r.Context(), req.UserID, req.Label, suggestions)
		if err != nil {
			// A failed history write does not fail the request.
			h.log.Error("failed to persist history", "user", req.UserID, "error", err)
		} else {
			resp.HistoryID = entry.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
