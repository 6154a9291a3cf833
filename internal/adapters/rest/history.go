package rest

import (
	"net/http"

	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

type historyResponse struct {
	Entries []ports.HistoryEntry `json:"entries"`
}

// History handles GET /history/{userID}
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	entries, err := h.history.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []ports.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries})
}
