package ports

import (
	"context"
	"time"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// HistoryEntry is one labeled suggestion set in a user's history.
type HistoryEntry struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Label       string              `json:"label"`
	CreatedAt   time.Time           `json:"created_at"`
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// HistoryRepository stores suggestion history append-only, per user.
type HistoryRepository interface {
	Append(ctx context.Context, userID, label string, suggestions []domain.Suggestion) (HistoryEntry, error)
	List(ctx context.Context, userID string) ([]HistoryEntry, error)
}
