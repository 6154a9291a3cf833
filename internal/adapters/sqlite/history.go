// Package sqlite provides a SQLite-backed implementation of the
// suggestion-history port. Entries are append-only; each row stores the
// full suggestion set as a JSON payload.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// Adapter implements the history repository port for SQLite.
type Adapter struct {
	db  *sql.DB
	log hclog.Logger
}

// compile-time interface assertion
var _ ports.HistoryRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration.
func NewAdapter(storagePath string, log hclog.Logger) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	a := &Adapter{db: db, log: log.Named("history")}
	if err := a.migrate(); err != nil {
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return a, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS suggestion_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		label TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_suggestion_history_user
		ON suggestion_history(user_id);
	`
	_, err := a.db.Exec(query)
	return err
}

// Append stores one labeled suggestion set for a user.
func (a *Adapter) Append(ctx context.Context, userID, label string, suggestions []domain.Suggestion) (ports.HistoryEntry, error) {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return ports.HistoryEntry{}, fmt.Errorf("sqlite: marshal suggestions: %w", err)
	}

	entry := ports.HistoryEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Label:       label,
		CreatedAt:   time.Now().UTC(),
		Suggestions: suggestions,
	}

	if _, err := a.db.ExecContext(ctx,
		"INSERT INTO suggestion_history (id, user_id, label, created_at, payload) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.Label, entry.CreatedAt, string(payload),
	); err != nil {
		return ports.HistoryEntry{}, fmt.Errorf("sqlite: insert history: %w", err)
	}
	return entry, nil
}

// labelDate extracts the timestamp suffix of labels like
// "Road trip - 2026-08-30 18:45".
var labelDate = regexp.MustCompile(`- (\d{4}-\d{2}-\d{2} \d{2}:\d{2})\s*$`)

// List returns a user's history, newest first. Entries are ordered by
// the date embedded in their label when one parses, falling back to the
// row's creation time. Rows with corrupt payloads are skipped.
func (a *Adapter) List(ctx context.Context, userID string) ([]ports.HistoryEntry, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT id, user_id, label, created_at, payload FROM suggestion_history WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load history: %w", err)
	}
	defer rows.Close()

	var entries []ports.HistoryEntry
	for rows.Next() {
		var entry ports.HistoryEntry
		var payload string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Label, &entry.CreatedAt, &payload); err != nil {
			return nil, fmt.Errorf("sqlite: scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &entry.Suggestions); err != nil {
			a.log.Warn("skipping corrupt history row", "id", entry.ID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate history rows: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryTime(entries[i]).After(entryTime(entries[j]))
	})
	return entries, nil
}

func entryTime(entry ports.HistoryEntry) time.Time {
	if m := labelDate.FindStringSubmatch(entry.Label); m != nil {
		if t, err := time.Parse("2006-01-02 15:04", m[1]); err == nil {
			return t
		}
	}
	return entry.CreatedAt
}
