// ABOUTME: Persisted client state stored as key/value pairs
// ABOUTME: Tracks the last contact sync timestamp under a fixed key
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LastSyncKey is the fixed client_state key for the last full contact sync.
const LastSyncKey = "last_contact_sync"

// ClientState reads and writes persisted client key/value state.
type ClientState struct {
	db *sql.DB
}

func NewClientState(database *sql.DB) *ClientState {
	return &ClientState{db: database}
}

// Set upserts a state value.
func (s *ClientState) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set client state %q: %w", key, err)
	}
	return nil
}

// Get returns the stored value, or fallback when the key is absent.
func (s *ClientState) Get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM client_state WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get client state %q: %w", key, err)
	}

	return value, nil
}

// SetLastSync records the completion time of a full sync. Written after every
// full sync, success or partial.
func (s *ClientState) SetLastSync(ctx context.Context, t time.Time) error {
	return s.Set(ctx, LastSyncKey, t.UTC().Format(time.RFC3339))
}

// LastSync returns the recorded last sync time, or nil when no sync has run.
func (s *ClientState) LastSync(ctx context.Context) (*time.Time, error) {
	raw, err := s.Get(ctx, LastSyncKey, "")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last sync time: %w", err)
	}

	return &t, nil
}
