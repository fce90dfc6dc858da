package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// syncLogStore implements driven.SyncLogStore.
type syncLogStore struct {
	store *Store
}

var _ driven.SyncLogStore = (*syncLogStore)(nil)

// Append adds a log entry. Entries are never mutated afterwards.
func (s *syncLogStore) Append(ctx context.Context, entry domain.SyncLog) error {
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshalling details: %w", err)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, source_id, action, outcome, message, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.SourceID, string(entry.Action), string(entry.Outcome),
		entry.Message, string(detailsJSON), entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("appending sync log: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *syncLogStore) List(ctx context.Context, sourceID string, limit int) ([]domain.SyncLog, error) {
	query := `
		SELECT id, source_id, action, outcome, message, details, created_at
		FROM sync_logs`
	args := []any{}
	if sourceID != "" {
		query += " WHERE source_id = ?"
		args = append(args, sourceID)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.SyncLog //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.SyncLog
		var action, outcome, detailsJSON string
		var createdAt sql.NullTime

		if err := rows.Scan(&entry.ID, &entry.SourceID, &action, &outcome,
			&entry.Message, &detailsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}

		entry.Action = domain.LogAction(action)
		entry.Outcome = domain.LogOutcome(outcome)
		if detailsJSON != "" && detailsJSON != "null" {
			if err := json.Unmarshal([]byte(detailsJSON), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync logs: %w", err)
	}
	return entries, nil
}

// Prune removes all but the most recent keep entries per source.
func (s *syncLogStore) Prune(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sync_logs WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY source_id ORDER BY created_at DESC
				) AS rn
				FROM sync_logs
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning sync logs: %w", err)
	}
	return nil
}
