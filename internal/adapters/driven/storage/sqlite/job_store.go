package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// Save stores or updates a job.
func (s *jobStore) Save(ctx context.Context, job domain.ConversionJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversion_jobs (id, source_id, file_name, original_path,
			local_path, output_path, file_size, status, progress, error,
			created_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			local_path = excluded.local_path,
			output_path = excluded.output_path,
			file_size = excluded.file_size,
			status = excluded.status,
			progress = excluded.progress,
			error = excluded.error,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at
	`, job.ID, job.SourceID, job.FileName, job.OriginalPath,
		job.LocalPath, job.OutputPath, job.FileSize, string(job.Status), job.Progress, job.Error,
		job.CreatedAt, nullTime(job.StartedAt), nullTime(job.CompletedAt))

	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID.
func (s *jobStore) Get(ctx context.Context, id string) (*domain.ConversionJob, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_id, file_name, original_path, local_path, output_path,
			file_size, status, progress, error, created_at, started_at, completed_at
		FROM conversion_jobs WHERE id = ?
	`, id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListBySource returns jobs for a source, newest first.
// An empty sourceID returns jobs for all sources.
func (s *jobStore) ListBySource(ctx context.Context, sourceID string, limit int) ([]domain.ConversionJob, error) {
	query := `
		SELECT id, source_id, file_name, original_path, local_path, output_path,
			file_size, status, progress, error, created_at, started_at, completed_at
		FROM conversion_jobs`
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
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ConversionJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}

func scanJob(row scanner) (*domain.ConversionJob, error) {
	var job domain.ConversionJob
	var status string
	var createdAt, startedAt, completedAt sql.NullTime

	if err := row.Scan(&job.ID, &job.SourceID, &job.FileName, &job.OriginalPath,
		&job.LocalPath, &job.OutputPath, &job.FileSize, &status, &job.Progress,
		&job.Error, &createdAt, &startedAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	job.Status = domain.JobStatus(status)
	if createdAt.Valid {
		job.CreatedAt = createdAt.Time
	}
	if startedAt.Valid {
		job.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = completedAt.Time
	}
	return &job, nil
}
