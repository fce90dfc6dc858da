package driving

import (
	"context"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// JobService exposes conversion job operations to the surrounding
// application (CLI, controllers).
type JobService interface {
	// CreateManualJob downloads a single remote file and enqueues a
	// conversion job for it, bypassing change detection.
	CreateManualJob(ctx context.Context, sourceID string, fileRef string) (*domain.ConversionJob, error)

	// RetryJob creates a fresh job for the same file as a failed job.
	// Valid only on failed jobs.
	RetryJob(ctx context.Context, jobID string) (*domain.ConversionJob, error)

	// CancelJob cancels a job that is still pending or processing.
	CancelJob(ctx context.Context, jobID string) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*domain.ConversionJob, error)

	// ListJobs returns jobs for a source, newest first.
	ListJobs(ctx context.Context, sourceID string, limit int) ([]domain.ConversionJob, error)

	// GetLogs returns audit log entries, newest first. An empty sourceID
	// returns entries for all sources.
	GetLogs(ctx context.Context, sourceID string, limit int) ([]domain.SyncLog, error)
}
