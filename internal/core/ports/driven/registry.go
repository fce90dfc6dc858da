package driven

import (
	"context"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// SourceStore persists Source records.
type SourceStore interface {
	// Save stores or updates a source.
	Save(ctx context.Context, source domain.Source) error

	// Get retrieves a source by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Delete removes a source. Deleting cascades its jobs and logs.
	Delete(ctx context.Context, id string) error
}

// JobStore persists ConversionJob records.
type JobStore interface {
	// Save stores or updates a job.
	Save(ctx context.Context, job domain.ConversionJob) error

	// Get retrieves a job by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.ConversionJob, error)

	// ListBySource returns jobs for a source, newest first.
	ListBySource(ctx context.Context, sourceID string, limit int) ([]domain.ConversionJob, error)
}

// SyncLogStore appends and reads audit log entries.
type SyncLogStore interface {
	// Append adds a log entry. Entries are never mutated afterwards.
	Append(ctx context.Context, entry domain.SyncLog) error

	// List returns entries newest first. An empty sourceID returns
	// entries for all sources.
	List(ctx context.Context, sourceID string, limit int) ([]domain.SyncLog, error)

	// Prune removes all but the most recent keep entries per source.
	Prune(ctx context.Context, keep int) error
}

// ConvertedFileStore is the idempotency index of successful conversions.
type ConvertedFileStore interface {
	// Upsert stores or replaces the entry keyed by (OriginalPath, Platform).
	Upsert(ctx context.Context, file domain.ConvertedFile) error

	// Get retrieves the entry for a remote file. Returns ErrNotFound if missing.
	Get(ctx context.Context, originalPath string, platform domain.Platform) (*domain.ConvertedFile, error)

	// ListByPlatform returns all index entries for a platform.
	ListByPlatform(ctx context.Context, platform domain.Platform) ([]domain.ConvertedFile, error)
}
