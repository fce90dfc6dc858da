package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driving"
)

var _ driving.JobService = (*JobManager)(nil)

// JobManager implements the job operations exposed to the CLI.
type JobManager struct {
	jobs         driven.JobStore
	sources      driven.SourceStore
	syncLogs     driven.SyncLogStore
	factory      driven.ConnectorFactory
	cipher       driven.CredentialCipher
	queue        *ConversionQueue
	orchestrator *Orchestrator
	tempDir      string
}

// NewJobManager creates a JobManager.
func NewJobManager(
	jobs driven.JobStore,
	sources driven.SourceStore,
	syncLogs driven.SyncLogStore,
	factory driven.ConnectorFactory,
	cipher driven.CredentialCipher,
	queue *ConversionQueue,
	orchestrator *Orchestrator,
	tempDir string,
) *JobManager {
	return &JobManager{
		jobs:         jobs,
		sources:      sources,
		syncLogs:     syncLogs,
		factory:      factory,
		cipher:       cipher,
		queue:        queue,
		orchestrator: orchestrator,
		tempDir:      tempDir,
	}
}

// CreateManualJob downloads one remote file and enqueues a conversion job
// for it, bypassing change detection. fileRef may be the entry's remote
// path, name or platform ID.
func (m *JobManager) CreateManualJob(ctx context.Context, sourceID string, fileRef string) (*domain.ConversionJob, error) {
	source, err := m.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	connector, err := m.connectorFor(ctx, source)
	if err != nil {
		return nil, err
	}
	defer connector.Close()

	entry, localPath, err := m.resolveAndFetch(ctx, source, connector, fileRef)
	if err != nil {
		return nil, err
	}

	job := domain.ConversionJob{
		ID:           uuid.NewString(),
		SourceID:     sourceID,
		FileName:     entry.Name,
		OriginalPath: entry.Path,
		LocalPath:    localPath,
		FileSize:     entry.Size,
		Status:       domain.JobPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.queue.Enqueue(ctx, job, *source, entry.ContentChecksum()); err != nil {
		return nil, err
	}
	return &job, nil
}

// RetryJob creates a fresh job for the same file as a failed one. The
// original record stays failed; retries never mutate terminal jobs.
func (m *JobManager) RetryJob(ctx context.Context, jobID string) (*domain.ConversionJob, error) {
	failed, err := m.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !failed.CanRetry() {
		return nil, fmt.Errorf("job %s is %s: %w", jobID, failed.Status, domain.ErrJobNotRetryable)
	}

	source, err := m.sources.Get(ctx, failed.SourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	localPath := failed.LocalPath
	if _, statErr := os.Stat(localPath); statErr != nil {
		// Temp file is gone; download the file again.
		connector, err := m.connectorFor(ctx, source)
		if err != nil {
			return nil, err
		}
		defer connector.Close()

		_, localPath, err = m.resolveAndFetch(ctx, source, connector, failed.OriginalPath)
		if err != nil {
			return nil, err
		}
	}

	job := domain.ConversionJob{
		ID:           uuid.NewString(),
		SourceID:     failed.SourceID,
		FileName:     failed.FileName,
		OriginalPath: failed.OriginalPath,
		LocalPath:    localPath,
		FileSize:     failed.FileSize,
		Status:       domain.JobPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.queue.Enqueue(ctx, job, *source, ""); err != nil {
		return nil, err
	}
	return &job, nil
}

// CancelJob cancels a pending or processing job.
func (m *JobManager) CancelJob(ctx context.Context, jobID string) error {
	return m.queue.Cancel(ctx, jobID)
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(ctx context.Context, jobID string) (*domain.ConversionJob, error) {
	return m.jobs.Get(ctx, jobID)
}

// ListJobs returns jobs for a source, newest first.
func (m *JobManager) ListJobs(ctx context.Context, sourceID string, limit int) ([]domain.ConversionJob, error) {
	return m.jobs.ListBySource(ctx, sourceID, limit)
}

// GetLogs returns audit log entries, newest first.
func (m *JobManager) GetLogs(ctx context.Context, sourceID string, limit int) ([]domain.SyncLog, error) {
	return m.syncLogs.List(ctx, sourceID, limit)
}

// connectorFor builds a throwaway connector for the source.
func (m *JobManager) connectorFor(ctx context.Context, source *domain.Source) (driven.StorageConnector, error) {
	credentials, err := m.cipher.Decrypt(source.CredentialBlob)
	if err != nil {
		return nil, fmt.Errorf("decrypting credentials: %w", err)
	}
	connector, err := m.factory.Create(ctx, *source, credentials)
	if err != nil {
		return nil, fmt.Errorf("creating connector: %w", err)
	}
	return connector, nil
}

// resolveAndFetch matches fileRef against the folder listing (by path,
// name or ID) and downloads the entry. An unmatched ref is tried directly
// as a platform entry ID.
func (m *JobManager) resolveAndFetch(
	ctx context.Context,
	source *domain.Source,
	connector driven.StorageConnector,
	fileRef string,
) (*domain.RemoteEntry, string, error) {
	entries, err := connector.ListEntries(ctx, source.FolderPath, 0)
	if err != nil {
		return nil, "", fmt.Errorf("listing %s: %w", source.FolderPath, err)
	}

	for i := range entries {
		entry := &entries[i]
		if entry.Path == fileRef || entry.Name == fileRef || entry.ID == fileRef {
			localPath, err := connector.FetchEntry(ctx, entry.ID, m.tempDir)
			if err != nil {
				return nil, "", err
			}
			return entry, localPath, nil
		}
	}

	localPath, err := connector.FetchEntry(ctx, fileRef, m.tempDir)
	if err != nil {
		return nil, "", fmt.Errorf("file %s: %w", fileRef, domain.ErrNotFound)
	}
	return &domain.RemoteEntry{ID: fileRef, Name: fileRef, Path: fileRef}, localPath, nil
}
