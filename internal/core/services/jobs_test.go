package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-sync/inkwell/internal/adapters/driven/storage/memory"
	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

type jobsFixture struct {
	manager   *JobManager
	jobs      *memory.JobStore
	sources   *memory.SourceStore
	connector *fakeConnector
}

func newJobsFixture(t *testing.T) *jobsFixture {
	t.Helper()

	sources := memory.NewSourceStore()
	jobs := memory.NewJobStore()
	files := memory.NewConvertedFileStore()
	syncLogs := memory.NewSyncLogStore()

	connector := &fakeConnector{
		platform: domain.PlatformGoogleDrive,
		entries: []domain.RemoteEntry{
			entry("e1", "report.docx", "/Docs/report.docx", "c1"),
		},
		testResult: domain.ConnectionTestResult{OK: true},
	}
	factory := &fakeFactory{connector: connector}

	queue := NewConversionQueue(jobs, files, syncLogs,
		&fakeRegistry{converter: &fakeConverter{}}, newFakeExporter())
	queue.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	queue.Start(context.Background())
	t.Cleanup(queue.Stop)

	tempDir := t.TempDir()
	orchestrator := NewOrchestrator(sources, files, syncLogs, factory, stubCipher{}, queue, tempDir)
	manager := NewJobManager(jobs, sources, syncLogs, factory, stubCipher{}, queue, orchestrator, tempDir)

	require.NoError(t, sources.Save(context.Background(), domain.Source{
		ID: "s1", Name: "Docs", Platform: domain.PlatformGoogleDrive,
		FolderPath: "/Docs", CredentialBlob: "enc:{}",
	}))

	return &jobsFixture{manager: manager, jobs: jobs, sources: sources, connector: connector}
}

func (fix *jobsFixture) waitTerminal(t *testing.T, jobID string) *domain.ConversionJob {
	t.Helper()
	var job *domain.ConversionJob
	require.Eventually(t, func() bool {
		got, err := fix.jobs.Get(context.Background(), jobID)
		if err != nil {
			return false
		}
		job = got
		return got.Terminal()
	}, 5*time.Second, 5*time.Millisecond)
	return job
}

func TestCreateManualJobByName(t *testing.T) {
	ctx := context.Background()
	fix := newJobsFixture(t)

	job, err := fix.manager.CreateManualJob(ctx, "s1", "report.docx")
	require.NoError(t, err)
	assert.Equal(t, "report.docx", job.FileName)
	assert.Equal(t, "/Docs/report.docx", job.OriginalPath)

	done := fix.waitTerminal(t, job.ID)
	assert.Equal(t, domain.JobCompleted, done.Status)
	assert.True(t, fix.connector.closed)
}

func TestCreateManualJobUnknownFile(t *testing.T) {
	ctx := context.Background()
	fix := newJobsFixture(t)
	fix.connector.fetchErr = &domain.DownloadError{Path: "nope", Err: domain.ErrNotFound}

	_, err := fix.manager.CreateManualJob(ctx, "s1", "nope.docx")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRetryJobCreatesFreshJob(t *testing.T) {
	ctx := context.Background()
	fix := newJobsFixture(t)

	failed := domain.ConversionJob{
		ID:           "j-failed",
		SourceID:     "s1",
		FileName:     "report.docx",
		OriginalPath: "/Docs/report.docx",
		LocalPath:    "/tmp/long-gone.docx",
		Status:       domain.JobFailed,
		Error:        "pdftotext crashed",
	}
	require.NoError(t, fix.jobs.Save(ctx, failed))

	retried, err := fix.manager.RetryJob(ctx, "j-failed")
	require.NoError(t, err)
	assert.NotEqual(t, failed.ID, retried.ID)
	assert.Equal(t, failed.OriginalPath, retried.OriginalPath)

	done := fix.waitTerminal(t, retried.ID)
	assert.Equal(t, domain.JobCompleted, done.Status)

	// The original record stays failed.
	original, err := fix.jobs.Get(ctx, "j-failed")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, original.Status)
}

func TestRetryJobRequiresFailedStatus(t *testing.T) {
	ctx := context.Background()
	fix := newJobsFixture(t)

	require.NoError(t, fix.jobs.Save(ctx, domain.ConversionJob{
		ID: "j-done", SourceID: "s1", FileName: "a.docx",
		OriginalPath: "/Docs/a.docx", Status: domain.JobCompleted,
	}))

	_, err := fix.manager.RetryJob(ctx, "j-done")
	assert.ErrorIs(t, err, domain.ErrJobNotRetryable)

	_, err = fix.manager.RetryJob(ctx, "j-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListJobsAndLogsPassThrough(t *testing.T) {
	ctx := context.Background()
	fix := newJobsFixture(t)

	job, err := fix.manager.CreateManualJob(ctx, "s1", "report.docx")
	require.NoError(t, err)
	fix.waitTerminal(t, job.ID)

	jobs, err := fix.manager.ListJobs(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	got, err := fix.manager.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}
