package services

import (
	"context"
	"fmt"
	"os"
	gopath "path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/logger"
)

const (
	// DefaultConcurrency is the default worker count.
	DefaultConcurrency = 3

	// MaxRetries is how many times a retryable failure is re-attempted.
	MaxRetries = 3

	// BackoffBase doubles per retry: 2s, 4s, 8s.
	BackoffBase = 2 * time.Second

	// queueDepth bounds how many tasks can wait for a worker.
	queueDepth = 256
)

// JobEvent is emitted at each job state change for observers.
type JobEvent struct {
	Job     domain.ConversionJob
	Attempt int
	Err     error
}

// queueTask couples a job with the context a worker needs to run it.
type queueTask struct {
	job            domain.ConversionJob
	source         domain.Source
	remoteChecksum string
}

// ConversionQueue executes conversion jobs with bounded concurrency.
// Job state in the store is the single source of truth; the in-memory
// channel only carries work to idle workers.
type ConversionQueue struct {
	jobs       driven.JobStore
	files      driven.ConvertedFileStore
	syncLogs   driven.SyncLogStore
	converters driven.ConverterRegistry
	exporter   driven.Exporter

	concurrency int
	maxRetries  int
	onEvent     func(JobEvent)

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	byPath   map[string]string // path key -> job ID
	pathOf   map[string]string // job ID -> path key
	tasks    chan queueTask
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
}

// QueueOption configures a ConversionQueue.
type QueueOption func(*ConversionQueue)

// WithConcurrency sets the worker count.
func WithConcurrency(n int) QueueOption {
	return func(q *ConversionQueue) {
		if n > 0 {
			q.concurrency = n
		}
	}
}

// WithEventHandler registers an observer for job state changes.
func WithEventHandler(fn func(JobEvent)) QueueOption {
	return func(q *ConversionQueue) { q.onEvent = fn }
}

// NewConversionQueue creates a queue. Start must be called before Enqueue.
func NewConversionQueue(
	jobs driven.JobStore,
	files driven.ConvertedFileStore,
	syncLogs driven.SyncLogStore,
	converters driven.ConverterRegistry,
	exporter driven.Exporter,
	opts ...QueueOption,
) *ConversionQueue {
	q := &ConversionQueue{
		jobs:        jobs,
		files:       files,
		syncLogs:    syncLogs,
		converters:  converters,
		exporter:    exporter,
		concurrency: DefaultConcurrency,
		maxRetries:  MaxRetries,
		inflight:    make(map[string]context.CancelFunc),
		byPath:      make(map[string]string),
		pathOf:      make(map[string]string),
		tasks:       make(chan queueTask, queueDepth),
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker pool.
func (q *ConversionQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true

	workerCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.concurrency; i++ {
		q.wg.Add(1)
		go q.worker(workerCtx)
	}
}

// Stop drains in-flight work and shuts the pool down.
func (q *ConversionQueue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	cancel := q.cancel
	q.mu.Unlock()

	cancel()
	q.wg.Wait()
}

// Enqueue persists the job as pending and hands it to the pool. A job ID
// or remote file already queued or running is rejected with
// ErrAlreadyExists, so overlapping sync passes never duplicate work.
func (q *ConversionQueue) Enqueue(ctx context.Context, job domain.ConversionJob, source domain.Source, remoteChecksum string) error {
	pathKey := job.OriginalPath + "|" + string(source.Platform)

	q.mu.Lock()
	_, dupID := q.inflight[job.ID]
	_, dupPath := q.byPath[pathKey]
	if dupID || dupPath {
		q.mu.Unlock()
		return fmt.Errorf("job %s (%s): %w", job.ID, job.OriginalPath, domain.ErrAlreadyExists)
	}
	q.inflight[job.ID] = nil
	q.byPath[pathKey] = job.ID
	q.pathOf[job.ID] = pathKey
	q.mu.Unlock()

	job.Status = domain.JobPending
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if err := q.jobs.Save(ctx, job); err != nil {
		q.forget(job.ID)
		return fmt.Errorf("saving job: %w", err)
	}

	select {
	case q.tasks <- queueTask{job: job, source: source, remoteChecksum: remoteChecksum}:
		return nil
	case <-ctx.Done():
		q.forget(job.ID)
		return ctx.Err()
	}
}

// Cancel stops a pending or processing job. Processing jobs have their
// worker context cancelled.
func (q *ConversionQueue) Cancel(ctx context.Context, jobID string) error {
	job, err := q.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.CanCancel() {
		return fmt.Errorf("job %s is %s: %w", jobID, job.Status, domain.ErrJobNotCancellable)
	}

	q.mu.Lock()
	if cancel, ok := q.inflight[jobID]; ok && cancel != nil {
		cancel()
	}
	q.mu.Unlock()

	// Cancellation is recorded as a failed job; the pending task is
	// skipped by the worker when it sees the terminal status.
	job.Status = domain.JobFailed
	job.Error = "cancelled"
	job.CompletedAt = time.Now().UTC()
	if err := q.jobs.Save(ctx, *job); err != nil {
		return fmt.Errorf("saving job: %w", err)
	}

	q.forget(jobID)
	q.emit(JobEvent{Job: *job})
	return nil
}

func (q *ConversionQueue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			q.process(ctx, task)
		}
	}
}

func (q *ConversionQueue) process(ctx context.Context, task queueTask) {
	defer q.forget(task.job.ID)

	// Re-read so cancellations between enqueue and pickup are honoured.
	job, err := q.jobs.Get(ctx, task.job.ID)
	if err != nil || job.Terminal() {
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	q.mu.Lock()
	q.inflight[job.ID] = cancel
	q.mu.Unlock()

	now := time.Now().UTC()
	if err := job.Start(now); err != nil {
		return
	}
	if err := q.jobs.Save(ctx, *job); err != nil {
		logger.Error("queue: saving job %s: %v", job.ID, err)
		return
	}
	q.emit(JobEvent{Job: *job})

	outputPath, convErr := q.runWithRetries(jobCtx, job, task)

	if convErr != nil {
		// A cancelled job was already finalised by Cancel.
		if jobCtx.Err() != nil {
			if stored, err := q.jobs.Get(ctx, job.ID); err == nil && stored.Terminal() {
				return
			}
		}
		q.finishFailed(ctx, job, task.source, convErr)
		return
	}

	if err := job.Complete(outputPath, time.Now().UTC()); err != nil {
		logger.Error("queue: completing job %s: %v", job.ID, err)
		return
	}
	if err := q.jobs.Save(ctx, *job); err != nil {
		logger.Error("queue: saving job %s: %v", job.ID, err)
	}
	q.emit(JobEvent{Job: *job})
	q.cleanupTemp(job.LocalPath)
}

// runWithRetries executes the conversion, retrying retryable failures
// with exponential backoff. Terminal failures stop immediately.
func (q *ConversionQueue) runWithRetries(ctx context.Context, job *domain.ConversionJob, task queueTask) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= q.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := BackoffBase << (attempt - 1)
			logger.Info("queue: retrying job %s in %s (attempt %d/%d)", job.ID, backoff, attempt, q.maxRetries)
			if err := q.sleep(ctx, backoff); err != nil {
				return "", err
			}
		}

		outputPath, err := q.runOnce(ctx, job, task)
		if err == nil {
			return outputPath, nil
		}
		lastErr = err
		q.emit(JobEvent{Job: *job, Attempt: attempt + 1, Err: err})

		if !domain.IsRetryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

// runOnce performs one conversion attempt end to end.
func (q *ConversionQueue) runOnce(ctx context.Context, job *domain.ConversionJob, task queueTask) (string, error) {
	converter, err := q.converters.ForFile(job.FileName)
	if err != nil {
		return "", err
	}

	result, err := converter.Convert(ctx, job.LocalPath)
	if err != nil {
		return "", err
	}

	relPath := canonicalRelPath(task.source, job.FileName)
	canonicalPath, err := q.exporter.WriteCanonical(ctx, relPath, result.Text)
	if err != nil {
		return "", err
	}

	// Destination copies are best-effort: a failed copy is logged as a
	// warning and never fails the job.
	for _, destination := range task.source.ExportDestinations {
		if err := q.exporter.CopyTo(ctx, canonicalPath, destination); err != nil {
			logger.Warn("queue: copy to %s failed: %v", destination, err)
			q.appendLog(ctx, domain.SyncLog{
				SourceID: task.source.ID,
				Action:   domain.ActionExportWarning,
				Outcome:  domain.OutcomeWarning,
				Message:  fmt.Sprintf("copy to %s failed", destination),
				Details:  map[string]any{"error": err.Error(), "file": job.FileName},
			})
		}
	}

	checksum := task.remoteChecksum
	if checksum == "" {
		checksum = result.Checksum
	}
	err = q.files.Upsert(ctx, domain.ConvertedFile{
		OriginalPath: job.OriginalPath,
		Platform:     task.source.Platform,
		LocalPath:    canonicalPath,
		FileName:     job.FileName,
		Format:       strings.TrimPrefix(gopath.Ext(job.FileName), "."),
		Checksum:     checksum,
		ConvertedAt:  time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("updating file index: %w", err)
	}
	return canonicalPath, nil
}

func (q *ConversionQueue) finishFailed(ctx context.Context, job *domain.ConversionJob, source domain.Source, convErr error) {
	if err := job.Fail(convErr.Error(), time.Now().UTC()); err != nil {
		return
	}
	if err := q.jobs.Save(ctx, *job); err != nil {
		logger.Error("queue: saving job %s: %v", job.ID, err)
	}
	q.appendLog(ctx, domain.SyncLog{
		SourceID: source.ID,
		Action:   domain.ActionFileError,
		Outcome:  domain.OutcomeError,
		Message:  fmt.Sprintf("conversion of %s failed", job.FileName),
		Details:  map[string]any{"error": convErr.Error(), "job_id": job.ID},
	})
	q.emit(JobEvent{Job: *job, Err: convErr})
	q.cleanupTemp(job.LocalPath)
}

func (q *ConversionQueue) appendLog(ctx context.Context, entry domain.SyncLog) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	if err := q.syncLogs.Append(ctx, entry); err != nil {
		logger.Error("queue: appending log: %v", err)
	}
}

func (q *ConversionQueue) forget(jobID string) {
	q.mu.Lock()
	delete(q.inflight, jobID)
	if pathKey, ok := q.pathOf[jobID]; ok {
		delete(q.byPath, pathKey)
		delete(q.pathOf, jobID)
	}
	q.mu.Unlock()
}

func (q *ConversionQueue) emit(event JobEvent) {
	if q.onEvent != nil {
		q.onEvent(event)
	}
}

func (q *ConversionQueue) cleanupTemp(localPath string) {
	if localPath == "" {
		return
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		logger.Debug("queue: removing temp file %s: %v", localPath, err)
	}
}

// canonicalRelPath builds the storage-root-relative output path:
// <platform>/<source-id>/<name>.md
func canonicalRelPath(source domain.Source, fileName string) string {
	base := strings.TrimSuffix(fileName, gopath.Ext(fileName))
	return gopath.Join(string(source.Platform), source.ID, base+".md")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
