package domain

import "time"

// JobStatus is the lifecycle state of a conversion job.
type JobStatus string

const (
	// JobPending means the job is queued but not yet picked up by a worker.
	JobPending JobStatus = "pending"

	// JobProcessing means a worker is executing the job.
	JobProcessing JobStatus = "processing"

	// JobCompleted means conversion succeeded and output was written.
	JobCompleted JobStatus = "completed"

	// JobFailed means the job exhausted its retries or failed terminally.
	JobFailed JobStatus = "failed"
)

// ConversionJob is one attempt to convert one discovered file.
// Status transitions are linear: pending -> processing -> {completed, failed}.
// A terminal job is immutable; an explicit retry creates a new job record
// referencing the same file.
type ConversionJob struct {
	// ID is the unique identifier for the job.
	ID string

	// SourceID links to the owning Source.
	SourceID string

	// FileName is the remote file's display name.
	FileName string

	// OriginalPath is the remote path or ID of the file being converted.
	OriginalPath string

	// LocalPath is the downloaded temporary file.
	LocalPath string

	// OutputPath is the canonical converted output, set on completion.
	OutputPath string

	// FileSize is the remote byte size, when known.
	FileSize int64

	// Status is the lifecycle state.
	Status JobStatus

	// Progress is a percentage in [0, 100].
	Progress int

	// Error holds the failure message for failed jobs.
	Error string

	// CreatedAt is when the job was created.
	CreatedAt time.Time

	// StartedAt is when a worker picked up the job.
	StartedAt time.Time

	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// Terminal reports whether the job has reached a final state.
func (j *ConversionJob) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// CanRetry reports whether an explicit retry is valid for this job.
func (j *ConversionJob) CanRetry() bool {
	return j.Status == JobFailed
}

// CanCancel reports whether the job may still be cancelled.
func (j *ConversionJob) CanCancel() bool {
	return j.Status == JobPending || j.Status == JobProcessing
}

// Start moves the job from pending to processing.
func (j *ConversionJob) Start(now time.Time) error {
	if j.Status != JobPending {
		return ErrInvalidTransition
	}
	j.Status = JobProcessing
	j.StartedAt = now
	j.Progress = 0
	return nil
}

// Complete moves the job from processing to completed.
func (j *ConversionJob) Complete(outputPath string, now time.Time) error {
	if j.Status != JobProcessing {
		return ErrInvalidTransition
	}
	j.Status = JobCompleted
	j.OutputPath = outputPath
	j.Progress = 100
	j.CompletedAt = now
	return nil
}

// Fail moves the job from processing to failed.
func (j *ConversionJob) Fail(message string, now time.Time) error {
	if j.Status != JobProcessing {
		return ErrInvalidTransition
	}
	j.Status = JobFailed
	j.Error = message
	j.CompletedAt = now
	return nil
}
