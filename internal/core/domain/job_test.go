package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLifecycle(t *testing.T) {
	now := time.Now()
	job := ConversionJob{ID: "j1", SourceID: "s1", Status: JobPending}

	require.NoError(t, job.Start(now))
	assert.Equal(t, JobProcessing, job.Status)
	assert.Equal(t, now, job.StartedAt)

	require.NoError(t, job.Complete("/out/report.md", now.Add(time.Second)))
	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, "/out/report.md", job.OutputPath)
	assert.Equal(t, 100, job.Progress)
	assert.True(t, job.Terminal())
}

func TestJobFail(t *testing.T) {
	now := time.Now()
	job := ConversionJob{ID: "j1", Status: JobPending}

	require.NoError(t, job.Start(now))
	require.NoError(t, job.Fail("corrupt input", now))

	assert.Equal(t, JobFailed, job.Status)
	assert.Equal(t, "corrupt input", job.Error)
	assert.True(t, job.CanRetry())
	assert.False(t, job.CanCancel())
}

func TestJobInvalidTransitions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		job  ConversionJob
		op   func(j *ConversionJob) error
	}{
		{
			name: "complete without processing",
			job:  ConversionJob{Status: JobPending},
			op:   func(j *ConversionJob) error { return j.Complete("/out", now) },
		},
		{
			name: "fail without processing",
			job:  ConversionJob{Status: JobPending},
			op:   func(j *ConversionJob) error { return j.Fail("boom", now) },
		},
		{
			name: "start twice",
			job:  ConversionJob{Status: JobProcessing},
			op:   func(j *ConversionJob) error { return j.Start(now) },
		},
		{
			name: "complete a failed job",
			job:  ConversionJob{Status: JobFailed},
			op:   func(j *ConversionJob) error { return j.Complete("/out", now) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op(&tc.job)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestJobCancellable(t *testing.T) {
	assert.True(t, (&ConversionJob{Status: JobPending}).CanCancel())
	assert.True(t, (&ConversionJob{Status: JobProcessing}).CanCancel())
	assert.False(t, (&ConversionJob{Status: JobCompleted}).CanCancel())
	assert.False(t, (&ConversionJob{Status: JobCompleted}).CanRetry())
}
