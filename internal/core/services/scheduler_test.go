package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

func TestSchedulerRunsPeriodicPasses(t *testing.T) {
	ctx := context.Background()
	fix := newOrchestratorFixture(t)
	fix.connector.entries = []domain.RemoteEntry{
		entry("e1", "report.docx", "/Docs/report.docx", "c1"),
	}
	fix.addSource(t, domain.Source{
		ID: "s1", Name: "Docs", Platform: domain.PlatformOneDrive,
		FolderPath: "/Docs", Status: domain.SourceActive,
	})
	// Inactive sources are never monitored.
	fix.addSource(t, domain.Source{
		ID: "s2", Name: "Paused", Platform: domain.PlatformOneDrive,
		Status: domain.SourceInactive,
	})

	scheduler := NewScheduler(fix.orchestrator, fix.sources, fix.syncLogs, 20*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return fix.orchestrator.Status().ActiveMonitorCount == 1 &&
			!fix.orchestrator.Status().LastSyncTime.IsZero()
	}, 5*time.Second, 5*time.Millisecond)

	assert.True(t, fix.orchestrator.Status().Running)

	scheduler.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.False(t, fix.orchestrator.Status().Running)

	// The one changed file produced exactly one job even across passes.
	jobs, err := fix.jobs.ListBySource(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	fix := newOrchestratorFixture(t)
	scheduler := NewScheduler(fix.orchestrator, fix.sources, fix.syncLogs, time.Minute)
	scheduler.Stop() // no-op
}

func TestSchedulerContextCancellation(t *testing.T) {
	fix := newOrchestratorFixture(t)
	scheduler := NewScheduler(fix.orchestrator, fix.sources, fix.syncLogs, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return fix.orchestrator.Status().Running
	}, 5*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}
