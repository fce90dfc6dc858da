package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driving"
	"github.com/inkwell-sync/inkwell/internal/logger"
)

var _ driving.Orchestrator = (*Orchestrator)(nil)

// monitor is an active per-source watch: a live connector, the source
// snapshot it was built from and the connector's change-watch handle.
type monitor struct {
	source    domain.Source
	connector driven.StorageConnector
	watch     driven.WatchHandle
}

// Orchestrator manages per-source monitors and runs sync passes. A sync
// pass diffs the remote listing against the converted-file index and
// enqueues a conversion job per changed file. One source failing never
// affects the others.
type Orchestrator struct {
	sources  driven.SourceStore
	files    driven.ConvertedFileStore
	syncLogs driven.SyncLogStore
	factory  driven.ConnectorFactory
	cipher   driven.CredentialCipher
	queue    *ConversionQueue
	tempDir  string

	mu       sync.RWMutex
	monitors map[string]*monitor
	lastSync time.Time
	running  bool
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(
	sources driven.SourceStore,
	files driven.ConvertedFileStore,
	syncLogs driven.SyncLogStore,
	factory driven.ConnectorFactory,
	cipher driven.CredentialCipher,
	queue *ConversionQueue,
	tempDir string,
) *Orchestrator {
	return &Orchestrator{
		sources:  sources,
		files:    files,
		syncLogs: syncLogs,
		factory:  factory,
		cipher:   cipher,
		queue:    queue,
		tempDir:  tempDir,
		monitors: make(map[string]*monitor),
	}
}

// StartMonitoring builds and verifies a connector for the source and
// registers it as a monitor. A failed connection test marks the source as
// errored and leaves it unmonitored.
func (o *Orchestrator) StartMonitoring(ctx context.Context, sourceID string) error {
	o.mu.RLock()
	_, active := o.monitors[sourceID]
	o.mu.RUnlock()
	if active {
		return fmt.Errorf("source %s: %w", sourceID, domain.ErrMonitorActive)
	}

	source, err := o.sources.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	connector, err := o.buildConnector(ctx, source)
	if err != nil {
		o.markSourceError(ctx, source, err)
		return err
	}

	result := connector.TestConnection(ctx)
	if !result.OK {
		connector.Close()
		testErr := &domain.AuthError{Platform: source.Platform, Reason: result.Message}
		o.markSourceError(ctx, source, testErr)
		o.appendLog(ctx, domain.SyncLog{
			SourceID: sourceID,
			Action:   domain.ActionMonitorStart,
			Outcome:  domain.OutcomeError,
			Message:  result.Message,
		})
		return testErr
	}

	mon := &monitor{source: *source, connector: connector}
	watch, err := connector.Watch(ctx, source.FolderPath, func(entries []domain.RemoteEntry) {
		o.handleChangeBatch(ctx, sourceID, connector, entries)
	})
	if err != nil {
		logger.Warn("orchestrator: change watch for %s not started: %v", source.Name, err)
	} else {
		mon.watch = watch
	}

	o.mu.Lock()
	if _, raced := o.monitors[sourceID]; raced {
		o.mu.Unlock()
		if mon.watch != nil {
			mon.watch.Stop()
		}
		connector.Close()
		return fmt.Errorf("source %s: %w", sourceID, domain.ErrMonitorActive)
	}
	o.monitors[sourceID] = mon
	o.mu.Unlock()

	source.Status = domain.SourceActive
	source.LastError = ""
	source.UpdatedAt = time.Now().UTC()
	if err := o.sources.Save(ctx, *source); err != nil {
		logger.Error("orchestrator: saving source %s: %v", sourceID, err)
	}

	o.appendLog(ctx, domain.SyncLog{
		SourceID: sourceID,
		Action:   domain.ActionMonitorStart,
		Outcome:  domain.OutcomeSuccess,
		Message:  fmt.Sprintf("monitoring %s", source.Name),
	})
	logger.Info("orchestrator: monitoring source %s (%s)", source.Name, source.Platform)
	return nil
}

// StopMonitoring releases the source's connector and removes the monitor.
func (o *Orchestrator) StopMonitoring(ctx context.Context, sourceID string) error {
	o.mu.Lock()
	mon, ok := o.monitors[sourceID]
	if ok {
		delete(o.monitors, sourceID)
	}
	o.mu.Unlock()

	if !ok {
		return fmt.Errorf("source %s: %w", sourceID, domain.ErrMonitorNotFound)
	}

	if mon.watch != nil {
		mon.watch.Stop()
	}
	if err := mon.connector.Close(); err != nil {
		logger.Warn("orchestrator: closing connector for %s: %v", sourceID, err)
	}

	o.appendLog(ctx, domain.SyncLog{
		SourceID: sourceID,
		Action:   domain.ActionMonitorStop,
		Outcome:  domain.OutcomeSuccess,
		Message:  fmt.Sprintf("stopped monitoring %s", mon.source.Name),
	})
	return nil
}

// StopAll releases every monitor. Called at shutdown after the scheduler
// loop has drained.
func (o *Orchestrator) StopAll() {
	o.mu.Lock()
	monitors := o.monitors
	o.monitors = make(map[string]*monitor)
	o.mu.Unlock()

	for sourceID, mon := range monitors {
		if mon.watch != nil {
			mon.watch.Stop()
		}
		if err := mon.connector.Close(); err != nil {
			logger.Warn("orchestrator: closing connector for %s: %v", sourceID, err)
		}
	}
}

// haltMonitoring tears down a source's monitor after a terminal auth
// failure so its watch loop and scheduled passes stop retrying the dead
// credentials. A no-op when the source is not monitored.
func (o *Orchestrator) haltMonitoring(ctx context.Context, sourceID string) {
	o.mu.Lock()
	mon, ok := o.monitors[sourceID]
	if ok {
		delete(o.monitors, sourceID)
	}
	o.mu.Unlock()

	if !ok {
		return
	}

	if mon.watch != nil {
		mon.watch.Stop()
	}
	if err := mon.connector.Close(); err != nil {
		logger.Warn("orchestrator: closing connector for %s: %v", sourceID, err)
	}

	o.appendLog(ctx, domain.SyncLog{
		SourceID: sourceID,
		Action:   domain.ActionMonitorStop,
		Outcome:  domain.OutcomeError,
		Message:  fmt.Sprintf("halted monitoring %s after authentication failure", mon.source.Name),
	})
	logger.Warn("orchestrator: halted monitoring for %s after auth failure", mon.source.Name)
}

// TriggerSync runs one sync pass for the source. A monitored source reuses
// its live connector; otherwise a throwaway connector is built and
// released after the pass.
func (o *Orchestrator) TriggerSync(ctx context.Context, sourceID string) error {
	source, err := o.sources.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	o.mu.RLock()
	mon, monitored := o.monitors[sourceID]
	o.mu.RUnlock()

	connector := (driven.StorageConnector)(nil)
	if monitored {
		connector = mon.connector
	} else {
		connector, err = o.buildConnector(ctx, source)
		if err != nil {
			o.markSourceError(ctx, source, err)
			return err
		}
		defer connector.Close()
	}

	return o.syncPass(ctx, source, connector)
}

// SyncAll runs a sync pass for every monitored source. Failures are
// isolated per source.
func (o *Orchestrator) SyncAll(ctx context.Context) {
	o.mu.RLock()
	monitored := make([]string, 0, len(o.monitors))
	for sourceID := range o.monitors {
		monitored = append(monitored, sourceID)
	}
	o.mu.RUnlock()

	for _, sourceID := range monitored {
		if err := o.TriggerSync(ctx, sourceID); err != nil {
			logger.Warn("orchestrator: sync pass for %s failed: %v", sourceID, err)
		}
	}
}

// TestConnection builds a throwaway connector and runs its test.
func (o *Orchestrator) TestConnection(ctx context.Context, sourceID string) (domain.ConnectionTestResult, error) {
	source, err := o.sources.Get(ctx, sourceID)
	if err != nil {
		return domain.ConnectionTestResult{}, fmt.Errorf("get source: %w", err)
	}

	connector, err := o.buildConnector(ctx, source)
	if err != nil {
		return domain.ConnectionTestResult{
			Platform: source.Platform,
			Message:  err.Error(),
		}, nil
	}
	defer connector.Close()

	result := connector.TestConnection(ctx)
	outcome := domain.OutcomeSuccess
	if !result.OK {
		outcome = domain.OutcomeError
	}
	o.appendLog(ctx, domain.SyncLog{
		SourceID: sourceID,
		Action:   domain.ActionConnectionTest,
		Outcome:  outcome,
		Message:  result.Message,
	})
	return result, nil
}

// Status reports the orchestrator's current state.
func (o *Orchestrator) Status() driving.OrchestratorStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return driving.OrchestratorStatus{
		Running:            o.running,
		ActiveMonitorCount: len(o.monitors),
		LastSyncTime:       o.lastSync,
	}
}

// setRunning is flipped by the scheduler around its loop.
func (o *Orchestrator) setRunning(running bool) {
	o.mu.Lock()
	o.running = running
	o.mu.Unlock()
}

// syncPass lists the remote folder, filters by the source's rules, diffs
// checksums against the converted-file index and enqueues a job per
// changed file. Per-file failures are logged and skipped.
func (o *Orchestrator) syncPass(ctx context.Context, source *domain.Source, connector driven.StorageConnector) error {
	entries, err := connector.ListEntries(ctx, source.FolderPath, 0)
	if err != nil {
		if domain.IsAuthError(err) {
			o.markSourceError(ctx, source, err)
			o.haltMonitoring(ctx, source.ID)
		}
		o.appendLog(ctx, domain.SyncLog{
			SourceID: source.ID,
			Action:   domain.ActionSyncPass,
			Outcome:  domain.OutcomeError,
			Message:  err.Error(),
		})
		return fmt.Errorf("listing %s: %w", source.FolderPath, err)
	}

	enqueued := o.processEntries(ctx, source, connector, entries)

	now := time.Now().UTC()
	source.LastSyncAt = now
	source.UpdatedAt = now
	if err := o.sources.Save(ctx, *source); err != nil {
		logger.Error("orchestrator: saving source %s: %v", source.ID, err)
	}

	o.mu.Lock()
	o.lastSync = now
	o.mu.Unlock()

	o.appendLog(ctx, domain.SyncLog{
		SourceID: source.ID,
		Action:   domain.ActionSyncPass,
		Outcome:  domain.OutcomeSuccess,
		Message:  fmt.Sprintf("processed %d files", enqueued),
		Details:  map[string]any{"listed": len(entries), "enqueued": enqueued},
	})
	logger.Info("orchestrator: sync pass for %s enqueued %d of %d files", source.Name, enqueued, len(entries))
	return nil
}

// processEntries filters a listing by the source's rules, diffs checksums
// against the converted-file index and enqueues a job per changed file.
// Returns the number of jobs enqueued.
func (o *Orchestrator) processEntries(ctx context.Context, source *domain.Source, connector driven.StorageConnector, entries []domain.RemoteEntry) int {
	enqueued := 0
	for _, entry := range entries {
		if !source.AllowsExtension(entry.Name) || source.Excluded(entry.Name) {
			continue
		}

		checksum := entry.ContentChecksum()
		existing, err := o.files.Get(ctx, entry.Path, source.Platform)
		if err == nil && existing.Checksum == checksum {
			continue
		}

		localPath, err := connector.FetchEntry(ctx, entry.ID, o.tempDir)
		if err != nil {
			logger.Warn("orchestrator: fetching %s: %v", entry.Path, err)
			o.appendLog(ctx, domain.SyncLog{
				SourceID: source.ID,
				Action:   domain.ActionFileError,
				Outcome:  domain.OutcomeError,
				Message:  fmt.Sprintf("download of %s failed", entry.Name),
				Details:  map[string]any{"error": err.Error()},
			})
			if domain.IsAuthError(err) {
				o.markSourceError(ctx, source, err)
				o.haltMonitoring(ctx, source.ID)
				break
			}
			continue
		}

		job := domain.ConversionJob{
			ID:           uuid.NewString(),
			SourceID:     source.ID,
			FileName:     entry.Name,
			OriginalPath: entry.Path,
			LocalPath:    localPath,
			FileSize:     entry.Size,
			Status:       domain.JobPending,
			CreatedAt:    time.Now().UTC(),
		}
		if err := o.queue.Enqueue(ctx, job, *source, checksum); err != nil {
			logger.Warn("orchestrator: enqueueing %s: %v", entry.Path, err)
			continue
		}
		enqueued++
	}
	return enqueued
}

// handleChangeBatch is the connector change-watch callback. It re-reads the
// source so filter edits apply without a monitor restart; the queue's
// in-flight dedup makes overlap with scheduled passes harmless.
func (o *Orchestrator) handleChangeBatch(ctx context.Context, sourceID string, connector driven.StorageConnector, entries []domain.RemoteEntry) {
	source, err := o.sources.Get(ctx, sourceID)
	if err != nil {
		logger.Warn("orchestrator: change batch for %s dropped: %v", sourceID, err)
		return
	}
	if n := o.processEntries(ctx, source, connector, entries); n > 0 {
		logger.Info("orchestrator: change watch enqueued %d files for %s", n, source.Name)
	}
}

// buildConnector decrypts the source's credentials and creates the
// matching connector variant.
func (o *Orchestrator) buildConnector(ctx context.Context, source *domain.Source) (driven.StorageConnector, error) {
	credentials, err := o.cipher.Decrypt(source.CredentialBlob)
	if err != nil {
		return nil, fmt.Errorf("decrypting credentials: %w", err)
	}
	connector, err := o.factory.Create(ctx, *source, credentials)
	if err != nil {
		return nil, fmt.Errorf("creating connector: %w", err)
	}
	return connector, nil
}

// markSourceError sets the source to error status with the failure message.
func (o *Orchestrator) markSourceError(ctx context.Context, source *domain.Source, cause error) {
	source.Status = domain.SourceError
	source.LastError = cause.Error()
	source.UpdatedAt = time.Now().UTC()
	if err := o.sources.Save(ctx, *source); err != nil {
		logger.Error("orchestrator: saving source %s: %v", source.ID, err)
	}
}

func (o *Orchestrator) appendLog(ctx context.Context, entry domain.SyncLog) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	if err := o.syncLogs.Append(ctx, entry); err != nil {
		logger.Error("orchestrator: appending log: %v", err)
	}
}
