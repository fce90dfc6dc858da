package services

import (
	"context"
	"sync"
	"time"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/logger"
)

// LogRetention is how many audit log entries are kept per source.
const LogRetention = 1000

// Scheduler drives periodic sync passes over all monitored sources.
type Scheduler struct {
	orchestrator *Orchestrator
	sources      driven.SourceStore
	syncLogs     driven.SyncLogStore
	interval     time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler firing every interval.
func NewScheduler(
	orchestrator *Orchestrator,
	sources driven.SourceStore,
	syncLogs driven.SyncLogStore,
	interval time.Duration,
) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		sources:      sources,
		syncLogs:     syncLogs,
		interval:     interval,
	}
}

// Start registers monitors for all active sources and blocks in the sync
// loop until Stop is called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.orchestrator.setRunning(true)
	defer s.orchestrator.setRunning(false)
	defer s.orchestrator.StopAll()

	s.startActiveMonitors(ctx)

	// First pass immediately; the ticker covers the rest.
	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// Stop shuts the loop down and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

// startActiveMonitors registers a monitor for every active source.
// Sources that fail their connection test are marked errored and skipped.
func (s *Scheduler) startActiveMonitors(ctx context.Context) {
	sources, err := s.sources.List(ctx)
	if err != nil {
		logger.Error("scheduler: listing sources: %v", err)
		return
	}

	for _, source := range sources {
		if source.Status != domain.SourceActive {
			continue
		}
		if err := s.orchestrator.StartMonitoring(ctx, source.ID); err != nil {
			logger.Warn("scheduler: monitor for %s not started: %v", source.Name, err)
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.orchestrator.SyncAll(ctx)

		if err := s.syncLogs.Prune(ctx, LogRetention); err != nil {
			logger.Warn("scheduler: pruning logs: %v", err)
		}
	}()
}
