package driving

import (
	"context"
	"time"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// OrchestratorStatus summarises the orchestrator's current state.
type OrchestratorStatus struct {
	// Running reports whether the scheduler loop is active.
	Running bool

	// ActiveMonitorCount is the number of registered monitors.
	ActiveMonitorCount int

	// LastSyncTime is when the most recent sync pass completed.
	LastSyncTime time.Time
}

// Orchestrator manages per-source monitoring lifecycles and sync passes.
type Orchestrator interface {
	// StartMonitoring registers a monitor for the source: decrypts its
	// credentials, builds the matching connector and verifies the
	// connection. A failed test leaves the source unmonitored.
	StartMonitoring(ctx context.Context, sourceID string) error

	// StopMonitoring releases the source's connector and removes the monitor.
	StopMonitoring(ctx context.Context, sourceID string) error

	// TriggerSync runs one sync pass for the source immediately. For an
	// unmonitored source a throwaway connector is built and released
	// after the pass.
	TriggerSync(ctx context.Context, sourceID string) error

	// TestConnection builds a throwaway connector for the source and
	// runs its connection test.
	TestConnection(ctx context.Context, sourceID string) (domain.ConnectionTestResult, error)

	// Status reports the orchestrator's current state.
	Status() OrchestratorStatus
}
