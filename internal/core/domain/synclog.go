package domain

import "time"

// LogAction tags what kind of orchestration action a log entry records.
type LogAction string

const (
	// ActionMonitorStart records a monitor being registered for a source.
	ActionMonitorStart LogAction = "monitor_start"

	// ActionMonitorStop records a monitor being released.
	ActionMonitorStop LogAction = "monitor_stop"

	// ActionSyncPass records one full list-diff-enqueue cycle.
	ActionSyncPass LogAction = "sync_pass"

	// ActionFileError records a per-file failure during a sync pass.
	ActionFileError LogAction = "file_error"

	// ActionConnectionTest records a connection test result.
	ActionConnectionTest LogAction = "connection_test"

	// ActionExportWarning records a non-fatal export destination failure.
	ActionExportWarning LogAction = "export_warning"
)

// LogOutcome is the outcome classification of a logged action.
type LogOutcome string

const (
	OutcomeSuccess    LogOutcome = "success"
	OutcomeError      LogOutcome = "error"
	OutcomeWarning    LogOutcome = "warning"
	OutcomeInProgress LogOutcome = "in_progress"
)

// SyncLog is an append-only audit record of an orchestration action.
// Entries are never mutated after creation.
type SyncLog struct {
	// ID is the unique identifier for the entry.
	ID string

	// SourceID links to the Source the action concerned.
	SourceID string

	// Action tags the kind of action.
	Action LogAction

	// Outcome classifies the result.
	Outcome LogOutcome

	// Message is the human-readable summary.
	Message string

	// Details carries structured context (counts, file names, errors).
	Details map[string]any

	// CreatedAt is when the entry was appended.
	CreatedAt time.Time
}
