package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-sync/inkwell/internal/core/ports/driving"
)

func TestStatusCmd_NeverSynced(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Scheduler:       stopped")
	assert.Contains(t, buf.String(), "Active monitors: 0")
	assert.Contains(t, buf.String(), "Last sync:       never")
}

func TestStatusCmd_Running(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	lastSync := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	orchestrator.(*mockOrchestrator).status = driving.OrchestratorStatus{
		Running:            true,
		ActiveMonitorCount: 2,
		LastSyncTime:       lastSync,
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Scheduler:       running")
	assert.Contains(t, buf.String(), "Active monitors: 2")
	assert.Contains(t, buf.String(), "2026-08-23T10:30:00Z")
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "inkwell version dev")
}
