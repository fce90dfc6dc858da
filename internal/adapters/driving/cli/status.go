package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show orchestrator status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if orchestrator == nil {
		return errors.New("sync service not configured")
	}

	status := orchestrator.Status()

	state := "stopped"
	if status.Running {
		state = "running"
	}
	cmd.Printf("Scheduler:       %s\n", state)
	cmd.Printf("Active monitors: %d\n", status.ActiveMonitorCount)
	if status.LastSyncTime.IsZero() {
		cmd.Println("Last sync:       never")
	} else {
		cmd.Printf("Last sync:       %s\n", status.LastSyncTime.Format(time.RFC3339))
	}
	return nil
}
