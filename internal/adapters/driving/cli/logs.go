package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var logsLimit int

var logsCmd = &cobra.Command{
	Use:   "logs [source-id]",
	Short: "Show the sync audit log",
	Long: `Shows audit log entries, newest first. With a source ID only entries
for that source are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVar(&logsLimit, "limit", 50, "maximum number of entries to show")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	var sourceID string
	if len(args) > 0 {
		sourceID = args[0]
	}

	entries, err := jobService.GetLogs(cmd.Context(), sourceID, logsLimit)
	if err != nil {
		return fmt.Errorf("get logs: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("No log entries.")
		return nil
	}

	for _, entry := range entries {
		cmd.Printf("%s  %-7s %-15s %s\n",
			entry.CreatedAt.Format(time.RFC3339), entry.Outcome, entry.Action, entry.Message)
	}
	return nil
}
