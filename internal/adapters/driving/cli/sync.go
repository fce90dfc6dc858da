package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Run a sync pass",
	Long: `Runs one sync pass immediately. With a source ID only that source
is synced; otherwise every active source is.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if orchestrator == nil {
		return errors.New("sync service not configured")
	}

	ctx := cmd.Context()

	if len(args) > 0 {
		sourceID := args[0]
		cmd.Printf("Syncing source %s...\n", sourceID)
		if err := orchestrator.TriggerSync(ctx, sourceID); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		cmd.Println("Sync pass complete.")
		return nil
	}

	if sourceStore == nil {
		return errors.New("source registry not configured")
	}
	sources, err := sourceStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	var failures int
	for _, source := range sources {
		if source.Status != domain.SourceActive {
			continue
		}
		cmd.Printf("Syncing %s (%s)...\n", source.Name, source.Platform)
		if err := orchestrator.TriggerSync(ctx, source.ID); err != nil {
			failures++
			cmd.Printf("  failed: %v\n", err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d source(s) failed to sync", failures)
	}
	cmd.Println("All sources synced.")
	return nil
}
