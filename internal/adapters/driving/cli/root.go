// Package cli implements the inkwell command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driving"
	"github.com/inkwell-sync/inkwell/internal/logger"
)

// Services wired in by main. Commands check for nil so tests can run a
// single command with only the services it touches.
var (
	orchestrator driving.Orchestrator
	jobService   driving.JobService
	sourceStore  driven.SourceStore
	credCipher   driven.CredentialCipher
	scheduler    schedulerRunner
	queue        queueRunner
)

// schedulerRunner is the scheduler lifecycle the serve command drives.
type schedulerRunner interface {
	Start(ctx context.Context) error
	Stop()
}

// queueRunner is the worker pool lifecycle the serve command drives.
type queueRunner interface {
	Start(ctx context.Context)
	Stop()
}

// Services bundles everything the commands need.
type Services struct {
	Orchestrator driving.Orchestrator
	Jobs         driving.JobService
	Sources      driven.SourceStore
	Cipher       driven.CredentialCipher
	Scheduler    schedulerRunner
	Queue        queueRunner
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Sync and convert cloud documents to structured text",
	Long: `Inkwell watches OneDrive, SharePoint and Google Drive folders,
downloads changed documents and converts them to structured text.

Converted output is written under the storage root and optionally copied
to export destinations (local directories or s3:// URLs).`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute wires the services and runs the root command.
func Execute(s Services) error {
	orchestrator = s.Orchestrator
	jobService = s.Jobs
	sourceStore = s.Sources
	credCipher = s.Cipher
	scheduler = s.Scheduler
	queue = s.Queue
	return rootCmd.Execute()
}
