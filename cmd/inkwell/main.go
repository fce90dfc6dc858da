// Command inkwell syncs documents from cloud storage platforms and
// converts them to structured text.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/inkwell-sync/inkwell/internal/adapters/driven/cipher"
	"github.com/inkwell-sync/inkwell/internal/adapters/driven/config"
	"github.com/inkwell-sync/inkwell/internal/adapters/driven/export"
	"github.com/inkwell-sync/inkwell/internal/adapters/driven/storage/sqlite"
	"github.com/inkwell-sync/inkwell/internal/adapters/driving/cli"
	"github.com/inkwell-sync/inkwell/internal/connectors"
	"github.com/inkwell-sync/inkwell/internal/converters"
	"github.com/inkwell-sync/inkwell/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("INKWELL_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	credCipher, err := cipher.NewFromHex(cfg.CipherKey)
	if err != nil {
		return fmt.Errorf("initialising credential cipher: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer store.Close()

	sources := store.SourceStore()
	jobs := store.JobStore()
	syncLogs := store.SyncLogStore()
	files := store.ConvertedFileStore()

	factory := connectors.NewFactory(connectors.Defaults{
		GraphTenantID:     cfg.Graph.TenantID,
		GraphClientID:     cfg.Graph.ClientID,
		GraphClientSecret: cfg.Graph.ClientSecret,
		DriveClientID:     cfg.Drive.ClientID,
		DriveClientSecret: cfg.Drive.ClientSecret,
	})

	queue := services.NewConversionQueue(
		jobs, files, syncLogs,
		converters.Defaults(),
		export.New(cfg.StorageRoot),
		services.WithConcurrency(cfg.WorkerConcurrency),
	)

	orchestrator := services.NewOrchestrator(
		sources, files, syncLogs,
		factory, credCipher, queue,
		cfg.TempDir,
	)

	scheduler := services.NewScheduler(
		orchestrator, sources, syncLogs,
		time.Duration(cfg.SyncIntervalMinutes)*time.Minute,
	)

	jobManager := services.NewJobManager(
		jobs, sources, syncLogs,
		factory, credCipher, queue, orchestrator,
		cfg.TempDir,
	)

	return cli.Execute(cli.Services{
		Orchestrator: orchestrator,
		Jobs:         jobManager,
		Sources:      sources,
		Cipher:       credCipher,
		Scheduler:    scheduler,
		Queue:        queue,
	})
}
