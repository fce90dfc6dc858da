package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage conversion jobs",
}

var jobListSourceID string
var jobListLimit int

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversion jobs, newest first",
	RunE:  runJobList,
}

var jobShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobShow,
}

var jobConvertCmd = &cobra.Command{
	Use:   "convert <source-id> <file>",
	Short: "Convert a single file immediately",
	Long: `Downloads one remote file and enqueues it for conversion, bypassing
change detection. The file may be given as a path, a name or a platform
file ID.`,
	Args: cobra.ExactArgs(2),
	RunE: runJobConvert,
}

var jobRetryCmd = &cobra.Command{
	Use:   "retry <job-id>",
	Short: "Retry a failed job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobRetry,
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a pending or processing job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobCancel,
}

func init() {
	jobListCmd.Flags().StringVar(&jobListSourceID, "source", "", "filter by source ID")
	jobListCmd.Flags().IntVar(&jobListLimit, "limit", 20, "maximum number of jobs to show")

	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobShowCmd)
	jobCmd.AddCommand(jobConvertCmd)
	jobCmd.AddCommand(jobRetryCmd)
	jobCmd.AddCommand(jobCancelCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobList(cmd *cobra.Command, _ []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	jobs, err := jobService.ListJobs(cmd.Context(), jobListSourceID, jobListLimit)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	if len(jobs) == 0 {
		cmd.Println("No jobs found.")
		return nil
	}

	for _, job := range jobs {
		cmd.Printf("%s  %-10s %s\n", job.ID, job.Status, job.FileName)
		if job.Error != "" {
			cmd.Printf("    error: %s\n", job.Error)
		}
	}
	return nil
}

func runJobShow(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	job, err := jobService.GetJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	cmd.Printf("ID:       %s\n", job.ID)
	cmd.Printf("Source:   %s\n", job.SourceID)
	cmd.Printf("File:     %s (%s)\n", job.FileName, job.OriginalPath)
	cmd.Printf("Status:   %s (%d%%)\n", job.Status, job.Progress)
	cmd.Printf("Created:  %s\n", job.CreatedAt.Format(time.RFC3339))
	if !job.StartedAt.IsZero() {
		cmd.Printf("Started:  %s\n", job.StartedAt.Format(time.RFC3339))
	}
	if !job.CompletedAt.IsZero() {
		cmd.Printf("Finished: %s\n", job.CompletedAt.Format(time.RFC3339))
	}
	if job.OutputPath != "" {
		cmd.Printf("Output:   %s\n", job.OutputPath)
	}
	if job.Error != "" {
		cmd.Printf("Error:    %s\n", job.Error)
	}
	return nil
}

func runJobConvert(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	job, err := jobService.CreateManualJob(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	cmd.Printf("Job %s enqueued for %s\n", job.ID, job.FileName)
	return nil
}

func runJobRetry(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	job, err := jobService.RetryJob(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrJobNotRetryable) {
			return fmt.Errorf("job %s is not failed; only failed jobs can be retried", args[0])
		}
		return fmt.Errorf("retry job: %w", err)
	}
	cmd.Printf("Job %s requeued as %s\n", args[0], job.ID)
	return nil
}

func runJobCancel(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	if err := jobService.CancelJob(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrJobNotCancellable) {
			return fmt.Errorf("job %s has already finished", args[0])
		}
		return fmt.Errorf("cancel job: %w", err)
	}
	cmd.Printf("Job %s cancelled.\n", args[0])
	return nil
}
