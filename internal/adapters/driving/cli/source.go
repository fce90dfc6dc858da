package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage sync sources",
	Long: `Add, list, test and remove sync sources.

A source names a remote folder on one platform plus its filtering rules
and export destinations. Credentials are prompted for (never passed as a
flag) and stored encrypted.

Examples:
  inkwell source add --name Contracts --platform sharepoint --folder "/Shared Documents"
  inkwell source add --name Drive --platform gdrive --include .docx --include .pdf
  inkwell source test <source-id>
  inkwell source remove <source-id>`,
}

var (
	sourceAddName     string
	sourceAddPlatform string
	sourceAddFolder   string
	sourceAddInclude  []string
	sourceAddExclude  []string
	sourceAddExport   []string
)

var sourceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new source",
	RunE:  runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <source-id>",
	Short: "Remove a source and its job history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

var sourceTestCmd = &cobra.Command{
	Use:   "test <source-id>",
	Short: "Test a source's connection",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceTest,
}

func init() {
	sourceAddCmd.Flags().StringVar(&sourceAddName, "name", "", "display name (required)")
	sourceAddCmd.Flags().StringVar(&sourceAddPlatform, "platform", "", "onedrive, sharepoint or gdrive (required)")
	sourceAddCmd.Flags().StringVar(&sourceAddFolder, "folder", "/", "remote folder to watch")
	sourceAddCmd.Flags().StringArrayVar(&sourceAddInclude, "include", nil, "extension allow-list entry (repeatable)")
	sourceAddCmd.Flags().StringArrayVar(&sourceAddExclude, "exclude", nil, "file name exclusion pattern (repeatable)")
	sourceAddCmd.Flags().StringArrayVar(&sourceAddExport, "export", nil, "export destination, directory or s3:// URL (repeatable)")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceTestCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, _ []string) error {
	if sourceStore == nil || credCipher == nil {
		return errors.New("source registry not configured")
	}

	if sourceAddName == "" {
		return errors.New("--name is required")
	}
	platform := domain.Platform(sourceAddPlatform)
	if !platform.Valid() {
		return fmt.Errorf("invalid --platform %q (want onedrive, sharepoint or gdrive)", sourceAddPlatform)
	}

	credentials, err := promptSecret(cmd, "Credential JSON: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(credentials) == "" {
		return errors.New("credentials must not be empty")
	}

	blob, err := credCipher.Encrypt(credentials)
	if err != nil {
		return fmt.Errorf("encrypting credentials: %w", err)
	}

	now := time.Now().UTC()
	source := domain.Source{
		ID:                 uuid.NewString(),
		Name:               sourceAddName,
		Platform:           platform,
		CredentialBlob:     blob,
		FolderPath:         sourceAddFolder,
		ExportDestinations: sourceAddExport,
		IncludeExtensions:  sourceAddInclude,
		ExcludePatterns:    sourceAddExclude,
		Status:             domain.SourceActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := sourceStore.Save(cmd.Context(), source); err != nil {
		return fmt.Errorf("saving source: %w", err)
	}

	cmd.Printf("Source %s added with ID %s\n", source.Name, source.ID)
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceStore == nil {
		return errors.New("source registry not configured")
	}

	sources, err := sourceStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	for _, source := range sources {
		cmd.Printf("%s  %-12s %-10s %s\n", source.ID, source.Platform, source.Status, source.Name)
		cmd.Printf("    folder: %s\n", source.FolderPath)
		if len(source.ExportDestinations) > 0 {
			cmd.Printf("    exports: %s\n", strings.Join(source.ExportDestinations, ", "))
		}
		if !source.LastSyncAt.IsZero() {
			cmd.Printf("    last sync: %s\n", source.LastSyncAt.Format(time.RFC3339))
		}
		if source.LastError != "" {
			cmd.Printf("    last error: %s\n", source.LastError)
		}
	}
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceStore == nil {
		return errors.New("source registry not configured")
	}

	sourceID := args[0]
	if orchestrator != nil {
		// Best effort: release the monitor if one is active.
		if err := orchestrator.StopMonitoring(cmd.Context(), sourceID); err != nil &&
			!errors.Is(err, domain.ErrMonitorNotFound) {
			cmd.Printf("warning: stopping monitor: %v\n", err)
		}
	}

	if err := sourceStore.Delete(cmd.Context(), sourceID); err != nil {
		return fmt.Errorf("removing source: %w", err)
	}
	cmd.Printf("Source %s removed.\n", sourceID)
	return nil
}

func runSourceTest(cmd *cobra.Command, args []string) error {
	if orchestrator == nil {
		return errors.New("sync service not configured")
	}

	result, err := orchestrator.TestConnection(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if result.OK {
		cmd.Printf("Connection OK (%s): %s\n", result.Platform, result.Message)
	} else {
		cmd.Printf("Connection FAILED (%s): %s\n", result.Platform, result.Message)
	}
	return nil
}

// promptSecret reads a secret without echo when stdin is a terminal, and
// falls back to a plain line read otherwise (pipes, tests).
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(secret), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
