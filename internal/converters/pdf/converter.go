// Package pdf implements the format converter for PDF documents.
//
// Text extraction shells out to pdftotext (poppler-utils). The external
// command is wrapped behind a CommandRunner so tests can substitute a
// fake implementation.
package pdf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/converters/textutil"
)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Converter handles PDF documents.
type Converter struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a new PDF converter using the system pdftotext binary.
func New() *Converter {
	return &Converter{runner: execRunner{}, lookPath: exec.LookPath}
}

// NewWithRunner creates a converter with a custom command runner.
// The PATH lookup is skipped since the runner supplies the tool.
func NewWithRunner(runner CommandRunner) *Converter {
	return &Converter{
		runner:   runner,
		lookPath: func(string) (string, error) { return "pdftotext", nil },
	}
}

// Name returns the converter name for logging.
func (c *Converter) Name() string {
	return "pdf"
}

// SupportedExtensions returns the file extensions this converter handles.
func (c *Converter) SupportedExtensions() []string {
	return []string{".pdf"}
}

// InstallInstructions returns guidance for installing the PDF tool.
func InstallInstructions() string {
	return "pdftotext is required for PDF conversion.\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils"
}

// Convert extracts PDF text via pdftotext, applies the shared markup
// heuristics and prepends the metadata block.
func (c *Converter) Convert(ctx context.Context, inputPath string) (*driven.ConvertResult, error) {
	if _, err := c.lookPath("pdftotext"); err != nil {
		return nil, &domain.ConversionError{
			Path:   inputPath,
			Reason: "pdf tool unavailable",
			Err:    fmt.Errorf("%w\n%s", ErrPDFToolNotFound, InstallInstructions()),
		}
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, &domain.ConversionError{Path: inputPath, Reason: "reading input", Err: err}
	}

	// "-" writes extracted text to stdout.
	output, err := c.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", inputPath, "-")
	if err != nil {
		return nil, &domain.ConversionError{Path: inputPath, Reason: "text extraction failed", Err: err}
	}

	raw := string(output)
	props := map[string]string{}
	if pages := countPages(raw); pages > 0 {
		props["pages"] = strconv.Itoa(pages)
	}

	sum := sha256.Sum256(data)
	fileName := filepath.Base(inputPath)

	var out strings.Builder
	out.WriteString(textutil.MetadataBlock(fileName, int64(len(data)), "pdf", props))
	out.WriteString(textutil.Render(stripFormFeeds(raw)))

	return &driven.ConvertResult{
		Text:       out.String(),
		Checksum:   hex.EncodeToString(sum[:]),
		Properties: props,
	}, nil
}

// countPages derives the page count from pdftotext's form-feed page
// separators.
func countPages(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return strings.Count(text, "\f") + 1
}

func stripFormFeeds(text string) string {
	return strings.ReplaceAll(text, "\f", "\n\n")
}
