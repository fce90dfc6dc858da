package driven

import "context"

// ConvertResult is the output of a successful format conversion.
type ConvertResult struct {
	// Text is the structured text output, including the metadata block.
	Text string

	// Checksum is the SHA-256 hex digest of the input bytes.
	Checksum string

	// Properties carries format-specific metadata (page count, author).
	Properties map[string]string
}

// Converter transforms one binary document format into structured text.
// Each format variant implements this interface.
type Converter interface {
	// Name returns the converter name for logging.
	Name() string

	// SupportedExtensions returns the file extensions this converter handles.
	SupportedExtensions() []string

	// Convert reads the file at inputPath and produces structured text.
	// Malformed or unreadable input fails with a ConversionError; a
	// corrupt file must never panic the calling worker.
	Convert(ctx context.Context, inputPath string) (*ConvertResult, error)
}

// ConverterRegistry selects the converter variant for a file.
type ConverterRegistry interface {
	// ForFile returns the converter handling the file's extension.
	// Returns ErrUnsupportedFormat when no variant matches.
	ForFile(fileName string) (Converter, error)
}
