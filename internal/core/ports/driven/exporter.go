package driven

import "context"

// Exporter writes converted output to its canonical location and copies
// it to configured destinations.
type Exporter interface {
	// WriteCanonical persists the converted text under the storage root
	// and returns the canonical path. The canonical copy is authoritative.
	WriteCanonical(ctx context.Context, relPath string, text string) (string, error)

	// CopyTo copies the canonical file to a destination (local directory
	// or s3:// URL). A malformed destination fails with a ValidationError
	// before any I/O.
	CopyTo(ctx context.Context, canonicalPath string, destination string) error
}
