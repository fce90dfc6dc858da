// Package export writes converted output to its canonical location under
// the storage root and copies it to configured destinations. Destinations
// are local directories or s3:// URLs.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// Exporter implements driven.Exporter over a local storage root.
type Exporter struct {
	root string
	s3   ObjectPutter
}

var _ driven.Exporter = (*Exporter)(nil)

// Option configures an Exporter.
type Option func(*Exporter)

// WithS3Client sets the uploader used for s3:// destinations. Without it
// a client is built lazily from INKWELL_S3_* environment variables.
func WithS3Client(putter ObjectPutter) Option {
	return func(e *Exporter) { e.s3 = putter }
}

// New creates an Exporter rooted at the given directory.
func New(root string, opts ...Option) *Exporter {
	e := &Exporter{root: root}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteCanonical persists text under the storage root at relPath and
// returns the absolute canonical path. relPath must stay inside the root.
func (e *Exporter) WriteCanonical(ctx context.Context, relPath string, text string) (string, error) {
	if err := validateRelPath(relPath); err != nil {
		return "", err
	}

	path := filepath.Join(e.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("writing canonical file: %w", err)
	}
	return path, nil
}

// CopyTo copies the canonical file to a destination, preserving its path
// relative to the storage root. The canonical copy is never touched.
func (e *Exporter) CopyTo(ctx context.Context, canonicalPath string, destination string) error {
	if destination == "" {
		return &domain.ValidationError{Field: "destination", Reason: "empty"}
	}

	rel, err := filepath.Rel(e.root, canonicalPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return &domain.ValidationError{Field: "path", Reason: "canonical path outside storage root"}
	}

	if strings.HasPrefix(destination, "s3://") {
		return e.copyToS3(ctx, canonicalPath, rel, destination)
	}
	return copyToDir(canonicalPath, destination, rel)
}

// validateRelPath rejects absolute paths and parent-directory escapes
// before any filesystem access.
func validateRelPath(relPath string) error {
	if relPath == "" {
		return &domain.ValidationError{Field: "path", Reason: "empty"}
	}
	if filepath.IsAbs(relPath) || strings.HasPrefix(relPath, "/") {
		return &domain.ValidationError{Field: "path", Reason: "must be relative"}
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return &domain.ValidationError{Field: "path", Reason: "escapes storage root"}
	}
	return nil
}

func copyToDir(srcPath, destDir, rel string) error {
	destPath := filepath.Join(destDir, rel)
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("reading canonical file: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("copying to %s: %w", destDir, err)
	}
	return nil
}
