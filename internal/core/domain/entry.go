package domain

import (
	"fmt"
	"time"
)

// RemoteEntry is a normalised listing entry returned by a storage connector.
// Directories are never surfaced as entries.
type RemoteEntry struct {
	// ID is the platform-native identifier for the file.
	ID string

	// Name is the file's display name.
	Name string

	// Path is the remote path of the file.
	Path string

	// Size is the byte size.
	Size int64

	// ModifiedTime is the remote last-modified timestamp.
	ModifiedTime time.Time

	// Checksum is the platform-provided content hash when available.
	Checksum string
}

// ContentChecksum returns the authoritative change-detection signal for
// the entry: the platform hash when present, otherwise a composite of
// size and modified time. Modified time alone is never trusted.
func (e *RemoteEntry) ContentChecksum() string {
	if e.Checksum != "" {
		return e.Checksum
	}
	return composedChecksum(e.Size, e.ModifiedTime)
}

func composedChecksum(size int64, modified time.Time) string {
	// Stable fallback for platforms that expose no content hash.
	return fmt.Sprintf("sz:%d;mt:%d", size, modified.UTC().Unix())
}

// ConnectionTestResult is the structured outcome of a connector test.
// Tests never fail with an error; failures are reported with OK false.
type ConnectionTestResult struct {
	// OK reports whether authentication and a sample read succeeded.
	OK bool

	// Message describes the outcome.
	Message string

	// Platform is the connector's platform tag.
	Platform Platform

	// SampleCount is the number of entries visible at the configured path.
	SampleCount int
}
