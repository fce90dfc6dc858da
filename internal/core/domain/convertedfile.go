package domain

import "time"

// ConvertedFile records the last successful conversion of a remote file.
// It is the change-detection oracle: a remote entry is skipped only when
// an index entry exists with a matching checksum.
type ConvertedFile struct {
	// OriginalPath is the remote path or ID of the file.
	OriginalPath string

	// Platform is the storage platform the file came from.
	// (OriginalPath, Platform) is the index key.
	Platform Platform

	// LocalPath is where the converted output lives.
	LocalPath string

	// FileName is the remote file's display name.
	FileName string

	// Format is the source format tag (e.g. "docx", "pdf").
	Format string

	// Checksum is the content checksum at the time of conversion.
	Checksum string

	// ConvertedAt is when the conversion completed.
	ConvertedAt time.Time
}

// Key returns the composite index key for the file.
func (f *ConvertedFile) Key() string {
	return f.OriginalPath + "|" + string(f.Platform)
}
