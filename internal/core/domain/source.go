package domain

import (
	"regexp"
	"strings"
	"time"
)

// Platform identifies a remote storage platform.
// The set is closed: adding a platform means adding a connector variant.
type Platform string

const (
	// PlatformOneDrive targets a user's personal drive root via Microsoft Graph.
	PlatformOneDrive Platform = "onedrive"

	// PlatformSharePoint targets a site-scoped document library via Microsoft Graph.
	PlatformSharePoint Platform = "sharepoint"

	// PlatformGoogleDrive targets a Google Drive folder.
	PlatformGoogleDrive Platform = "gdrive"
)

// Valid reports whether the platform tag is known.
func (p Platform) Valid() bool {
	switch p {
	case PlatformOneDrive, PlatformSharePoint, PlatformGoogleDrive:
		return true
	}
	return false
}

// SourceStatus is the activation status of a source.
type SourceStatus string

const (
	// SourceActive means the source is eligible for monitoring.
	SourceActive SourceStatus = "active"

	// SourceInactive means the source is configured but disabled.
	SourceInactive SourceStatus = "inactive"

	// SourceError means the last authentication or sync attempt failed;
	// monitoring is halted until the source is reconfigured.
	SourceError SourceStatus = "error"
)

// Source is a configured remote location to watch.
// Credentials are stored encrypted; only connectors see the plaintext.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Name is the human-readable name for this source.
	Name string

	// Platform selects the connector variant.
	Platform Platform

	// CredentialBlob is the encrypted credential payload.
	// Written via the credential cipher; never stored in plaintext.
	CredentialBlob string

	// FolderPath is the remote path or folder reference to watch.
	FolderPath string

	// ExportDestinations are paths or s3:// URLs that receive a copy of
	// each converted document in addition to the canonical output.
	ExportDestinations []string

	// IncludeExtensions is the extension allow-list (e.g. ".docx", ".pdf").
	// Empty means all extensions are eligible.
	IncludeExtensions []string

	// ExcludePatterns are regular expressions matched against file names.
	// A match excludes the file from syncing.
	ExcludePatterns []string

	// Status is the activation status.
	Status SourceStatus

	// LastError holds the most recent failure message when Status is error.
	LastError string

	// LastSyncAt is when the last successful sync pass completed.
	LastSyncAt time.Time

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// AllowsExtension reports whether a file name passes the extension allow-list.
func (s *Source) AllowsExtension(name string) bool {
	if len(s.IncludeExtensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range s.IncludeExtensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Excluded reports whether a file name matches any exclusion pattern.
// Patterns are regular expressions; a pattern that fails to compile is
// treated as a literal substring.
func (s *Source) Excluded(name string) bool {
	for _, pattern := range s.ExcludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			if strings.Contains(name, pattern) {
				return true
			}
			continue
		}
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
