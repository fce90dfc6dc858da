package driven

import (
	"context"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// StorageConnector fetches file listings and content from a remote
// storage platform. Each platform variant implements this interface.
type StorageConnector interface {
	// Platform returns the connector's platform tag.
	Platform() domain.Platform

	// Authenticate obtains a short-lived access credential from the
	// platform's token endpoint using the stored long-lived secret.
	// Returns an AuthError on invalid or expired secrets.
	Authenticate(ctx context.Context) error

	// TestConnection authenticates and performs one low-cost read.
	// Never returns an error; failures are reported in the result.
	TestConnection(ctx context.Context) domain.ConnectionTestResult

	// ListEntries returns normalised entries at the given remote path.
	// Directories are excluded. A limit of 0 means no limit.
	ListEntries(ctx context.Context, path string, limit int) ([]domain.RemoteEntry, error)

	// FetchEntry streams remote bytes to a local temporary file inside
	// destDir and returns the local path. Returns a DownloadError when
	// no retrievable content exists for the entry.
	FetchEntry(ctx context.Context, entryID string, destDir string) (string, error)

	// Watch polls the given path for changes and invokes the callback
	// with each new batch of entries. It returns a handle that cancels
	// the polling loop.
	Watch(ctx context.Context, path string, callback func([]domain.RemoteEntry)) (WatchHandle, error)

	// Close discards cached tokens and releases resources.
	Close() error
}

// WatchHandle cancels an active change-watch loop.
type WatchHandle interface {
	// Stop cancels the polling loop. Safe to call more than once.
	Stop()
}

// ConnectorFactory builds the connector variant matching a source's
// platform tag, using the source's decrypted credentials.
type ConnectorFactory interface {
	// Create constructs a connector for the source. The credentials
	// parameter is the decrypted credential payload.
	Create(ctx context.Context, source domain.Source, credentials string) (StorageConnector, error)
}
