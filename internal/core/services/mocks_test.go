package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// stubCipher prefixes instead of encrypting; good enough for wiring tests.
type stubCipher struct{}

func (stubCipher) Encrypt(plain string) (string, error) {
	return "enc:" + plain, nil
}

func (stubCipher) Decrypt(blob string) (string, error) {
	if !strings.HasPrefix(blob, "enc:") {
		return "", &domain.IntegrityError{Reason: "authentication failed"}
	}
	return strings.TrimPrefix(blob, "enc:"), nil
}

// fakeConnector serves a fixed entry listing and writes fixed bytes on fetch.
type fakeConnector struct {
	mu         sync.Mutex
	platform   domain.Platform
	entries    []domain.RemoteEntry
	listErr    error
	fetchErr   error
	testResult domain.ConnectionTestResult
	fetched    []string
	closed     bool
	watchCB    func([]domain.RemoteEntry)
}

var _ driven.StorageConnector = (*fakeConnector)(nil)

func (f *fakeConnector) Platform() domain.Platform { return f.platform }

func (f *fakeConnector) Authenticate(context.Context) error { return nil }

func (f *fakeConnector) TestConnection(context.Context) domain.ConnectionTestResult {
	return f.testResult
}

func (f *fakeConnector) ListEntries(_ context.Context, _ string, limit int) ([]domain.RemoteEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > 0 && limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeConnector) FetchEntry(_ context.Context, entryID string, destDir string) (string, error) {
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	f.mu.Lock()
	f.fetched = append(f.fetched, entryID)
	f.mu.Unlock()

	name := entryID
	for _, entry := range f.entries {
		if entry.ID == entryID {
			name = entry.Name
			break
		}
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	localPath := filepath.Join(destDir, name)
	if err := os.WriteFile(localPath, []byte("remote-bytes"), 0644); err != nil {
		return "", err
	}
	return localPath, nil
}

func (f *fakeConnector) Watch(ctx context.Context, _ string, callback func([]domain.RemoteEntry)) (driven.WatchHandle, error) {
	f.mu.Lock()
	f.watchCB = callback
	f.mu.Unlock()
	_, cancel := context.WithCancel(ctx)
	return &pollStopper{cancel: cancel}, nil
}

// fireWatch invokes the captured change-watch callback, standing in for a
// poll tick.
func (f *fakeConnector) fireWatch(entries []domain.RemoteEntry) {
	f.mu.Lock()
	callback := f.watchCB
	f.mu.Unlock()
	if callback != nil {
		callback(entries)
	}
}

func (f *fakeConnector) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConnector) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

type pollStopper struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (p *pollStopper) Stop() { p.once.Do(p.cancel) }

// fakeFactory hands out a fixed connector and records the payloads it saw.
type fakeFactory struct {
	mu        sync.Mutex
	connector driven.StorageConnector
	err       error
	payloads  []string
}

var _ driven.ConnectorFactory = (*fakeFactory)(nil)

func (f *fakeFactory) Create(_ context.Context, _ domain.Source, credentials string) (driven.StorageConnector, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, credentials)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.connector, nil
}

// fakeConverter fails its first `failures` calls with failErr, then succeeds.
type fakeConverter struct {
	mu       sync.Mutex
	failures int
	failErr  error
	calls    int
}

var _ driven.Converter = (*fakeConverter)(nil)

func (f *fakeConverter) Name() string { return "fake" }

func (f *fakeConverter) SupportedExtensions() []string { return []string{".docx", ".pdf"} }

func (f *fakeConverter) Convert(_ context.Context, inputPath string) (*driven.ConvertResult, error) {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()

	if calls <= f.failures {
		return nil, f.failErr
	}
	return &driven.ConvertResult{
		Text:     "converted " + filepath.Base(inputPath),
		Checksum: "local-sha",
	}, nil
}

func (f *fakeConverter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeRegistry returns a single converter for every file.
type fakeRegistry struct {
	converter driven.Converter
	err       error
}

var _ driven.ConverterRegistry = (*fakeRegistry)(nil)

func (f *fakeRegistry) ForFile(string) (driven.Converter, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.converter, nil
}

// fakeExporter records writes and copies in memory.
type fakeExporter struct {
	mu      sync.Mutex
	writes  map[string]string
	copies  []string
	copyErr error
}

var _ driven.Exporter = (*fakeExporter)(nil)

func newFakeExporter() *fakeExporter {
	return &fakeExporter{writes: make(map[string]string)}
}

func (f *fakeExporter) WriteCanonical(_ context.Context, relPath string, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes[relPath] = text
	return "/canonical/" + relPath, nil
}

func (f *fakeExporter) CopyTo(_ context.Context, canonicalPath string, destination string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	f.mu.Lock()
	f.copies = append(f.copies, fmt.Sprintf("%s -> %s", canonicalPath, destination))
	f.mu.Unlock()
	return nil
}

func (f *fakeExporter) written(relPath string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.writes[relPath]
	return text, ok
}
