// Package gdrive implements the storage connector for Google Drive using
// the Drive v3 API. Native Google Docs are exported to DOCX on fetch so
// the downstream converters can handle them.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	gopath "path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypeFolder    = "application/vnd.google-apps.folder"

	// ExportMimeDocx is the export format for native Google Docs.
	ExportMimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// googleAppsPrefix marks native Workspace files with no binary content.
const googleAppsPrefix = "application/vnd.google-apps."

const defaultPollInterval = 60 * time.Second

const listFields = "nextPageToken, files(id, name, mimeType, size, modifiedTime, md5Checksum)"

// Connector implements driven.StorageConnector over the Drive v3 API.
type Connector struct {
	svc          *drive.Service
	limiter      *rate.Limiter
	pollInterval time.Duration
}

var _ driven.StorageConnector = (*Connector)(nil)

// NewConnector creates a Drive connector. Without explicit client options
// a refreshing token source is built from the credentials.
func NewConnector(ctx context.Context, creds *Credentials, opts ...option.ClientOption) (*Connector, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithTokenSource(creds.tokenSource(ctx))}
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	return &Connector{
		svc: svc,
		// Drive allows 10 requests/sec/user; stay below.
		limiter:      rate.NewLimiter(rate.Limit(8), 10),
		pollInterval: defaultPollInterval,
	}, nil
}

// Platform returns the connector's platform tag.
func (c *Connector) Platform() domain.Platform {
	return domain.PlatformGoogleDrive
}

// Authenticate exercises the refresh token with a low-cost About call.
func (c *Connector) Authenticate(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.svc.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return c.wrapErr(err, "")
	}
	return nil
}

// TestConnection authenticates and lists the folder root.
func (c *Connector) TestConnection(ctx context.Context) domain.ConnectionTestResult {
	result := domain.ConnectionTestResult{Platform: domain.PlatformGoogleDrive}

	if err := c.Authenticate(ctx); err != nil {
		result.Message = err.Error()
		return result
	}

	entries, err := c.ListEntries(ctx, "/", 5)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.OK = true
	result.SampleCount = len(entries)
	result.Message = fmt.Sprintf("listed %d entries", len(entries))
	return result
}

// ListEntries lists files under the remote folder path. Path segments are
// resolved by name starting from the Drive root.
func (c *Connector) ListEntries(ctx context.Context, remotePath string, limit int) ([]domain.RemoteEntry, error) {
	folderID, err := c.resolveFolder(ctx, remotePath)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)

	var entries []domain.RemoteEntry
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := c.svc.Files.List().Q(query).Fields(listFields).PageSize(100).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, c.wrapErr(err, remotePath)
		}

		for _, file := range page.Files {
			if file.MimeType == MimeTypeFolder {
				continue
			}
			entries = append(entries, fileToEntry(file, remotePath))
			if limit > 0 && len(entries) >= limit {
				return entries, nil
			}
		}

		if page.NextPageToken == "" {
			return entries, nil
		}
		pageToken = page.NextPageToken
	}
}

// FetchEntry downloads or exports the file into destDir. Native Workspace
// files other than Docs have no exportable representation and fail with a
// DownloadError.
func (c *Connector) FetchEntry(ctx context.Context, entryID string, destDir string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	file, err := c.svc.Files.Get(entryID).Fields("id, name, mimeType").Context(ctx).Do()
	if err != nil {
		return "", c.wrapErr(err, entryID)
	}

	var resp *http.Response
	localName := file.Name

	switch {
	case file.MimeType == MimeTypeGoogleDoc:
		localName = file.Name + ".docx"
		resp, err = c.svc.Files.Export(entryID, ExportMimeDocx).Context(ctx).Download()
	case strings.HasPrefix(file.MimeType, googleAppsPrefix):
		return "", &domain.DownloadError{
			Path: file.Name,
			Err:  fmt.Errorf("no exportable representation for %s", file.MimeType),
		}
	default:
		resp, err = c.svc.Files.Get(entryID).Context(ctx).Download()
	}
	if err != nil {
		return "", &domain.DownloadError{Path: file.Name, Err: err}
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}

	// The temp dir is shared across sources; a generated name avoids
	// same-named downloads clobbering each other.
	localPath := gopath.Join(destDir, uuid.NewString()+gopath.Ext(localName))
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("creating local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(localPath)
		return "", &domain.DownloadError{Path: file.Name, Err: err}
	}
	return localPath, nil
}

// Watch polls the remote path and invokes the callback with each listing.
func (c *Connector) Watch(ctx context.Context, remotePath string, callback func([]domain.RemoteEntry)) (driven.WatchHandle, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	handle := &pollHandle{cancel: cancel}

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				entries, err := c.ListEntries(watchCtx, remotePath, 0)
				if err != nil {
					continue
				}
				callback(entries)
			}
		}
	}()

	return handle, nil
}

// Close releases nothing; the token source handles its own lifecycle.
func (c *Connector) Close() error {
	return nil
}

// resolveFolder walks path segments from the Drive root, matching each by
// folder name.
func (c *Connector) resolveFolder(ctx context.Context, remotePath string) (string, error) {
	folderID := "root"
	trimmed := strings.Trim(remotePath, "/")
	if trimmed == "" {
		return folderID, nil
	}

	for _, segment := range strings.Split(trimmed, "/") {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		query := fmt.Sprintf(
			"name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
			escapeQueryValue(segment), folderID, MimeTypeFolder)

		page, err := c.svc.Files.List().Q(query).Fields("files(id)").PageSize(1).Context(ctx).Do()
		if err != nil {
			return "", c.wrapErr(err, remotePath)
		}
		if len(page.Files) == 0 {
			return "", fmt.Errorf("folder %s: %w", remotePath, domain.ErrNotFound)
		}
		folderID = page.Files[0].Id
	}
	return folderID, nil
}

// escapeQueryValue escapes single quotes in Drive query string literals.
func escapeQueryValue(v string) string {
	return strings.ReplaceAll(v, "'", `\'`)
}

// fileToEntry normalises a Drive file. Native Google Docs are listed with
// a .docx suffix since that is what a fetch produces.
func fileToEntry(file *drive.File, remotePath string) domain.RemoteEntry {
	name := file.Name
	if file.MimeType == MimeTypeGoogleDoc {
		name += ".docx"
	}

	entry := domain.RemoteEntry{
		ID:       file.Id,
		Name:     name,
		Path:     gopath.Join("/", strings.Trim(remotePath, "/"), name),
		Size:     file.Size,
		Checksum: file.Md5Checksum,
	}
	if file.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, file.ModifiedTime); err == nil {
			entry.ModifiedTime = t
		}
	}
	return entry
}

// wrapErr converts googleapi errors to domain errors.
func (c *Connector) wrapErr(err error, path string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &domain.AuthError{
				Platform: domain.PlatformGoogleDrive,
				Reason:   apiErr.Message,
				Err:      err,
			}
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
	}
	// Refresh token rejections come back as oauth2 retrieve errors.
	if strings.Contains(err.Error(), "oauth2") || strings.Contains(err.Error(), "invalid_grant") {
		return &domain.AuthError{
			Platform: domain.PlatformGoogleDrive,
			Reason:   "token refresh failed",
			Err:      err,
		}
	}
	return fmt.Errorf("drive request: %w", err)
}

// pollHandle cancels a polling loop.
type pollHandle struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (h *pollHandle) Stop() {
	h.once.Do(h.cancel)
}
