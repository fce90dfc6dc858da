// Package graph implements the storage connector for Microsoft Graph
// drives. One connector serves both OneDrive and SharePoint; the platform
// tag selects which drive resource requests are issued against.
package graph

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// defaultPollInterval is how often Watch re-lists the remote path.
const defaultPollInterval = 60 * time.Second

// Connector implements driven.StorageConnector over Microsoft Graph.
type Connector struct {
	client       *Client
	platform     domain.Platform
	drivePath    string
	pollInterval time.Duration
}

var _ driven.StorageConnector = (*Connector)(nil)

// NewConnector creates a connector for a OneDrive or SharePoint source.
func NewConnector(creds *Credentials, platform domain.Platform, opts ...ClientOption) (*Connector, error) {
	if platform != domain.PlatformOneDrive && platform != domain.PlatformSharePoint {
		return nil, fmt.Errorf("graph connector: %w: %s", domain.ErrUnsupportedPlatform, platform)
	}
	if err := creds.Validate(platform); err != nil {
		return nil, err
	}

	return &Connector{
		client:       NewClient(creds, platform, opts...),
		platform:     platform,
		drivePath:    creds.drivePath(platform),
		pollInterval: defaultPollInterval,
	}, nil
}

// Platform returns the connector's platform tag.
func (c *Connector) Platform() domain.Platform {
	return c.platform
}

// Authenticate acquires an access token from the tenant token endpoint.
func (c *Connector) Authenticate(ctx context.Context) error {
	_, err := c.client.accessToken(ctx)
	return err
}

// TestConnection authenticates and lists the drive root.
func (c *Connector) TestConnection(ctx context.Context) domain.ConnectionTestResult {
	result := domain.ConnectionTestResult{Platform: c.platform}

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

// driveItem is the subset of the Graph driveItem resource we read.
type driveItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Size                 int64     `json:"size"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	File                 *struct {
		MimeType string `json:"mimeType"`
		Hashes   struct {
			QuickXorHash string `json:"quickXorHash"`
			SHA1Hash     string `json:"sha1Hash"`
		} `json:"hashes"`
	} `json:"file"`
	Folder          *struct{} `json:"folder"`
	ParentReference struct {
		Path string `json:"path"`
	} `json:"parentReference"`
}

type listResponse struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

// ListEntries lists files at the remote path, following pagination links.
// Folders are skipped; recursion into them is the caller's concern.
func (c *Connector) ListEntries(ctx context.Context, remotePath string, limit int) ([]domain.RemoteEntry, error) {
	next := c.childrenURL(remotePath)

	var entries []domain.RemoteEntry
	for next != "" {
		var page listResponse
		if err := c.client.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Value {
			if item.Folder != nil {
				continue
			}
			entries = append(entries, itemToEntry(item))
			if limit > 0 && len(entries) >= limit {
				return entries, nil
			}
		}
		next = page.NextLink
	}
	return entries, nil
}

// FetchEntry downloads the item's content into destDir and returns the
// local path. Items without retrievable content fail with a DownloadError.
func (c *Connector) FetchEntry(ctx context.Context, entryID string, destDir string) (string, error) {
	var item driveItem
	metaURL := fmt.Sprintf("%s%s/items/%s", c.client.baseURL, c.drivePath, url.PathEscape(entryID))
	if err := c.client.getJSON(ctx, metaURL, &item); err != nil {
		return "", err
	}
	if item.Folder != nil {
		return "", &domain.DownloadError{
			Path: item.Name,
			Err:  fmt.Errorf("entry is a folder"),
		}
	}

	body, err := c.client.get(ctx, metaURL+"/content")
	if err != nil {
		if IsNotFound(err) {
			return "", &domain.DownloadError{Path: item.Name, Err: err}
		}
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}

	// The temp dir is shared across sources; a generated name avoids
	// same-named downloads clobbering each other.
	localPath := path.Join(destDir, uuid.NewString()+path.Ext(item.Name))
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("creating local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		os.Remove(localPath)
		return "", &domain.DownloadError{Path: item.Name, Err: err}
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

// Close discards the cached token.
func (c *Connector) Close() error {
	c.client.invalidateToken()
	return nil
}

// childrenURL builds the children listing URL for a drive-relative path.
func (c *Connector) childrenURL(remotePath string) string {
	base := c.client.baseURL + c.drivePath
	trimmed := strings.Trim(remotePath, "/")
	if trimmed == "" {
		return base + "/root/children"
	}

	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/root:/%s:/children", base, strings.Join(segments, "/"))
}

// itemToEntry normalises a driveItem. The platform content hash is used
// as the checksum when present; otherwise the size/mtime composite.
func itemToEntry(item driveItem) domain.RemoteEntry {
	entry := domain.RemoteEntry{
		ID:           item.ID,
		Name:         item.Name,
		Path:         itemPath(item),
		Size:         item.Size,
		ModifiedTime: item.LastModifiedDateTime,
	}
	if item.File != nil {
		if item.File.Hashes.QuickXorHash != "" {
			entry.Checksum = item.File.Hashes.QuickXorHash
		} else if item.File.Hashes.SHA1Hash != "" {
			entry.Checksum = item.File.Hashes.SHA1Hash
		}
	}
	return entry
}

// itemPath builds a drive-relative path from the parent reference, which
// Graph reports as "/drive/root:/folder/sub".
func itemPath(item driveItem) string {
	parent := item.ParentReference.Path
	if idx := strings.Index(parent, "root:"); idx >= 0 {
		parent = parent[idx+len("root:"):]
	}
	return path.Join("/", parent, item.Name)
}

// pollHandle cancels a polling loop.
type pollHandle struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (h *pollHandle) Stop() {
	h.once.Do(h.cancel)
}
