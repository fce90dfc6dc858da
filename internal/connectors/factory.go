// Package connectors wires platform tags to their connector variants.
package connectors

import (
	"context"
	"fmt"

	"github.com/inkwell-sync/inkwell/internal/connectors/gdrive"
	"github.com/inkwell-sync/inkwell/internal/connectors/graph"
	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// Defaults are application credentials applied when a source's own
// payload omits them. Per-source values always win.
type Defaults struct {
	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	DriveClientID     string
	DriveClientSecret string
}

// Factory implements driven.ConnectorFactory.
type Factory struct {
	defaults Defaults
}

var _ driven.ConnectorFactory = (*Factory)(nil)

// NewFactory creates a factory with the given credential defaults.
func NewFactory(defaults Defaults) *Factory {
	return &Factory{defaults: defaults}
}

// Create builds the connector variant for the source's platform from the
// decrypted credential payload.
func (f *Factory) Create(ctx context.Context, source domain.Source, credentials string) (driven.StorageConnector, error) {
	switch source.Platform {
	case domain.PlatformOneDrive, domain.PlatformSharePoint:
		return f.createGraph(source, credentials)
	case domain.PlatformGoogleDrive:
		return f.createDrive(ctx, credentials)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, source.Platform)
	}
}

func (f *Factory) createGraph(source domain.Source, credentials string) (driven.StorageConnector, error) {
	creds, err := graph.ParseCredentials(credentials)
	if err != nil {
		return nil, err
	}

	if creds.TenantID == "" {
		creds.TenantID = f.defaults.GraphTenantID
	}
	if creds.ClientID == "" {
		creds.ClientID = f.defaults.GraphClientID
	}
	if creds.ClientSecret == "" {
		creds.ClientSecret = f.defaults.GraphClientSecret
	}

	return graph.NewConnector(creds, source.Platform)
}

func (f *Factory) createDrive(ctx context.Context, credentials string) (driven.StorageConnector, error) {
	creds, err := gdrive.ParseCredentials(credentials)
	if err != nil {
		return nil, err
	}

	if creds.ClientID == "" {
		creds.ClientID = f.defaults.DriveClientID
	}
	if creds.ClientSecret == "" {
		creds.ClientSecret = f.defaults.DriveClientSecret
	}

	return gdrive.NewConnector(ctx, creds)
}
