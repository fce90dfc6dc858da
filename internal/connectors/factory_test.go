package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

func TestFactoryCreatesGraphVariants(t *testing.T) {
	factory := NewFactory(Defaults{})
	payload := `{"tenant_id":"t","client_id":"c","client_secret":"s","site_id":"site"}`

	for _, platform := range []domain.Platform{domain.PlatformOneDrive, domain.PlatformSharePoint} {
		conn, err := factory.Create(context.Background(),
			domain.Source{ID: "s1", Platform: platform}, payload)
		require.NoError(t, err, platform)
		assert.Equal(t, platform, conn.Platform())
		require.NoError(t, conn.Close())
	}
}

func TestFactoryAppliesDefaults(t *testing.T) {
	factory := NewFactory(Defaults{
		GraphTenantID:     "default-tenant",
		GraphClientID:     "default-client",
		GraphClientSecret: "default-secret",
	})

	// Payload with only the site; app credentials come from defaults.
	conn, err := factory.Create(context.Background(),
		domain.Source{ID: "s1", Platform: domain.PlatformSharePoint},
		`{"site_id":"site"}`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// Without defaults the same payload is rejected.
	bare := NewFactory(Defaults{})
	_, err = bare.Create(context.Background(),
		domain.Source{ID: "s1", Platform: domain.PlatformSharePoint},
		`{"site_id":"site"}`)
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestFactoryCreatesDriveConnector(t *testing.T) {
	factory := NewFactory(Defaults{})
	payload := `{"client_id":"c","client_secret":"s","refresh_token":"r"}`

	conn, err := factory.Create(context.Background(),
		domain.Source{ID: "s1", Platform: domain.PlatformGoogleDrive}, payload)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformGoogleDrive, conn.Platform())
	require.NoError(t, conn.Close())
}

func TestFactoryRejectsUnknownPlatform(t *testing.T) {
	factory := NewFactory(Defaults{})

	_, err := factory.Create(context.Background(),
		domain.Source{ID: "s1", Platform: domain.Platform("box")}, `{}`)
	assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)

	_, err = factory.Create(context.Background(),
		domain.Source{ID: "s1", Platform: domain.PlatformOneDrive}, `{bad json`)
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}
