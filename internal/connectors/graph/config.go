package graph

import (
	"encoding/json"
	"fmt"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// Credentials is the decrypted credential payload for a Graph source.
// OneDrive sources need the tenant and application credentials; SharePoint
// sources additionally name the site.
type Credentials struct {
	TenantID     string `json:"tenant_id"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`

	// SiteID selects the SharePoint site drive. Empty for OneDrive.
	SiteID string `json:"site_id"`

	// UserID selects whose OneDrive to read under application permissions.
	// Empty uses the /me drive of a delegated token.
	UserID string `json:"user_id"`
}

// ParseCredentials decodes a credential payload. Field validation happens
// when the connector is built, after any application defaults are applied.
func ParseCredentials(payload string) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(payload), &creds); err != nil {
		return nil, &domain.ValidationError{Field: "credentials", Reason: "not valid JSON"}
	}
	return &creds, nil
}

// Validate checks the fields required for the given platform.
func (c *Credentials) Validate(platform domain.Platform) error {
	for field, value := range map[string]string{
		"tenant_id":     c.TenantID,
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
	} {
		if value == "" {
			return &domain.ValidationError{Field: field, Reason: "required"}
		}
	}
	if platform == domain.PlatformSharePoint && c.SiteID == "" {
		return &domain.ValidationError{Field: "site_id", Reason: "required for sharepoint sources"}
	}
	return nil
}

// drivePath returns the Graph resource path of the drive this credential
// set reads from.
func (c *Credentials) drivePath(platform domain.Platform) string {
	if platform == domain.PlatformSharePoint {
		return fmt.Sprintf("/sites/%s/drive", c.SiteID)
	}
	if c.UserID != "" {
		return fmt.Sprintf("/users/%s/drive", c.UserID)
	}
	return "/me/drive"
}
