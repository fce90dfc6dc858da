package gdrive

import (
	"context"
	"encoding/json"

	"golang.org/x/oauth2"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

// defaultTokenURL is Google's OAuth token endpoint.
const defaultTokenURL = "https://oauth2.googleapis.com/token"

// Credentials is the decrypted credential payload for a Drive source: an
// OAuth application plus a long-lived refresh token.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`

	// TokenURL overrides the token endpoint. Empty uses Google's.
	TokenURL string `json:"token_url,omitempty"`
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

// Validate checks required fields.
func (c *Credentials) Validate() error {
	for field, value := range map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"refresh_token": c.RefreshToken,
	} {
		if value == "" {
			return &domain.ValidationError{Field: field, Reason: "required"}
		}
	}
	return nil
}

// tokenSource builds a refreshing token source from the stored secret.
func (c *Credentials) tokenSource(ctx context.Context) oauth2.TokenSource {
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	cfg := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
}
