package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

const (
	// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// tokenSkew is how long before expiry a cached token is re-acquired.
	tokenSkew = 30 * time.Second
)

// Graph allows 10 requests per second per app comfortably; stay below.
var defaultLimiter = func() *rate.Limiter { return rate.NewLimiter(rate.Limit(8), 10) }

// Client is a minimal Microsoft Graph HTTP client with client-credentials
// token management and rate limiting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      clientcredentials.Config
	limiter    *rate.Limiter
	platform   domain.Platform

	mu    sync.Mutex
	token *oauth2.Token
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Graph API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithTokenURL overrides the token endpoint.
func WithTokenURL(url string) ClientOption {
	return func(c *Client) { c.creds.TokenURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Graph client for the given credentials.
func NewClient(creds *Credentials, platform domain.Platform, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		platform:   platform,
		limiter:    defaultLimiter(),
		creds: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", creds.TenantID),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// accessToken returns a valid token, re-acquiring when the cached one is
// within tokenSkew of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.AccessToken != "" &&
		(c.token.Expiry.IsZero() || time.Until(c.token.Expiry) > tokenSkew) {
		return c.token.AccessToken, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.creds.Token(ctx)
	if err != nil {
		return "", &domain.AuthError{
			Platform: c.platform,
			Reason:   "token exchange failed",
			Err:      err,
		}
	}
	c.token = token
	return token.AccessToken, nil
}

// invalidateToken discards the cached token so the next call re-acquires.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// get issues an authenticated GET and returns the response body reader.
// The caller must close it.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, c.wrapResponse(resp)
	}
	return resp.Body, nil
}

// getJSON issues an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decoding graph response: %w", err)
	}
	return nil
}

// wrapResponse converts a Graph error response to a typed error.
func (c *Client) wrapResponse(resp *http.Response) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.invalidateToken()
		return &domain.AuthError{
			Platform: c.platform,
			Reason:   payload.Error.Message,
			Err: &APIError{
				StatusCode: resp.StatusCode,
				Code:       payload.Error.Code,
				Message:    payload.Error.Message,
				URL:        resp.Request.URL.String(),
			},
		}
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", resp.Request.URL.Path, domain.ErrNotFound)
	case http.StatusTooManyRequests:
		retryAfter := 60
		if v := resp.Header.Get("Retry-After"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				retryAfter = n
			}
		}
		return &RateLimitError{RetryAfter: time.Duration(retryAfter) * time.Second}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       payload.Error.Code,
		Message:    payload.Error.Message,
		URL:        resp.Request.URL.String(),
	}
}

// IsNotFound reports whether err is a missing-resource Graph error.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
