package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthErrorUnwrap(t *testing.T) {
	inner := errors.New("401 unauthorized")
	err := &AuthError{Platform: PlatformOneDrive, Reason: "token request rejected", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "onedrive")
	assert.Contains(t, err.Error(), "token request rejected")
}

func TestIsAuthError(t *testing.T) {
	err := fmt.Errorf("start monitoring: %w", &AuthError{Platform: PlatformGoogleDrive, Reason: "invalid grant"})
	assert.True(t, IsAuthError(err))
	assert.False(t, IsAuthError(errors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "download error is retryable",
			err:       &DownloadError{Path: "/remote/a.docx", Err: errors.New("timeout")},
			retryable: true,
		},
		{
			name:      "wrapped download error is retryable",
			err:       fmt.Errorf("fetch: %w", &DownloadError{Path: "x", Err: errors.New("reset")}),
			retryable: true,
		},
		{
			name:      "conversion error is terminal",
			err:       &ConversionError{Path: "/tmp/a.docx", Reason: "not a zip archive"},
			retryable: false,
		},
		{
			name:      "integrity error is terminal",
			err:       &IntegrityError{Reason: "authentication tag mismatch"},
			retryable: false,
		},
		{
			name:      "validation error is terminal",
			err:       &ValidationError{Field: "destination", Reason: "path traversal"},
			retryable: false,
		},
		{
			name:      "auth error is terminal",
			err:       &AuthError{Platform: PlatformSharePoint, Reason: "expired secret"},
			retryable: false,
		},
		{
			name:      "unknown error is retryable",
			err:       errors.New("disk hiccup"),
			retryable: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.retryable, IsRetryable(tc.err))
		})
	}
}
