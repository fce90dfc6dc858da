package graph

import (
	"fmt"
	"time"
)

// APIError represents a Microsoft Graph error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph: API error %d %s: %s (URL: %s)", e.StatusCode, e.Code, e.Message, e.URL)
}

// RateLimitError indicates Graph throttled the request.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("graph: throttled, retry after %s", e.RetryAfter)
}
