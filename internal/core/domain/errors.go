package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a job status change that violates
	// the pending -> processing -> terminal ordering.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnsupportedPlatform indicates an unknown storage platform tag.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrUnsupportedFormat indicates no converter handles the file format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMonitorActive indicates the source is already being monitored.
	ErrMonitorActive = errors.New("monitor already active")

	// ErrMonitorNotFound indicates no active monitor exists for the source.
	ErrMonitorNotFound = errors.New("monitor not found")

	// ErrJobNotRetryable indicates retry was requested on a job that is not failed.
	ErrJobNotRetryable = errors.New("job is not in a retryable state")

	// ErrJobNotCancellable indicates cancel was requested on a terminal job.
	ErrJobNotCancellable = errors.New("job is not in a cancellable state")
)

// AuthError indicates a bad or expired long-lived secret.
// The owning source moves to error status and its monitoring halts
// until it is reconfigured.
type AuthError struct {
	Platform Platform
	Reason   string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: authentication failed: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: authentication failed: %s", e.Platform, e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DownloadError indicates remote content could not be retrieved.
// Transient by nature; the job queue retries up to its policy limit.
type DownloadError struct {
	Path string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed for %s: %v", e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ConversionError indicates malformed or unsupported input.
// Terminal: retrying the same bytes cannot help.
type ConversionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conversion failed for %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("conversion failed for %s: %s", e.Path, e.Reason)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// IntegrityError indicates a credential blob failed authentication
// during decryption (tampered, truncated, or encrypted under a
// different key). Never silently ignored.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("credential integrity check failed: %s", e.Reason)
}

// ValidationError indicates input rejected before any I/O was performed,
// such as a path-traversal attempt in an export destination.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// IsAuthError checks whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsRetryable reports whether a job failure is worth retrying.
// Download failures are transient; conversion and integrity failures are not.
func IsRetryable(err error) bool {
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return false
	}
	var intErr *IntegrityError
	if errors.As(err, &intErr) {
		return false
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return false
	}
	var authErr *AuthError
	return !errors.As(err, &authErr)
}
