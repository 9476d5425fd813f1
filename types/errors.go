package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPageToken is returned by a page fetch when the upstream no longer accepts a saved page token
var ErrInvalidPageToken = errors.New("page token is no longer valid")

// ConfigurationError is raised on missing or malformed settings before any network call
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AuthenticationError is raised when upstream rejects the credentials; never retried
type AuthenticationError struct {
	StatusCode int
	Message    string
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// TransientUpstreamError marks a failure worth retrying with backoff
type TransientUpstreamError struct {
	StatusCode int
	// RetryAfter is the delay requested by upstream, zero when not given
	RetryAfter time.Duration
	Err        error
}

func (e *TransientUpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transient upstream error (status %d): %s", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transient upstream error: %s", e.Err)
}

func (e *TransientUpstreamError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non retryable upstream failure other than authentication
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed (status %d): %s", e.StatusCode, e.Message)
}

// SyncError ends a stream; it carries the last committed bookmark for diagnosis
type SyncError struct {
	Stream   string
	Bookmark any
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync of stream[%s] failed at bookmark[%v]: %s", e.Stream, e.Bookmark, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func IsRetryable(err error) bool {
	var transient *TransientUpstreamError
	return errors.As(err, &transient)
}
