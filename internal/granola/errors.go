package granola

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document id is unknown upstream.
	ErrNotFound = errors.New("document not found")
	// ErrAuth wraps failures to obtain or use an access token.
	ErrAuth = errors.New("granola auth")
	// ErrInvalidURL is returned for links that are not notes service links.
	ErrInvalidURL = errors.New("invalid notes url")
)

// RetryableError indicates a transient failure that can be retried.
// StatusCode is zero for transport errors.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retryable error: %s", truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// StatusError is a non-retryable error response from the notes service.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("granola %s: status %d: %s", e.Endpoint, e.StatusCode, truncate(e.Body, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
