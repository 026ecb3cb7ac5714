package geodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrRetriesExhausted is matched by errors.Is when every retry attempt of a
// request has failed
var ErrRetriesExhausted = errors.New("retries exhausted")

// StatusError reports a non-2xx upstream response
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter string
}

func (e *StatusError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests && e.RetryAfter != "" {
		return fmt.Sprintf("rate limit exceeded (status %d), retry after %s: %s",
			e.StatusCode, e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("upstream request failed with status %d: %s", e.StatusCode, e.Body)
}

// ExhaustedError reports that all retry attempts for a request failed.
// It unwraps to the last attempt's error and matches ErrRetriesExhausted.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed, last error: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// IsCancellation reports whether err stems from context cancellation or
// deadline expiry. Cancelled requests are never retried.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
