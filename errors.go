package phonecrawler

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCredentialsExhausted is returned once every render API key in the pool
// has been tried within a single fetch. It is fatal to a run: no transport
// can make further progress.
var ErrCredentialsExhausted = errors.New("all render api credentials exhausted")

// StatusError reports a non-2xx response from the origin or from the render
// API.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// RetryExhaustedError wraps the last error after WithRetry ran out of
// attempts, so callers can tell "exhausted retries" apart from "exhausted all
// credentials".
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// isBlocked reports whether err looks like a rate-limit or block response,
// the class of failures that warrants rotating to a fresh proxy or credential
// before the next attempt.
func isBlocked(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusForbidden || se.Code == http.StatusTooManyRequests
	}
	return false
}
