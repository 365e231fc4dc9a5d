package providers

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrProviderUnavailable is returned when a decorator has nothing to delegate to.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrPublisherClosed is returned for events offered after the publisher stopped.
	ErrPublisherClosed = errors.New("publisher closed")
	// ErrQueueFull is returned when the publish queue cannot take another event.
	ErrQueueFull = errors.New("publish queue full")
)

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// StatusError is a non-success HTTP response from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether repeating the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusRequestTimeout
}

// Retryable reports whether err is worth another attempt. Client errors other than
// rate limits are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := AsRateLimitError(err); ok {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
