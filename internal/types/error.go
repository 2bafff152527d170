package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMalformedData marks records with missing or unexpected structural fields.
	ErrMalformedData = errors.New("malformed data")
	// ErrExhaustedRetries is returned when a unit of work is abandoned after its retry budget.
	ErrExhaustedRetries = errors.New("exhausted retries")
)

// RateLimitError is returned by providers that signal throttling.
// RetryAfter is zero when the provider did not suggest a delay.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("rate limited: %s", e.Message)
}

func IsRateLimited(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// RetryAfter returns the provider suggested delay carried by err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) || rlErr.RetryAfter <= 0 {
		return 0, false
	}
	return rlErr.RetryAfter, true
}
