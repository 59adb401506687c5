package smartfill

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartinvoice/internal/domain"
)

// defaultRetryAfter applies when a 429 carries no usable Retry-After.
const defaultRetryAfter = time.Minute

// RateLimitError reports that a provider answered HTTP 429. It matches
// domain.ErrSmartFillRateLimited under errors.Is and also unwraps to Cause.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Cause      error
}

// NewRateLimitError builds a RateLimitError. A non-positive retryAfter is
// replaced by one minute.
func NewRateLimitError(provider string, cause error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Cause: cause}
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("smart fill provider %s rate limited, retry in %s", e.Provider, e.RetryAfter)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RateLimitError) Unwrap() []error {
	if e.Cause == nil {
		return []error{domain.ErrSmartFillRateLimited}
	}
	return []error{domain.ErrSmartFillRateLimited, e.Cause}
}

// RetryAfterSeconds is the wait rounded up to whole seconds, as sent in a
// Retry-After response header.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

// CheckStatus turns a non-200 provider response into an error. 429 becomes a
// RateLimitError honouring the Retry-After header.
func CheckStatus(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	cause := fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitError(provider, cause, ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	}
	return cause
}

// ParseRetryAfter reads a Retry-After value in either delta-seconds or
// HTTP-date form. It returns 0 when the value is empty, malformed or already
// in the past.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(value)
	if err != nil || !at.After(now) {
		return 0
	}
	return at.Sub(now)
}
