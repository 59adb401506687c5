package smartfill_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/smartfill"
)

func TestNewRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := smartfill.NewRateLimitError("gemini", errors.New("429"), 0)
	assert.Equal(t, time.Minute, err.RetryAfter)
	assert.Equal(t, "gemini", err.Provider)
}

func TestRateLimitError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("quota exhausted")
	err := smartfill.NewRateLimitError("claude", cause, 12*time.Second)

	assert.ErrorIs(t, err, domain.ErrSmartFillRateLimited)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "claude rate limited")

	wrapped := errors.Join(errors.New("outer"), err)
	var rl *smartfill.RateLimitError
	require.True(t, errors.As(wrapped, &rl))
	assert.Equal(t, 12*time.Second, rl.RetryAfter)

	assert.ErrorIs(t, smartfill.NewRateLimitError("all", nil, time.Second), domain.ErrSmartFillRateLimited)
}

func TestRateLimitError_RetryAfterSecondsRoundsUp(t *testing.T) {
	assert.Equal(t, 2, smartfill.NewRateLimitError("x", nil, 1100*time.Millisecond).RetryAfterSeconds())
	assert.Equal(t, 30, smartfill.NewRateLimitError("x", nil, 30*time.Second).RetryAfterSeconds())
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), smartfill.ParseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), smartfill.ParseRetryAfter("soon", now))
	assert.Equal(t, time.Duration(0), smartfill.ParseRetryAfter("-5", now))
	assert.Equal(t, 30*time.Second, smartfill.ParseRetryAfter(" 30 ", now))
	assert.Equal(t, 90*time.Second, smartfill.ParseRetryAfter(now.Add(90*time.Second).Format(http.TimeFormat), now))
	assert.Equal(t, time.Duration(0), smartfill.ParseRetryAfter(now.Add(-time.Hour).Format(http.TimeFormat), now))
}

func TestCheckStatus(t *testing.T) {
	ok := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	assert.NoError(t, smartfill.CheckStatus("gemini", ok, nil))

	failed := &http.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}}
	err := smartfill.CheckStatus("openai", failed, []byte("upstream down\n"))
	assert.EqualError(t, err, "openai API error (status 502): upstream down")
	assert.False(t, errors.Is(err, domain.ErrSmartFillRateLimited))

	limited := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": {"7"}}}
	err = smartfill.CheckStatus("claude", limited, []byte(`{"error":"slow down"}`))
	var rl *smartfill.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
	assert.Equal(t, "claude", rl.Provider)
}
