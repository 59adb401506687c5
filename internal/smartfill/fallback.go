package smartfill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackFiller tries providers in order, skipping those with open circuits
// and those without credentials. It implements port.SmartFiller.
type FallbackFiller struct {
	fillers  []port.SmartFiller
	circuits []*circuitState
	names    []string
	log      logrus.FieldLogger
}

// NewFallbackFiller creates a FallbackFiller from an ordered list of fillers and their names.
func NewFallbackFiller(fillers []port.SmartFiller, names []string, log logrus.FieldLogger) *FallbackFiller {
	circuits := make([]*circuitState, len(fillers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackFiller{
		fillers:  fillers,
		circuits: circuits,
		names:    names,
		log:      log,
	}
}

func (f *FallbackFiller) Fill(ctx context.Context, input port.SmartFillInput) (*port.SmartFillOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.fillers {
		entry := f.log.WithField("provider", f.names[i])
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			entry.WithField("reset_at", resetAt.Format(time.RFC3339)).Debug("skipping provider with open circuit")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := p.Fill(ctx, input)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, domain.ErrSmartFillNotConfigured) {
			entry.Debug("skipping provider without credentials")
			continue
		}

		entry.WithError(err).Warn("smart fill provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil && earliestReset.IsZero() {
		return nil, domain.ErrSmartFillNotConfigured
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", nil, retryAfter)
	}

	return nil, fmt.Errorf("all smart fill providers failed: %w", lastErr)
}
