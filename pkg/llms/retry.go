package llms

import (
	"context"
	"math"
	"time"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/logging"
)

// RetryConfig bounds how long a single external call sequence may take.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts before giving up.
	MaxAttempts int

	// BaseDelay is the first backoff delay; it doubles on every attempt.
	BaseDelay time.Duration
}

// DefaultRetryConfig mirrors the judging panel's retry discipline: three
// attempts with a two second base delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

// RetryingGenerator wraps a core.Generator with bounded exponential backoff.
// After exhausting its attempts it returns an empty string and no error:
// callers treat empty output as "nothing produced", never as a fatal failure.
type RetryingGenerator struct {
	inner  core.Generator
	config RetryConfig
}

// NewRetryingGenerator wraps gen with the given retry configuration.
func NewRetryingGenerator(gen core.Generator, config RetryConfig) *RetryingGenerator {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultRetryConfig().BaseDelay
	}
	return &RetryingGenerator{inner: gen, config: config}
}

// Generate implements core.Generator. An error or empty completion triggers a
// retry; cancellation is the only error propagated to the caller.
func (r *RetryingGenerator) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (string, error) {
	logger := logging.GetLogger()

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if err := errors.CheckContext(ctx, "generate"); err != nil {
			return "", err
		}

		text, err := r.inner.Generate(ctx, prompt, options...)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			logger.Warn(ctx, "Generation attempt %d/%d failed: %v", attempt+1, r.config.MaxAttempts, err)
		} else {
			logger.Warn(ctx, "Generation attempt %d/%d returned empty output", attempt+1, r.config.MaxAttempts)
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		backoff := time.Duration(float64(r.config.BaseDelay) * math.Pow(2, float64(attempt)))
		select {
		case <-ctx.Done():
			return "", errors.Wrap(ctx.Err(), errors.Canceled, "canceled during retry backoff")
		case <-time.After(backoff):
		}
	}

	logger.Error(ctx, "No valid response after %d attempts", r.config.MaxAttempts)
	return "", nil
}
