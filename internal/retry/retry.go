// Package retry provides bounded retry with exponential backoff.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts     int           // total attempts, including the first
	InitialDelay    time.Duration // delay before the second attempt
	MaxDelay        time.Duration // backoff ceiling
	Multiplier      float64       // backoff multiplier
	RandomizeFactor float64       // jitter factor (0-1)
}

// DefaultConfig returns the configuration used for vector backend calls:
// one retry after a short delay.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:     2,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		Multiplier:      2.0,
		RandomizeFactor: 0.1,
	}
}

// Operation is a retryable operation.
type Operation func(ctx context.Context) error

// Retrier executes operations with backoff between attempts.
type Retrier struct {
	config *Config
}

// New creates a retrier, normalizing out-of-range settings.
func New(config *Config) *Retrier {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Multiplier < 1 {
		config.Multiplier = 1
	}
	if config.RandomizeFactor < 0 {
		config.RandomizeFactor = 0
	} else if config.RandomizeFactor > 1 {
		config.RandomizeFactor = 1
	}
	return &Retrier{config: config}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned on failure.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var lastErr error
	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay(attempt)):
			}
		}
		if err := op(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (r *Retrier) delay(attempt int) time.Duration {
	d := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if max := float64(r.config.MaxDelay); d > max {
		d = max
	}
	if f := r.config.RandomizeFactor; f > 0 {
		d += d * f * (rand.Float64()*2 - 1)
	}
	return time.Duration(d)
}
