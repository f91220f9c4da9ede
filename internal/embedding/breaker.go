// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/societyrec/internal/metrics"
)

// breakerName labels the embedding breaker in metrics and logs.
const breakerName = "embedding"

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	// MinRequests is the number of requests in a window before the failure
	// ratio is considered.
	MinRequests uint32 `koanf:"min_requests"`

	// FailureRatio opens the circuit when reached.
	FailureRatio float64 `koanf:"failure_ratio"`

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval resets counts while closed.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration `koanf:"timeout"`
}

// DefaultBreakerConfig opens after a 60% failure rate over at least 10
// requests and probes again after 2 minutes.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:  10,
		FailureRatio: 0.6,
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
	}
}

// Breaker guards another Embedder with a circuit breaker so an unavailable
// inference server is not called on every similarity request.
type Breaker struct {
	next   Embedder
	cb     *gobreaker.CircuitBreaker[[]float64]
	logger zerolog.Logger
}

// NewBreaker wraps next.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreaker(next Embedder, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	b := &Breaker{
		next:   next,
		logger: logger.With().Str("component", "embedding").Str("breaker", breakerName).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				b.logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening circuit")
				return true
			}
			return false
		},
		IsExcluded: func(err error) bool {
			// Caller cancellations say nothing about server health.
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
	return b
}

// Embed calls the wrapped Embedder unless the circuit is open.
func (b *Breaker) Embed(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()
	v, err := b.cb.Execute(func() ([]float64, error) {
		return b.next.Embed(ctx, text)
	})

	switch {
	case err == nil:
		metrics.RecordEmbeddingRequest("success", time.Since(start))
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordEmbeddingRequest("rejected", 0)
	default:
		metrics.RecordEmbeddingRequest("error", time.Since(start))
	}
	return v, err
}

// State returns the current circuit state name.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
