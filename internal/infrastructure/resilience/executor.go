// Package resilience wraps outbound calls into upstream services with
// retries and per-operation circuit breakers.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when a breaker rejects the call without
// invoking the underlying function.
var ErrCircuitOpen = errors.New("circuit breaker open")

// IsCircuitOpen reports whether err comes from a rejected breaker call.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// Executor runs functions under a retry policy and a circuit breaker keyed
// by operation name. Safe for concurrent use.
type Executor struct {
	policy   Policy
	classify Classifier

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// NewExecutor builds an executor bound to a classifier. A nil classifier
// treats every error as permanent and breaker-visible.
func NewExecutor(policy Policy, classify Classifier) *Executor {
	if classify == nil {
		classify = func(error) Classification {
			return Classification{Retryable: false, RecordFailure: true}
		}
	}
	return &Executor{
		policy:   policy.normalize(),
		classify: classify,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Execute runs fn under the retry policy and the breaker for operation.
// The last error is returned once attempts are exhausted.
func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error
	backoff := e.policy.RetryInitialBackoff

	for attempt := 1; attempt <= e.policy.RetryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := e.runOnce(ctx, operation, fn)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, ErrCircuitOpen) {
			return err
		}
		if !e.classify(err).Retryable {
			return err
		}
		if attempt == e.policy.RetryMaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * e.policy.RetryMultiplier)
		if backoff > e.policy.RetryMaxBackoff {
			backoff = e.policy.RetryMaxBackoff
		}
	}

	return lastErr
}

func (e *Executor) runOnce(ctx context.Context, operation string, fn func(context.Context) error) error {
	if !e.policy.BreakerEnabled {
		return fn(ctx)
	}

	cb := e.breaker(operation)
	hidden, err := cb.Execute(func() (any, error) {
		callErr := fn(ctx)
		if callErr != nil && !e.classify(callErr).RecordFailure {
			// Hide the failure from the breaker but still surface it.
			return callErr, nil
		}
		return nil, callErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w", operation, ErrCircuitOpen)
		}
		return err
	}
	if hiddenErr, ok := hidden.(error); ok {
		return hiddenErr
	}
	return nil
}

func (e *Executor) breaker(operation string) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[operation]; ok {
		return cb
	}

	p := e.policy
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: p.BreakerHalfOpenMaxCalls,
		Timeout:     p.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < p.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= p.BreakerFailureRatio
		},
	})
	e.breakers[operation] = cb
	return cb
}
