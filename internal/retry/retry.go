// Package retry wraps fallible operations with bounded exponential backoff.
//
// The backoff schedule is 2^attempt * BaseDelay plus a uniform jitter in
// [0, BaseDelay) so that concurrent invocations spread out instead of
// retrying in lockstep. Each call to Do carries its own attempt counter;
// nothing is shared between invocations.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// DefaultBaseDelay is the jittered backoff unit used when a policy does not
// specify one.
const DefaultBaseDelay = 500 * time.Millisecond

// Policy describes the retry budget for an operation. MaxRetries counts the
// additional attempts permitted after the first; a budget of zero or less
// means the operation runs exactly once and its error surfaces unchanged.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// SleepFunc pauses for the given duration, honoring context cancellation.
// Tests substitute it to avoid real sleeps.
type SleepFunc func(context.Context, time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the delay before the next attempt: 2^attempt * base plus
// uniform jitter in [0, base). Attempt is zero-based.
func Backoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	delay := time.Duration(1<<uint(attempt)) * base
	return delay + time.Duration(rand.Int63n(int64(base)))
}

// Do invokes fn, retrying on error until the policy's budget is exhausted.
// The last underlying error is returned unchanged so callers can classify it
// with errors.Is. Context cancellation during a backoff sleep aborts the loop
// with the context's error.
func Do(ctx context.Context, policy Policy, fn func(context.Context) error) error {
	return DoWithSleeper(ctx, policy, Sleep, fn)
}

// DoWithSleeper is Do with an injected sleep implementation.
func DoWithSleeper(ctx context.Context, policy Policy, sleep SleepFunc, fn func(context.Context) error) error {
	if sleep == nil {
		sleep = Sleep
	}
	base := policy.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	retries := policy.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt >= retries {
			return lastErr
		}
		if err := sleep(ctx, Backoff(attempt, base)); err != nil {
			return err
		}
	}
}
