// Package retry implements the exponential-backoff-with-jitter policy used
// by both sync engines and the daemon controller for transient failures.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// Policy describes the backoff schedule. The zero value is not usable;
// construct with Default.
type Policy struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts int
	// JitterFrac is the upper bound of the fraction of the computed delay
	// added as jitter; the added fraction is drawn from [JitterFrac/2,
	// JitterFrac], e.g. 0.2 means between +10% and +20%.
	JitterFrac float64
}

// Default matches spec.md §4.E/§4.G: base 2s, cap 60s, max 5 attempts,
// 10-20% jitter.
func Default() Policy {
	return Policy{
		Base:        2 * time.Second,
		Cap:         60 * time.Second,
		MaxAttempts: 5,
		JitterFrac:  0.2,
	}
}

// Delay returns the backoff delay before retry attempt n (1-indexed: the
// delay waited after the first failed attempt, before the second try).
func (p Policy) Delay(n int) time.Duration {
	d := p.Base
	for i := 1; i < n; i++ {
		d *= 2
		if d > p.Cap {
			d = p.Cap
			break
		}
	}
	if d > p.Cap {
		d = p.Cap
	}

	if p.JitterFrac > 0 {
		jitter := time.Duration((0.5 + 0.5*rand.Float64()) * p.JitterFrac * float64(d))
		d += jitter
	}
	return d
}

// transientMarkers is the documented set from spec.md's glossary: an error
// whose description matches one of these substrings is retried by the
// daemon and never surfaced as a hard failure on the first attempt.
var transientMarkers = []string{"locked", "busy", "timeout", "temporarily", "try again"}

// IsTransient reports whether err's message matches the documented
// transient-error vocabulary.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// TransientError wraps an upstream/store error known to be retryable.
type TransientError struct {
	Reason string
	Cause  error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return "transient: " + e.Reason + ": " + e.Cause.Error()
	}
	return "transient: " + e.Reason
}

func (e *TransientError) Unwrap() error { return e.Cause }

// Do runs fn, retrying on transient errors per the policy until it succeeds,
// a non-transient error is returned, MaxAttempts is exhausted, or ctx is
// cancelled. It returns the number of attempts made and the final error (nil
// on success).
func Do(ctx context.Context, p Policy, sleep func(context.Context, time.Duration) error, fn func(attempt int) error) (attempts int, err error) {
	if sleep == nil {
		sleep = sleepCtx
	}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		attempts = attempt
		err = fn(attempt)
		if err == nil {
			return attempts, nil
		}
		if !IsTransient(err) {
			return attempts, err
		}
		if attempt == p.MaxAttempts {
			return attempts, err
		}
		if sleepErr := sleep(ctx, p.Delay(attempt)); sleepErr != nil {
			return attempts, sleepErr
		}
	}
	return attempts, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
