// Package average provides a bounded sampling loop with fixed spacing that
// tolerates failed attempts, and the mean of the collected samples.
package average

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/constraints"
)

// ErrInsufficientSamples is returned by Collect if fewer than Policy.MinSamples
// samples could be collected.
var ErrInsufficientSamples = errors.New("insufficient samples")

// Policy defines how samples are collected.
type Policy struct {
	MaxAttempts int           // number of attempts
	Spacing     time.Duration // wait time between two attempts
	MinSamples  int           // minimal number of samples for a successful collection
}

// Validate checks the policy values.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("invalid number of attempts %d", p.MaxAttempts)
	}
	if p.Spacing < 0 {
		return fmt.Errorf("invalid attempt spacing %s", p.Spacing)
	}
	if p.MinSamples < 1 || p.MinSamples > p.MaxAttempts {
		return fmt.Errorf("invalid minimal number of samples %d - expected 1-%d", p.MinSamples, p.MaxAttempts)
	}
	return nil
}

// Collect runs policy.MaxAttempts attempts calling fn and waits policy.Spacing
// between two attempts using sleep.
//
// fn is called with the attempt number starting with 0. ok false marks a
// missing sample and a non nil error a failed attempt, both are skipped.
// If less than policy.MinSamples samples are collected the returned error
// wraps ErrInsufficientSamples and the errors of the failed attempts.
func Collect[T constraints.Float](policy Policy, sleep func(time.Duration), fn func(attempt int) (v T, ok bool, err error)) ([]T, error) {
	samples := make([]T, 0, policy.MaxAttempts)
	var errs []error
	for i := 0; i < policy.MaxAttempts; i++ {
		if i > 0 && policy.Spacing > 0 {
			sleep(policy.Spacing)
		}
		v, ok, err := fn(i)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("attempt %d: %w", i, err))
		case ok:
			samples = append(samples, v)
		}
	}
	if len(samples) < policy.MinSamples {
		errs = append([]error{fmt.Errorf("%w: %d of %d", ErrInsufficientSamples, len(samples), policy.MinSamples)}, errs...)
		return samples, errors.Join(errs...)
	}
	return samples, nil
}

// Mean returns the arithmetic mean of values and 0 for an empty slice.
func Mean[T constraints.Float](values []T) T {
	if len(values) == 0 {
		return 0
	}
	var sum T
	for _, v := range values {
		sum += v
	}
	return sum / T(len(values))
}
