// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package retry implements the bounded, fixed-delay retry loop used by
// backends to ride out transient conditions such as a document that a
// concurrent writer has only partially written.
package retry

import (
	"context"
	"log"
	"time"
)

// Policy defines how many times an operation is attempted and how long to
// wait between attempts.
type Policy struct {
	// Tries is the total number of attempts, including the first one.
	// Values below one are treated as one.
	Tries int `mapstructure:"retry_tries"`

	// Delay is the fixed pause between consecutive attempts.
	Delay time.Duration `mapstructure:"retry_delay"`
}

// DefaultPolicy is used by backends whose configuration leaves the policy
// unset.
var DefaultPolicy = Policy{
	Tries: 5,
	Delay: 100 * time.Millisecond,
}

// OrDefault returns p with each unset field taken from DefaultPolicy.
func (p Policy) OrDefault() Policy {
	if p.Tries == 0 {
		p.Tries = DefaultPolicy.Tries
	}
	if p.Delay == 0 {
		p.Delay = DefaultPolicy.Delay
	}
	return p
}

// Do calls op until it succeeds, returns an error for which retryable
// reports false, or the policy's attempts are exhausted. The error from
// the final attempt is returned unchanged.
//
// Waiting between attempts respects cancellation of ctx, in which case
// the context's error is returned.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, op func(context.Context) (T, error)) (T, error) {
	var zero T
	tries := p.Tries
	if tries < 1 {
		tries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}
		if attempt == tries {
			break
		}

		log.Printf("[DEBUG] retry: attempt %d of %d failed, retrying in %s: %s", attempt, tries, p.Delay, err)
		if p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return zero, err
		}
	}

	log.Printf("[WARN] retry: giving up after %d attempts: %s", tries, lastErr)
	return zero, lastErr
}
