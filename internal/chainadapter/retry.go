// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chainadapter

import (
	"context"
	"errors"
	"time"
)

// RateLimitedError should be returned (or wrapped) by transport calls
// that fail due to a 429/rate-limit response, so RetryPolicy can apply
// a longer backoff for that class of error than for ordinary transport
// failures.
type RateLimitedError struct {
	Err error
}

func (e *RateLimitedError) Error() string { return e.Err.Error() }
func (e *RateLimitedError) Unwrap() error { return e.Err }

// RetryPolicy retries a transient-failing call with exponential backoff,
// capped at MaxRetries retries after the first attempt.
type RetryPolicy struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	RateLimitedDelay time.Duration
}

// DefaultRetryPolicy returns the validator's default retry tuning (3
// retries). No per-call timeout is applied, here or by the adapters that
// use it: each attempt is bounded only by the context passed to Do.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:       3,
		BaseDelay:        500 * time.Millisecond,
		MaxDelay:         30 * time.Second,
		RateLimitedDelay: 5 * time.Second,
	}
}

// Do calls fn, retrying on error with exponential backoff until
// MaxRetries is exhausted or ctx is done. It returns the last error on
// exhaustion; callers in this package's adapters treat that as "return
// empty", never as a fatal condition.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	delay := p.BaseDelay
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxRetries {
			break
		}
		wait := delay
		var rle *RateLimitedError
		if errors.As(lastErr, &rle) {
			wait = p.RateLimitedDelay
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return lastErr
}
