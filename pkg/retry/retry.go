// Package retry retries mail provider calls that fail with a transient status.
package retry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// Policy is an exponential backoff policy. MaxRetries counts retries after
// the first attempt; the delay doubles after every retry with no jitter and
// no ceiling.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration

	// Sleep waits for d. Nil means a timer bounded by ctx.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	return 0
}

// IsTransient reports whether err is a rate-limit or unavailable response.
func IsTransient(err error) bool {
	switch StatusCode(err) {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// Do runs op under the policy.
func Do(ctx context.Context, p Policy, op func() error) error {
	_, err := DoValue(ctx, p, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// DoValue runs op under the policy and returns its result. Non-transient
// errors, and the last transient error once retries run out, are returned
// unchanged.
func DoValue[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	delay := p.InitialDelay
	for attempt := 0; ; attempt++ {
		v, err := op()
		if err == nil || !IsTransient(err) || attempt >= p.MaxRetries {
			return v, err
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if serr := p.sleep(ctx, delay); serr != nil {
			return v, serr
		}
		delay *= 2
	}
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
