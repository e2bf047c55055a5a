// Package backoff retries an operation with bounded exponential backoff and
// jitter.
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// Policy describes how an operation is retried. The delay before attempt n
// (0-indexed, the first attempt included) is
//
//	min(Base * Growth^n, Cap) * (1 + j),  j ~ U[0, MaxJitter]
type Policy struct {
	Base       time.Duration
	Growth     float64
	Cap        time.Duration
	MaxRetries int
	MaxJitter  float64

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// Jitter returns a value in [0, 1). Nil uses math/rand.
	Jitter func() float64
}

// DefaultPolicy returns 4 attempts starting at 2s, growing by 1.5x, capped
// at 120s, with up to 5% jitter.
func DefaultPolicy() Policy {
	return Policy{
		Base:       2 * time.Second,
		Growth:     1.5,
		Cap:        120 * time.Second,
		MaxRetries: 3,
		MaxJitter:  0.05,
	}
}

// NoDelay returns p with sleeping disabled.
func (p Policy) NoDelay() Policy {
	p.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return p
}

// Attempts returns the total number of attempts, the first one included.
func (p Policy) Attempts() int {
	return max(p.MaxRetries, 0) + 1
}

// BaseDelay returns the un-jittered delay before attempt n.
func (p Policy) BaseDelay(n int) time.Duration {
	d := float64(p.Base) * math.Pow(p.Growth, float64(n))
	if d > float64(p.Cap) || math.IsInf(d, 0) {
		return p.Cap
	}
	return time.Duration(d)
}

// Delay returns the jittered delay before attempt n.
func (p Policy) Delay(n int) time.Duration {
	jitter := rand.Float64
	if p.Jitter != nil {
		jitter = p.Jitter
	}
	return time.Duration(float64(p.BaseDelay(n)) * (1 + jitter()*p.MaxJitter))
}

// Do runs fn until it succeeds, returns a permanent error, the context is
// done, or the attempts are exhausted. The last error is returned unchanged
// except for permanent errors, which are unwrapped.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := Retry(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Retry is Do for operations that return a value.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	logger := zerolog.Ctx(ctx)

	for n := range p.Attempts() {
		if err := sleep(ctx, p.Delay(n)); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		lastErr = err
		logger.Debug().Ctx(ctx).Err(err).Int("attempt", n+1).Int("of", p.Attempts()).Msg("attempt failed")
	}

	return zero, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
