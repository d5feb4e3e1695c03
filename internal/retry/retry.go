package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"titledb/internal/logging"
	"titledb/internal/services"
	"titledb/internal/titleid"
)

const (
	DefaultMaxAttempts = 4
	DefaultDelay       = 5 * time.Second
)

// Outcome is the typed result of an executed action.
type Outcome int

const (
	// Failed means the action returned an error that was not classified as
	// an expected absence.
	Failed Outcome = iota
	// Found means the action succeeded.
	Found
	// Absent means the stop classifier matched the failure.
	Absent
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Absent:
		return "absent"
	default:
		return "failed"
	}
}

// Result describes one Execute call.
type Result struct {
	Outcome  Outcome
	Attempts int
	Retries  int
}

// Stats accumulates counters across every call made through a Policy.
type Stats struct {
	Calls    int64
	Attempts int64
	Retries  int64
	Absent   int64
	Failures int64
}

// Classifier reports whether a failure means "nothing there".
type Classifier func(error) bool

// Policy executes actions with fixed-delay retries. A Policy is safe for
// concurrent use.
type Policy struct {
	maxAttempts int
	delay       time.Duration
	logger      *slog.Logger
	sleeper     func(time.Duration)

	calls    atomic.Int64
	attempts atomic.Int64
	retries  atomic.Int64
	absent   atomic.Int64
	failures atomic.Int64
}

// Option customizes a Policy.
type Option func(*Policy)

// WithLogger sets the logger used for retry messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// WithSleeper overrides how delays are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(p *Policy) {
		p.sleeper = sleeper
	}
}

// New builds a policy. Non-positive arguments fall back to the defaults; a
// zero delay is honoured.
func New(maxAttempts int, delay time.Duration, opts ...Option) *Policy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	p := &Policy{maxAttempts: maxAttempts, delay: delay}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "retry")
	return p
}

// MaxAttempts returns the total number of attempts per call.
func (p *Policy) MaxAttempts() int { return p.maxAttempts }

// Stats returns a snapshot of the cumulative counters.
func (p *Policy) Stats() Stats {
	return Stats{
		Calls:    p.calls.Load(),
		Attempts: p.attempts.Load(),
		Retries:  p.retries.Load(),
		Absent:   p.absent.Load(),
		Failures: p.failures.Load(),
	}
}

// Execute runs action until it succeeds, the stop classifier matches, a
// permanent failure occurs, or the attempts are exhausted.
func (p *Policy) Execute(ctx context.Context, op string, action func(context.Context) error, stop Classifier) (Result, error) {
	p.calls.Add(1)
	var (
		result  Result
		lastErr error
	)
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			p.failures.Add(1)
			return result, err
		}
		result.Attempts = attempt
		p.attempts.Add(1)

		err := action(ctx)
		if err == nil {
			result.Outcome = Found
			return result, nil
		}
		if stop != nil && stop(err) {
			p.absent.Add(1)
			p.logger.Debug("remote call reported absence",
				logging.String(logging.FieldOperation, op),
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
			result.Outcome = Absent
			return result, nil
		}
		if isPermanent(err) || ctx.Err() != nil {
			p.failures.Add(1)
			return result, err
		}
		lastErr = err
		if attempt == p.maxAttempts {
			break
		}

		p.logger.Warn(fmt.Sprintf("%s failed, retrying in %s (%d/%d)", op, p.delay, attempt, p.maxAttempts-1),
			logging.String(logging.FieldEventType, "retry_scheduled"),
			logging.String(logging.FieldOperation, op),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", p.maxAttempts),
			logging.Duration("delay", p.delay),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "transient eShop failures usually clear on retry"),
		)
		if err := p.sleep(ctx); err != nil {
			p.failures.Add(1)
			return result, err
		}
		result.Retries++
		p.retries.Add(1)
	}

	p.failures.Add(1)
	logging.ErrorWithContext(p.logger, fmt.Sprintf("%s failed after %d attempts", op, result.Attempts), "retry_exhausted",
		logging.String(logging.FieldOperation, op),
		logging.Int("attempts", result.Attempts),
		logging.Error(lastErr),
		logging.String(logging.FieldErrorHint, "check network access to the eShop endpoints"),
	)
	return result, fmt.Errorf("%s: failed after %d attempts: %w", op, result.Attempts, lastErr)
}

// Do is Execute for actions that produce a value. The zero value is returned
// unless the outcome is Found.
func Do[T any](ctx context.Context, p *Policy, op string, fn func(context.Context) (T, error), stop Classifier) (T, Result, error) {
	var value T
	result, err := p.Execute(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	}, stop)
	if err != nil || result.Outcome != Found {
		var zero T
		return zero, result, err
	}
	return value, result, nil
}

func (p *Policy) sleep(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(p.delay)
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
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

func isPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm) ||
		services.IsPermanent(err) ||
		errors.Is(err, titleid.ErrInvalidIdentifier) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
