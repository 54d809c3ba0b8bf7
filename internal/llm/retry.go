package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"freightx/internal/config"
	"freightx/internal/domain"
	"freightx/internal/port"
)

// RetryPolicy bounds the rate-limit retry loop.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// PolicyFromConfig converts the retry config section.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialDelay,
		MaxDelay:     cfg.MaxDelay,
		Multiplier:   cfg.Multiplier,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Minute
	}
	return p
}

// Decision is the backoff machine's verdict after a failed attempt.
type Decision int

const (
	// DecisionRetry means wait the returned delay, then call again.
	DecisionRetry Decision = iota
	// DecisionFail means the error is not retryable.
	DecisionFail
	// DecisionExhausted means every allowed attempt has been used.
	DecisionExhausted
)

func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retry"
	case DecisionFail:
		return "fail"
	case DecisionExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Backoff is the bounded retry schedule as an explicit state machine. It
// never sleeps; callers wait out the delays it returns.
type Backoff struct {
	policy  RetryPolicy
	attempt int
}

// NewBackoff starts a schedule with no attempts made.
func NewBackoff(p RetryPolicy) *Backoff {
	return &Backoff{policy: p.withDefaults()}
}

// Attempts reports how many failed attempts have been recorded.
func (b *Backoff) Attempts() int { return b.attempt }

// Next records a failed attempt and decides what happens next. Only rate
// limits are retried. The delay grows exponentially from InitialDelay, is
// raised to the provider's own hint when that is longer, and is capped at
// MaxDelay.
func (b *Backoff) Next(err error) (time.Duration, Decision) {
	b.attempt++
	if !errors.Is(err, domain.ErrRateLimited) {
		return 0, DecisionFail
	}
	if b.attempt >= b.policy.MaxAttempts {
		return 0, DecisionExhausted
	}

	exp := float64(b.policy.InitialDelay) * math.Pow(b.policy.Multiplier, float64(b.attempt-1))
	delay := time.Duration(math.Min(exp, float64(b.policy.MaxDelay)))
	if hint, ok := RetryAfterHint(err); ok && hint > delay {
		delay = hint
	}
	if delay > b.policy.MaxDelay {
		delay = b.policy.MaxDelay
	}
	return delay, DecisionRetry
}

// RetryingClient wraps an LLMClient with the rate-limit backoff schedule.
type RetryingClient struct {
	next   port.LLMClient
	policy RetryPolicy
	clock  Clock
	log    zerolog.Logger
}

// NewRetryingClient wraps next. A nil clock means the wall clock.
func NewRetryingClient(next port.LLMClient, policy RetryPolicy, clock Clock, log zerolog.Logger) *RetryingClient {
	if clock == nil {
		clock = SystemClock
	}
	return &RetryingClient{next: next, policy: policy, clock: clock, log: log}
}

func (r *RetryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	b := NewBackoff(r.policy)
	for {
		out, err := r.next.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		delay, decision := b.Next(err)
		switch decision {
		case DecisionFail:
			return "", err
		case DecisionExhausted:
			return "", fmt.Errorf("giving up after %d attempts: %w", b.Attempts(), err)
		}

		r.log.Warn().
			Err(err).
			Int("attempt", b.Attempts()).
			Int("max_attempts", b.policy.MaxAttempts).
			Dur("wait", delay).
			Msg("rate limited, backing off")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-r.clock.After(delay):
		}
	}
}
