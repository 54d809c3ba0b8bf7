package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"freightx/internal/domain"
)

// DefaultRateLimitWait is used when a provider rate-limits without saying
// for how long.
const DefaultRateLimitWait = 600

// retryHintBuffer is added to a parsed "try again in" hint.
const retryHintBuffer = 5

var retryHintRe = regexp.MustCompile(`(?i)try again in\s+(?:([\d.]+)ms|(?:(\d+)h)?(?:(\d+)m)?(?:([\d.]+)s)?)`)

// RateLimitError indicates a provider refused the request for quota reasons.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, domain.ErrRateLimited) hold for every RateLimitError.
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ProviderError is a non-retryable provider failure: transport errors, 5xx,
// auth problems, empty or truncated answers.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s unavailable (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, domain.ErrUnavailable) hold for every ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == domain.ErrUnavailable
}

// Unavailable wraps err as a ProviderError.
func Unavailable(provider string, statusCode int, err error) *ProviderError {
	return &ProviderError{Provider: provider, StatusCode: statusCode, Err: err}
}

// RetryAfterHint returns the wait a rate-limit error asks for, if any.
func RetryAfterHint(err error) (time.Duration, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr.RetryAfter, true
	}
	return 0, false
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ParseRetryAfterMessage reads hints such as "Please try again in 9m13.824s"
// from a provider error message and returns whole seconds plus a 5s buffer.
// Without a usable hint it returns DefaultRateLimitWait.
func ParseRetryAfterMessage(msg string) int {
	m := retryHintRe.FindStringSubmatch(msg)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "") {
		return DefaultRateLimitWait
	}
	var total float64
	if m[1] != "" {
		ms, _ := strconv.ParseFloat(m[1], 64)
		total = ms / 1000
	}
	if m[2] != "" {
		h, _ := strconv.Atoi(m[2])
		total += float64(h) * 3600
	}
	if m[3] != "" {
		mins, _ := strconv.Atoi(m[3])
		total += float64(mins) * 60
	}
	if m[4] != "" {
		secs, _ := strconv.ParseFloat(m[4], 64)
		total += secs
	}
	return int(total) + retryHintBuffer
}
