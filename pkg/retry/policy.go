package retry

import (
	"errors"
	"time"
)

var (
	ErrInvalidMaxAttempts    = errors.New("max attempts must be at least 1")
	ErrInvalidInitialBackoff = errors.New("initial backoff must be non-negative")
	ErrInvalidMaxBackoff     = errors.New("max backoff must be greater than initial backoff")
	ErrInvalidMultiplier     = errors.New("multiplier must be at least 1.0")
	ErrInvalidJitter         = errors.New("jitter must be between 0 and 1")
)

// Policy defines retry behavior
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         float64
	// Retryable decides whether err warrants another attempt. nil means
	// pkg/errors classification.
	Retryable func(error) bool
	// OnRetry is called before sleeping between attempts.
	OnRetry func(attempt int, err error, delay time.Duration)
}

var (
	// PolicyUpstream is used for analytics backend and identity calls.
	PolicyUpstream = Policy{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.1,
	}

	// PolicyStreamOpen guards opening an LLM stream before any bytes are sent.
	PolicyStreamOpen = Policy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     4 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.2,
	}

	PolicyNoRetry = Policy{MaxAttempts: 1, Multiplier: 1}
)

// NewPolicy creates a custom retry policy
func NewPolicy(maxAttempts int, initialBackoff, maxBackoff time.Duration) Policy {
	return Policy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: initialBackoff,
		MaxBackoff:     maxBackoff,
		Multiplier:     2.0,
		Jitter:         0.1,
	}
}

func (p Policy) WithMaxAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

func (p Policy) WithRetryable(fn func(error) bool) Policy {
	p.Retryable = fn
	return p
}

func (p Policy) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Policy {
	p.OnRetry = fn
	return p
}

// Validate checks if the policy is valid
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if p.InitialBackoff < 0 {
		return ErrInvalidInitialBackoff
	}
	if p.MaxBackoff != 0 && p.MaxBackoff < p.InitialBackoff {
		return ErrInvalidMaxBackoff
	}
	if p.Multiplier < 1.0 {
		return ErrInvalidMultiplier
	}
	if p.Jitter < 0 || p.Jitter > 1.0 {
		return ErrInvalidJitter
	}
	return nil
}
