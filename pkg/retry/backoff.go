package retry

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backoff calculates retry delays for a policy.
type Backoff struct {
	policy Policy
	mu     sync.Mutex
	rng    *rand.Rand
}

// NewBackoff creates a new backoff calculator
func NewBackoff(policy Policy) *Backoff {
	return &Backoff{
		policy: policy,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Calculate computes the delay before the given retry (1-based).
func (b *Backoff) Calculate(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	d := float64(CalculateExponential(b.policy.InitialBackoff, b.policy.Multiplier, attempt, b.policy.MaxBackoff))
	if b.policy.Jitter > 0 {
		j := d * b.policy.Jitter
		b.mu.Lock()
		d = d - j + b.rng.Float64()*2*j
		b.mu.Unlock()
	}
	return time.Duration(d)
}

// CalculateExponential calculates exponential backoff without jitter
func CalculateExponential(initial time.Duration, multiplier float64, attempt int, max time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if multiplier < 1 {
		multiplier = 1
	}
	d := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if max > 0 && d > float64(max) {
		d = float64(max)
	}
	return time.Duration(d)
}
