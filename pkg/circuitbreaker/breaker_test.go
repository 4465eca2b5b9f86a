package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
)

func TestBreaker_TripsOnUpstreamFailures(t *testing.T) {
	var transitions []gobreaker.State
	cfg := DefaultConfig()
	cfg.Timeout = time.Minute
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) { transitions = append(transitions, to) }
	cb := New("analytics", cfg, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, context.DeadlineExceeded
		})
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	cb := New("analytics", DefaultConfig(), zaptest.NewLogger(t))

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, apperrors.FromStatus("analytics", 404, "missing")
		})
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, uint32(5), Counts(cb)["total_successes"])
}
