package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyLastCallRuns(t *testing.T) {
	d := New(30 * time.Millisecond)
	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	for _, q := range []string{"B", "Bi", "Bit", "Bitcoin"} {
		q := q
		d.Trigger(func() {
			mu.Lock()
			got = append(got, q)
			mu.Unlock()
			close(done)
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never fired")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bitcoin"}, got)
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSequencer_LatestWins(t *testing.T) {
	var s Sequencer
	first := s.Next()
	second := s.Next()

	assert.False(t, s.IsLatest(first))
	assert.True(t, s.IsLatest(second))
	assert.Equal(t, second, s.Latest())
}
