package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// record replays a sequence of outcomes: 'f' is a primary failure and 's'
// a primary success.
func record(b *Breaker, outcomes string) (opened, closed int) {
	for _, o := range outcomes {
		var change StateChange
		if o == 'f' {
			_, change = b.RecordFailure()
		} else {
			_, change = b.RecordSuccess()
		}
		if change.Opened {
			opened++
		}
		if change.Closed {
			closed++
		}
	}
	return opened, closed
}

func TestBreakerSequences(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		recovery int
		outcomes string
		wantOpen bool
		opened   int
		closed   int
	}{
		{name: "stays closed below threshold", failures: 3, recovery: 2, outcomes: "ff", wantOpen: false},
		{name: "opens at threshold", failures: 3, recovery: 2, outcomes: "fff", wantOpen: true, opened: 1},
		{name: "success resets failure streak", failures: 3, recovery: 2, outcomes: "ffsff", wantOpen: false},
		{name: "more failures while open do not reopen", failures: 1, recovery: 2, outcomes: "ffff", wantOpen: true, opened: 1},
		{name: "closes after recovery streak", failures: 1, recovery: 2, outcomes: "fss", wantOpen: false, opened: 1, closed: 1},
		{name: "failure interrupts recovery", failures: 1, recovery: 3, outcomes: "fssfss", wantOpen: true, opened: 1},
		{name: "recovers after interrupted streak", failures: 1, recovery: 3, outcomes: "fssfsss", wantOpen: false, opened: 1, closed: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("redis-inspection-cache", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.recovery))
			opened, closed := record(b, tt.outcomes)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
			assert.Equal(t, tt.opened, opened, "opened transitions")
			assert.Equal(t, tt.closed, closed, "closed transitions")
		})
	}
}

func TestBreakerFallbackSignals(t *testing.T) {
	b := New("redis-inspection-cache", WithFailureThreshold(1), WithSuccessThreshold(1))

	useFallback, _ := b.RecordFailure()
	assert.True(t, useFallback, "the failure that opens the circuit already uses the fallback")

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
}

func TestBreakerDefaultsAndReset(t *testing.T) {
	b := New("redis-inspection-cache", WithFailureThreshold(0))
	assert.Equal(t, "redis-inspection-cache", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())

	record(b, "fffff")
	assert.True(t, b.IsOpen(), "non-positive thresholds keep the default of five")
	assert.Equal(t, "open", b.State().String())

	b.Reset()
	assert.False(t, b.IsOpen())
	record(b, "ffff")
	assert.False(t, b.IsOpen(), "reset clears the failure streak")
}

func TestBreakerConcurrentFailures(t *testing.T) {
	b := New("redis-inspection-cache", WithFailureThreshold(40))

	var wg sync.WaitGroup
	for range 80 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()

	assert.True(t, b.IsOpen())
}
