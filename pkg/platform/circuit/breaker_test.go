package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// outcome is one reported call result: true for a primary success.
type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func play(b *Breaker, outcomes ...outcome) {
	for _, o := range outcomes {
		if o {
			b.RecordSuccess()
		} else {
			b.RecordFailure()
		}
	}
}

func TestBreakerDefaults(t *testing.T) {
	b := New("preferences-redis")
	assert.Equal(t, "preferences-redis", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())

	play(b, fail, fail, fail, fail)
	assert.False(t, b.IsOpen())
	play(b, fail)
	assert.True(t, b.IsOpen())
	assert.Equal(t, "open", b.State().String())
}

func TestBreakerSequences(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		recovers int
		outcomes []outcome
		wantOpen bool
	}{
		{"below threshold", 3, 2, []outcome{fail, fail}, false},
		{"opens at threshold", 3, 2, []outcome{fail, fail, fail}, true},
		{"success clears failure streak", 3, 2, []outcome{fail, fail, ok, fail, fail}, false},
		{"stays open on partial recovery", 1, 2, []outcome{fail, ok}, true},
		{"closes after recovery streak", 1, 2, []outcome{fail, ok, ok}, false},
		{"failure while open restarts recovery", 1, 3, []outcome{fail, ok, ok, fail, ok, ok}, true},
		{"recovery after restart", 1, 3, []outcome{fail, ok, ok, fail, ok, ok, ok}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("store", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.recovers))
			play(b, tt.outcomes...)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
		})
	}
}

func TestBreakerReportsTransitions(t *testing.T) {
	b := New("store", WithFailureThreshold(2), WithSuccessThreshold(1))

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.Equal(t, StateChange{}, change)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.Equal(t, StateChange{Opened: true}, change)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback, "open circuit keeps routing to the fallback")
	assert.Equal(t, StateChange{}, change)

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.Equal(t, StateChange{Closed: true}, change)
}

func TestBreakerIgnoresNonPositiveThresholds(t *testing.T) {
	b := New("store", WithFailureThreshold(0), WithSuccessThreshold(-1))
	play(b, fail, fail, fail, fail)
	assert.False(t, b.IsOpen())
}

func TestBreakerReset(t *testing.T) {
	b := New("store", WithFailureThreshold(1), WithSuccessThreshold(5))
	play(b, fail, ok)
	b.Reset()
	assert.Equal(t, StateClosed, b.State())

	// Reset also clears the failure streak.
	b2 := New("store", WithFailureThreshold(2))
	play(b2, fail)
	b2.Reset()
	play(b2, fail)
	assert.False(t, b2.IsOpen())
}
