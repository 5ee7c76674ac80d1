package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

func newTestBreaker(cfg Config) (*Breaker, *time.Time) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	b := New(cfg)
	b.now = func() time.Time { return now }
	b.expiry = b.nextInterval()
	return b, &now
}

func fail(context.Context) error { return errDown }
func succeed(context.Context) error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(Config{Name: "registry", FailureThreshold: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(context.Background(), fail), errDown)
	}
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(Config{FailureThreshold: 2, Timeout: time.Minute})

	_ = b.Execute(context.Background(), fail)
	require.NoError(t, b.Execute(context.Background(), succeed))
	_ = b.Execute(context.Background(), fail)

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().ConsecutiveFailures)
}

func TestBreaker_HalfOpenTrial(t *testing.T) {
	var transitions []string
	b, now := newTestBreaker(Config{
		FailureThreshold: 1,
		Timeout:          30 * time.Second,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = b.Execute(context.Background(), fail)
	require.Equal(t, StateOpen, b.State())

	*now = now.Add(29 * time.Second)
	assert.ErrorIs(t, b.Execute(context.Background(), succeed), ErrOpen)

	*now = now.Add(2 * time.Second)
	require.NoError(t, b.Execute(context.Background(), succeed))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, transitions)
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	b, now := newTestBreaker(Config{FailureThreshold: 1, Timeout: 10 * time.Second})

	_ = b.Execute(context.Background(), fail)
	*now = now.Add(11 * time.Second)
	_ = b.Execute(context.Background(), fail)

	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(context.Background(), succeed), ErrOpen)
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	errNotFound := errors.New("not found")
	b, _ := newTestBreaker(Config{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return err != nil && !errors.Is(err, errNotFound) },
	})

	assert.ErrorIs(t, b.Execute(context.Background(), func(context.Context) error { return errNotFound }), errNotFound)
	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "UNKNOWN", State(42).String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
}
