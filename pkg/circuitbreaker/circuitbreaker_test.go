package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBackend = errors.New("backend down")

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestBreaker(c *clock, transitions *[]State) *CircuitBreaker {
	return New(Settings{
		Name:             "test",
		MaxRequests:      2,
		Timeout:          10 * time.Second,
		FailureThreshold: 3,
		Now:              c.Now,
		OnStateChange: func(_ string, _ State, to State) {
			*transitions = append(*transitions, to)
		},
	})
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	c := &clock{now: time.Unix(0, 0)}
	var transitions []State
	cb := newTestBreaker(c, &transitions)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errBackend }), errBackend)
	}

	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.False(t, called)
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	c := &clock{now: time.Unix(0, 0)}
	var transitions []State
	cb := newTestBreaker(c, &transitions)

	_ = cb.Execute(func() error { return errBackend })
	_ = cb.Execute(func() error { return errBackend })
	assert.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errBackend })

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	c := &clock{now: time.Unix(0, 0)}
	var transitions []State
	cb := newTestBreaker(c, &transitions)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBackend })
	}

	c.now = c.now.Add(10 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.NoError(t, cb.Execute(func() error { return nil }))

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	c := &clock{now: time.Unix(0, 0)}
	var transitions []State
	cb := newTestBreaker(c, &transitions)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errBackend })
	}
	c.now = c.now.Add(11 * time.Second)

	assert.ErrorIs(t, cb.Execute(func() error { return errBackend }), errBackend)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerIsSuccessfulFilter(t *testing.T) {
	errIgnored := errors.New("ignored")
	cb := New(Settings{
		FailureThreshold: 1,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errIgnored)
		},
	})

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errIgnored }), errIgnored)
	}
	assert.Equal(t, StateClosed, cb.State())
}
