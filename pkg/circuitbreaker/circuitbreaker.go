package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	ErrTooManyRequests    = errors.New("too many requests")
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Settings struct {
	Name string
	// MaxRequests is how many probes pass while half-open, and how many
	// consecutive successes close the breaker again.
	MaxRequests uint32
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// IsSuccessful decides whether an error counts against the breaker.
	IsSuccessful  func(err error) bool
	OnStateChange func(name string, from State, to State)
	Now           func() time.Time
}

type CircuitBreaker struct {
	settings Settings

	mutex                sync.Mutex
	state                State
	generation           uint64
	requests             uint32
	consecutiveFailures  uint32
	consecutiveSuccesses uint32
	openedUntil          time.Time
}

func New(st Settings) *CircuitBreaker {
	if st.MaxRequests == 0 {
		st.MaxRequests = 1
	}
	if st.Timeout <= 0 {
		st.Timeout = 30 * time.Second
	}
	if st.FailureThreshold == 0 {
		st.FailureThreshold = 5
	}
	if st.IsSuccessful == nil {
		st.IsSuccessful = func(err error) bool { return err == nil }
	}
	if st.Now == nil {
		st.Now = time.Now
	}

	return &CircuitBreaker{settings: st}
}

// Execute runs req unless the breaker is open. The error from req is
// returned unchanged.
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			cb.afterRequest(generation, false)
			panic(e)
		}
	}()

	err = req()
	cb.afterRequest(generation, cb.settings.IsSuccessful(err))
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.currentState(cb.settings.Now())

	switch {
	case state == StateOpen:
		return cb.generation, ErrCircuitBreakerOpen
	case state == StateHalfOpen && cb.requests >= cb.settings.MaxRequests:
		return cb.generation, ErrTooManyRequests
	}

	cb.requests++
	return cb.generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	now := cb.settings.Now()
	state := cb.currentState(now)
	if cb.generation != before {
		return
	}

	if success {
		cb.consecutiveSuccesses++
		cb.consecutiveFailures = 0
		if state == StateHalfOpen && cb.consecutiveSuccesses >= cb.settings.MaxRequests {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.consecutiveFailures++
	cb.consecutiveSuccesses = 0
	if state == StateHalfOpen || cb.consecutiveFailures >= cb.settings.FailureThreshold {
		cb.setState(StateOpen, now)
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && !now.Before(cb.openedUntil) {
		cb.setState(StateHalfOpen, now)
	}
	return cb.state
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.requests = 0
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0

	if state == StateOpen {
		cb.openedUntil = now.Add(cb.settings.Timeout)
	}

	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, prev, state)
	}
}

func (cb *CircuitBreaker) Name() string {
	return cb.settings.Name
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return cb.currentState(cb.settings.Now())
}
