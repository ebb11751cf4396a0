package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where requests are allowed.
	Closed State = iota
	// Open state is when the circuit has tripped and requests are blocked.
	Open
	// HalfOpen is a state where a limited number of trial requests are allowed to test the system's recovery.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

var (
	// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// CircuitBreaker is the interface for the circuit breaker pattern.
type CircuitBreaker interface {
	// Execute runs the given request if the circuit breaker is closed or half-open.
	Execute(req func() (interface{}, error)) (interface{}, error)
	// State returns the current state of the circuit breaker.
	State() State
}

// Option configures optional behaviour of a breaker.
type Option func(*breaker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(cb *breaker) {
		cb.now = now
	}
}

// WithStateChange registers a callback invoked after every transition.
// It runs outside the breaker's lock.
func WithStateChange(fn func(from, to State)) Option {
	return func(cb *breaker) {
		cb.onStateChange = fn
	}
}

// breaker holds the configuration and counters of a circuit breaker.
type breaker struct {
	failureThreshold     uint32        // Number of failures to trip the circuit.
	successThreshold     uint32        // Number of successes in HalfOpen state to close the circuit.
	timeout              time.Duration // Duration to wait in Open state before transitioning to HalfOpen.
	consecutiveSuccesses uint32        // Current count of consecutive successes.
	consecutiveFailures  uint32        // Current count of consecutive failures.
	openedAt             time.Time     // Time when the circuit was opened.
	state                State
	now                  func() time.Time
	onStateChange        func(from, to State)
	mutex                sync.Mutex
}

// New creates a new circuit breaker with the specified settings.
// failureThreshold: The number of consecutive failures required to open the circuit.
// successThreshold: The number of consecutive successes in the half-open state required to close the circuit.
// timeout: The duration the circuit remains open before transitioning to half-open.
func New(failureThreshold, successThreshold uint32, timeout time.Duration, opts ...Option) CircuitBreaker {
	if failureThreshold == 0 {
		failureThreshold = 1
	}
	if successThreshold == 0 {
		successThreshold = 1
	}
	cb := &breaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		state:            Closed,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// State returns the current state of the circuit breaker.
// An open circuit whose timeout has elapsed reports HalfOpen.
func (cb *breaker) State() State {
	cb.mutex.Lock()
	from, to := cb.refresh()
	state := cb.state
	cb.mutex.Unlock()

	cb.notify(from, to)
	return state
}

// Execute wraps the execution of a function with the circuit breaker logic.
func (cb *breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	cb.mutex.Lock()
	from, to := cb.refresh()
	state := cb.state
	cb.mutex.Unlock()
	cb.notify(from, to)

	if state == Open {
		return nil, ErrCircuitOpen
	}

	res, err := req()
	if err != nil {
		cb.onFailure()
		return nil, err
	}
	cb.onSuccess()
	return res, nil
}

// refresh moves an expired Open circuit to HalfOpen.
// This method assumes the lock is held.
func (cb *breaker) refresh() (State, State) {
	if cb.state == Open && cb.now().Sub(cb.openedAt) > cb.timeout {
		return cb.transition(HalfOpen)
	}
	return cb.state, cb.state
}

// onSuccess handles the logic when a request succeeds.
func (cb *breaker) onSuccess() {
	cb.mutex.Lock()
	from, to := cb.state, cb.state
	switch cb.state {
	case HalfOpen:
		cb.consecutiveSuccesses++
		if cb.consecutiveSuccesses >= cb.successThreshold {
			from, to = cb.transition(Closed)
		}
	case Closed:
		cb.consecutiveFailures = 0
	}
	cb.mutex.Unlock()

	cb.notify(from, to)
}

// onFailure handles the logic when a request fails.
func (cb *breaker) onFailure() {
	cb.mutex.Lock()
	from, to := cb.state, cb.state
	switch cb.state {
	case HalfOpen:
		from, to = cb.transition(Open)
	case Closed:
		cb.consecutiveFailures++
		if cb.consecutiveFailures >= cb.failureThreshold {
			from, to = cb.transition(Open)
		}
	}
	cb.mutex.Unlock()

	cb.notify(from, to)
}

// transition switches state and resets all counters.
// This method assumes the lock is held.
func (cb *breaker) transition(to State) (State, State) {
	from := cb.state
	cb.state = to
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
	if to == Open {
		cb.openedAt = cb.now()
	}
	return from, to
}

func (cb *breaker) notify(from, to State) {
	if from != to && cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
}
