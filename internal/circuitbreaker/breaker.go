package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Short-circuiting calls
	StateHalfOpen              // Probing for recovery
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned by Execute when the breaker is open, the reset
// timeout has not elapsed, and no fallback was supplied.
var ErrCircuitOpen = errors.New("circuit breaker is open")

const (
	DefaultFailureThreshold    = 5
	DefaultResetTimeout        = 60 * time.Second
	DefaultHalfOpenMaxAttempts = 3
)

// Operation is the unreliable call guarded by a breaker.
type Operation func(ctx context.Context) (any, error)

// Fallback substitutes a value when the breaker refuses or trips on a call.
type Fallback func(ctx context.Context) (any, error)

// StateChangeFunc observes breaker transitions. It is invoked outside the
// breaker's lock, so it may safely call back into the breaker.
type StateChangeFunc func(from, to State)

type Options struct {
	// FailureThreshold is the number of consecutive failures while closed
	// that trips the breaker open. Defaults to DefaultFailureThreshold.
	FailureThreshold int

	// ResetTimeout is how long the breaker stays open before the next call
	// is allowed through as a recovery probe. Defaults to DefaultResetTimeout.
	ResetTimeout time.Duration

	// HalfOpenMaxAttempts is the number of consecutive probe successes
	// required to close the breaker again. Defaults to DefaultHalfOpenMaxAttempts.
	HalfOpenMaxAttempts int

	// MonitoringPeriod sizes the observability window reported in Metrics.
	// It does not affect state transitions.
	MonitoringPeriod time.Duration

	OnStateChange StateChangeFunc
}

func (o Options) withDefaults() Options {
	if o.FailureThreshold < 1 {
		o.FailureThreshold = DefaultFailureThreshold
	}
	if o.ResetTimeout <= 0 {
		o.ResetTimeout = DefaultResetTimeout
	}
	if o.HalfOpenMaxAttempts < 1 {
		o.HalfOpenMaxAttempts = DefaultHalfOpenMaxAttempts
	}
	return o
}

// Metrics is a point-in-time snapshot of a breaker.
type Metrics struct {
	State       State
	Failures    int
	Successes   int
	LastFailure time.Time
	Window      time.Duration
	Healthy     bool
}

// CircuitBreaker guards an unreliable operation with a three-state machine.
// It trips open after FailureThreshold consecutive failures, short-circuits
// calls while open, and probes for recovery once ResetTimeout has elapsed.
type CircuitBreaker struct {
	mutex       sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
	opts        Options
}

func New(opts Options) *CircuitBreaker {
	return &CircuitBreaker{
		state: StateClosed,
		opts:  opts.withDefaults(),
	}
}

// Execute runs op through the breaker.
//
// While closed or half-open the operation is invoked and its own error, if
// any, is returned unchanged, unless that failure trips the breaker open;
// in that case the fallback (when supplied) answers the call instead.
// While open, op is never invoked: the fallback answers if supplied,
// otherwise Execute fails with ErrCircuitOpen. Once ResetTimeout has
// elapsed the next call transitions the breaker to half-open and proceeds
// as the probe.
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation, fallback Fallback) (any, error) {
	if !cb.allow() {
		if fallback != nil {
			return fallback(ctx)
		}
		return nil, ErrCircuitOpen
	}

	result, err := op(ctx)
	if err != nil {
		if opened := cb.recordFailure(); opened && fallback != nil {
			return fallback(ctx)
		}
		return nil, err
	}

	cb.recordSuccess()
	return result, nil
}

// allow reports whether the next call may invoke the operation, moving the
// breaker to half-open when the reset timeout has elapsed.
func (cb *CircuitBreaker) allow() bool {
	cb.mutex.Lock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.opts.ResetTimeout {
			cb.mutex.Unlock()
			return false
		}
		cb.failures = 0
		cb.successes = 0
		notify := cb.transition(StateHalfOpen)
		cb.mutex.Unlock()
		notify()
		return true
	default:
		cb.mutex.Unlock()
		return true
	}
}

// recordFailure registers a failed call and reports whether the breaker is
// now open, in which case the fallback policy applies to this call.
func (cb *CircuitBreaker) recordFailure() bool {
	cb.mutex.Lock()

	cb.failures++
	cb.lastFailure = time.Now()

	notify := func() {}
	switch {
	case cb.state == StateHalfOpen:
		// Single strike while probing.
		cb.successes = 0
		notify = cb.transition(StateOpen)
	case cb.state == StateClosed && cb.failures >= cb.opts.FailureThreshold:
		notify = cb.transition(StateOpen)
	}

	opened := cb.state == StateOpen
	cb.mutex.Unlock()
	notify()
	return opened
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mutex.Lock()

	notify := func() {}
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.opts.HalfOpenMaxAttempts {
			cb.failures = 0
			cb.successes = 0
			notify = cb.transition(StateClosed)
		}
	} else {
		cb.failures = 0
	}

	cb.mutex.Unlock()
	notify()
}

// transition switches state and returns the observer invocation to run once
// the lock is released. Callers must hold cb.mutex.
func (cb *CircuitBreaker) transition(to State) func() {
	from := cb.state
	if from == to {
		return func() {}
	}
	cb.state = to

	if cb.opts.OnStateChange == nil {
		return func() {}
	}
	onChange := cb.opts.OnStateChange
	return func() { onChange(from, to) }
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Reset forces the breaker closed with all counters cleared. This is an
// administrative override, not a normal transition.
func (cb *CircuitBreaker) Reset() {
	cb.mutex.Lock()

	cb.failures = 0
	cb.successes = 0
	cb.lastFailure = time.Time{}
	notify := cb.transition(StateClosed)

	cb.mutex.Unlock()
	notify()
}

func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return Metrics{
		State:       cb.state,
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
		Window:      cb.opts.MonitoringPeriod,
		Healthy:     cb.state == StateClosed,
	}
}

// Do runs a typed operation through cb without a fallback.
func Do[T any](ctx context.Context, cb *CircuitBreaker, op func(ctx context.Context) (T, error)) (T, error) {
	return DoWithFallback(ctx, cb, op, nil)
}

// DoWithFallback runs a typed operation through cb, routing to fallback
// under the breaker's fallback policy.
func DoWithFallback[T any](ctx context.Context, cb *CircuitBreaker, op, fallback func(ctx context.Context) (T, error)) (T, error) {
	var fb Fallback
	if fallback != nil {
		fb = func(ctx context.Context) (any, error) { return fallback(ctx) }
	}

	result, err := cb.Execute(ctx, func(ctx context.Context) (any, error) { return op(ctx) }, fb)
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}
