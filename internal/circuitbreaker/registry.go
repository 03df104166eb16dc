package circuitbreaker

import (
	"sync"
)

// Registry hands out one breaker per named dependency with get-or-create
// semantics. It is a plain value meant to be constructed at the composition
// root and injected; there is no package-level instance.
type Registry struct {
	mutex    sync.RWMutex
	breakers map[string]*CircuitBreaker
	defaults Options
}

// NewRegistry creates a registry whose breakers use defaults unless the
// first GetBreaker call for a name supplies its own options.
func NewRegistry(defaults Options) *Registry {
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
		defaults: defaults,
	}
}

// GetBreaker returns the breaker registered under name, creating it on
// first use. Options are honored only on the call that creates the breaker;
// subsequent calls for the same name ignore them and return the existing
// instance.
func (r *Registry) GetBreaker(name string, opts ...Options) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[name]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[name]; exists {
		return cb
	}

	options := r.defaults
	if len(opts) > 0 {
		options = opts[0]
	}

	cb = New(options)
	r.breakers[name] = cb
	return cb
}

// Metrics returns a snapshot for every registered breaker keyed by name.
func (r *Registry) Metrics() map[string]Metrics {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snapshots := make(map[string]Metrics, len(r.breakers))
	for name, cb := range r.breakers {
		snapshots[name] = cb.Metrics()
	}
	return snapshots
}

// ResetAll forces every registered breaker back to CLOSED. Instances stay
// registered so callers holding references keep observing the same breaker.
func (r *Registry) ResetAll() {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, cb := range r.breakers {
		cb.Reset()
	}
}
