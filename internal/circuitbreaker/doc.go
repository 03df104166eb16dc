// Package circuitbreaker implements the circuit breaker pattern for calls
// to unreliable dependencies.
//
// A circuit breaker prevents cascading failures by short-circuiting calls
// to a dependency that keeps failing. It has three states:
//
//   - CLOSED: Normal operation, calls pass through
//   - OPEN: Dependency failing, calls short-circuited
//   - HALF-OPEN: Testing whether the dependency recovered
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(circuitbreaker.Options{})
//	cb := registry.GetBreaker("categorizer")
//	result, err := cb.Execute(ctx, callCategorizer, nil)
//	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
//	    // Dependency unavailable, try later or use cached data.
//	}
package circuitbreaker
