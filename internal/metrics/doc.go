// Package metrics aggregates batch-run and circuit-breaker activity.
//
// Producers push MetricEvent values onto the Collector's channel; the
// collector consumes them on its own goroutine and folds them into
// per-batch counters and item-duration percentiles plus per-breaker state
// and trip counts. Snapshot returns a copy suitable for logging or
// serialization.
package metrics
