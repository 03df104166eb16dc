package healthwatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/angeloszaimis/resilience-core/internal/circuitbreaker"
)

// Watch periodically inspects every breaker in the registry and logs
// dependencies whose breaker left or re-entered the healthy state. It is
// purely observational: breaker state only moves through Execute calls, so
// the watcher never forces a probe or a reset.
func Watch(
	ctx context.Context,
	registry *circuitbreaker.Registry,
	interval time.Duration,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastHealthy := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Breaker watch stopped")
			return

		case <-ticker.C:
			for name, m := range registry.Metrics() {
				previous, seen := lastHealthy[name]
				lastHealthy[name] = m.Healthy

				if seen && previous == m.Healthy {
					continue
				}

				if m.Healthy {
					if seen {
						logger.Info("Dependency recovered",
							slog.String("dependency", name))
					}
					continue
				}

				logger.Warn("Dependency unhealthy",
					slog.String("dependency", name),
					slog.String("state", m.State.String()),
					slog.Int("failures", m.Failures))
			}
		}
	}
}
