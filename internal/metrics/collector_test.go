package metrics_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/resilience-core/internal/metrics"
	"github.com/angeloszaimis/resilience-core/pkg/logger"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		collector = metrics.NewCollector(64, logger.Nop())
		ctx, cancel = context.WithCancel(context.Background())
		collector.Start(ctx)
	})

	AfterEach(func() {
		cancel()
	})

	It("should fold events from the channel into the snapshot", func() {
		events := collector.EventChannel()

		events <- metrics.MetricEvent{
			Type:      metrics.EventItemProcessed,
			Timestamp: time.Now(),
			Batch:     "scan",
			Duration:  5 * time.Millisecond,
		}
		events <- metrics.MetricEvent{
			Type:      metrics.EventItemFailed,
			Timestamp: time.Now(),
			Batch:     "scan",
			Duration:  7 * time.Millisecond,
		}
		events <- metrics.MetricEvent{
			Type:    metrics.EventBreakerChanged,
			Breaker: "scanner",
			State:   "OPEN",
			Tripped: true,
		}

		Eventually(func() int64 {
			return collector.Snapshot().TotalProcessed
		}).Should(Equal(int64(1)))
		Eventually(func() int64 {
			return collector.Snapshot().TotalFailed
		}).Should(Equal(int64(1)))
		Eventually(func() int64 {
			return collector.Snapshot().Breakers["scanner"].Trips
		}).Should(Equal(int64(1)))
	})

	It("should drain buffered events on shutdown", func() {
		events := collector.EventChannel()
		for i := 0; i < 10; i++ {
			events <- metrics.MetricEvent{
				Type:  metrics.EventItemProcessed,
				Batch: "scan",
			}
		}

		cancel()

		Eventually(func() int64 {
			return collector.Snapshot().TotalProcessed
		}).Should(Equal(int64(10)))
	})
})
