package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventItemProcessed  EventType = "item_processed"
	EventItemFailed     EventType = "item_failed"
	EventBreakerChanged EventType = "breaker_changed"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Batch     string
	Breaker   string
	Duration  time.Duration
	State     string
	Tripped   bool
}

// Collector consumes metric events off a buffered channel on its own
// goroutine so batch runs never block on bookkeeping.
type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventItemProcessed:
		c.metrics.RecordItem(event.Batch, event.Duration, false)

	case EventItemFailed:
		c.metrics.RecordItem(event.Batch, event.Duration, true)

	case EventBreakerChanged:
		c.metrics.RecordBreakerState(event.Breaker, event.State, event.Tripped)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
