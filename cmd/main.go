package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/angeloszaimis/resilience-core/config"
	"github.com/angeloszaimis/resilience-core/internal/chunk"
	"github.com/angeloszaimis/resilience-core/internal/circuitbreaker"
	"github.com/angeloszaimis/resilience-core/internal/healthwatch"
	"github.com/angeloszaimis/resilience-core/internal/metrics"
	"github.com/angeloszaimis/resilience-core/pkg/logger"
)

type document struct {
	Name string
	Ext  string
	Size int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	breakerOpts, err := cfg.BreakerOptions()
	if err != nil {
		log.Error("Invalid breaker options", slog.Any("err", err))
		os.Exit(1)
	}

	chunkOpts, err := cfg.ChunkOptions()
	if err != nil {
		log.Error("Invalid chunk options", slog.Any("err", err))
		os.Exit(1)
	}

	watchInterval, err := cfg.WatchInterval()
	if err != nil {
		log.Error("Invalid watch interval", slog.Any("err", err))
		os.Exit(1)
	}

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Start(ctx)

	events := collector.EventChannel()
	breakerOpts.OnStateChange = func(from, to circuitbreaker.State) {
		log.Warn("Breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()))
		events <- metrics.MetricEvent{
			Type:      metrics.EventBreakerChanged,
			Timestamp: time.Now(),
			Breaker:   "scanner",
			State:     to.String(),
			Tripped:   to == circuitbreaker.StateOpen,
		}
	}

	registry := circuitbreaker.NewRegistry(breakerOpts)
	go healthwatch.Watch(ctx, registry, watchInterval, log)

	docs := buildDocuments(120)
	result := scanDocuments(ctx, docs, registry, collector, chunkOpts)

	log.Info("Scan finished",
		slog.Int("scanned", len(result.Results)),
		slog.Int("failed", len(result.Errors)),
		slog.Bool("cancelled", result.Cancelled))

	groups := chunk.Group(ctx, result.Results, func(d document) string { return d.Ext }, chunkOpts)
	for ext, members := range groups {
		log.Info("Grouped documents",
			slog.String("extension", ext),
			slog.Int("count", len(members)))
	}

	bySize := chunk.Sort(ctx, result.Results, func(a, b document) int { return a.Size - b.Size }, chunkOpts)
	if len(bySize) > 0 {
		largest := bySize[len(bySize)-1]
		log.Info("Largest document",
			slog.String("name", largest.Name),
			slog.Int("size", largest.Size))
	}

	snapshot := collector.Snapshot()
	log.Info("Run totals",
		slog.Int64("processed", snapshot.TotalProcessed),
		slog.Int64("failed", snapshot.TotalFailed),
		slog.Duration("uptime", snapshot.Uptime))
}

// scanDocuments runs the per-document scan through the "scanner" breaker so
// a failing scan dependency short-circuits instead of stalling the batch,
// and reports each attempt to the metrics collector.
func scanDocuments(
	ctx context.Context,
	docs []document,
	registry *circuitbreaker.Registry,
	collector *metrics.Collector,
	opts chunk.Options,
) chunk.Result[document] {
	cb := registry.GetBreaker("scanner")
	events := collector.EventChannel()

	return chunk.Process(ctx, docs, func(ctx context.Context, doc document, index int) (document, error) {
		started := time.Now()

		scanned, err := circuitbreaker.Do(ctx, cb, func(ctx context.Context) (document, error) {
			return scan(doc)
		})

		event := metrics.MetricEvent{
			Type:      metrics.EventItemProcessed,
			Timestamp: time.Now(),
			Batch:     "scan",
			Duration:  time.Since(started),
		}
		if err != nil {
			event.Type = metrics.EventItemFailed
		}

		// Drop the event rather than stall the batch on a full buffer.
		select {
		case events <- event:
		default:
		}

		return scanned, err
	}, opts)
}

// scan classifies a single document by extension. Hidden files are treated
// as scan failures so the demo exercises the error-isolation path.
func scan(doc document) (document, error) {
	if strings.HasPrefix(doc.Name, ".") {
		return document{}, fmt.Errorf("hidden file: %s", doc.Name)
	}

	doc.Ext = strings.TrimPrefix(filepath.Ext(doc.Name), ".")
	if doc.Ext == "" {
		doc.Ext = "none"
	}
	return doc, nil
}

func buildDocuments(count int) []document {
	exts := []string{".pdf", ".png", ".txt", ".go", ""}

	docs := make([]document, 0, count)
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("file-%03d%s", i, exts[i%len(exts)])
		if i%9 == 0 {
			name = fmt.Sprintf(".cache-%03d", i)
		}
		docs = append(docs, document{
			Name: name,
			Size: (i * 7919) % 100000,
		})
	}
	return docs
}
