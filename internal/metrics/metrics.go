package metrics

import (
	"sort"
	"sync"
	"time"
)

// Metrics aggregates batch-run and breaker activity for reporting.
type Metrics struct {
	mutex         sync.RWMutex
	processed     map[string]int64
	failed        map[string]int64
	itemDurations map[string][]time.Duration
	breakerStates map[string]string
	breakerTrips  map[string]int64
	startTime     time.Time
}

type Snapshot struct {
	TotalProcessed int64                     `json:"total_processed"`
	TotalFailed    int64                     `json:"total_failed"`
	Uptime         time.Duration             `json:"uptime"`
	Batches        map[string]BatchMetrics   `json:"batches"`
	Breakers       map[string]BreakerMetrics `json:"breakers"`
}

type BatchMetrics struct {
	Processed int64         `json:"processed"`
	Failed    int64         `json:"failed"`
	AvgItem   time.Duration `json:"avg_item"`
	P50Item   time.Duration `json:"p50_item"`
	P95Item   time.Duration `json:"p95_item"`
	P99Item   time.Duration `json:"p99_item"`
}

type BreakerMetrics struct {
	State string `json:"state"`
	Trips int64  `json:"trips"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		processed:     make(map[string]int64),
		failed:        make(map[string]int64),
		itemDurations: make(map[string][]time.Duration),
		breakerStates: make(map[string]string),
		breakerTrips:  make(map[string]int64),
		startTime:     time.Now(),
	}
}

func (m *Metrics) RecordItem(batch string, duration time.Duration, failed bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if failed {
		m.failed[batch]++
	} else {
		m.processed[batch]++
	}

	m.itemDurations[batch] = append(m.itemDurations[batch], duration)
	if len(m.itemDurations[batch]) > 1000 {
		m.itemDurations[batch] = m.itemDurations[batch][1:]
	}
}

func (m *Metrics) RecordBreakerState(breaker, state string, tripped bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.breakerStates[breaker] = state
	if tripped {
		m.breakerTrips[breaker]++
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:   time.Since(m.startTime),
		Batches:  make(map[string]BatchMetrics),
		Breakers: make(map[string]BreakerMetrics),
	}

	allBatches := make(map[string]bool)
	for batch := range m.processed {
		allBatches[batch] = true
	}
	for batch := range m.failed {
		allBatches[batch] = true
	}
	for batch := range m.itemDurations {
		allBatches[batch] = true
	}

	for batch := range allBatches {
		snap.TotalProcessed += m.processed[batch]
		snap.TotalFailed += m.failed[batch]

		bm := BatchMetrics{
			Processed: m.processed[batch],
			Failed:    m.failed[batch],
		}

		durations := m.itemDurations[batch]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			bm.AvgItem = average(sorted)
			bm.P50Item = percentile(sorted, 0.50)
			bm.P95Item = percentile(sorted, 0.95)
			bm.P99Item = percentile(sorted, 0.99)
		}

		snap.Batches[batch] = bm
	}

	for breaker, state := range m.breakerStates {
		snap.Breakers[breaker] = BreakerMetrics{
			State: state,
			Trips: m.breakerTrips[breaker],
		}
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
