// Package telemetry holds recent demo sensor readings for the storefront's
// live product widgets.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/gatemesh/storefront/internal/domain"
	apperrors "github.com/gatemesh/storefront/pkg/errors"
)

// DefaultCapacity is the per-series reading retention.
const DefaultCapacity = 288 // 24h of 5-minute samples

type seriesKey struct {
	nodeID string
	metric string
}

// Buffer keeps a bounded FIFO of readings per (node, metric) series. When a
// series is full, the oldest reading is dropped.
type Buffer struct {
	mu       sync.RWMutex
	series   map[seriesKey][]domain.Reading
	capacity int
}

// NewBuffer creates a telemetry buffer. capacity <= 0 falls back to
// DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		series:   make(map[seriesKey][]domain.Reading),
		capacity: capacity,
	}
}

// Record appends a reading to its series, evicting the oldest when full.
func (b *Buffer) Record(_ context.Context, reading domain.Reading) error {
	if reading.NodeID == "" {
		return apperrors.InvalidInput("node id is required")
	}
	if reading.Metric == "" {
		return apperrors.InvalidInput("metric is required")
	}
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now().UTC()
	}

	key := seriesKey{nodeID: reading.NodeID, metric: reading.Metric}

	b.mu.Lock()
	defer b.mu.Unlock()

	readings := b.series[key]
	if len(readings) >= b.capacity {
		readings = readings[1:]
	}
	b.series[key] = append(readings, reading)

	return nil
}

// Readings returns the series for a (node, metric) pair, oldest first. An
// unknown series yields an empty slice.
func (b *Buffer) Readings(_ context.Context, nodeID, metric string) ([]domain.Reading, error) {
	if nodeID == "" {
		return nil, apperrors.InvalidInput("node id is required")
	}
	if metric == "" {
		return nil, apperrors.InvalidInput("metric is required")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	readings := b.series[seriesKey{nodeID: nodeID, metric: metric}]
	out := make([]domain.Reading, len(readings))
	copy(out, readings)
	return out, nil
}

// Latest returns the most recent reading for a series, or a not-found error
// when the series is empty.
func (b *Buffer) Latest(_ context.Context, nodeID, metric string) (*domain.Reading, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	readings := b.series[seriesKey{nodeID: nodeID, metric: metric}]
	if len(readings) == 0 {
		return nil, apperrors.NotFound("telemetry series", nodeID+"/"+metric)
	}

	latest := readings[len(readings)-1]
	return &latest, nil
}
