package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatemesh/storefront/internal/domain"
	apperrors "github.com/gatemesh/storefront/pkg/errors"
)

func reading(nodeID, metric string, value float64) domain.Reading {
	return domain.Reading{
		NodeID:     nodeID,
		Metric:     metric,
		Value:      value,
		RecordedAt: time.Now().UTC(),
	}
}

func TestBuffer_RecordAndReadings(t *testing.T) {
	buf := NewBuffer(10)
	ctx := context.Background()

	require.NoError(t, buf.Record(ctx, reading("node-1", domain.MetricWaterLevel, 3.2)))
	require.NoError(t, buf.Record(ctx, reading("node-1", domain.MetricWaterLevel, 3.4)))

	readings, err := buf.Readings(ctx, "node-1", domain.MetricWaterLevel)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 3.2, readings[0].Value)
	assert.Equal(t, 3.4, readings[1].Value)
}

func TestBuffer_SeriesAreIsolated(t *testing.T) {
	buf := NewBuffer(10)
	ctx := context.Background()

	require.NoError(t, buf.Record(ctx, reading("node-1", domain.MetricWaterLevel, 3.2)))
	require.NoError(t, buf.Record(ctx, reading("node-1", domain.MetricBattery, 87)))
	require.NoError(t, buf.Record(ctx, reading("node-2", domain.MetricWaterLevel, 1.1)))

	water, err := buf.Readings(ctx, "node-1", domain.MetricWaterLevel)
	require.NoError(t, err)
	assert.Len(t, water, 1)

	battery, err := buf.Readings(ctx, "node-1", domain.MetricBattery)
	require.NoError(t, err)
	assert.Len(t, battery, 1)
	assert.Equal(t, 87.0, battery[0].Value)
}

func TestBuffer_EvictsOldestWhenFull(t *testing.T) {
	buf := NewBuffer(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, buf.Record(ctx, reading("node-1", domain.MetricSignal, float64(i))))
	}

	readings, err := buf.Readings(ctx, "node-1", domain.MetricSignal)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, 3.0, readings[0].Value)
	assert.Equal(t, 5.0, readings[2].Value)
}

func TestBuffer_UnknownSeriesIsEmpty(t *testing.T) {
	buf := NewBuffer(10)

	readings, err := buf.Readings(context.Background(), "node-x", domain.MetricBattery)
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestBuffer_Latest(t *testing.T) {
	buf := NewBuffer(10)
	ctx := context.Background()

	_, err := buf.Latest(ctx, "node-1", domain.MetricBattery)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, buf.Record(ctx, reading("node-1", domain.MetricBattery, 90)))
	require.NoError(t, buf.Record(ctx, reading("node-1", domain.MetricBattery, 89)))

	latest, err := buf.Latest(ctx, "node-1", domain.MetricBattery)
	require.NoError(t, err)
	assert.Equal(t, 89.0, latest.Value)
}

func TestBuffer_RecordValidation(t *testing.T) {
	buf := NewBuffer(10)
	ctx := context.Background()

	err := buf.Record(ctx, domain.Reading{Metric: domain.MetricBattery})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = buf.Record(ctx, domain.Reading{NodeID: "node-1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestBuffer_StampsMissingTimestamp(t *testing.T) {
	buf := NewBuffer(10)
	ctx := context.Background()

	require.NoError(t, buf.Record(ctx, domain.Reading{NodeID: "node-1", Metric: domain.MetricSignal, Value: -71}))

	latest, err := buf.Latest(ctx, "node-1", domain.MetricSignal)
	require.NoError(t, err)
	assert.False(t, latest.RecordedAt.IsZero())
}
