package domain

import "time"

// Telemetry metrics reported by demo nodes.
const (
	MetricWaterLevel = "water-level"
	MetricBattery    = "battery"
	MetricSignal     = "signal"
)

// Reading is a single demo sensor sample.
type Reading struct {
	NodeID     string    `json:"node_id"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}
