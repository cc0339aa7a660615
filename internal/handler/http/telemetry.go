package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatemesh/storefront/internal/domain"
	"github.com/gatemesh/storefront/internal/telemetry"
	"github.com/gatemesh/storefront/pkg/validator"
)

// TelemetryHandler handles HTTP requests for demo sensor readings.
type TelemetryHandler struct {
	buffer *telemetry.Buffer
	logger *slog.Logger
}

// NewTelemetryHandler creates a new telemetry HTTP handler.
func NewTelemetryHandler(buffer *telemetry.Buffer, logger *slog.Logger) *TelemetryHandler {
	return &TelemetryHandler{
		buffer: buffer,
		logger: logger,
	}
}

// RecordReadingRequest is the JSON request body for recording a reading.
type RecordReadingRequest struct {
	Value      float64    `json:"value"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// GetReadings handles GET /api/v1/telemetry/{nodeId}/{metric}
func (h *TelemetryHandler) GetReadings(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeId")
	metric := chi.URLParam(r, "metric")

	readings, err := h.buffer.Readings(r.Context(), nodeID, metric)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: readings})
}

// RecordReading handles POST /api/v1/telemetry/{nodeId}/{metric}
func (h *TelemetryHandler) RecordReading(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeId")
	metric := chi.URLParam(r, "metric")

	var req RecordReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	reading := domain.Reading{
		NodeID: nodeID,
		Metric: metric,
		Value:  req.Value,
	}
	if req.RecordedAt != nil {
		reading.RecordedAt = *req.RecordedAt
	}

	if err := h.buffer.Record(r.Context(), reading); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, response{Data: map[string]string{"status": "recorded"}})
}
