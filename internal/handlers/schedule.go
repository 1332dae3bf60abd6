package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/models"
)

// Scheduler books appointments through the external assistant.
type Scheduler interface {
	Schedule(ctx context.Context, userID string, details json.RawMessage) (json.RawMessage, error)
}

// ScheduleHandler serves /api/{orgId}/schedule
type ScheduleHandler struct {
	scheduler Scheduler
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduler Scheduler) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler}
}

func (h *ScheduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	logger := log.WithField("org_id", r.PathValue("orgId"))

	var req models.ScheduleRequest
	body, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		logger.WithError(err).Warn("Invalid schedule request")
		writeError(w, http.StatusInternalServerError, "Failed to schedule appointment")
		return
	}

	result, err := h.scheduler.Schedule(r.Context(), req.UserID, req.AppointmentDetails)
	if err != nil {
		logger.WithError(err).Error("Error scheduling appointment")
		writeError(w, http.StatusInternalServerError, "Failed to schedule appointment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}
