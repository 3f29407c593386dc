package handlers

import (
	"context"
	"net/http"
	"time"

	"taskhub/database"
	"taskhub/logging"
	"taskhub/response"
)

type HealthHandler struct {
	store database.Store
}

func NewHealthHandler(store database.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

type healthStatus struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	if err := h.store.Ping(ctx); err != nil {
		logging.Logger.WithError(err).Warn("Health check failed")
		response.Write(w, http.StatusServiceUnavailable, healthStatus{
			Message:   "Database unavailable",
			Timestamp: now,
		})
		return
	}

	response.Write(w, http.StatusOK, healthStatus{
		Success:   true,
		Message:   "Server is running",
		Timestamp: now,
	})
}
