package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	dbStatus := "up"
	if err := h.db.HealthCheck(ctx); err != nil {
		status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "down"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status":   status,
		"database": dbStatus,
	})
}
