package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type HealthHandler struct {
	pool      *pgxpool.Pool
	startTime time.Time
}

func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool, startTime: time.Now()}
}

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Database      string `json:"database"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	database := "ok"
	if err := h.pool.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("database ping failed")
		status = "degraded"
		database = "unreachable"
	}

	RespondJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Version:       "1.0.0",
		Database:      database,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}
