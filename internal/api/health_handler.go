package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"bookingapi/pkg/cache"
	"bookingapi/pkg/logger"
)

// HealthDependencies is the part of the application factory the health
// checks look at. GetCache returns nil when caching is disabled.
type HealthDependencies interface {
	GetDB() *sql.DB
	GetCache() cache.Cache
}

type HealthHandler struct {
	deps    HealthDependencies
	logger  logger.Logger
	version string
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
	Version   string                 `json:"version"`
}

func NewHealthHandler(deps HealthDependencies, logger logger.Logger, version string) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		logger:  logger,
		version: version,
	}
}

// HealthCheck reports unhealthy when the database is down. A failing cache
// only degrades the service since lookups fall back to the store.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	services := map[string]interface{}{
		"database": h.checkDatabaseHealth(ctx),
		"cache":    h.checkCacheHealth(ctx),
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if services["database"].(map[string]interface{})["status"] != "healthy" {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else if services["cache"].(map[string]interface{})["status"] == "unhealthy" {
		status = "degraded"
	}

	if status != "healthy" {
		h.logger.WarnContext(r.Context(), "Health check not healthy", map[string]interface{}{"status": status})
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
		Version:   h.version,
	})
}

func (h *HealthHandler) checkDatabaseHealth(ctx context.Context) map[string]interface{} {
	db := h.deps.GetDB()
	if db == nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  "database connection is nil",
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}

	stats := db.Stats()
	return map[string]interface{}{
		"status":           "healthy",
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration":    stats.WaitDuration.String(),
	}
}

func (h *HealthHandler) checkCacheHealth(ctx context.Context) map[string]interface{} {
	c := h.deps.GetCache()
	if c == nil {
		return map[string]interface{}{"status": "disabled"}
	}

	if err := c.Ping(ctx); err != nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}

	return map[string]interface{}{"status": "healthy"}
}

func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /health/live", h.LivenessCheck)
}
