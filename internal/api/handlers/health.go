package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"helixgate.io/models"
)

// HealthHandler handles health check endpoints.
//
// This handler provides liveness and readiness checks for Kubernetes and
// load balancer health monitoring.
type HealthHandler struct {
	db         *sql.DB
	instanceID string
}

// NewHealthHandler creates a new health check handler.
//
// Parameters:
//   - db: Database connection for readiness checks
//   - instanceID: This authority instance's UUID
func NewHealthHandler(db *sql.DB, instanceID string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		instanceID: instanceID,
	}
}

// LivenessResponse represents the liveness probe response.
type LivenessResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
}

// ReadinessResponse represents the readiness probe response.
type ReadinessResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
	Database   string `json:"database"`
}

// Liveness handles GET /health/live for Kubernetes liveness probes.
//
// This endpoint always returns 200 OK as long as the HTTP server is running.
// It indicates that the process is alive and can accept requests.
//
// Response: 200 OK with JSON body {"status": "ok", "instance_id": "uuid"}
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:     "ok",
		InstanceID: h.instanceID,
	})
}

// Readiness handles GET /health/ready for Kubernetes readiness probes.
//
// This endpoint checks if the instance is ready to serve traffic by:
// - Verifying database connectivity with a simple ping
//
// Returns:
//   - 200 OK if ready to serve traffic
//   - 503 Service Unavailable if not ready (database unreachable)
func (h *HealthHandler) Readiness(c *gin.Context) {
	// Check database connectivity
	if err := h.db.Ping(); err != nil {
		respondError(c, http.StatusServiceUnavailable, "unhealthy", "Database unavailable")
		return
	}

	c.JSON(http.StatusOK, ReadinessResponse{
		Status:     "ready",
		InstanceID: h.instanceID,
		Database:   "connected",
	})
}

// Status handles GET /health for a plain service health summary.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
