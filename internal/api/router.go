// Package api assembles the HelixGate HTTP surface.
package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"helixgate.io/internal/api/handlers"
	"helixgate.io/internal/api/middleware"
	"helixgate.io/internal/authority"
	"helixgate.io/internal/metrics"
)

// RouterConfig holds configuration for setting up the HTTP router.
type RouterConfig struct {
	// Authority is the node authority serving all domain operations.
	Authority *authority.Authority

	// DB is the database connection, used by readiness checks.
	DB *sql.DB

	// Logger is the Zap logger for request logging.
	Logger *zap.Logger

	// AdminKeyHash is the bcrypt hash of the admin API key.
	AdminKeyHash []byte

	// InstanceID is this authority instance's UUID.
	InstanceID string

	// AllowOrigins is the list of allowed CORS origins.
	// Use []string{"*"} to allow all origins (not recommended for production).
	AllowOrigins []string
}

// SetupRouter creates and configures the Gin HTTP router with all routes and middleware.
//
// This function sets up:
// - Global middleware (metrics, logging, CORS, rate limiting)
// - Health check endpoints (no auth required)
// - Node registration and verification endpoints
// - Administrative endpoints (admin key auth)
//
// Parameters:
//   - config: Router configuration
//
// Returns:
//   - Configured Gin engine ready to serve requests
func SetupRouter(config *RouterConfig) *gin.Engine {
	// Create router
	router := gin.New()

	// Recovery middleware (recover from panics)
	router.Use(gin.Recovery())

	// Metrics middleware (should be early to capture all requests)
	router.Use(middleware.MetricsMiddleware())

	// Request logging middleware
	router.Use(middleware.RequestLogger(config.Logger))

	// CORS middleware
	if len(config.AllowOrigins) > 0 {
		router.Use(middleware.CORS(config.AllowOrigins))
	}

	// Global rate limiting by IP (applies to all endpoints)
	router.Use(middleware.RateLimitByIP(100.0, 200)) // 100 req/s per IP

	// Handlers
	nodeHandler := handlers.NewNodeHandler(config.Authority)
	adminHandler := handlers.NewAdminHandler(config.Authority)
	healthHandler := handlers.NewHealthHandler(config.DB, config.InstanceID)

	// Metrics endpoint (no authentication required)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		metrics.Registry,
		promhttp.HandlerOpts{},
	)))

	// Health check routes (no authentication required)
	router.GET("/health", healthHandler.Status)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Liveness)
		health.GET("/ready", healthHandler.Readiness)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Node-facing endpoints: registration and verification.
	// Tighter per-IP limit than the global one so one host cannot burn
	// through the failure threshold of many nodes at once.
	nodes := v1.Group("/nodes")
	nodes.Use(middleware.RateLimitByIP(20.0, 40))
	{
		// POST /api/v1/nodes/register - Register a node and issue its token
		nodes.POST("/register", nodeHandler.Register)

		// POST /api/v1/nodes/verify - Verify a node-derived token
		nodes.POST("/verify", nodeHandler.Verify)
	}

	// Administrative endpoints (admin key required)
	authConfig := &middleware.AuthConfig{AdminKeyHash: config.AdminKeyHash}

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAdminKey(authConfig))
	{
		// GET /api/v1/admin/nodes - List registered nodes
		admin.GET("/nodes", adminHandler.ListNodes)

		// POST /api/v1/admin/rotate - Run a rotation sweep
		admin.POST("/rotate", adminHandler.Rotate)

		// POST /api/v1/admin/nodes/:node_id/block - Block a node
		admin.POST("/nodes/:node_id/block", adminHandler.BlockNode)

		// POST /api/v1/admin/nodes/:node_id/unblock - Unblock a node
		admin.POST("/nodes/:node_id/unblock", adminHandler.UnblockNode)

		// DELETE /api/v1/admin/nodes/:node_id - Deregister a node
		admin.DELETE("/nodes/:node_id", adminHandler.DeleteNode)
	}

	return router
}
