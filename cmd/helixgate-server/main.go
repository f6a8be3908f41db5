// Package main provides the HelixGate authority server.
//
// This is the main entrypoint for the helixgate-server binary which runs
// the node authentication authority: token issuance, verification, and
// epoch rotation over an HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"helixgate.io/internal/api"
	"helixgate.io/internal/api/middleware"
	"helixgate.io/internal/authority"
	"helixgate.io/internal/logging"
	"helixgate.io/internal/metrics"
	"helixgate.io/internal/registry"
	"helixgate.io/internal/rotation"
	"helixgate.io/internal/store"
	"helixgate.io/pkg/dna"
)

// Config holds server configuration from flags and environment variables.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080").
	ListenAddr string

	// DatabasePath is the path to the SQLite database file.
	DatabasePath string

	// AdminKey is the key required on administrative endpoints.
	AdminKey string

	// InstanceID is this authority instance's UUID.
	InstanceID string

	// TokenLength is the token length in symbols.
	TokenLength int

	// RotationPeriod is the duration of one rotation epoch.
	RotationPeriod time.Duration

	// GraceWindow is how long a demoted token remains valid after rotation.
	GraceWindow time.Duration

	// Reference is the RFC 3339 instant epoch zero begins at.
	Reference string

	// FailureThreshold is the consecutive-failure count that blocks a node.
	FailureThreshold int

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string

	// LogFormat is the log format (json, console).
	LogFormat string

	// AllowOrigins is comma-separated list of allowed CORS origins.
	AllowOrigins string
}

// parseFlags parses command-line flags and environment variables.
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ListenAddr, "listen", getEnv("HELIXGATE_LISTEN_ADDR", ":8080"),
		"Address to listen on")
	flag.StringVar(&config.DatabasePath, "db", getEnv("HELIXGATE_DB_PATH", "./helixgate.db"),
		"Path to SQLite database file")
	flag.StringVar(&config.AdminKey, "admin-key", getEnv("HELIXGATE_ADMIN_KEY", ""),
		"Admin API key (required, min 16 bytes)")
	flag.StringVar(&config.InstanceID, "instance-id", getEnv("HELIXGATE_INSTANCE_ID", ""),
		"Authority instance UUID (auto-generated if not provided)")
	flag.IntVar(&config.TokenLength, "token-length", getEnvInt("HELIXGATE_TOKEN_LENGTH", dna.DefaultLength),
		"Token length in symbols")
	flag.DurationVar(&config.RotationPeriod, "rotation-period", getEnvDuration("HELIXGATE_ROTATION_PERIOD", rotation.DefaultPeriod),
		"Duration of one rotation epoch")
	flag.DurationVar(&config.GraceWindow, "grace-window", getEnvDuration("HELIXGATE_GRACE_WINDOW", rotation.DefaultPeriod),
		"How long the previous token stays valid after rotation")
	flag.StringVar(&config.Reference, "reference", getEnv("HELIXGATE_REFERENCE", "2025-01-01T00:00:00Z"),
		"RFC 3339 instant epoch zero begins at")
	flag.IntVar(&config.FailureThreshold, "failure-threshold", getEnvInt("HELIXGATE_FAILURE_THRESHOLD", 5),
		"Consecutive verification failures before a node is blocked")
	flag.StringVar(&config.LogLevel, "log-level", getEnv("HELIXGATE_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	flag.StringVar(&config.LogFormat, "log-format", getEnv("HELIXGATE_LOG_FORMAT", "console"),
		"Log format (json, console)")
	flag.StringVar(&config.AllowOrigins, "cors-origins", getEnv("HELIXGATE_CORS_ORIGINS", ""),
		"Comma-separated list of allowed CORS origins (* for all)")

	flag.Parse()

	return config
}

// getEnv retrieves an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// validateConfig validates the server configuration.
func validateConfig(config *Config) (time.Time, error) {
	if config.AdminKey == "" {
		return time.Time{}, fmt.Errorf("admin key is required (set HELIXGATE_ADMIN_KEY or use -admin-key flag)")
	}
	if len(config.AdminKey) < 16 {
		return time.Time{}, fmt.Errorf("admin key must be at least 16 bytes (got %d)", len(config.AdminKey))
	}

	if config.TokenLength < 1 {
		return time.Time{}, fmt.Errorf("token length must be at least 1 (got %d)", config.TokenLength)
	}
	if config.RotationPeriod <= 0 {
		return time.Time{}, fmt.Errorf("rotation period must be positive (got %s)", config.RotationPeriod)
	}
	if config.GraceWindow < 0 {
		return time.Time{}, fmt.Errorf("grace window must not be negative (got %s)", config.GraceWindow)
	}
	if config.FailureThreshold < 1 {
		return time.Time{}, fmt.Errorf("failure threshold must be at least 1 (got %d)", config.FailureThreshold)
	}

	reference, err := time.Parse(time.RFC3339, config.Reference)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference instant: %w", err)
	}

	// Generate instance ID if not provided
	if config.InstanceID == "" {
		config.InstanceID = uuid.New().String()
	}

	// Validate instance ID format
	if _, err := uuid.Parse(config.InstanceID); err != nil {
		return time.Time{}, fmt.Errorf("invalid instance ID format: %w", err)
	}

	return reference, nil
}

// parseCORSOrigins parses the comma-separated CORS origins string.
func parseCORSOrigins(origins string) []string {
	if origins == "" {
		return nil
	}

	var result []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			result = append(result, origin)
		}
	}

	return result
}

func main() {
	// Parse configuration
	config := parseFlags()

	// Validate configuration
	reference, err := validateConfig(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.New(config.LogLevel, config.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting helixgate-server",
		zap.String("version", "0.1.0"),
		zap.String("instance_id", config.InstanceID),
		zap.String("listen_addr", config.ListenAddr),
		zap.String("log_level", config.LogLevel),
		zap.Duration("rotation_period", config.RotationPeriod),
		zap.Duration("grace_window", config.GraceWindow),
	)

	// Initialize metrics
	metrics.MustInit()

	// Open persistent store
	nodeStore, err := store.Open(config.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer nodeStore.Close()

	// Build the registry and restore persisted records
	reg := registry.New(nodeStore, logger, registry.Config{
		FailureThreshold: config.FailureThreshold,
		GraceWindow:      config.GraceWindow,
	})
	if err := reg.Load(context.Background()); err != nil {
		logger.Fatal("failed to load registry", zap.Error(err))
	}

	// Assemble the authority
	policy := rotation.Policy{
		Reference: reference,
		Period:    config.RotationPeriod,
		Grace:     config.GraceWindow,
	}
	if err := policy.Validate(); err != nil {
		logger.Fatal("invalid rotation policy", zap.Error(err))
	}
	auth := authority.New(reg, policy, rotation.SystemClock(), logger, config.TokenLength)

	// Hash the admin key once at startup
	adminKeyHash, err := middleware.HashAdminKey(config.AdminKey)
	if err != nil {
		logger.Fatal("failed to hash admin key", zap.Error(err))
	}

	// Setup HTTP router
	router := api.SetupRouter(&api.RouterConfig{
		Authority:    auth,
		DB:           nodeStore.DB(),
		Logger:       logger,
		AdminKeyHash: adminKeyHash,
		InstanceID:   config.InstanceID,
		AllowOrigins: parseCORSOrigins(config.AllowOrigins),
	})

	// Start HTTP server
	logger.Info("server listening", zap.String("addr", config.ListenAddr))
	if err := router.Run(config.ListenAddr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
