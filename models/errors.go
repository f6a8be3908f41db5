package models

import "errors"

// Common error types used throughout the HelixGate application.
// These errors provide semantic meaning and enable consistent error handling
// across different layers (API, authority, registry, store).

var (
	// ErrEmptyInput indicates the token codec was given no input bytes.
	// HTTP equivalent: 400 Bad Request
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidLength indicates a requested token length below 1.
	// HTTP equivalent: 400 Bad Request
	ErrInvalidLength = errors.New("invalid token length")

	// ErrInvalidIdentity indicates malformed node identity attributes
	// (bad address or MAC format, or an attribute containing the
	// canonical delimiter).
	// HTTP equivalent: 400 Bad Request
	ErrInvalidIdentity = errors.New("invalid node identity")

	// ErrInvalidRequest indicates the request body or parameters are invalid.
	// HTTP equivalent: 400 Bad Request
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAlreadyRegistered indicates a registration attempt for a node
	// that already holds an active record.
	// HTTP equivalent: 409 Conflict
	ErrAlreadyRegistered = errors.New("node already registered")

	// ErrNotBlocked indicates an unblock attempt on a node that is not blocked.
	// HTTP equivalent: 409 Conflict
	ErrNotBlocked = errors.New("node is not blocked")

	// ErrUnknownNode indicates the node ID has no registry record.
	// HTTP equivalent: 404 Not Found
	ErrUnknownNode = errors.New("unknown node")

	// ErrVerificationFailed indicates the presented token did not match the
	// current token or the grace-window previous token.
	// HTTP equivalent: 401 Unauthorized
	ErrVerificationFailed = errors.New("verification failed")

	// ErrBlocked indicates this verification failure crossed the failure
	// threshold and transitioned the node to blocked.
	// HTTP equivalent: 403 Forbidden
	ErrBlocked = errors.New("node blocked by failure threshold")

	// ErrNodeBlocked indicates the node is blocked and the operation was
	// rejected without examining the presented token.
	// HTTP equivalent: 403 Forbidden
	ErrNodeBlocked = errors.New("node is blocked")

	// ErrUnauthorized indicates the request lacks valid admin credentials.
	// HTTP equivalent: 401 Unauthorized
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimitExceeded indicates too many requests from this client.
	// HTTP equivalent: 429 Too Many Requests
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrStoreFailure indicates the persistent store rejected a write or
	// read. Propagated unchanged; the registry never retries store I/O.
	// HTTP equivalent: 500 Internal Server Error
	ErrStoreFailure = errors.New("store failure")

	// ErrInternalError indicates an unexpected server-side error.
	// HTTP equivalent: 500 Internal Server Error
	ErrInternalError = errors.New("internal server error")
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	// Error is the error code (e.g., "unauthorized", "unknown_node").
	Error string `json:"error"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// RequestID is the unique request ID for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse represents a generic success response for operations
// that don't return a specific resource.
type SuccessResponse struct {
	// Message is a human-readable success message.
	Message string `json:"message"`
}

// HealthResponse represents the response for health check endpoints.
type HealthResponse struct {
	// Status indicates the service health ("ok" or "degraded").
	Status string `json:"status"`

	// Timestamp is the current server time.
	Timestamp string `json:"timestamp,omitempty"`
}
