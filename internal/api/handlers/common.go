// Package handlers provides HTTP handlers for the HelixGate REST API.
//
// This package implements request handlers for all API endpoints including
// health checks, node registration and verification, and the administrative
// node management surface.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"helixgate.io/models"
)

// respondError sends a standardized error response.
//
// This function ensures all error responses follow the same format and
// use generic error messages to prevent information disclosure.
//
// Parameters:
//   - c: Gin context
//   - statusCode: HTTP status code
//   - errorCode: Error code string (e.g., "unauthorized")
//   - message: Human-readable error message
func respondError(c *gin.Context, statusCode int, errorCode string, message string) {
	requestID := ""
	if val, exists := c.Get("request_id"); exists {
		if id, ok := val.(string); ok {
			requestID = id
		}
	}

	c.JSON(statusCode, models.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestID: requestID,
	})
}

// respondSuccessMessage sends a standardized success response with a message.
//
// Parameters:
//   - c: Gin context
//   - statusCode: HTTP status code
//   - message: Success message
func respondSuccessMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.SuccessResponse{
		Message: message,
	})
}

// mapErrorToResponse converts a models package error to an HTTP response.
//
// This function maps domain errors (from the models package) to appropriate
// HTTP status codes and error responses. It uses generic error messages to
// prevent information disclosure that could aid attackers.
//
// Parameters:
//   - c: Gin context
//   - err: Error from models package or other source
func mapErrorToResponse(c *gin.Context, err error) {
	switch {
	// 404 Not Found errors
	case errors.Is(err, models.ErrUnknownNode):
		respondError(c, http.StatusNotFound, "unknown_node", "Node not found")

	// 401 Unauthorized errors
	case errors.Is(err, models.ErrVerificationFailed):
		// Generic message to prevent token probing
		respondError(c, http.StatusUnauthorized, "verification_failed", "Verification failed")

	case errors.Is(err, models.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "unauthorized", "Authentication failed")

	// 403 Forbidden errors
	case errors.Is(err, models.ErrBlocked), errors.Is(err, models.ErrNodeBlocked):
		respondError(c, http.StatusForbidden, "node_blocked", "Node is blocked")

	// 400 Bad Request errors
	case errors.Is(err, models.ErrInvalidIdentity), errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrInvalidLength), errors.Is(err, models.ErrEmptyInput):
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")

	// 409 Conflict errors
	case errors.Is(err, models.ErrAlreadyRegistered):
		respondError(c, http.StatusConflict, "already_registered", "Node already registered")

	case errors.Is(err, models.ErrNotBlocked):
		respondError(c, http.StatusConflict, "not_blocked", "Node is not blocked")

	// 429 Rate Limit errors
	case errors.Is(err, models.ErrRateLimitExceeded):
		respondError(c, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded")

	// 500 Internal Server Error
	case errors.Is(err, models.ErrStoreFailure), errors.Is(err, models.ErrInternalError):
		respondError(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")

	default:
		// Unknown error - log internally but return generic message
		respondError(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}
