package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// HeaderAdminKey is the header name for admin key authentication.
const HeaderAdminKey = "X-HelixGate-Admin-Key"

// AuthConfig holds configuration for authentication middleware.
type AuthConfig struct {
	// AdminKeyHash is the bcrypt hash of the admin API key.
	AdminKeyHash []byte
}

// HashAdminKey produces the bcrypt hash of an admin key for AuthConfig.
//
// Parameters:
//   - key: The plaintext admin key
//
// Returns:
//   - []byte: The bcrypt hash
//   - error: An error if hashing fails
func HashAdminKey(key string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
}

// respondAuthError sends an authentication error response.
//
// This uses a generic error message to prevent information disclosure
// that could aid attackers in key enumeration.
func respondAuthError(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "Authentication failed",
	})
	c.Abort()
}

// RequireAdminKey creates middleware that requires admin key authentication.
//
// This middleware:
// - Extracts the admin key from the X-HelixGate-Admin-Key header
// - Compares it against the configured bcrypt hash
// - Rejects the request with 401 on any mismatch
//
// Usage: For administrative endpoints (node listing, rotation sweeps,
// block/unblock, deregistration).
//
// Parameters:
//   - config: Authentication configuration
//
// Returns:
//   - Gin middleware handler function
func RequireAdminKey(config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderAdminKey)
		if provided == "" {
			respondAuthError(c)
			return
		}

		// bcrypt comparison is constant time over the hash
		if err := bcrypt.CompareHashAndPassword(config.AdminKeyHash, []byte(provided)); err != nil {
			respondAuthError(c)
			return
		}

		c.Next()
	}
}
