package sdk

import "net/http"

// HeaderAdminKey is the header name for admin authentication,
// matching the server expectation.
const HeaderAdminKey = "X-HelixGate-Admin-Key"

// AuthType represents the type of authentication to use for a request.
type AuthType int

const (
	// AuthTypeNone indicates no authentication headers should be added.
	AuthTypeNone AuthType = iota

	// AuthTypeAdmin indicates admin key authentication should be used.
	AuthTypeAdmin
)

// addAuthHeaders adds the appropriate authentication headers to the request based on the auth type.
// Returns an error if the required credentials are not available.
func (c *Client) addAuthHeaders(req *http.Request, authType AuthType) error {
	switch authType {
	case AuthTypeAdmin:
		if c.AdminKey == "" {
			return ErrMissingAuth
		}
		req.Header.Set(HeaderAdminKey, c.AdminKey)
	case AuthTypeNone:
		// No authentication required
	}

	return nil
}
