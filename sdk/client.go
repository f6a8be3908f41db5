// Package sdk provides a Go client for the HelixGate authority API.
//
// The client covers the node-facing surface (registration and token
// verification) and the administrative surface (listing, rotation sweeps,
// block and unblock). Administrative calls require an admin key in the
// client configuration.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"helixgate.io/models"
)

// Client is the SDK client for interacting with a HelixGate authority.
// When multiple base URLs are configured it fails over in order.
type Client struct {
	// BaseURLs is the list of authority URLs, tried in order.
	BaseURLs []string

	// AdminKey is the key for administrative operations (optional).
	AdminKey string

	// HTTPClient is the HTTP client used for requests.
	HTTPClient *http.Client

	// RetryAttempts is the number of times to retry failed requests.
	RetryAttempts int

	// RetryWaitMin is the minimum wait time between retries.
	RetryWaitMin time.Duration

	// RetryWaitMax is the maximum wait time between retries.
	RetryWaitMax time.Duration
}

// NewClient creates a new SDK client with the given configuration.
func NewClient(config ClientConfig) (*Client, error) {
	// Validate and set defaults
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		BaseURLs:      config.BaseURLs,
		AdminKey:      config.AdminKey,
		HTTPClient:    config.HTTPClient,
		RetryAttempts: config.RetryAttempts,
		RetryWaitMin:  config.RetryWaitMin,
		RetryWaitMax:  config.RetryWaitMax,
	}

	return client, nil
}

// doRequest performs an HTTP request against the authority with failover.
// The body, if any, is rebuilt per instance so retries never see a
// half-consumed reader. authType specifies which authentication headers
// to include.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, authType AuthType) (*http.Response, error) {
	if len(c.BaseURLs) == 0 {
		return nil, ErrNoBaseURLs
	}

	var lastErr error

	for _, baseURL := range c.BaseURLs {
		fullURL := fmt.Sprintf("%s%s", baseURL, path)

		var reader *bytes.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		// Add authentication headers
		if err := c.addAuthHeaders(req, authType); err != nil {
			return nil, err
		}

		// Set common headers
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		// Perform request with retry logic
		resp, err := c.doRequestWithRetry(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}

		return resp, nil
	}

	// All instances failed
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllInstancesFailed, lastErr)
	}

	return nil, ErrAllInstancesFailed
}

// decodeResponse decodes a JSON success body or maps an error status to a
// sentinel SDK error. out may be nil when the caller does not need the body.
func decodeResponse(resp *http.Response, wantStatus int, out interface{}) error {
	defer drainAndCloseBody(resp)

	if resp.StatusCode != wantStatus {
		return mapStatusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// mapStatusError converts a non-success response to a sentinel error,
// wrapping the server's error code when one is present.
func mapStatusError(resp *http.Response) error {
	var envelope errorEnvelope
	// Decode errors are ignored; the status code alone determines the sentinel.
	_ = json.NewDecoder(resp.Body).Decode(&envelope)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrBlocked
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	default:
		sentinel = ErrServerError
	}

	if envelope.Error != "" {
		return fmt.Errorf("%w: %s", sentinel, envelope.Error)
	}
	return fmt.Errorf("%w: status code %d", sentinel, resp.StatusCode)
}

// Register registers a node identity with the authority.
//
// On success the response carries the node ID and the token derived for
// the current epoch. This is the only call that ever returns a token.
//
// Parameters:
//   - ctx: Context for cancellation
//   - req: The node's identity attributes
//
// Returns:
//   - *models.RegisterResponse: Node ID, token, and epoch
//   - error: ErrConflict if already registered, ErrBlocked if the identity
//     maps to a blocked node, ErrBadRequest for malformed attributes
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/nodes/register", body, AuthTypeNone)
	if err != nil {
		return nil, err
	}

	var out models.RegisterResponse
	if err := decodeResponse(resp, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify presents a node-derived token to the authority.
//
// Parameters:
//   - ctx: Context for cancellation
//   - nodeID: The node's stable identifier
//   - token: The token the node derived for the current epoch
//
// Returns:
//   - *models.VerifyResponse: The epoch the token matched
//   - error: ErrUnauthorized on mismatch, ErrBlocked for blocked nodes,
//     ErrNotFound for unknown node IDs
func (c *Client) Verify(ctx context.Context, nodeID, token string) (*models.VerifyResponse, error) {
	body, err := json.Marshal(models.VerifyRequest{NodeID: nodeID, Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/nodes/verify", body, AuthTypeNone)
	if err != nil {
		return nil, err
	}

	var out models.VerifyResponse
	if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNodes returns summaries of every registered node. Requires admin auth.
func (c *Client) ListNodes(ctx context.Context) (*models.NodeListResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/admin/nodes", nil, AuthTypeAdmin)
	if err != nil {
		return nil, err
	}

	var out models.NodeListResponse
	if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RotateAll runs a rotation sweep on the authority. Requires admin auth.
//
// Returns the number of rotated nodes and the epoch rotated to. Repeating
// the call within one epoch is a no-op and reports zero rotations.
func (c *Client) RotateAll(ctx context.Context) (*models.RotateResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/admin/rotate", nil, AuthTypeAdmin)
	if err != nil {
		return nil, err
	}

	var out models.RotateResponse
	if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BlockNode blocks a node by administrative action. Requires admin auth.
func (c *Client) BlockNode(ctx context.Context, nodeID string) error {
	path := fmt.Sprintf("/api/v1/admin/nodes/%s/block", nodeID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, AuthTypeAdmin)
	if err != nil {
		return err
	}
	return decodeResponse(resp, http.StatusOK, nil)
}

// UnblockNode returns a blocked node to active. Requires admin auth.
//
// Returns ErrConflict if the node is not blocked.
func (c *Client) UnblockNode(ctx context.Context, nodeID string) error {
	path := fmt.Sprintf("/api/v1/admin/nodes/%s/unblock", nodeID)
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, AuthTypeAdmin)
	if err != nil {
		return err
	}
	return decodeResponse(resp, http.StatusOK, nil)
}

// DeregisterNode removes a node's record entirely. Requires admin auth.
func (c *Client) DeregisterNode(ctx context.Context, nodeID string) error {
	path := fmt.Sprintf("/api/v1/admin/nodes/%s", nodeID)
	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil, AuthTypeAdmin)
	if err != nil {
		return err
	}
	return decodeResponse(resp, http.StatusOK, nil)
}

// Health checks the authority's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health/live", nil, AuthTypeNone)
	if err != nil {
		return err
	}
	return decodeResponse(resp, http.StatusOK, nil)
}
