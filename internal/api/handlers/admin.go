package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helixgate.io/internal/authority"
	"helixgate.io/internal/logging"
	"helixgate.io/internal/util"
)

// AdminHandler handles the administrative node management endpoints.
//
// All routes served by this handler sit behind the admin key middleware.
type AdminHandler struct {
	authority *authority.Authority
}

// NewAdminHandler creates a new admin handler.
//
// Parameters:
//   - auth: The authority orchestrating node state transitions
func NewAdminHandler(auth *authority.Authority) *AdminHandler {
	return &AdminHandler{authority: auth}
}

// ListNodes handles GET /api/v1/admin/nodes.
//
// Returns summaries of every registered node. Token material is never
// included in the listing.
func (h *AdminHandler) ListNodes(c *gin.Context) {
	resp, err := h.authority.ListNodes(c.Request.Context())
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Rotate handles POST /api/v1/admin/rotate.
//
// Runs a rotation sweep: every active node whose token epoch is behind the
// current one gets a freshly derived token, with the demoted token kept
// for the grace window. Repeating the sweep within one epoch is a no-op.
//
// Returns:
//   - 200 OK with the number of rotated nodes and the target epoch
func (h *AdminHandler) Rotate(c *gin.Context) {
	resp, err := h.authority.RotateAll(c.Request.Context())
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	logging.Info(c.Request.Context(), "rotation sweep requested",
		zap.Int("rotated", resp.Rotated),
		zap.Int64(logging.FieldEpoch, resp.Epoch),
	)

	c.JSON(http.StatusOK, resp)
}

// BlockNode handles POST /api/v1/admin/nodes/:node_id/block.
//
// Returns:
//   - 200 OK when the node is blocked (idempotent for already-blocked nodes)
//   - 400 Bad Request for a malformed node ID
//   - 404 Not Found for an unknown node ID
func (h *AdminHandler) BlockNode(c *gin.Context) {
	nodeID := c.Param("node_id")
	if err := util.ValidateNodeID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")
		return
	}

	c.Set("node_id", nodeID)

	if err := h.authority.Block(c.Request.Context(), nodeID); err != nil {
		mapErrorToResponse(c, err)
		return
	}

	respondSuccessMessage(c, http.StatusOK, "node blocked")
}

// UnblockNode handles POST /api/v1/admin/nodes/:node_id/unblock.
//
// Unblocking resets the failure counter and returns the node to active.
//
// Returns:
//   - 200 OK when the node is returned to active
//   - 400 Bad Request for a malformed node ID
//   - 404 Not Found for an unknown node ID
//   - 409 Conflict when the node is not blocked
func (h *AdminHandler) UnblockNode(c *gin.Context) {
	nodeID := c.Param("node_id")
	if err := util.ValidateNodeID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")
		return
	}

	c.Set("node_id", nodeID)

	if err := h.authority.Unblock(c.Request.Context(), nodeID); err != nil {
		mapErrorToResponse(c, err)
		return
	}

	respondSuccessMessage(c, http.StatusOK, "node unblocked")
}

// DeleteNode handles DELETE /api/v1/admin/nodes/:node_id.
//
// Removes the node's record entirely. The identity may register again
// afterwards as a brand-new node.
//
// Returns:
//   - 200 OK when the node is removed
//   - 400 Bad Request for a malformed node ID
//   - 404 Not Found for an unknown node ID
func (h *AdminHandler) DeleteNode(c *gin.Context) {
	nodeID := c.Param("node_id")
	if err := util.ValidateNodeID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")
		return
	}

	c.Set("node_id", nodeID)

	if err := h.authority.Deregister(c.Request.Context(), nodeID); err != nil {
		mapErrorToResponse(c, err)
		return
	}

	respondSuccessMessage(c, http.StatusOK, "node deregistered")
}
