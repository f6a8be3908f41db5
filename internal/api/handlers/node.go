package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"helixgate.io/internal/authority"
	"helixgate.io/internal/logging"
	"helixgate.io/internal/util"
	"helixgate.io/models"
	"helixgate.io/pkg/identity"
)

// NodeHandler handles node registration and verification endpoints.
type NodeHandler struct {
	authority *authority.Authority
}

// NewNodeHandler creates a new node handler.
//
// Parameters:
//   - auth: The authority orchestrating registration and verification
func NewNodeHandler(auth *authority.Authority) *NodeHandler {
	return &NodeHandler{authority: auth}
}

// Register handles POST /api/v1/nodes/register.
//
// This endpoint:
// - Validates the identity attributes in the request body
// - Derives the node's token for the current epoch
// - Creates the registry record
// - Returns the node ID and token
//
// This is the only response that ever carries a token the authority derived.
//
// Returns:
//   - 201 Created with the node ID, token, and epoch
//   - 400 Bad Request for malformed identity attributes
//   - 403 Forbidden when the identity maps to a blocked node
//   - 409 Conflict when the node is already registered
func (h *NodeHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")
		return
	}

	resp, err := h.authority.Register(c.Request.Context(), identity.NodeIdentity{
		Addr:     req.Addr,
		MAC:      req.MAC,
		Hostname: req.Hostname,
	})
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	c.Set("node_id", resp.NodeID)
	logging.Info(c.Request.Context(), "node registered",
		zap.String(logging.FieldNodeID, resp.NodeID),
		zap.Int64(logging.FieldEpoch, resp.Epoch),
	)

	c.JSON(http.StatusCreated, resp)
}

// Verify handles POST /api/v1/nodes/verify.
//
// The node derives its own token from its identity and the current epoch
// and presents it here together with its node ID. The authority compares
// it against the registry record, accepting the previous epoch's token
// while the grace window is open.
//
// Returns:
//   - 200 OK when the token matches
//   - 400 Bad Request for a malformed body or node ID
//   - 401 Unauthorized when the token does not match
//   - 403 Forbidden when the node is blocked
//   - 404 Not Found for an unknown node ID
func (h *NodeHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")
		return
	}
	if err := util.ValidateNodeID(req.NodeID); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request parameters")
		return
	}

	c.Set("node_id", req.NodeID)

	resp, err := h.authority.Verify(c.Request.Context(), req.NodeID, req.Token)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
