package models

import "time"

// NodeStatus describes the lifecycle state of a registered node.
type NodeStatus string

const (
	// StatusActive means the node is registered and may verify.
	StatusActive NodeStatus = "active"

	// StatusBlocked means the node has been blocked, either by exceeding
	// the verification failure threshold or by administrative action.
	// A blocked node is rejected until explicitly unblocked.
	StatusBlocked NodeStatus = "blocked"

	// StatusUnknown is reported for node IDs the authority has no record of.
	StatusUnknown NodeStatus = "unknown"
)

// NodeRecord is the authority's durable state for one registered node.
//
// The record is owned exclusively by the registry: the current token is
// always the codec output for (identity, current epoch) at the time of the
// last registration or rotation, never hand-edited.
type NodeRecord struct {
	// NodeID is the stable node key: the hex SHA-256 of the node's
	// canonical identity bytes.
	NodeID string `json:"node_id" db:"node_id"`

	// Addr is the node's normalized network address (IPv4).
	Addr string `json:"addr" db:"addr"`

	// MAC is the node's normalized hardware identifier.
	MAC string `json:"mac" db:"mac"`

	// Hostname is the node's normalized hostname.
	Hostname string `json:"hostname" db:"hostname"`

	// CurrentToken is the ACTG token valid for CurrentEpoch.
	CurrentToken string `json:"-" db:"current_token"`

	// CurrentEpoch is the rotation epoch CurrentToken was derived for.
	CurrentEpoch int64 `json:"current_epoch" db:"current_epoch"`

	// PreviousToken is the token from the epoch before the last rotation.
	// Retained only while the grace window is open; empty otherwise.
	PreviousToken string `json:"-" db:"previous_token"`

	// PreviousIssuedAt is the instant of the rotation that demoted
	// PreviousToken. Zero unless PreviousToken is set. The grace window
	// is measured from this instant.
	PreviousIssuedAt time.Time `json:"-" db:"previous_issued_at"`

	// Status is the node's lifecycle state.
	Status NodeStatus `json:"status" db:"status"`

	// FailedCount is the number of consecutive failed verifications.
	// Reset to zero on every successful verification.
	FailedCount int `json:"failed_count" db:"failed_count"`

	// CreatedAt is the timestamp of first registration.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the last state change.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the record. The registry hands out clones so
// callers can never mutate registry-owned state.
func (r *NodeRecord) Clone() *NodeRecord {
	c := *r
	return &c
}

// RegisterRequest is the payload for registering a node.
type RegisterRequest struct {
	// Addr is the node's IPv4 address (required).
	Addr string `json:"addr" binding:"required"`

	// MAC is the node's hardware address (required).
	// Accepted forms: aa:bb:cc:dd:ee:ff, aabb.ccdd.eeff, or 12 hex digits.
	MAC string `json:"mac" binding:"required"`

	// Hostname is the node's hostname (required, 1-255 characters).
	Hostname string `json:"hostname" binding:"required,min=1,max=255"`
}

// RegisterResponse is returned after a successful registration.
// This is the only time the authority returns a token it derived.
type RegisterResponse struct {
	// NodeID is the stable identifier for this node.
	NodeID string `json:"node_id"`

	// Token is the ACTG token for the current epoch.
	Token string `json:"token"`

	// Epoch is the rotation epoch the token was derived for.
	Epoch int64 `json:"epoch"`

	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// VerifyRequest is the payload for verifying a node's token.
type VerifyRequest struct {
	// NodeID is the stable node identifier returned at registration.
	NodeID string `json:"node_id" binding:"required"`

	// Token is the ACTG token the node derived for itself.
	Token string `json:"token" binding:"required"`
}

// VerifyResponse is returned when verification succeeds.
type VerifyResponse struct {
	// NodeID is the verified node's identifier.
	NodeID string `json:"node_id"`

	// Verified is always true in a success response.
	Verified bool `json:"verified"`

	// Epoch is the epoch the presented token matched (the record's
	// current epoch, or the previous one during the grace window).
	Epoch int64 `json:"epoch"`
}

// RotateResponse is returned after a rotate-all sweep.
type RotateResponse struct {
	// Rotated is the number of records that received a new token.
	Rotated int `json:"rotated"`

	// Epoch is the epoch the sweep rotated records to.
	Epoch int64 `json:"epoch"`
}

// NodeSummary represents a node in admin list responses (no token material).
type NodeSummary struct {
	// NodeID is the stable node identifier.
	NodeID string `json:"node_id"`

	// Addr is the node's normalized address.
	Addr string `json:"addr"`

	// MAC is the node's normalized hardware identifier.
	MAC string `json:"mac"`

	// Hostname is the node's normalized hostname.
	Hostname string `json:"hostname"`

	// Status is the node's lifecycle state.
	Status NodeStatus `json:"status"`

	// CurrentEpoch is the epoch of the node's current token.
	CurrentEpoch int64 `json:"current_epoch"`

	// FailedCount is the consecutive failed verification count.
	FailedCount int `json:"failed_count"`

	// CreatedAt is the timestamp of first registration.
	CreatedAt time.Time `json:"created_at"`
}

// NodeListResponse is the admin listing payload.
type NodeListResponse struct {
	// Nodes is the list of registered nodes.
	Nodes []NodeSummary `json:"nodes"`

	// Total is the number of records in the registry.
	Total int `json:"total"`
}
