// Package authority orchestrates node registration, verification, and token
// rotation.
//
// The authority is the only component external collaborators (the HTTP API,
// the admin CLI) call. It composes the identity canonicalizer, the token
// codec, the rotation policy, and the registry; every state invariant is
// enforced by the registry, not here.
package authority

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"helixgate.io/internal/metrics"
	"helixgate.io/internal/registry"
	"helixgate.io/internal/rotation"
	"helixgate.io/models"
	"helixgate.io/pkg/dna"
	"helixgate.io/pkg/identity"
)

// Authority exposes the register/verify/rotate/block operations.
type Authority struct {
	registry    *registry.Registry
	policy      rotation.Policy
	clock       rotation.Clock
	logger      *zap.Logger
	tokenLength int
}

// New creates an Authority.
//
// Parameters:
//   - reg: Registry holding node records
//   - policy: Rotation policy (epoch arithmetic and grace window)
//   - clock: Time source (injectable for tests)
//   - logger: Zap logger for structured logging
//   - tokenLength: Token length in symbols (dna.DefaultLength when zero)
func New(reg *registry.Registry, policy rotation.Policy, clock rotation.Clock, logger *zap.Logger, tokenLength int) *Authority {
	if tokenLength == 0 {
		tokenLength = dna.DefaultLength
	}
	return &Authority{
		registry:    reg,
		policy:      policy,
		clock:       clock,
		logger:      logger,
		tokenLength: tokenLength,
	}
}

// Register derives a token for the presented identity and creates the node's
// registry record.
//
// Returns models.ErrInvalidIdentity for malformed attributes,
// models.ErrAlreadyRegistered for an active duplicate, and
// models.ErrNodeBlocked when the identity maps to a blocked node.
func (a *Authority) Register(ctx context.Context, id identity.NodeIdentity) (*models.RegisterResponse, error) {
	canon, err := id.Canonicalize()
	if err != nil {
		return nil, err
	}
	nodeID, err := id.NodeID()
	if err != nil {
		return nil, err
	}

	now := a.clock.Now()
	epoch := a.policy.EpochOf(now)
	token, err := dna.Encode(identity.Salt(canon, epoch), a.tokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token: %w", err)
	}

	fields := strings.SplitN(string(canon), identity.Delimiter, 3)
	rec := &models.NodeRecord{
		NodeID:       nodeID,
		Addr:         fields[0],
		MAC:          fields[1],
		Hostname:     fields[2],
		CurrentToken: token,
		CurrentEpoch: epoch,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.registry.Register(ctx, rec); err != nil {
		return nil, err
	}
	a.updateNodeGauge()

	return &models.RegisterResponse{
		NodeID:    nodeID,
		Token:     token,
		Epoch:     epoch,
		CreatedAt: now,
	}, nil
}

// Verify checks the token a node presents against its registry record,
// accepting the previous epoch's token while the grace window is open.
func (a *Authority) Verify(ctx context.Context, nodeID, token string) (*models.VerifyResponse, error) {
	now := a.clock.Now()
	epoch := a.policy.EpochOf(now)

	matched, err := a.registry.Verify(ctx, nodeID, token, epoch, now)
	if err != nil {
		a.recordVerification(err)
		return nil, err
	}

	metrics.VerificationsTotal.WithLabelValues(metrics.ResultVerified).Inc()
	return &models.VerifyResponse{
		NodeID:   nodeID,
		Verified: true,
		Epoch:    matched,
	}, nil
}

// RotateAll re-derives tokens for every active record whose epoch is behind
// the current one. Records already at the current epoch are skipped, which
// makes repeated sweeps within one epoch no-ops.
//
// The sweep is best-effort per node: a failure on one record is logged and
// does not stop rotation of the others.
func (a *Authority) RotateAll(ctx context.Context) (*models.RotateResponse, error) {
	now := a.clock.Now()
	epoch := a.policy.EpochOf(now)

	rotated := 0
	for _, rec := range a.registry.Snapshot() {
		if rec.Status != models.StatusActive || rec.CurrentEpoch == epoch {
			continue
		}

		id := identity.NodeIdentity{Addr: rec.Addr, MAC: rec.MAC, Hostname: rec.Hostname}
		canon, err := id.Canonicalize()
		if err != nil {
			a.logger.Error("stored identity failed canonicalization",
				zap.String("node_id", rec.NodeID), zap.Error(err))
			continue
		}
		token, err := dna.Encode(identity.Salt(canon, epoch), a.tokenLength)
		if err != nil {
			a.logger.Error("failed to derive rotated token",
				zap.String("node_id", rec.NodeID), zap.Error(err))
			continue
		}

		if err := a.registry.Rotate(ctx, rec.NodeID, token, epoch, now); err != nil {
			// The node may have been blocked or deregistered since the
			// snapshot was taken.
			if errors.Is(err, models.ErrUnknownNode) {
				continue
			}
			a.logger.Error("rotation failed",
				zap.String("node_id", rec.NodeID), zap.Error(err))
			continue
		}
		rotated++
		metrics.RotationsTotal.Inc()
	}

	a.logger.Info("rotation sweep complete",
		zap.Int("rotated", rotated),
		zap.Int64("epoch", epoch),
	)
	return &models.RotateResponse{Rotated: rotated, Epoch: epoch}, nil
}

// Block transitions a node to blocked by administrative action.
func (a *Authority) Block(ctx context.Context, nodeID string) error {
	if err := a.registry.Block(ctx, nodeID, a.clock.Now()); err != nil {
		return err
	}
	metrics.BlockedNodesTotal.WithLabelValues(metrics.CauseAdmin).Inc()
	a.updateNodeGauge()
	return nil
}

// Unblock returns a blocked node to active.
func (a *Authority) Unblock(ctx context.Context, nodeID string) error {
	if err := a.registry.Unblock(ctx, nodeID, a.clock.Now()); err != nil {
		return err
	}
	a.updateNodeGauge()
	return nil
}

// Deregister removes a node from the registry.
func (a *Authority) Deregister(ctx context.Context, nodeID string) error {
	if err := a.registry.Deregister(ctx, nodeID); err != nil {
		return err
	}
	a.updateNodeGauge()
	return nil
}

// ListNodes returns summaries of every registry record for the admin API.
func (a *Authority) ListNodes(ctx context.Context) (*models.NodeListResponse, error) {
	recs := a.registry.Snapshot()
	nodes := make([]models.NodeSummary, 0, len(recs))
	for _, rec := range recs {
		nodes = append(nodes, models.NodeSummary{
			NodeID:       rec.NodeID,
			Addr:         rec.Addr,
			MAC:          rec.MAC,
			Hostname:     rec.Hostname,
			Status:       rec.Status,
			CurrentEpoch: rec.CurrentEpoch,
			FailedCount:  rec.FailedCount,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return &models.NodeListResponse{Nodes: nodes, Total: len(nodes)}, nil
}

// CurrentEpoch reports the epoch the authority considers current.
func (a *Authority) CurrentEpoch() int64 {
	return a.policy.EpochOf(a.clock.Now())
}

func (a *Authority) recordVerification(err error) {
	switch {
	case errors.Is(err, models.ErrBlocked), errors.Is(err, models.ErrNodeBlocked):
		metrics.VerificationsTotal.WithLabelValues(metrics.ResultBlocked).Inc()
		if errors.Is(err, models.ErrBlocked) {
			metrics.BlockedNodesTotal.WithLabelValues(metrics.CauseThreshold).Inc()
			a.updateNodeGauge()
		}
	case errors.Is(err, models.ErrUnknownNode):
		metrics.VerificationsTotal.WithLabelValues(metrics.ResultUnknown).Inc()
	default:
		metrics.VerificationsTotal.WithLabelValues(metrics.ResultFailed).Inc()
	}
}

func (a *Authority) updateNodeGauge() {
	counts := make(map[models.NodeStatus]int)
	for _, rec := range a.registry.Snapshot() {
		counts[rec.Status]++
	}
	metrics.RegisteredNodes.WithLabelValues(string(models.StatusActive)).Set(float64(counts[models.StatusActive]))
	metrics.RegisteredNodes.WithLabelValues(string(models.StatusBlocked)).Set(float64(counts[models.StatusBlocked]))
}
