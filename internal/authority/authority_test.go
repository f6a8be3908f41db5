package authority

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"helixgate.io/internal/registry"
	"helixgate.io/internal/rotation"
	"helixgate.io/models"
	"helixgate.io/pkg/dna"
	"helixgate.io/pkg/identity"
)

// fakeClock is a settable time source for simulating epoch boundaries.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is a minimal in-memory registry store.
type memStore struct {
	mu      sync.Mutex
	records map[string]*models.NodeRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*models.NodeRecord)}
}

func (s *memStore) Load(ctx context.Context) ([]*models.NodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.NodeRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (s *memStore) Put(ctx context.Context, rec *models.NodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.NodeID] = rec.Clone()
	return nil
}

func (s *memStore) Delete(ctx context.Context, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, nodeID)
	return nil
}

const (
	testThreshold = 5
	testLength    = 16
)

func newTestAuthority(t *testing.T) (*Authority, *fakeClock) {
	t.Helper()

	policy := rotation.Policy{
		Reference: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Period:    rotation.DefaultPeriod,
		Grace:     rotation.DefaultPeriod,
	}
	clock := &fakeClock{now: policy.Reference}

	core, _ := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	reg := registry.New(newMemStore(), logger, registry.Config{
		FailureThreshold: testThreshold,
		GraceWindow:      policy.Grace,
	})
	return New(reg, policy, clock, logger, testLength), clock
}

func workerIdentity() identity.NodeIdentity {
	return identity.NodeIdentity{
		Addr:     "10.0.0.5",
		MAC:      "aa:bb:cc:dd:ee:ff",
		Hostname: "worker-1",
	}
}

func TestRegisterReturnsDerivedToken(t *testing.T) {
	auth, _ := newTestAuthority(t)
	ctx := context.Background()

	resp, err := auth.Register(ctx, workerIdentity())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(resp.Token) != testLength {
		t.Errorf("token length = %d, want %d", len(resp.Token), testLength)
	}
	if !dna.Valid(resp.Token) {
		t.Errorf("token %q not drawn from ACTG alphabet", resp.Token)
	}
	if resp.Epoch != 0 {
		t.Errorf("epoch = %d, want 0", resp.Epoch)
	}
	if len(resp.NodeID) != 64 {
		t.Errorf("node ID length = %d, want 64", len(resp.NodeID))
	}
}

func TestRegisterInvalidIdentity(t *testing.T) {
	auth, _ := newTestAuthority(t)

	_, err := auth.Register(context.Background(), identity.NodeIdentity{
		Addr: "not-an-ip", MAC: "aa:bb:cc:dd:ee:ff", Hostname: "worker-1",
	})
	if !errors.Is(err, models.ErrInvalidIdentity) {
		t.Errorf("Register error = %v, want ErrInvalidIdentity", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	auth, _ := newTestAuthority(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, workerIdentity()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	// A different spelling of the same identity is still a duplicate.
	_, err := auth.Register(ctx, identity.NodeIdentity{
		Addr: "10.0.0.5", MAC: "AABB.CCDD.EEFF", Hostname: "Worker-1",
	})
	if !errors.Is(err, models.ErrAlreadyRegistered) {
		t.Errorf("Register error = %v, want ErrAlreadyRegistered", err)
	}
}

// TestRotationLifecycle walks the full rotation scenario: a token issued at
// epoch 0 verifies at epoch 0, survives epoch 1 through the grace window,
// and is rejected at epoch 2 after two rotations.
func TestRotationLifecycle(t *testing.T) {
	auth, clock := newTestAuthority(t)
	ctx := context.Background()

	resp, err := auth.Register(ctx, workerIdentity())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token0 := resp.Token

	// Epoch 0: T0 verifies.
	v, err := auth.Verify(ctx, resp.NodeID, token0)
	if err != nil {
		t.Fatalf("Verify at epoch 0 failed: %v", err)
	}
	if v.Epoch != 0 {
		t.Errorf("matched epoch = %d, want 0", v.Epoch)
	}

	// Epoch 1: rotate, then T0 still verifies through the grace window.
	clock.Advance(rotation.DefaultPeriod)
	rot, err := auth.RotateAll(ctx)
	if err != nil {
		t.Fatalf("RotateAll failed: %v", err)
	}
	if rot.Rotated != 1 || rot.Epoch != 1 {
		t.Fatalf("RotateAll = %+v, want 1 rotation to epoch 1", rot)
	}

	v, err = auth.Verify(ctx, resp.NodeID, token0)
	if err != nil {
		t.Fatalf("Verify at epoch 1 (grace) failed: %v", err)
	}
	if v.Epoch != 0 {
		t.Errorf("matched epoch = %d, want 0 (previous token)", v.Epoch)
	}

	// Epoch 2: rotate again; T0 now matches nothing.
	clock.Advance(rotation.DefaultPeriod)
	if _, err := auth.RotateAll(ctx); err != nil {
		t.Fatalf("second RotateAll failed: %v", err)
	}
	if _, err := auth.Verify(ctx, resp.NodeID, token0); !errors.Is(err, models.ErrVerificationFailed) {
		t.Errorf("Verify at epoch 2 error = %v, want ErrVerificationFailed", err)
	}
}

func TestNodeDerivedTokenMatchesAfterRotation(t *testing.T) {
	auth, clock := newTestAuthority(t)
	ctx := context.Background()

	resp, err := auth.Register(ctx, workerIdentity())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	clock.Advance(rotation.DefaultPeriod)
	if _, err := auth.RotateAll(ctx); err != nil {
		t.Fatalf("RotateAll failed: %v", err)
	}

	// The node re-derives its own token for the new epoch; it must match
	// what the authority rotated to.
	canon, err := workerIdentity().Canonicalize()
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	token1, err := dna.Encode(identity.Salt(canon, 1), testLength)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	v, err := auth.Verify(ctx, resp.NodeID, token1)
	if err != nil {
		t.Fatalf("Verify with re-derived token failed: %v", err)
	}
	if v.Epoch != 1 {
		t.Errorf("matched epoch = %d, want 1", v.Epoch)
	}
}

func TestRotateAllIdempotentWithinEpoch(t *testing.T) {
	auth, clock := newTestAuthority(t)
	ctx := context.Background()

	auth.Register(ctx, workerIdentity())
	clock.Advance(rotation.DefaultPeriod)

	first, err := auth.RotateAll(ctx)
	if err != nil {
		t.Fatalf("RotateAll failed: %v", err)
	}
	if first.Rotated != 1 {
		t.Fatalf("first sweep rotated %d, want 1", first.Rotated)
	}

	second, err := auth.RotateAll(ctx)
	if err != nil {
		t.Fatalf("repeat RotateAll failed: %v", err)
	}
	if second.Rotated != 0 {
		t.Errorf("repeat sweep rotated %d, want 0", second.Rotated)
	}
}

func TestVerifyUnknownNode(t *testing.T) {
	auth, _ := newTestAuthority(t)

	_, err := auth.Verify(context.Background(), "no-such-node", "ACTGACTGACTGACTG")
	if !errors.Is(err, models.ErrUnknownNode) {
		t.Errorf("Verify error = %v, want ErrUnknownNode", err)
	}

	list, err := auth.ListNodes(context.Background())
	if err != nil {
		t.Fatalf("ListNodes failed: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("registry has %d records after unknown verify, want 0", list.Total)
	}
}

func TestFailureThresholdBlocks(t *testing.T) {
	auth, _ := newTestAuthority(t)
	ctx := context.Background()

	resp, err := auth.Register(ctx, workerIdentity())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	wrong := "GGGGGGGGGGGGGGGG"

	for i := 1; i < testThreshold; i++ {
		if _, err := auth.Verify(ctx, resp.NodeID, wrong); !errors.Is(err, models.ErrVerificationFailed) {
			t.Fatalf("failure %d: error = %v, want ErrVerificationFailed", i, err)
		}
	}
	if _, err := auth.Verify(ctx, resp.NodeID, wrong); !errors.Is(err, models.ErrBlocked) {
		t.Fatalf("threshold failure: error = %v, want ErrBlocked", err)
	}

	// The correct token is now rejected without being checked.
	if _, err := auth.Verify(ctx, resp.NodeID, resp.Token); !errors.Is(err, models.ErrNodeBlocked) {
		t.Errorf("post-block Verify error = %v, want ErrNodeBlocked", err)
	}
}

func TestBlockedNodeSkippedByRotation(t *testing.T) {
	auth, clock := newTestAuthority(t)
	ctx := context.Background()

	a, _ := auth.Register(ctx, workerIdentity())
	b, err := auth.Register(ctx, identity.NodeIdentity{
		Addr: "10.0.0.6", MAC: "11:22:33:44:55:66", Hostname: "worker-2",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := auth.Block(ctx, a.NodeID); err != nil {
		t.Fatalf("Block failed: %v", err)
	}

	clock.Advance(rotation.DefaultPeriod)
	rot, err := auth.RotateAll(ctx)
	if err != nil {
		t.Fatalf("RotateAll failed: %v", err)
	}
	if rot.Rotated != 1 {
		t.Errorf("RotateAll rotated %d, want 1 (blocked node skipped)", rot.Rotated)
	}
	_ = b
}

func TestUnblockRestoresVerification(t *testing.T) {
	auth, _ := newTestAuthority(t)
	ctx := context.Background()

	resp, _ := auth.Register(ctx, workerIdentity())
	if err := auth.Block(ctx, resp.NodeID); err != nil {
		t.Fatalf("Block failed: %v", err)
	}
	if err := auth.Unblock(ctx, resp.NodeID); err != nil {
		t.Fatalf("Unblock failed: %v", err)
	}
	if _, err := auth.Verify(ctx, resp.NodeID, resp.Token); err != nil {
		t.Errorf("Verify after unblock failed: %v", err)
	}

	if err := auth.Unblock(ctx, resp.NodeID); !errors.Is(err, models.ErrNotBlocked) {
		t.Errorf("Unblock active node error = %v, want ErrNotBlocked", err)
	}
}

func TestDeregisterRemovesNode(t *testing.T) {
	auth, _ := newTestAuthority(t)
	ctx := context.Background()

	resp, _ := auth.Register(ctx, workerIdentity())
	if err := auth.Deregister(ctx, resp.NodeID); err != nil {
		t.Fatalf("Deregister failed: %v", err)
	}
	if _, err := auth.Verify(ctx, resp.NodeID, resp.Token); !errors.Is(err, models.ErrUnknownNode) {
		t.Errorf("Verify after deregister error = %v, want ErrUnknownNode", err)
	}

	// The identity can register again from scratch.
	if _, err := auth.Register(ctx, workerIdentity()); err != nil {
		t.Errorf("re-Register after deregister failed: %v", err)
	}
}

func TestListNodes(t *testing.T) {
	auth, _ := newTestAuthority(t)
	ctx := context.Background()

	auth.Register(ctx, workerIdentity())
	auth.Register(ctx, identity.NodeIdentity{
		Addr: "10.0.0.6", MAC: "11:22:33:44:55:66", Hostname: "worker-2",
	})

	list, err := auth.ListNodes(ctx)
	if err != nil {
		t.Fatalf("ListNodes failed: %v", err)
	}
	if list.Total != 2 || len(list.Nodes) != 2 {
		t.Fatalf("ListNodes = total %d len %d, want 2", list.Total, len(list.Nodes))
	}
	for _, n := range list.Nodes {
		if n.Status != models.StatusActive {
			t.Errorf("node %s status = %s, want active", n.Hostname, n.Status)
		}
	}
}
