// Package registry owns the per-node authentication state machine.
//
// The registry keeps one record per node in an in-memory index keyed by node
// ID, guarded by a map-level RWMutex plus a per-record mutex. Persistence is
// a write-through concern behind the Store interface: every mutation is
// applied to a copy of the record, written to the store, and only then
// committed to memory, so a store failure leaves no partial state. A verify
// racing a rotate on the same node observes either the full pre-rotation or
// the full post-rotation token set, never a half-updated record.
package registry

import (
	"context"
	"crypto/hmac"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"helixgate.io/models"
)

// Store is the persistence layer the registry writes through to.
//
// Implementations must be safe for concurrent use. The registry never
// retries store I/O; failures surface as models.ErrStoreFailure wrapped with
// the underlying cause.
type Store interface {
	// Load returns all persisted node records.
	Load(ctx context.Context) ([]*models.NodeRecord, error)

	// Put inserts or replaces one record.
	Put(ctx context.Context, rec *models.NodeRecord) error

	// Delete removes the record for nodeID. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context, nodeID string) error
}

// Config holds the registry's tunables.
type Config struct {
	// FailureThreshold is the number of consecutive failed verifications
	// that transitions a node to blocked. The transition happens on the
	// threshold-th failure, not before.
	FailureThreshold int

	// GraceWindow is the span after a rotation during which the previous
	// token remains acceptable.
	GraceWindow time.Duration
}

// Registry is the concurrent-safe node record index.
type Registry struct {
	store  Store
	logger *zap.Logger
	config Config

	mu      sync.RWMutex
	records map[string]*entry
}

// entry wraps one record with its own lock so batch operations over many
// nodes never hold the registry-wide lock while touching a record.
type entry struct {
	mu  sync.Mutex
	rec *models.NodeRecord // nil until a registration commits
}

// New creates a Registry backed by the given store.
func New(store Store, logger *zap.Logger, config Config) *Registry {
	return &Registry{
		store:   store,
		logger:  logger,
		config:  config,
		records: make(map[string]*entry),
	}
}

// Load populates the in-memory index from the store. Call once at startup
// before serving requests.
func (r *Registry) Load(ctx context.Context) error {
	recs, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		r.records[rec.NodeID] = &entry{rec: rec.Clone()}
	}
	r.logger.Info("registry loaded", zap.Int("records", len(recs)))
	return nil
}

// Register creates the record for a previously unregistered node.
//
// Returns models.ErrAlreadyRegistered if an active record exists and
// models.ErrNodeBlocked if the node is blocked. The record is persisted
// before it becomes visible to verification.
func (r *Registry) Register(ctx context.Context, rec *models.NodeRecord) error {
	var e *entry
	for {
		e = r.entryFor(rec.NodeID, true)
		e.mu.Lock()
		if r.indexed(rec.NodeID, e) {
			break
		}
		// The entry left the index between entryFor and the lock, via a
		// concurrent deregistration or a failed registration. Committing
		// to it would strand the record outside the index, so retry
		// against whatever entry is live now.
		e.mu.Unlock()
	}
	defer e.mu.Unlock()

	if e.rec != nil {
		if e.rec.Status == models.StatusBlocked {
			return models.ErrNodeBlocked
		}
		return models.ErrAlreadyRegistered
	}

	stored := rec.Clone()
	if err := r.store.Put(ctx, stored); err != nil {
		r.dropEmpty(rec.NodeID, e)
		return fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
	e.rec = stored

	r.logger.Info("node registered",
		zap.String("node_id", rec.NodeID),
		zap.String("hostname", rec.Hostname),
		zap.Int64("epoch", rec.CurrentEpoch),
	)
	return nil
}

// Verify checks a presented token against the node's current token, or its
// previous token while the grace window is open.
//
// On success the failure counter resets and the matched epoch is returned.
// On mismatch the counter increments; crossing the failure threshold blocks
// the node and returns models.ErrBlocked, otherwise
// models.ErrVerificationFailed. Blocked nodes fail with models.ErrNodeBlocked
// and unknown nodes with models.ErrUnknownNode, in both cases without
// mutating any state.
func (r *Registry) Verify(ctx context.Context, nodeID, presented string, epoch int64, now time.Time) (int64, error) {
	e := r.entryFor(nodeID, false)
	if e == nil {
		return 0, models.ErrUnknownNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		return 0, models.ErrUnknownNode
	}
	if e.rec.Status == models.StatusBlocked {
		return 0, models.ErrNodeBlocked
	}

	rec := e.rec.Clone()
	changed := r.expirePrevious(rec, now)

	if tokenEqual(presented, rec.CurrentToken) && (epoch == rec.CurrentEpoch || epoch == rec.CurrentEpoch+1) {
		matched := rec.CurrentEpoch
		if rec.FailedCount != 0 {
			rec.FailedCount = 0
			changed = true
		}
		if changed {
			rec.UpdatedAt = now
			if err := r.commit(ctx, e, rec); err != nil {
				return 0, err
			}
		}
		return matched, nil
	}

	if rec.PreviousToken != "" && tokenEqual(presented, rec.PreviousToken) {
		matched := rec.CurrentEpoch - 1
		if rec.FailedCount != 0 {
			rec.FailedCount = 0
			changed = true
		}
		if changed {
			rec.UpdatedAt = now
			if err := r.commit(ctx, e, rec); err != nil {
				return 0, err
			}
		}
		return matched, nil
	}

	rec.FailedCount++
	rec.UpdatedAt = now
	if rec.FailedCount >= r.config.FailureThreshold {
		rec.Status = models.StatusBlocked
		if err := r.commit(ctx, e, rec); err != nil {
			return 0, err
		}
		r.logger.Warn("node blocked by failure threshold",
			zap.String("node_id", nodeID),
			zap.Int("failed_count", rec.FailedCount),
		)
		return 0, models.ErrBlocked
	}
	if err := r.commit(ctx, e, rec); err != nil {
		return 0, err
	}
	return 0, models.ErrVerificationFailed
}

// Rotate installs a new token for an active node, demoting the current token
// to previous for the grace window.
//
// Rotation is idempotent per (nodeID, newEpoch): repeating it for an epoch
// the record already holds is a no-op and never double-shifts the previous
// token. Returns models.ErrUnknownNode if the node is not active.
func (r *Registry) Rotate(ctx context.Context, nodeID, newToken string, newEpoch int64, now time.Time) error {
	e := r.entryFor(nodeID, false)
	if e == nil {
		return models.ErrUnknownNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil || e.rec.Status != models.StatusActive {
		return models.ErrUnknownNode
	}
	if e.rec.CurrentEpoch == newEpoch {
		return nil
	}

	rec := e.rec.Clone()
	rec.PreviousToken = rec.CurrentToken
	rec.PreviousIssuedAt = now
	rec.CurrentToken = newToken
	rec.CurrentEpoch = newEpoch
	rec.UpdatedAt = now
	if err := r.commit(ctx, e, rec); err != nil {
		return err
	}

	r.logger.Debug("node rotated",
		zap.String("node_id", nodeID),
		zap.Int64("epoch", newEpoch),
	)
	return nil
}

// Block transitions a node to blocked by administrative action. Blocking an
// already blocked node is a no-op.
func (r *Registry) Block(ctx context.Context, nodeID string, now time.Time) error {
	e := r.entryFor(nodeID, false)
	if e == nil {
		return models.ErrUnknownNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		return models.ErrUnknownNode
	}
	if e.rec.Status == models.StatusBlocked {
		return nil
	}

	rec := e.rec.Clone()
	rec.Status = models.StatusBlocked
	rec.UpdatedAt = now
	if err := r.commit(ctx, e, rec); err != nil {
		return err
	}
	r.logger.Info("node blocked", zap.String("node_id", nodeID))
	return nil
}

// Unblock returns a blocked node to active and resets its failure counter.
// Returns models.ErrNotBlocked if the node is in any other state.
func (r *Registry) Unblock(ctx context.Context, nodeID string, now time.Time) error {
	e := r.entryFor(nodeID, false)
	if e == nil {
		return models.ErrUnknownNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		return models.ErrUnknownNode
	}
	if e.rec.Status != models.StatusBlocked {
		return models.ErrNotBlocked
	}

	rec := e.rec.Clone()
	rec.Status = models.StatusActive
	rec.FailedCount = 0
	rec.UpdatedAt = now
	if err := r.commit(ctx, e, rec); err != nil {
		return err
	}
	r.logger.Info("node unblocked", zap.String("node_id", nodeID))
	return nil
}

// Deregister removes a node's record entirely.
func (r *Registry) Deregister(ctx context.Context, nodeID string) error {
	e := r.entryFor(nodeID, false)
	if e == nil {
		return models.ErrUnknownNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		return models.ErrUnknownNode
	}
	if err := r.store.Delete(ctx, nodeID); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
	e.rec = nil

	r.mu.Lock()
	delete(r.records, nodeID)
	r.mu.Unlock()

	r.logger.Info("node deregistered", zap.String("node_id", nodeID))
	return nil
}

// Get returns a copy of the record for nodeID.
func (r *Registry) Get(nodeID string) (*models.NodeRecord, error) {
	e := r.entryFor(nodeID, false)
	if e == nil {
		return nil, models.ErrUnknownNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return nil, models.ErrUnknownNode
	}
	return e.rec.Clone(), nil
}

// Snapshot returns copies of all records, ordered by creation time. Used by
// the authority for rotation sweeps and admin listings.
func (r *Registry) Snapshot() []*models.NodeRecord {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.records))
	for _, e := range r.records {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	recs := make([]*models.NodeRecord, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.rec != nil {
			recs = append(recs, e.rec.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].NodeID < recs[j].NodeID
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs
}

// entryFor returns the entry for nodeID, creating a placeholder when create
// is set (registration path).
func (r *Registry) entryFor(nodeID string, create bool) *entry {
	r.mu.RLock()
	e := r.records[nodeID]
	r.mu.RUnlock()
	if e != nil || !create {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e = r.records[nodeID]; e == nil {
		e = &entry{}
		r.records[nodeID] = e
	}
	return e
}

// indexed reports whether e is still the live entry for nodeID. A locked
// entry can have been removed from the index by a concurrent deregistration
// that won the lock first.
func (r *Registry) indexed(nodeID string, e *entry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[nodeID] == e
}

// dropEmpty removes a placeholder left behind by a failed registration.
// The caller holds e.mu.
func (r *Registry) dropEmpty(nodeID string, e *entry) {
	if e.rec != nil {
		return
	}
	r.mu.Lock()
	if cur, ok := r.records[nodeID]; ok && cur == e && e.rec == nil {
		delete(r.records, nodeID)
	}
	r.mu.Unlock()
}

// expirePrevious clears the previous token once the grace window has
// elapsed. Returns true when the record changed.
func (r *Registry) expirePrevious(rec *models.NodeRecord, now time.Time) bool {
	if rec.PreviousToken == "" {
		return false
	}
	if now.Before(rec.PreviousIssuedAt.Add(r.config.GraceWindow)) {
		return false
	}
	rec.PreviousToken = ""
	rec.PreviousIssuedAt = time.Time{}
	return true
}

// commit persists rec and swaps it into the entry. On store failure the
// in-memory record is left untouched. The caller holds e.mu.
func (r *Registry) commit(ctx context.Context, e *entry, rec *models.NodeRecord) error {
	if err := r.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreFailure, err)
	}
	e.rec = rec
	return nil
}

// tokenEqual compares tokens in constant time to avoid leaking match length
// through timing.
func tokenEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
