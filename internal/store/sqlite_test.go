package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	_ "modernc.org/sqlite"

	"helixgate.io/models"
)

func newTestStore(t *testing.T) *NodeStore {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	core, _ := observer.New(zap.InfoLevel)
	s := New(db, zap.New(core))
	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

func testRecord(nodeID string) *models.NodeRecord {
	created := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	return &models.NodeRecord{
		NodeID:       nodeID,
		Addr:         "10.0.0.5",
		MAC:          "aa:bb:cc:dd:ee:ff",
		Hostname:     "worker-1",
		CurrentToken: "ACTGACTGACTGACTG",
		CurrentEpoch: 3,
		Status:       models.StatusActive,
		FailedCount:  2,
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Hour),
	}
}

func TestPutAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("node-1")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	recs, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Load returned %d records, want 1", len(recs))
	}

	got := recs[0]
	if got.NodeID != rec.NodeID || got.Addr != rec.Addr || got.MAC != rec.MAC || got.Hostname != rec.Hostname {
		t.Errorf("identity fields mismatch: %+v", got)
	}
	if got.CurrentToken != rec.CurrentToken || got.CurrentEpoch != rec.CurrentEpoch {
		t.Errorf("token fields mismatch: %+v", got)
	}
	if got.Status != models.StatusActive || got.FailedCount != 2 {
		t.Errorf("state fields mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) || !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamps mismatch: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
	if got.PreviousToken != "" || !got.PreviousIssuedAt.IsZero() {
		t.Errorf("expected empty previous token fields, got %q at %v", got.PreviousToken, got.PreviousIssuedAt)
	}
}

func TestPutReplacesAndKeepsPreviousToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("node-1")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rotatedAt := rec.UpdatedAt.Add(24 * time.Hour)
	rec.PreviousToken = rec.CurrentToken
	rec.PreviousIssuedAt = rotatedAt
	rec.CurrentToken = "GGGGCCCCTTTTAAAA"
	rec.CurrentEpoch = 4
	rec.UpdatedAt = rotatedAt
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put (replace) failed: %v", err)
	}

	recs, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Load returned %d records after replace, want 1", len(recs))
	}

	got := recs[0]
	if got.PreviousToken != "ACTGACTGACTGACTG" {
		t.Errorf("PreviousToken = %q, want the demoted token", got.PreviousToken)
	}
	if !got.PreviousIssuedAt.Equal(rotatedAt) {
		t.Errorf("PreviousIssuedAt = %v, want %v", got.PreviousIssuedAt, rotatedAt)
	}
	if got.CurrentEpoch != 4 {
		t.Errorf("CurrentEpoch = %d, want 4", got.CurrentEpoch)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, testRecord("node-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, "node-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	recs, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Load returned %d records after delete, want 0", len(recs))
	}

	// Deleting a missing row is not an error.
	if err := s.Delete(ctx, "node-1"); err != nil {
		t.Errorf("Delete of absent row failed: %v", err)
	}
}
