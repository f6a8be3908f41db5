// Package store persists node records in SQLite.
//
// The store is the registry's write-through backend: it holds one row per
// node and is never written to by anything else. Timestamps are stored as
// RFC 3339 text in UTC so rows stay readable and portable.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"helixgate.io/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
    node_id            TEXT PRIMARY KEY,
    addr               TEXT NOT NULL,
    mac                TEXT NOT NULL,
    hostname           TEXT NOT NULL,
    current_token      TEXT NOT NULL,
    current_epoch      INTEGER NOT NULL,
    previous_token     TEXT,
    previous_issued_at TEXT,
    status             TEXT NOT NULL,
    failed_count       INTEGER NOT NULL DEFAULT 0,
    created_at         TEXT NOT NULL,
    updated_at         TEXT NOT NULL
);
`

// NodeStore is a SQLite-backed implementation of the registry's Store
// interface.
type NodeStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens the SQLite database at path with WAL journaling and returns a
// ready NodeStore with the schema applied.
func Open(path string, logger *zap.Logger) (*NodeStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := New(db, logger)
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database opened", zap.String("path", path))
	return s, nil
}

// New wraps an existing database handle. The caller owns the handle's
// lifecycle; used by tests with in-memory databases.
func New(db *sql.DB, logger *zap.Logger) *NodeStore {
	return &NodeStore{db: db, logger: logger}
}

// InitSchema creates the nodes table if it does not exist.
func (s *NodeStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *NodeStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for health checks.
func (s *NodeStore) DB() *sql.DB {
	return s.db
}

// Load returns all persisted node records.
func (s *NodeStore) Load(ctx context.Context) ([]*models.NodeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, addr, mac, hostname,
		       current_token, current_epoch,
		       previous_token, previous_issued_at,
		       status, failed_count, created_at, updated_at
		FROM nodes
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	defer rows.Close()

	var recs []*models.NodeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nodes: %w", err)
	}
	return recs, nil
}

// Put inserts or replaces the row for rec.NodeID.
func (s *NodeStore) Put(ctx context.Context, rec *models.NodeRecord) error {
	var prevToken sql.NullString
	var prevIssued sql.NullString
	if rec.PreviousToken != "" {
		prevToken = sql.NullString{String: rec.PreviousToken, Valid: true}
		prevIssued = sql.NullString{String: formatTime(rec.PreviousIssuedAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO nodes (
			node_id, addr, mac, hostname,
			current_token, current_epoch,
			previous_token, previous_issued_at,
			status, failed_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.NodeID, rec.Addr, rec.MAC, rec.Hostname,
		rec.CurrentToken, rec.CurrentEpoch,
		prevToken, prevIssued,
		string(rec.Status), rec.FailedCount,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to put node %s: %w", rec.NodeID, err)
	}
	return nil
}

// Delete removes the row for nodeID. Missing rows are not an error.
func (s *NodeStore) Delete(ctx context.Context, nodeID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE node_id = ?`, nodeID); err != nil {
		return fmt.Errorf("failed to delete node %s: %w", nodeID, err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (*models.NodeRecord, error) {
	var rec models.NodeRecord
	var prevToken, prevIssued sql.NullString
	var status, createdAt, updatedAt string

	if err := rows.Scan(
		&rec.NodeID, &rec.Addr, &rec.MAC, &rec.Hostname,
		&rec.CurrentToken, &rec.CurrentEpoch,
		&prevToken, &prevIssued,
		&status, &rec.FailedCount, &createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	rec.Status = models.NodeStatus(status)
	if prevToken.Valid {
		rec.PreviousToken = prevToken.String
	}

	var err error
	if prevIssued.Valid {
		if rec.PreviousIssuedAt, err = parseTime(prevIssued.String); err != nil {
			return nil, err
		}
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
