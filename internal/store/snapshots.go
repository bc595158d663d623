package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/tally/internal/ir"
)

// ErrNotFound is returned when an owner has no stored snapshot.
var ErrNotFound = errors.New("store: not found")

// SnapshotRecord is one stored snapshot row.
type SnapshotRecord struct {
	ID            string
	OwnerID       string
	Seq           int64
	Body          string
	Fingerprint   string
	SavedAt       int64
	EngineVersion string
}

// WriteSnapshot appends a snapshot for rec.OwnerID with the next seq.
// ID, Seq and EngineVersion are assigned here.
//
// If rec carries a fingerprint equal to the owner's latest snapshot, nothing
// is written and the latest record is returned with deduplicated=true.
func (s *Store) WriteSnapshot(ctx context.Context, rec SnapshotRecord) (out SnapshotRecord, deduplicated bool, err error) {
	if rec.OwnerID == "" {
		return SnapshotRecord{}, false, errors.New("write snapshot: owner id is required")
	}

	err = retryOp(ctx, s.retry, func() error {
		out, deduplicated, err = s.writeSnapshotTx(ctx, rec)
		return err
	})
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("write snapshot: %w", err)
	}
	return out, deduplicated, nil
}

func (s *Store) writeSnapshotTx(ctx context.Context, rec SnapshotRecord) (SnapshotRecord, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotRecord{}, false, err
	}
	defer tx.Rollback()

	latest, err := scanSnapshot(tx.QueryRowContext(ctx, `
		SELECT id, owner_id, seq, body, fingerprint, saved_at, engine_version
		FROM snapshots
		WHERE owner_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, rec.OwnerID))
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return SnapshotRecord{}, false, err
	case rec.Fingerprint != "" && latest.Fingerprint == rec.Fingerprint:
		return latest, true, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("generate id: %w", err)
	}
	rec.ID = id.String()
	rec.Seq = latest.Seq + 1
	rec.EngineVersion = ir.EngineVersion

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots
		(id, owner_id, seq, body, fingerprint, saved_at, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.OwnerID,
		rec.Seq,
		rec.Body,
		rec.Fingerprint,
		rec.SavedAt,
		rec.EngineVersion,
	)
	if err != nil {
		return SnapshotRecord{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return SnapshotRecord{}, false, err
	}
	return rec, false, nil
}

// LatestSnapshot returns the owner's snapshot with the highest seq, or
// ErrNotFound.
func (s *Store) LatestSnapshot(ctx context.Context, ownerID string) (SnapshotRecord, error) {
	rec, err := scanSnapshot(s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, seq, body, fingerprint, saved_at, engine_version
		FROM snapshots
		WHERE owner_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, ownerID))
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return rec, nil
}

// SnapshotHistory returns up to limit snapshots for an owner, newest first.
// A limit <= 0 returns all of them. Returns an empty slice (not nil) if
// the owner has none.
func (s *Store) SnapshotHistory(ctx context.Context, ownerID string, limit int) ([]SnapshotRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, seq, body, fingerprint, saved_at, engine_version
		FROM snapshots
		WHERE owner_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	history := []SnapshotRecord{}
	for rows.Next() {
		rec, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return history, nil
}

// Owners returns every owner with at least one snapshot, sorted.
func (s *Store) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT owner_id FROM snapshots ORDER BY owner_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return owners, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (SnapshotRecord, error) {
	var rec SnapshotRecord
	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Seq,
		&rec.Body,
		&rec.Fingerprint,
		&rec.SavedAt,
		&rec.EngineVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotRecord{}, ErrNotFound
	}
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("scan snapshot: %w", err)
	}
	return rec, nil
}
