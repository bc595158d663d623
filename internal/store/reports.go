package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Phase says which side of the load/save contract produced a report.
type Phase string

const (
	PhaseLoad Phase = "load"
	PhaseSave Phase = "save"
)

// ReportRecord is one stored recovery report. Report holds the metrics and
// critical failures as JSON; the store does not interpret it.
type ReportRecord struct {
	ID                    string
	OwnerID               string
	SnapshotID            string // empty when no stored snapshot was involved
	Phase                 Phase
	PerfectlyValid        bool
	Report                string
	CurriculumFingerprint string
	RecordedAt            int64
}

// WriteReport inserts a report and returns it with its assigned ID.
func (s *Store) WriteReport(ctx context.Context, rec ReportRecord) (ReportRecord, error) {
	if rec.Phase != PhaseLoad && rec.Phase != PhaseSave {
		return ReportRecord{}, fmt.Errorf("write report: invalid phase %q", rec.Phase)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return ReportRecord{}, fmt.Errorf("write report: generate id: %w", err)
	}
	rec.ID = id.String()

	var snapshotID sql.NullString
	if rec.SnapshotID != "" {
		snapshotID = sql.NullString{String: rec.SnapshotID, Valid: true}
	}

	err = retryOp(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO recovery_reports
			(id, owner_id, snapshot_id, phase, perfectly_valid, report, curriculum_fingerprint, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			rec.OwnerID,
			snapshotID,
			string(rec.Phase),
			rec.PerfectlyValid,
			rec.Report,
			rec.CurriculumFingerprint,
			rec.RecordedAt,
		)
		return err
	})
	if err != nil {
		return ReportRecord{}, fmt.Errorf("write report: %w", err)
	}
	return rec, nil
}

// Reports returns up to limit reports for an owner, newest first.
// A limit <= 0 returns all of them.
func (s *Store) Reports(ctx context.Context, ownerID string, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, snapshot_id, phase, perfectly_valid, report, curriculum_fingerprint, recorded_at
		FROM recovery_reports
		WHERE owner_id = ?
		ORDER BY recorded_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := []ReportRecord{}
	for rows.Next() {
		var (
			rec        ReportRecord
			snapshotID sql.NullString
			phase      string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&snapshotID,
			&phase,
			&rec.PerfectlyValid,
			&rec.Report,
			&rec.CurriculumFingerprint,
			&rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rec.SnapshotID = snapshotID.String
		rec.Phase = Phase(phase)
		reports = append(reports, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
