package keeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/roach88/tally/internal/engine"
	"github.com/roach88/tally/internal/progress"
	"github.com/roach88/tally/internal/store"
	"github.com/roach88/tally/internal/telemetry"
)

// Fingerprinter is implemented by curriculum registries that can report a
// content address of their structure.
type Fingerprinter interface {
	Fingerprint() (string, error)
}

// Options configures a Keeper.
type Options struct {
	Store   *store.Store
	Engine  engine.Context
	Metrics *telemetry.Metrics // optional
	Logger  *slog.Logger       // optional, defaults to slog.Default()
}

// Keeper loads and saves snapshots through the integrity engine.
type Keeper struct {
	store        *store.Store
	engine       engine.Context
	metrics      *telemetry.Metrics
	logger       *slog.Logger
	curriculumFP string
}

// New validates opts and returns a Keeper. The engine context is checked
// up front so precondition errors surface at startup.
func New(opts Options) (*Keeper, error) {
	if opts.Store == nil {
		return nil, errors.New("keeper: store is required")
	}
	if _, err := engine.Defaults("", opts.Engine); err != nil {
		return nil, fmt.Errorf("keeper: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	k := &Keeper{
		store:   opts.Store,
		engine:  opts.Engine,
		metrics: opts.Metrics,
		logger:  logger,
	}
	if fp, ok := opts.Engine.Curriculum.(Fingerprinter); ok {
		sum, err := fp.Fingerprint()
		if err != nil {
			return nil, fmt.Errorf("keeper: fingerprint curriculum: %w", err)
		}
		k.curriculumFP = sum
	}
	return k, nil
}

// LoadResult is what Load hands back.
type LoadResult struct {
	// Snapshot is the only thing callers may trust.
	Snapshot *progress.Snapshot
	// Result is the full enforcement result; nil when FirstTime.
	Result *progress.EnforcementResult
	// SnapshotID is the stored row that was loaded; empty when FirstTime.
	SnapshotID string
	// FirstTime is set when the owner had nothing stored.
	FirstTime bool
}

// Load reads the owner's latest snapshot and repairs it. Damage is never
// an error; it is logged, counted and recorded as a load report.
func (k *Keeper) Load(ctx context.Context, ownerID string) (*LoadResult, error) {
	rec, err := k.store.LatestSnapshot(ctx, ownerID)
	if store.IsNotFound(err) {
		snap, err := engine.Defaults(ownerID, k.engine)
		if err != nil {
			return nil, err
		}
		k.logger.Info("no stored snapshot, starting fresh", "owner", ownerID)
		return &LoadResult{Snapshot: snap, FirstTime: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ownerID, err)
	}

	res, err := k.enforce("load", rec.Body, ownerID)
	if err != nil {
		return nil, err
	}
	if !res.PerfectlyValid {
		k.logger.Warn("stored snapshot needed repair",
			"owner", ownerID,
			"snapshot_id", rec.ID,
			"seq", rec.Seq,
			"sections", telemetry.RepairedSections(res.Metrics),
			"owner_mismatch", res.CriticalFailures.OwnerMismatch != nil,
		)
	}
	if err := k.recordReport(ctx, ownerID, rec.ID, store.PhaseLoad, res); err != nil {
		return nil, err
	}
	return &LoadResult{Snapshot: res.Snapshot, Result: res, SnapshotID: rec.ID}, nil
}

// Save persists snap for ownerID. The snapshot is re-enforced first; if
// anything had to be repaired the save is refused with *ImperfectSaveError
// and nothing but the report is written.
func (k *Keeper) Save(ctx context.Context, ownerID string, snap *progress.Snapshot) (store.SnapshotRecord, error) {
	body, err := progress.Encode(snap)
	if err != nil {
		return store.SnapshotRecord{}, fmt.Errorf("save %s: %w", ownerID, err)
	}
	return k.SaveRaw(ctx, ownerID, string(body))
}

// SaveRaw is Save for a snapshot that is still text, such as a file
// handed to the CLI. The stored body is the engine's re-encoding, so two
// texts that differ only in layout deduplicate.
func (k *Keeper) SaveRaw(ctx context.Context, ownerID, raw string) (store.SnapshotRecord, error) {
	res, err := k.enforce("save", raw, ownerID)
	if err != nil {
		return store.SnapshotRecord{}, err
	}
	if !res.PerfectlyValid {
		k.metrics.ObserveImperfectSave()
		if err := k.recordReport(ctx, ownerID, "", store.PhaseSave, res); err != nil {
			return store.SnapshotRecord{}, err
		}
		saveErr := &ImperfectSaveError{OwnerID: ownerID, Result: res}
		k.logger.Error("refusing to save imperfect snapshot", "owner", ownerID, "error", saveErr)
		return store.SnapshotRecord{}, saveErr
	}

	body, err := progress.Encode(res.Snapshot)
	if err != nil {
		return store.SnapshotRecord{}, fmt.Errorf("save %s: %w", ownerID, err)
	}
	fingerprint, err := progress.Fingerprint(res.Snapshot)
	if err != nil {
		return store.SnapshotRecord{}, fmt.Errorf("save %s: %w", ownerID, err)
	}
	rec, dedup, err := k.store.WriteSnapshot(ctx, store.SnapshotRecord{
		OwnerID:     ownerID,
		Body:        string(body),
		Fingerprint: fingerprint,
		SavedAt:     k.engine.Clock.NowMillis(),
	})
	if err != nil {
		k.metrics.ObserveStoreWrite("snapshot", "error")
		return store.SnapshotRecord{}, fmt.Errorf("save %s: %w", ownerID, err)
	}
	if dedup {
		k.metrics.ObserveStoreWrite("snapshot", "dedup")
		k.logger.Debug("snapshot unchanged, save skipped", "owner", ownerID, "snapshot_id", rec.ID)
		return rec, nil
	}
	k.metrics.ObserveStoreWrite("snapshot", "ok")
	if err := k.recordReport(ctx, ownerID, rec.ID, store.PhaseSave, res); err != nil {
		return store.SnapshotRecord{}, err
	}
	k.logger.Info("snapshot saved", "owner", ownerID, "snapshot_id", rec.ID, "seq", rec.Seq)
	return rec, nil
}

// ImportRaw stores text verbatim for ownerID, bypassing enforcement. It
// stands in for the external transport that delivers snapshots; the next
// Load repairs whatever was imported.
func (k *Keeper) ImportRaw(ctx context.Context, ownerID, raw string) (store.SnapshotRecord, error) {
	rec, _, err := k.store.WriteSnapshot(ctx, store.SnapshotRecord{
		OwnerID: ownerID,
		Body:    raw,
		SavedAt: k.engine.Clock.NowMillis(),
	})
	if err != nil {
		k.metrics.ObserveStoreWrite("snapshot", "error")
		return store.SnapshotRecord{}, fmt.Errorf("import %s: %w", ownerID, err)
	}
	k.metrics.ObserveStoreWrite("snapshot", "ok")
	return rec, nil
}

// Reports returns the owner's most recent recovery reports.
func (k *Keeper) Reports(ctx context.Context, ownerID string, limit int) ([]store.ReportRecord, error) {
	return k.store.Reports(ctx, ownerID, limit)
}

func (k *Keeper) enforce(phase, raw, ownerID string) (*progress.EnforcementResult, error) {
	start := time.Now()
	res, err := engine.Enforce(raw, ownerID, k.engine)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", phase, ownerID, err)
	}
	k.metrics.ObserveEnforcement(phase, res, time.Since(start))
	return res, nil
}

// reportBody is the JSON stored in recovery_reports.report.
type reportBody struct {
	Metrics          progress.RecoveryMetrics  `json:"metrics"`
	CriticalFailures progress.CriticalFailures `json:"critical_failures"`
}

func (k *Keeper) recordReport(ctx context.Context, ownerID, snapshotID string, phase store.Phase, res *progress.EnforcementResult) error {
	body, err := json.Marshal(reportBody{Metrics: res.Metrics, CriticalFailures: res.CriticalFailures})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = k.store.WriteReport(ctx, store.ReportRecord{
		OwnerID:               ownerID,
		SnapshotID:            snapshotID,
		Phase:                 phase,
		PerfectlyValid:        res.PerfectlyValid,
		Report:                string(body),
		CurriculumFingerprint: k.curriculumFP,
		RecordedAt:            k.engine.Clock.NowMillis(),
	})
	if err != nil {
		k.metrics.ObserveStoreWrite("report", "error")
		return err
	}
	k.metrics.ObserveStoreWrite("report", "ok")
	return nil
}
