// Package telemetry records Prometheus metrics for snapshot enforcement and
// storage. Metrics are registered on a caller-supplied Registerer so tests
// and embedding applications can use their own registry. A nil *Metrics is
// valid and records nothing.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/tally/internal/progress"
)

// Outcome labels for tally_enforcements_total.
const (
	OutcomePerfect    = "perfect"
	OutcomeRepaired   = "repaired"
	OutcomeUnreadable = "unreadable"
)

// Section labels for tally_section_repairs_total.
const (
	SectionMetadata   = "metadata"
	SectionOverall    = "overall_progress"
	SectionSettings   = "settings"
	SectionNavigation = "navigation"
	SectionComponents = "component_progress"
)

// Metrics holds every collector tally exports.
type Metrics struct {
	Enforcements       *prometheus.CounterVec
	EnforceDuration    *prometheus.HistogramVec
	SectionRepairs     *prometheus.CounterVec
	OwnerMismatches    *prometheus.CounterVec
	CorruptionDetected *prometheus.CounterVec
	EntriesDropped     *prometheus.CounterVec
	ImperfectSaves     prometheus.Counter
	StoreWrites        *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Enforcements: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_enforcements_total",
				Help: "Snapshots passed through integrity enforcement",
			},
			[]string{"phase", "outcome"}, // phase: load|save|check
		),
		EnforceDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tally_enforce_duration_seconds",
				Help:    "Duration of integrity enforcement in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"phase"},
		),
		SectionRepairs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_section_repairs_total",
				Help: "Enforcements in which a snapshot section needed repair",
			},
			[]string{"phase", "section"},
		),
		OwnerMismatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_owner_mismatches_total",
				Help: "Snapshots whose stored owner did not match the expected owner",
			},
			[]string{"phase"},
		),
		CorruptionDetected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_corruption_detected_total",
				Help: "Collections whose stored counter exceeded their entries",
			},
			[]string{"phase", "collection"}, // lessons|domains
		),
		EntriesDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_entries_dropped_total",
				Help: "Completion entries dropped during curriculum reconciliation",
			},
			[]string{"phase", "collection"},
		),
		ImperfectSaves: f.NewCounter(
			prometheus.CounterOpts{
				Name: "tally_imperfect_saves_total",
				Help: "Saves refused because the snapshot needed repair",
			},
		),
		StoreWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_store_writes_total",
				Help: "Store write attempts by kind and result",
			},
			[]string{"kind", "result"}, // kind: snapshot|report; result: ok|dedup|error
		),
	}
}

// Outcome classifies an enforcement result.
func Outcome(res *progress.EnforcementResult) string {
	switch {
	case res.PerfectlyValid:
		return OutcomePerfect
	case res.CriticalFailures.OwnerMismatch != nil && res.CriticalFailures.OwnerMismatch.Found == nil:
		return OutcomeUnreadable
	default:
		return OutcomeRepaired
	}
}

// ObserveEnforcement records one enforcement result.
func (m *Metrics) ObserveEnforcement(phase string, res *progress.EnforcementResult, took time.Duration) {
	if m == nil || res == nil {
		return
	}
	m.Enforcements.WithLabelValues(phase, Outcome(res)).Inc()
	m.EnforceDuration.WithLabelValues(phase).Observe(took.Seconds())

	for _, section := range RepairedSections(res.Metrics) {
		m.SectionRepairs.WithLabelValues(phase, section).Inc()
	}
	if res.CriticalFailures.OwnerMismatch != nil {
		m.OwnerMismatches.WithLabelValues(phase).Inc()
	}

	op := res.Metrics.OverallProgress
	if op.Lessons.CorruptionDetected {
		m.CorruptionDetected.WithLabelValues(phase, "lessons").Inc()
	}
	if op.Domains.CorruptionDetected {
		m.CorruptionDetected.WithLabelValues(phase, "domains").Inc()
	}
	m.EntriesDropped.WithLabelValues(phase, "lessons").Add(float64(op.Lessons.DroppedCount))
	m.EntriesDropped.WithLabelValues(phase, "domains").Add(float64(op.Domains.DroppedCount))
}

// ObserveImperfectSave records a refused save.
func (m *Metrics) ObserveImperfectSave() {
	if m == nil {
		return
	}
	m.ImperfectSaves.Inc()
}

// ObserveStoreWrite records a store write attempt.
func (m *Metrics) ObserveStoreWrite(kind, result string) {
	if m == nil {
		return
	}
	m.StoreWrites.WithLabelValues(kind, result).Inc()
}

// RepairedSections lists the sections that needed any repair, in
// snapshot order.
func RepairedSections(m progress.RecoveryMetrics) []string {
	var out []string
	if m.Metadata.DefaultedRatio > 0 {
		out = append(out, SectionMetadata)
	}
	op := m.OverallProgress
	if op.CorruptionDetected || op.Lessons.DroppedCount > 0 || op.Domains.DroppedCount > 0 ||
		op.StreakDefaulted || op.CounterDefaulted || op.Lessons.DroppedRatio > 0 || op.Domains.DroppedRatio > 0 {
		out = append(out, SectionOverall)
	}
	if m.Settings.DefaultedCount > 0 || m.Settings.DefaultedRatio > 0 {
		out = append(out, SectionSettings)
	}
	if m.Navigation.WasDefaulted {
		out = append(out, SectionNavigation)
	}
	if m.ComponentProgress.DefaultedCount > 0 {
		out = append(out, SectionComponents)
	}
	return out
}
