package progress

// RecoveryMetrics reports, per section, how much of a snapshot had to be
// repaired. A zero value means nothing was repaired.
type RecoveryMetrics struct {
	Metadata          MetadataMetrics          `json:"metadata"`
	OverallProgress   OverallProgressMetrics   `json:"overall_progress"`
	Settings          SettingsMetrics          `json:"settings"`
	Navigation        NavigationMetrics        `json:"navigation"`
	ComponentProgress ComponentProgressMetrics `json:"component_progress"`
}

// MetadataMetrics covers the single owner field.
type MetadataMetrics struct {
	DefaultedRatio float64 `json:"defaulted_ratio"`
}

// CollectionMetrics describes reconciliation and corruption detection for
// one id collection (lesson completions or completed domains).
type CollectionMetrics struct {
	DroppedCount       int     `json:"dropped_count"`
	KeptCount          int     `json:"kept_count"`
	DroppedRatio       float64 `json:"dropped_ratio"`
	CorruptionDetected bool    `json:"corruption_detected"`
	LostToCorruption   int64   `json:"lost_to_corruption"`
}

// OverallProgressMetrics covers lessons, domains and the streak fields.
type OverallProgressMetrics struct {
	Lessons            CollectionMetrics `json:"lessons"`
	Domains            CollectionMetrics `json:"domains"`
	CorruptionDetected bool              `json:"corruption_detected"`
	// StreakDefaulted is set when current_streak or last_streak_check was
	// out of range or malformed.
	StreakDefaulted bool `json:"streak_defaulted"`
	// CounterDefaulted is set when a stored counter was missing or malformed.
	CounterDefaulted bool `json:"counter_defaulted"`
}

// SettingsMetrics covers the fixed settings fields.
type SettingsMetrics struct {
	DefaultedCount int     `json:"defaulted_count"`
	TotalFields    int     `json:"total_fields"`
	DefaultedRatio float64 `json:"defaulted_ratio"`
}

// NavigationMetrics covers the indivisible navigation triple.
type NavigationMetrics struct {
	WasDefaulted bool `json:"was_defaulted"`
}

// ComponentProgressMetrics covers records for components the curriculum defines.
type ComponentProgressMetrics struct {
	RetainedCount  int     `json:"retained_count"`
	DefaultedCount int     `json:"defaulted_count"`
	DefaultedRatio float64 `json:"defaulted_ratio"`
	// OrphansDropped counts stored records whose component no longer exists.
	// It is informational and does not affect PerfectlyValid.
	OrphansDropped int `json:"orphans_dropped"`
}

// OwnerMismatch records a stored owner that differs from the expected one.
// Found is nil when the input was unreadable.
type OwnerMismatch struct {
	Expected string  `json:"expected"`
	Found    *string `json:"found"`
}

// CriticalFailures names the failures that force PerfectlyValid to false
// on their own.
type CriticalFailures struct {
	OwnerMismatch *OwnerMismatch `json:"owner_mismatch,omitempty"`
}

// Any reports whether at least one critical failure was recorded.
func (c CriticalFailures) Any() bool {
	return c.OwnerMismatch != nil
}

// EnforcementResult is everything one enforcement call produces.
type EnforcementResult struct {
	Snapshot         *Snapshot        `json:"snapshot"`
	Metrics          RecoveryMetrics  `json:"metrics"`
	CriticalFailures CriticalFailures `json:"critical_failures"`
	PerfectlyValid   bool             `json:"perfectly_valid"`
}

// Ratio returns part/(part+rest), or 0 when both are zero.
func Ratio(part, rest int) float64 {
	total := part + rest
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
