package engine

import (
	"github.com/roach88/tally/internal/progress"
)

// Enforce repairs raw snapshot text into a valid snapshot for expectedOwner.
//
// The only error is a *PreconditionError for an unusable ctx; it is
// returned before raw is examined. Any input text, however malformed,
// yields a result.
func Enforce(raw, expectedOwner string, ctx Context) (*progress.EnforcementResult, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	now := ctx.Clock.NowMillis()

	root, err := progress.DecodeRaw(raw)
	if err != nil {
		return unreadable(expectedOwner, ctx, now), nil
	}

	meta, metaM, mismatch := repairMetadata(root, expectedOwner)
	overall, overallM := repairOverall(root, ctx.Curriculum)
	settings, settingsM := repairSettings(root)
	nav, navM := repairNavigation(root, ctx.Curriculum, now)
	comps, compsM := repairComponents(root, ctx.Curriculum, ctx.Components)

	return aggregate(
		&progress.Snapshot{
			Metadata:          meta,
			OverallProgress:   overall,
			Settings:          settings,
			NavigationState:   nav,
			ComponentProgress: comps,
		},
		progress.RecoveryMetrics{
			Metadata:          metaM,
			OverallProgress:   overallM,
			Settings:          settingsM,
			Navigation:        navM,
			ComponentProgress: compsM,
		},
		progress.CriticalFailures{OwnerMismatch: mismatch},
	), nil
}

// Defaults returns the hard-default snapshot for owner: no completions,
// default settings, home navigation and a fresh record for every
// curriculum component. It is what first-time learners start from.
func Defaults(owner string, ctx Context) (*progress.Snapshot, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return defaults(owner, ctx, ctx.Clock.NowMillis()), nil
}

func defaults(owner string, ctx Context, now int64) *progress.Snapshot {
	ids := ctx.Curriculum.AllComponentIDs()
	comps := make(progress.ComponentProgress, len(ids))
	for _, id := range ids {
		typ, _ := ctx.Curriculum.ComponentType(id)
		comps[id] = ctx.Components.Initializer(typ)().Clone()
	}
	return &progress.Snapshot{
		Metadata: progress.Metadata{OwnerID: owner},
		OverallProgress: progress.OverallProgress{
			LessonCompletions: map[int64]int64{},
			DomainsCompleted:  []int64{},
		},
		Settings:          progress.DefaultSettings(),
		NavigationState:   defaultNavigation(now),
		ComponentProgress: comps,
	}
}

// unreadable builds the result for text that could not be decoded: every
// section at maximum defaulting and an owner mismatch with no found owner.
func unreadable(expectedOwner string, ctx Context, now int64) *progress.EnforcementResult {
	snap := defaults(expectedOwner, ctx, now)
	return &progress.EnforcementResult{
		Snapshot: snap,
		Metrics: progress.RecoveryMetrics{
			Metadata: progress.MetadataMetrics{DefaultedRatio: 1.0},
			OverallProgress: progress.OverallProgressMetrics{
				Lessons:          progress.CollectionMetrics{DroppedRatio: 1.0},
				Domains:          progress.CollectionMetrics{DroppedRatio: 1.0},
				StreakDefaulted:  true,
				CounterDefaulted: true,
			},
			Settings: progress.SettingsMetrics{
				DefaultedCount: len(progress.SettingsSchema),
				TotalFields:    len(progress.SettingsSchema),
				DefaultedRatio: 1.0,
			},
			Navigation: progress.NavigationMetrics{WasDefaulted: true},
			ComponentProgress: progress.ComponentProgressMetrics{
				DefaultedCount: len(snap.ComponentProgress),
				DefaultedRatio: 1.0,
			},
		},
		CriticalFailures: progress.CriticalFailures{
			OwnerMismatch: &progress.OwnerMismatch{Expected: expectedOwner, Found: nil},
		},
		PerfectlyValid: false,
	}
}

// aggregate decides PerfectlyValid. Every section must report zero repair
// and no critical failure may be present. Beyond corruption and dropped
// entries, a defaulted streak field or a stored counter that was missing
// or below its entry count also makes the input imperfect.
func aggregate(snap *progress.Snapshot, m progress.RecoveryMetrics, crit progress.CriticalFailures) *progress.EnforcementResult {
	op := m.OverallProgress
	perfect := m.Metadata.DefaultedRatio == 0 &&
		!crit.Any() &&
		!op.CorruptionDetected &&
		op.Lessons.DroppedRatio == 0 &&
		op.Domains.DroppedRatio == 0 &&
		!op.StreakDefaulted &&
		!op.CounterDefaulted &&
		m.Settings.DefaultedRatio == 0 &&
		!m.Navigation.WasDefaulted &&
		m.ComponentProgress.DefaultedCount == 0

	return &progress.EnforcementResult{
		Snapshot:         snap,
		Metrics:          m,
		CriticalFailures: crit,
		PerfectlyValid:   perfect,
	}
}
