package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/tally/internal/components"
	"github.com/roach88/tally/internal/curriculum"
	"github.com/roach88/tally/internal/ir"
	"github.com/roach88/tally/internal/progress"
	"github.com/roach88/tally/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const owner = testutil.FixtureOwner

func testContext(t *testing.T) Context {
	t.Helper()
	return Context{
		Curriculum: testutil.Curriculum(t),
		Components: components.NewRegistry(),
		Clock:      FixedClock(testutil.DefaultNow),
	}
}

func enforceDoc(t *testing.T, doc map[string]any) *progress.EnforcementResult {
	t.Helper()
	res, err := Enforce(testutil.MustJSON(t, doc), owner, testContext(t))
	require.NoError(t, err)
	return res
}

func TestEnforce_ValidSnapshotIsPerfect(t *testing.T) {
	res := enforceDoc(t, testutil.ValidSnapshot(owner))

	assert.True(t, res.PerfectlyValid, "metrics: %+v", res.Metrics)
	assert.False(t, res.CriticalFailures.Any())
	assert.Equal(t, progress.RecoveryMetrics{
		OverallProgress: progress.OverallProgressMetrics{
			Lessons: progress.CollectionMetrics{KeptCount: 1},
			Domains: progress.CollectionMetrics{KeptCount: 1},
		},
		Settings:          progress.SettingsMetrics{TotalFields: len(progress.SettingsSchema)},
		ComponentProgress: progress.ComponentProgressMetrics{RetainedCount: testutil.FixtureComponentCount},
	}, res.Metrics)

	snap := res.Snapshot
	assert.Equal(t, owner, snap.Metadata.OwnerID)
	assert.Equal(t, map[int64]int64{100: testutil.DefaultNow - 86400000}, snap.OverallProgress.LessonCompletions)
	assert.Equal(t, []int64{1}, snap.OverallProgress.DomainsCompleted)
	assert.Equal(t, int64(3), snap.OverallProgress.CurrentStreak)
	assert.Equal(t, progress.Setting{Value: ir.IRString("dark"), LastChanged: testutil.DefaultNow - 1000}, snap.Settings["theme"])
	assert.Equal(t, progress.Setting{Value: ir.IRInt(30), LastChanged: testutil.DefaultNow - 5000}, snap.Settings["daily_goal_minutes"])
	assert.Equal(t, progress.NavigationState{CurrentEntityID: 100, CurrentPage: 2, LastUpdated: testutil.DefaultNow - 60000}, snap.NavigationState)
	assert.Equal(t, ir.Obj(
		ir.O("complete", ir.IRBool(true)),
		ir.O("checkboxes", ir.IRArray{ir.IRBool(true), ir.IRBool(true)}),
	), snap.ComponentProgress[testutil.ComponentTask])
}

func TestEnforce_CorruptionWithoutDrift(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	op := testutil.Section(doc, "overall_progress")
	op["lesson_completions"] = map[string]any{"100": 5}
	op["total_lessons_completed"] = 5

	res := enforceDoc(t, doc)
	m := res.Metrics.OverallProgress

	assert.Equal(t, int64(4), m.Lessons.LostToCorruption)
	assert.True(t, m.Lessons.CorruptionDetected)
	assert.True(t, m.CorruptionDetected)
	assert.Equal(t, 0.0, m.Lessons.DroppedRatio)
	assert.Equal(t, 1, m.Lessons.KeptCount)
	assert.Equal(t, int64(1), res.Snapshot.OverallProgress.TotalLessonsCompleted)
	assert.False(t, res.PerfectlyValid)
}

func TestEnforce_DriftWithoutCorruption(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	op := testutil.Section(doc, "overall_progress")
	op["lesson_completions"] = map[string]any{"100": 1, "999": 2}
	op["total_lessons_completed"] = 2

	res := enforceDoc(t, doc)
	m := res.Metrics.OverallProgress

	assert.False(t, m.CorruptionDetected)
	assert.Equal(t, 0.5, m.Lessons.DroppedRatio)
	assert.Equal(t, 1, m.Lessons.DroppedCount)
	assert.Equal(t, int64(1), res.Snapshot.OverallProgress.TotalLessonsCompleted)
	assert.Equal(t, map[int64]int64{100: 1}, res.Snapshot.OverallProgress.LessonCompletions)
	assert.False(t, res.PerfectlyValid)
}

func TestEnforce_CorruptionAndDriftReportedIndependently(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	op := testutil.Section(doc, "overall_progress")
	op["lesson_completions"] = map[string]any{"100": 1, "999": 2}
	op["total_lessons_completed"] = 6
	op["domains_completed"] = []any{1, 7}
	op["total_domains_completed"] = 3

	m := enforceDoc(t, doc).Metrics.OverallProgress

	assert.Equal(t, int64(4), m.Lessons.LostToCorruption)
	assert.Equal(t, 0.5, m.Lessons.DroppedRatio)
	assert.Equal(t, int64(1), m.Domains.LostToCorruption)
	assert.Equal(t, 0.5, m.Domains.DroppedRatio)
	assert.True(t, m.CorruptionDetected)
}

func TestEnforce_CounterTruth(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(op map[string]any)
	}{
		{"untouched", func(map[string]any) {}},
		{"inflated counters", func(op map[string]any) {
			op["total_lessons_completed"] = 40
			op["total_domains_completed"] = 9
		}},
		{"deflated counters", func(op map[string]any) {
			op["lesson_completions"] = map[string]any{"100": 1, "200": 2}
			op["total_lessons_completed"] = 0
		}},
		{"missing counters", func(op map[string]any) {
			delete(op, "total_lessons_completed")
			delete(op, "total_domains_completed")
		}},
		{"string counters", func(op map[string]any) {
			op["total_lessons_completed"] = "1"
		}},
		{"collections wrong type", func(op map[string]any) {
			op["lesson_completions"] = []any{100}
			op["domains_completed"] = map[string]any{"1": true}
		}},
		{"duplicate domains", func(op map[string]any) {
			op["domains_completed"] = []any{1, 1, 2, 2}
			op["total_domains_completed"] = 4
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testutil.ValidSnapshot(owner)
			tt.mutate(testutil.Section(doc, "overall_progress"))

			op := enforceDoc(t, doc).Snapshot.OverallProgress
			assert.Equal(t, int64(len(op.LessonCompletions)), op.TotalLessonsCompleted)
			assert.Equal(t, int64(len(op.DomainsCompleted)), op.TotalDomainsCompleted)
		})
	}
}

func TestEnforce_DomainsSortedAndUnique(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	op := testutil.Section(doc, "overall_progress")
	op["domains_completed"] = []any{2, 1, 2, "x", 1.5}
	op["total_domains_completed"] = 5

	res := enforceDoc(t, doc)
	assert.Equal(t, []int64{1, 2}, res.Snapshot.OverallProgress.DomainsCompleted)
	assert.Equal(t, 3, res.Metrics.OverallProgress.Domains.DroppedCount)
	assert.Equal(t, 0.6, res.Metrics.OverallProgress.Domains.DroppedRatio)
}

func TestEnforce_MalformedLessonEntriesDropped(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	op := testutil.Section(doc, "overall_progress")
	op["lesson_completions"] = map[string]any{"100": -5, "0200": 1, "abc": 1, "200": "soon"}
	op["total_lessons_completed"] = 4

	res := enforceDoc(t, doc)
	m := res.Metrics.OverallProgress.Lessons
	assert.Empty(t, res.Snapshot.OverallProgress.LessonCompletions)
	assert.Equal(t, 4, m.DroppedCount)
	assert.Equal(t, 1.0, m.DroppedRatio)
	assert.False(t, m.CorruptionDetected)
}

func TestEnforce_DeflatedCounterIsImperfect(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	testutil.Section(doc, "overall_progress")["total_lessons_completed"] = 0

	res := enforceDoc(t, doc)
	m := res.Metrics.OverallProgress
	assert.False(t, m.CorruptionDetected)
	assert.Zero(t, m.Lessons.DroppedCount)
	assert.True(t, m.CounterDefaulted)
	assert.False(t, res.PerfectlyValid)
	assert.Equal(t, int64(1), res.Snapshot.OverallProgress.TotalLessonsCompleted)
}

func TestEnforce_WrongShapedCollectionsAreCounted(t *testing.T) {
	tests := []struct {
		name        string
		lessons     any
		domains     any
		wantDropped int
		wantPerfect bool
	}{
		{"string and object", "garbage", map[string]any{"x": 1}, 1, false},
		{"number and string", 42, "1", 1, false},
		{"array and bool", []any{100}, true, 1, false},
		{"null is empty", nil, nil, 0, true},
		{"empty containers", map[string]any{}, []any{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testutil.ValidSnapshot(owner)
			op := testutil.Section(doc, "overall_progress")
			op["lesson_completions"] = tt.lessons
			op["domains_completed"] = tt.domains
			op["total_lessons_completed"] = 0
			op["total_domains_completed"] = 0

			res := enforceDoc(t, doc)
			m := res.Metrics.OverallProgress
			assert.Empty(t, res.Snapshot.OverallProgress.LessonCompletions)
			assert.Empty(t, res.Snapshot.OverallProgress.DomainsCompleted)
			assert.Equal(t, tt.wantDropped, m.Lessons.DroppedCount)
			assert.Equal(t, tt.wantDropped, m.Domains.DroppedCount)
			assert.Equal(t, float64(tt.wantDropped), m.Lessons.DroppedRatio)
			assert.False(t, m.CorruptionDetected)
			assert.Equal(t, tt.wantPerfect, res.PerfectlyValid)
		})
	}
}

func TestEnforce_Streak(t *testing.T) {
	tests := []struct {
		name      string
		streak    any
		check     any
		want      int64
		defaulted bool
	}{
		{"valid", 7, 5, 7, false},
		{"upper bound", 1000, 5, 1000, false},
		{"over bound", 1001, 5, 0, true},
		{"negative", -1, 5, 0, true},
		{"string", "7", 5, 0, true},
		{"bad check", 7, -1, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testutil.ValidSnapshot(owner)
			op := testutil.Section(doc, "overall_progress")
			op["current_streak"] = tt.streak
			op["last_streak_check"] = tt.check

			res := enforceDoc(t, doc)
			assert.Equal(t, tt.want, res.Snapshot.OverallProgress.CurrentStreak)
			assert.Equal(t, tt.defaulted, res.Metrics.OverallProgress.StreakDefaulted)
			assert.Equal(t, !tt.defaulted, res.PerfectlyValid)
		})
	}
}

func TestEnforce_UnreadableInput(t *testing.T) {
	inputs := map[string]string{
		"empty":        "",
		"truncated":    `{"metadata":{"owner_id":"learner-0001"}`,
		"garbage":      "\x00\x01not json",
		"array root":   `[{"metadata":{}}]`,
		"number root":  `42`,
		"trailing":     `{} trailing`,
		"single quote": `{'metadata': 1}`,
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			ctx := testContext(t)
			res, err := Enforce(raw, owner, ctx)
			require.NoError(t, err)

			assert.False(t, res.PerfectlyValid)
			assert.Equal(t, 1.0, res.Metrics.Metadata.DefaultedRatio)
			assert.Equal(t, 1.0, res.Metrics.Settings.DefaultedRatio)
			assert.True(t, res.Metrics.Navigation.WasDefaulted)
			assert.Equal(t, 1.0, res.Metrics.ComponentProgress.DefaultedRatio)
			assert.Equal(t, testutil.FixtureComponentCount, res.Metrics.ComponentProgress.DefaultedCount)

			require.NotNil(t, res.CriticalFailures.OwnerMismatch)
			assert.Equal(t, owner, res.CriticalFailures.OwnerMismatch.Expected)
			assert.Nil(t, res.CriticalFailures.OwnerMismatch.Found)

			want, err := Defaults(owner, ctx)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(want, res.Snapshot))
		})
	}
}

func TestEnforce_OwnerMismatchNeverAdoptsStoredOwner(t *testing.T) {
	doc := testutil.ValidSnapshot("someone-else")

	res := enforceDoc(t, doc)

	assert.Equal(t, owner, res.Snapshot.Metadata.OwnerID)
	require.NotNil(t, res.CriticalFailures.OwnerMismatch)
	assert.Equal(t, owner, res.CriticalFailures.OwnerMismatch.Expected)
	require.NotNil(t, res.CriticalFailures.OwnerMismatch.Found)
	assert.Equal(t, "someone-else", *res.CriticalFailures.OwnerMismatch.Found)
	assert.Equal(t, 0.0, res.Metrics.Metadata.DefaultedRatio)
	assert.False(t, res.PerfectlyValid)

	// Downstream sections are still processed normally.
	assert.Equal(t, testutil.FixtureComponentCount, res.Metrics.ComponentProgress.RetainedCount)
	assert.Equal(t, []int64{1}, res.Snapshot.OverallProgress.DomainsCompleted)
}

func TestEnforce_MissingOwnerIsDefaulted(t *testing.T) {
	for name, meta := range map[string]any{
		"absent":     map[string]any{},
		"empty":      map[string]any{"owner_id": ""},
		"number":     map[string]any{"owner_id": 12},
		"not object": "learner-0001",
	} {
		t.Run(name, func(t *testing.T) {
			doc := testutil.ValidSnapshot(owner)
			doc["metadata"] = meta

			res := enforceDoc(t, doc)
			assert.Equal(t, owner, res.Snapshot.Metadata.OwnerID)
			assert.Equal(t, 1.0, res.Metrics.Metadata.DefaultedRatio)
			assert.Nil(t, res.CriticalFailures.OwnerMismatch)
			assert.False(t, res.PerfectlyValid)
		})
	}
}

func TestEnforce_Settings(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	s := testutil.Section(doc, "settings")
	s["theme"] = map[string]any{"value": "neon", "last_changed": 5}
	s["font_size"] = map[string]any{"value": "large", "last_changed": -1}
	delete(s, "language")
	s["unknown_field"] = map[string]any{"value": 1, "last_changed": 1}

	res := enforceDoc(t, doc)
	got := res.Snapshot.Settings

	assert.Equal(t, progress.Setting{Value: ir.IRString("system"), LastChanged: 0}, got["theme"])
	assert.Equal(t, progress.Setting{Value: ir.IRString("medium"), LastChanged: 0}, got["font_size"])
	assert.Equal(t, progress.Setting{Value: ir.IRString("en"), LastChanged: 0}, got["language"])
	assert.Equal(t, progress.Setting{Value: ir.IRInt(30), LastChanged: testutil.DefaultNow - 5000}, got["daily_goal_minutes"])
	assert.NotContains(t, got, "unknown_field")
	assert.Len(t, got, len(progress.SettingsSchema))

	assert.Equal(t, 3, res.Metrics.Settings.DefaultedCount)
	assert.InDelta(t, 3.0/11.0, res.Metrics.Settings.DefaultedRatio, 1e-9)
	assert.False(t, res.PerfectlyValid)
}

func TestEnforce_SettingsSectionMissing(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	delete(doc, "settings")

	res := enforceDoc(t, doc)
	assert.Equal(t, 1.0, res.Metrics.Settings.DefaultedRatio)
	assert.Equal(t, progress.DefaultSettings(), res.Snapshot.Settings)
}

func TestEnforce_NavigationAllOrNothing(t *testing.T) {
	home := progress.NavigationState{CurrentEntityID: 0, CurrentPage: 0, LastUpdated: testutil.DefaultNow}
	tests := []struct {
		name      string
		nav       map[string]any
		want      progress.NavigationState
		defaulted bool
	}{
		{"unknown entity", map[string]any{"current_entity_id": 555, "current_page": 0, "last_updated": 9}, home, true},
		{"page past end", map[string]any{"current_entity_id": 100, "current_page": 3, "last_updated": 9}, home, true},
		{"negative page", map[string]any{"current_entity_id": 100, "current_page": -1, "last_updated": 9}, home, true},
		{"bad timestamp", map[string]any{"current_entity_id": 100, "current_page": 0, "last_updated": "now"}, home, true},
		{"home page 1", map[string]any{"current_entity_id": 0, "current_page": 1, "last_updated": 9}, home, true},
		{"missing", nil, home, true},
		{"home", map[string]any{"current_entity_id": 0, "current_page": 0, "last_updated": 9},
			progress.NavigationState{LastUpdated: 9}, false},
		{"menu last page", map[string]any{"current_entity_id": 10, "current_page": 1, "last_updated": 9},
			progress.NavigationState{CurrentEntityID: 10, CurrentPage: 1, LastUpdated: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testutil.ValidSnapshot(owner)
			if tt.nav == nil {
				delete(doc, "navigation_state")
			} else {
				doc["navigation_state"] = tt.nav
			}

			res := enforceDoc(t, doc)
			assert.Equal(t, tt.want, res.Snapshot.NavigationState)
			assert.Equal(t, tt.defaulted, res.Metrics.Navigation.WasDefaulted)
		})
	}
}

func TestEnforce_ComponentProgress(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	cp := testutil.Section(doc, "component_progress")
	cp["1001"] = map[string]any{"complete": "yes", "checkboxes": []any{}}
	delete(cp, "1002")
	cp["4242"] = map[string]any{"complete": true}
	cp["junk"] = 1

	res := enforceDoc(t, doc)
	m := res.Metrics.ComponentProgress

	assert.Equal(t, 2, m.RetainedCount)
	assert.Equal(t, 2, m.DefaultedCount)
	assert.Equal(t, 0.5, m.DefaultedRatio)
	assert.Equal(t, 2, m.OrphansDropped)

	got := res.Snapshot.ComponentProgress
	assert.Len(t, got, testutil.FixtureComponentCount)
	assert.Equal(t, ir.Obj(ir.O("complete", ir.IRBool(false)), ir.O("checkboxes", ir.IRArray{})), got[testutil.ComponentTask])
	assert.Equal(t, ir.Obj(ir.O("complete", ir.IRBool(false))), got[testutil.ComponentText])
	assert.NotContains(t, got, int64(4242))
	assert.False(t, res.PerfectlyValid)
}

func TestEnforce_OrphansAloneKeepPerfection(t *testing.T) {
	doc := testutil.ValidSnapshot(owner)
	testutil.Section(doc, "component_progress")["4242"] = map[string]any{"complete": true}

	res := enforceDoc(t, doc)
	assert.Equal(t, 1, res.Metrics.ComponentProgress.OrphansDropped)
	assert.True(t, res.PerfectlyValid)
}

func TestEnforce_TypeWithoutValidatorAlwaysDefaults(t *testing.T) {
	b := curriculum.NewBuilder()
	require.NoError(t, b.AddDocument(testutil.FixtureDocument(), ""))
	require.NoError(t, b.AddEntity(curriculum.KindMenu, curriculum.EntityDoc{
		Metadata: curriculum.EntityMeta{ID: 11},
		Pages:    []curriculum.PageDoc{{Components: []curriculum.ComponentDoc{{ID: 7000, Type: "slider"}}}},
	}, ""))

	plugins := components.NewRegistry()
	require.NoError(t, plugins.Register("slider", components.Plugin{
		Initializer: func() ir.IRObject { return ir.Obj(ir.O("value", ir.IRInt(50))) },
	}))
	ctx := Context{Curriculum: b.Build(), Components: plugins, Clock: FixedClock(testutil.DefaultNow)}

	doc := testutil.ValidSnapshot(owner)
	testutil.Section(doc, "component_progress")["7000"] = map[string]any{"value": 80}

	res, err := Enforce(testutil.MustJSON(t, doc), owner, ctx)
	require.NoError(t, err)
	assert.Equal(t, ir.Obj(ir.O("value", ir.IRInt(50))), res.Snapshot.ComponentProgress[7000])
	assert.Equal(t, 1, res.Metrics.ComponentProgress.DefaultedCount)
	assert.False(t, res.PerfectlyValid)
}

func TestEnforce_Idempotent(t *testing.T) {
	damaged := map[string]func(doc map[string]any){
		"valid": func(map[string]any) {},
		"everything wrong": func(doc map[string]any) {
			doc["metadata"] = map[string]any{"owner_id": "intruder"}
			op := testutil.Section(doc, "overall_progress")
			op["lesson_completions"] = map[string]any{"100": 1, "999": 2}
			op["total_lessons_completed"] = 12
			op["current_streak"] = 5000
			testutil.Section(doc, "settings")["theme"] = "dark"
			doc["navigation_state"] = map[string]any{"current_entity_id": 404}
			testutil.Section(doc, "component_progress")["2001"] = map[string]any{}
		},
		"sections missing": func(doc map[string]any) {
			for k := range doc {
				delete(doc, k)
			}
		},
	}

	for name, damage := range damaged {
		t.Run(name, func(t *testing.T) {
			doc := testutil.ValidSnapshot(owner)
			damage(doc)
			first := enforceDoc(t, doc)

			text, err := progress.Encode(first.Snapshot)
			require.NoError(t, err)
			second, err := Enforce(string(text), owner, testContext(t))
			require.NoError(t, err)

			assert.True(t, second.PerfectlyValid, "metrics: %+v", second.Metrics)
			assert.Empty(t, cmp.Diff(first.Snapshot, second.Snapshot))
		})
	}
}

func TestEnforce_UnreadableOutputIsIdempotent(t *testing.T) {
	first, err := Enforce("{{{", owner, testContext(t))
	require.NoError(t, err)

	text, err := progress.Encode(first.Snapshot)
	require.NoError(t, err)
	second, err := Enforce(string(text), owner, testContext(t))
	require.NoError(t, err)
	assert.True(t, second.PerfectlyValid)
}

func TestEnforce_EmptyCurriculumAlwaysFails(t *testing.T) {
	ctx := Context{
		Curriculum: curriculum.NewBuilder().Build(),
		Components: components.NewRegistry(),
		Clock:      FixedClock(testutil.DefaultNow),
	}
	for _, raw := range []string{"", "garbage", testutil.MustJSON(t, testutil.ValidSnapshot(owner))} {
		res, err := Enforce(raw, owner, ctx)
		assert.Nil(t, res)
		assert.True(t, IsEmptyCurriculum(err), "raw=%q err=%v", raw, err)
	}
}

func TestEnforce_Preconditions(t *testing.T) {
	valid := testContext(t)

	b := curriculum.NewBuilder()
	require.NoError(t, b.AddEntity(curriculum.KindMenu, curriculum.EntityDoc{
		Metadata: curriculum.EntityMeta{ID: 1},
		Pages:    []curriculum.PageDoc{{Components: []curriculum.ComponentDoc{{ID: 1, Type: "hologram"}}}},
	}, ""))

	tests := []struct {
		name string
		ctx  Context
		code PreconditionCode
	}{
		{"nil curriculum", Context{Components: valid.Components, Clock: valid.Clock}, ErrCodeMissingCollaborator},
		{"nil components", Context{Curriculum: valid.Curriculum, Clock: valid.Clock}, ErrCodeMissingCollaborator},
		{"nil clock", Context{Curriculum: valid.Curriculum, Components: valid.Components}, ErrCodeMissingCollaborator},
		{"unknown component type", Context{Curriculum: b.Build(), Components: valid.Components, Clock: valid.Clock}, ErrCodeMissingInitializer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Enforce("{}", owner, tt.ctx)
			var pe *PreconditionError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.code, pe.Code)

			_, err = Defaults(owner, tt.ctx)
			assert.True(t, IsPreconditionError(err))
		})
	}
}

func TestEnforce_ResultDoesNotAliasSharedState(t *testing.T) {
	ctx := testContext(t)
	first, err := Enforce("", owner, ctx)
	require.NoError(t, err)

	first.Snapshot.ComponentProgress[testutil.ComponentText]["complete"] = ir.IRBool(true)
	first.Snapshot.Settings["theme"] = progress.Setting{Value: ir.IRString("dark")}

	second, err := Enforce("", owner, ctx)
	require.NoError(t, err)
	assert.Equal(t, ir.IRBool(false), second.Snapshot.ComponentProgress[testutil.ComponentText]["complete"])
	assert.Equal(t, ir.IRString("system"), second.Snapshot.Settings["theme"].Value)
}

func TestDefaults(t *testing.T) {
	snap, err := Defaults(owner, testContext(t))
	require.NoError(t, err)

	assert.Equal(t, owner, snap.Metadata.OwnerID)
	assert.Empty(t, snap.OverallProgress.LessonCompletions)
	assert.NotNil(t, snap.OverallProgress.DomainsCompleted)
	assert.Equal(t, progress.NavigationState{LastUpdated: testutil.DefaultNow}, snap.NavigationState)
	assert.Len(t, snap.ComponentProgress, testutil.FixtureComponentCount)
	assert.Equal(t, progress.DefaultSettings(), snap.Settings)
}
