package testutil

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/curriculum"
)

// Fixture curriculum ids.
const (
	DomainFoundations int64 = 1
	DomainFocus       int64 = 2

	LessonBreathing int64 = 100 // domain 1, 3 pages
	LessonAttention int64 = 200 // domain 2, 1 page
	MenuMain        int64 = 10  // 2 pages

	ComponentTask  int64 = 1001 // task, lesson 100
	ComponentText  int64 = 1002 // text, lesson 100
	ComponentQuiz  int64 = 2001 // multiple_choice, lesson 200
	ComponentIntro int64 = 9001 // text, menu 10

	FixtureComponentCount = 4
)

// FixtureOwner is the owner id of ValidSnapshot in most tests.
const FixtureOwner = "learner-0001"

// FixtureDocument is the standard test curriculum.
func FixtureDocument() curriculum.Document {
	d1, d2 := DomainFoundations, DomainFocus
	return curriculum.Document{
		Domains: []curriculum.DomainDoc{
			{ID: DomainFoundations, Title: "Foundations"},
			{ID: DomainFocus, Title: "Focus"},
		},
		Lessons: []curriculum.EntityDoc{
			{
				Metadata: curriculum.EntityMeta{ID: LessonBreathing, Title: "Breathing", DomainID: &d1},
				Pages: []curriculum.PageDoc{
					{Components: []curriculum.ComponentDoc{{ID: ComponentTask, Type: "task"}}},
					{Components: []curriculum.ComponentDoc{{ID: ComponentText, Type: "text"}}},
					{},
				},
			},
			{
				Metadata: curriculum.EntityMeta{ID: LessonAttention, Title: "Attention", DomainID: &d2},
				Pages: []curriculum.PageDoc{
					{Components: []curriculum.ComponentDoc{{ID: ComponentQuiz, Type: "multiple_choice"}}},
				},
			},
		},
		Menus: []curriculum.EntityDoc{
			{
				Metadata: curriculum.EntityMeta{ID: MenuMain, Title: "Main"},
				Pages: []curriculum.PageDoc{
					{Components: []curriculum.ComponentDoc{{ID: ComponentIntro, Type: "text"}}},
					{},
				},
			},
		},
	}
}

// Curriculum builds the standard test curriculum.
func Curriculum(t testing.TB) *curriculum.Catalog {
	t.Helper()
	b := curriculum.NewBuilder()
	require.NoError(t, b.AddDocument(FixtureDocument(), "fixture"))
	return b.Build()
}

// ValidSnapshot returns a loosely typed snapshot that passes enforcement
// against Curriculum without any repair. Tests mutate it to inject damage.
func ValidSnapshot(owner string) map[string]any {
	settings := map[string]any{
		"theme":              setting("dark", DefaultNow-1000),
		"font_size":          setting("medium", 0),
		"reduced_motion":     setting(false, 0),
		"high_contrast":      setting(false, 0),
		"language":           setting("en", 0),
		"sound_effects":      setting(true, 0),
		"animation_speed":    setting("normal", 0),
		"show_hints":         setting(true, 0),
		"auto_advance":       setting(false, 0),
		"daily_goal_minutes": setting(30, DefaultNow-5000),
		"notifications":      setting("important", 0),
	}
	return map[string]any{
		"metadata": map[string]any{"owner_id": owner},
		"overall_progress": map[string]any{
			"lesson_completions":      map[string]any{"100": DefaultNow - 86400000},
			"domains_completed":       []any{1},
			"current_streak":          3,
			"last_streak_check":       DefaultNow - 3600000,
			"total_lessons_completed": 1,
			"total_domains_completed": 1,
		},
		"settings": settings,
		"navigation_state": map[string]any{
			"current_entity_id": LessonBreathing,
			"current_page":      2,
			"last_updated":      DefaultNow - 60000,
		},
		"component_progress": map[string]any{
			"1001": map[string]any{"complete": true, "checkboxes": []any{true, true}},
			"1002": map[string]any{"complete": true},
			"2001": map[string]any{"complete": false, "selected": -1, "attempts": 0},
			"9001": map[string]any{"complete": false},
		},
	}
}

func setting(value any, lastChanged int64) map[string]any {
	return map[string]any{"value": value, "last_changed": lastChanged}
}

// MustJSON encodes v, failing the test on error.
func MustJSON(t testing.TB, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// Section returns a nested object of a ValidSnapshot for mutation.
func Section(doc map[string]any, name string) map[string]any {
	return doc[name].(map[string]any)
}
