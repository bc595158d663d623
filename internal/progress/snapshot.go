package progress

import (
	"maps"
	"slices"

	"github.com/roach88/tally/internal/ir"
)

// HomeEntityID is the navigation entity for the home screen.
// It always exists and has exactly one page.
const HomeEntityID int64 = 0

// MaxStreak is the largest legal value of CurrentStreak.
const MaxStreak int64 = 1000

// Snapshot is the complete persisted progress state for one learner.
type Snapshot struct {
	Metadata          Metadata          `json:"metadata"`
	OverallProgress   OverallProgress   `json:"overall_progress"`
	Settings          Settings          `json:"settings"`
	NavigationState   NavigationState   `json:"navigation_state"`
	ComponentProgress ComponentProgress `json:"component_progress"`
}

// Metadata identifies the learner who owns the snapshot.
type Metadata struct {
	OwnerID string `json:"owner_id"`
}

// OverallProgress tracks curriculum-level completion.
//
// INVARIANT (after enforcement): TotalLessonsCompleted == len(LessonCompletions)
// and TotalDomainsCompleted == len(DomainsCompleted).
type OverallProgress struct {
	LessonCompletions     map[int64]int64 `json:"lesson_completions"` // lesson id -> completion time
	DomainsCompleted      []int64         `json:"domains_completed"`  // sorted, unique
	CurrentStreak         int64           `json:"current_streak"`
	LastStreakCheck       int64           `json:"last_streak_check"`
	TotalLessonsCompleted int64           `json:"total_lessons_completed"`
	TotalDomainsCompleted int64           `json:"total_domains_completed"`
}

// NavigationState is where the learner currently is.
type NavigationState struct {
	CurrentEntityID int64 `json:"current_entity_id"`
	CurrentPage     int64 `json:"current_page"`
	LastUpdated     int64 `json:"last_updated"`
}

// ComponentProgress maps component id to that component's progress record.
// Record shape is owned by the component type's plugin.
type ComponentProgress map[int64]ir.IRObject

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Metadata:        s.Metadata,
		OverallProgress: s.OverallProgress,
		NavigationState: s.NavigationState,
	}
	out.OverallProgress.LessonCompletions = maps.Clone(s.OverallProgress.LessonCompletions)
	out.OverallProgress.DomainsCompleted = slices.Clone(s.OverallProgress.DomainsCompleted)
	out.Settings = maps.Clone(s.Settings)
	if s.ComponentProgress != nil {
		out.ComponentProgress = make(ComponentProgress, len(s.ComponentProgress))
		for id, rec := range s.ComponentProgress {
			out.ComponentProgress[id] = rec.Clone()
		}
	}
	return out
}

// normalize replaces nil collections with empty ones so the wire form never
// carries JSON null.
func (s *Snapshot) normalize() {
	if s.OverallProgress.LessonCompletions == nil {
		s.OverallProgress.LessonCompletions = map[int64]int64{}
	}
	if s.OverallProgress.DomainsCompleted == nil {
		s.OverallProgress.DomainsCompleted = []int64{}
	}
	if s.Settings == nil {
		s.Settings = Settings{}
	}
	if s.ComponentProgress == nil {
		s.ComponentProgress = ComponentProgress{}
	}
}
