package engine

import (
	"maps"
	"slices"

	"github.com/roach88/tally/internal/curriculum"
	"github.com/roach88/tally/internal/progress"
)

// repairOverall runs corruption detection and then curriculum
// reconciliation over the unfiltered entries. Counters in the output are
// always rewritten to the post-reconciliation sizes.
func repairOverall(root map[string]any, cur curriculum.Registry) (progress.OverallProgress, progress.OverallProgressMetrics) {
	section := objectAt(root, "overall_progress")
	var m progress.OverallProgressMetrics

	rawLessons := objectAt(section, "lesson_completions")
	rawDomains, _ := section["domains_completed"].([]any)
	// A collection stored as the wrong JSON type is discarded whole and
	// counted as one dropped entry, so the loss shows in the metrics.
	if wrongShape(section, "lesson_completions", rawLessons != nil) {
		m.Lessons.DroppedCount++
	}
	if wrongShape(section, "domains_completed", rawDomains != nil) {
		m.Domains.DroppedCount++
	}

	// Corruption first: compare stored counters against raw entry counts.
	storedLessons, okL := nonNegativeInt(section["total_lessons_completed"])
	storedDomains, okD := nonNegativeInt(section["total_domains_completed"])
	m.Lessons.LostToCorruption = max(0, storedLessons-int64(len(rawLessons)))
	m.Domains.LostToCorruption = max(0, storedDomains-int64(len(rawDomains)))
	m.Lessons.CorruptionDetected = m.Lessons.LostToCorruption > 0
	m.Domains.CorruptionDetected = m.Domains.LostToCorruption > 0
	m.CorruptionDetected = m.Lessons.CorruptionDetected || m.Domains.CorruptionDetected
	m.CounterDefaulted = !okL || !okD ||
		storedLessons < int64(len(rawLessons)) || storedDomains < int64(len(rawDomains))

	// Reconciliation over the original entries.
	lessons := make(map[int64]int64, len(rawLessons))
	for _, key := range slices.Sorted(maps.Keys(rawLessons)) {
		id, okID := idFromKey(key)
		ts, okTS := nonNegativeInt(rawLessons[key])
		if !okID || !okTS || !cur.HasLesson(id) {
			m.Lessons.DroppedCount++
			continue
		}
		lessons[id] = ts
	}
	m.Lessons.KeptCount = len(lessons)
	m.Lessons.DroppedRatio = progress.Ratio(m.Lessons.DroppedCount, m.Lessons.KeptCount)

	domains := make([]int64, 0, len(rawDomains))
	seen := make(map[int64]bool, len(rawDomains))
	for _, v := range rawDomains {
		id, ok := intOf(v)
		if !ok || seen[id] || !cur.HasDomain(id) {
			m.Domains.DroppedCount++
			continue
		}
		seen[id] = true
		domains = append(domains, id)
	}
	slices.Sort(domains)
	m.Domains.KeptCount = len(domains)
	m.Domains.DroppedRatio = progress.Ratio(m.Domains.DroppedCount, m.Domains.KeptCount)

	streak, okStreak := nonNegativeInt(section["current_streak"])
	if !okStreak || streak > progress.MaxStreak {
		streak = 0
		m.StreakDefaulted = true
	}
	lastCheck, okCheck := nonNegativeInt(section["last_streak_check"])
	if !okCheck {
		lastCheck = 0
		m.StreakDefaulted = true
	}

	return progress.OverallProgress{
		LessonCompletions:     lessons,
		DomainsCompleted:      domains,
		CurrentStreak:         streak,
		LastStreakCheck:       lastCheck,
		TotalLessonsCompleted: int64(len(lessons)),
		TotalDomainsCompleted: int64(len(domains)),
	}, m
}
