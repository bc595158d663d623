package engine

import (
	"github.com/roach88/tally/internal/curriculum"
	"github.com/roach88/tally/internal/progress"
)

// repairNavigation keeps the stored triple only if the entity is home or
// known and the page is in range. Otherwise the whole triple becomes
// (home, 0, now); a valid entity with a bad page is not partially kept.
func repairNavigation(root map[string]any, cur curriculum.Registry, now int64) (progress.NavigationState, progress.NavigationMetrics) {
	section := objectAt(root, "navigation_state")
	if nav, ok := storedNavigation(section, cur); ok {
		return nav, progress.NavigationMetrics{}
	}
	return defaultNavigation(now), progress.NavigationMetrics{WasDefaulted: true}
}

func storedNavigation(section map[string]any, cur curriculum.Registry) (progress.NavigationState, bool) {
	entity, ok := intOf(section["current_entity_id"])
	if !ok {
		return progress.NavigationState{}, false
	}
	pages := 1
	if entity != progress.HomeEntityID {
		if !cur.HasEntity(entity) {
			return progress.NavigationState{}, false
		}
		pages = cur.PageCount(entity)
	}
	page, ok := intOf(section["current_page"])
	if !ok || page < 0 || page >= int64(pages) {
		return progress.NavigationState{}, false
	}
	updated, ok := nonNegativeInt(section["last_updated"])
	if !ok {
		return progress.NavigationState{}, false
	}
	return progress.NavigationState{CurrentEntityID: entity, CurrentPage: page, LastUpdated: updated}, true
}

func defaultNavigation(now int64) progress.NavigationState {
	return progress.NavigationState{CurrentEntityID: progress.HomeEntityID, CurrentPage: 0, LastUpdated: now}
}
