package engine

import (
	"github.com/roach88/tally/internal/components"
	"github.com/roach88/tally/internal/curriculum"
	"github.com/roach88/tally/internal/ir"
	"github.com/roach88/tally/internal/progress"
)

// repairComponents enumerates the curriculum's components, not the stored
// ones. Stored records that pass their type's validator are kept; all other
// curriculum components get a fresh record from the initializer. Stored
// records for components the curriculum no longer defines are dropped.
func repairComponents(root map[string]any, cur curriculum.Registry, plugins *components.Registry) (progress.ComponentProgress, progress.ComponentProgressMetrics) {
	section := objectAt(root, "component_progress")
	ids := cur.AllComponentIDs()
	out := make(progress.ComponentProgress, len(ids))
	var m progress.ComponentProgressMetrics

	for _, id := range ids {
		typ, _ := cur.ComponentType(id)
		if rec, ok := storedRecord(section, id, plugins.Validator(typ)); ok {
			out[id] = rec
			m.RetainedCount++
			continue
		}
		out[id] = plugins.Initializer(typ)().Clone()
		m.DefaultedCount++
	}

	for key := range section {
		id, ok := idFromKey(key)
		if !ok || !cur.HasComponent(id) {
			m.OrphansDropped++
		}
	}
	m.DefaultedRatio = progress.Ratio(m.DefaultedCount, m.RetainedCount)
	return out, m
}

func storedRecord(section map[string]any, id int64, validate components.Validator) (ir.IRObject, bool) {
	if validate == nil {
		return nil, false
	}
	raw, ok := section[formatID(id)]
	if !ok {
		return nil, false
	}
	v, err := ir.FromDecoded(raw)
	if err != nil {
		return nil, false
	}
	rec, ok := v.(ir.IRObject)
	if !ok || !validate(rec.Clone()) {
		return nil, false
	}
	return rec, true
}
