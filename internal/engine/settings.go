package engine

import (
	"github.com/roach88/tally/internal/ir"
	"github.com/roach88/tally/internal/progress"
)

// repairSettings validates every schema field independently. Invalid or
// absent fields get the hard default with timestamp 0; valid ones are kept
// with their stored timestamp. Keys outside the schema are discarded.
func repairSettings(root map[string]any) (progress.Settings, progress.SettingsMetrics) {
	section := objectAt(root, "settings")
	out := make(progress.Settings, len(progress.SettingsSchema))
	m := progress.SettingsMetrics{TotalFields: len(progress.SettingsSchema)}

	for _, field := range progress.SettingsSchema {
		if s, ok := storedSetting(objectAt(section, field.Name), field); ok {
			out[field.Name] = s
			continue
		}
		out[field.Name] = field.DefaultSetting()
		m.DefaultedCount++
	}
	m.DefaultedRatio = float64(m.DefaultedCount) / float64(m.TotalFields)
	return out, m
}

func storedSetting(entry map[string]any, field progress.SettingField) (progress.Setting, bool) {
	if entry == nil {
		return progress.Setting{}, false
	}
	raw, present := entry["value"]
	if !present {
		return progress.Setting{}, false
	}
	value, err := ir.FromDecoded(raw)
	if err != nil || !field.Allows(value) {
		return progress.Setting{}, false
	}
	ts, ok := nonNegativeInt(entry["last_changed"])
	if !ok {
		return progress.Setting{}, false
	}
	return progress.Setting{Value: value, LastChanged: ts}, true
}
