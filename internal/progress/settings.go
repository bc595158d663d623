package progress

import (
	"github.com/roach88/tally/internal/ir"
)

// Setting is one stored preference and the time it was last changed.
// LastChanged 0 means the learner never customized it.
type Setting struct {
	Value       ir.IRValue `json:"value"`
	LastChanged int64      `json:"last_changed"`
}

// Settings maps a field name from SettingsSchema to its stored value.
type Settings map[string]Setting

// SettingField describes one settings field: the values it may hold and the
// value it falls back to.
type SettingField struct {
	Name     string
	Legal    []ir.IRValue
	Default  ir.IRValue
	Strategy Strategy
}

// Allows reports whether v is one of the field's legal values.
func (f SettingField) Allows(v ir.IRValue) bool {
	for _, legal := range f.Legal {
		if ir.Equal(legal, v) {
			return true
		}
	}
	return false
}

// DefaultSetting returns the field's hard default with timestamp 0.
func (f SettingField) DefaultSetting() Setting {
	return Setting{Value: f.Default, LastChanged: 0}
}

func enum(values ...string) []ir.IRValue {
	out := make([]ir.IRValue, len(values))
	for i, v := range values {
		out[i] = ir.IRString(v)
	}
	return out
}

func ints(values ...int64) []ir.IRValue {
	out := make([]ir.IRValue, len(values))
	for i, v := range values {
		out[i] = ir.IRInt(v)
	}
	return out
}

var booleans = []ir.IRValue{ir.IRBool(false), ir.IRBool(true)}

// SettingsSchema is the fixed, ordered set of settings fields.
var SettingsSchema = []SettingField{
	{Name: "theme", Legal: enum("light", "dark", "system"), Default: ir.IRString("system"), Strategy: StrategyLatestTimestamp},
	{Name: "font_size", Legal: enum("small", "medium", "large", "x-large"), Default: ir.IRString("medium"), Strategy: StrategyLatestTimestamp},
	{Name: "reduced_motion", Legal: booleans, Default: ir.IRBool(false), Strategy: StrategyLatestTimestamp},
	{Name: "high_contrast", Legal: booleans, Default: ir.IRBool(false), Strategy: StrategyLatestTimestamp},
	{Name: "language", Legal: enum("en", "es", "fr", "de", "pt"), Default: ir.IRString("en"), Strategy: StrategyLatestTimestamp},
	{Name: "sound_effects", Legal: booleans, Default: ir.IRBool(true), Strategy: StrategyLatestTimestamp},
	{Name: "animation_speed", Legal: enum("slow", "normal", "fast"), Default: ir.IRString("normal"), Strategy: StrategyLatestTimestamp},
	{Name: "show_hints", Legal: booleans, Default: ir.IRBool(true), Strategy: StrategyLatestTimestamp},
	{Name: "auto_advance", Legal: booleans, Default: ir.IRBool(false), Strategy: StrategyLatestTimestamp},
	{Name: "daily_goal_minutes", Legal: ints(5, 10, 15, 20, 30, 60), Default: ir.IRInt(15), Strategy: StrategyLatestTimestamp},
	{Name: "notifications", Legal: enum("all", "important", "none"), Default: ir.IRString("important"), Strategy: StrategyLatestTimestamp},
}

// SettingsFieldSchema projects SettingsSchema onto FieldSchema for validation.
func SettingsFieldSchema() []FieldSchema {
	out := make([]FieldSchema, len(SettingsSchema))
	for i, f := range SettingsSchema {
		out[i] = FieldSchema{Name: f.Name, Strategy: f.Strategy}
	}
	return out
}

// DefaultSettings returns every field at its hard default.
func DefaultSettings() Settings {
	s := make(Settings, len(SettingsSchema))
	for _, f := range SettingsSchema {
		s[f.Name] = f.DefaultSetting()
	}
	return s
}
