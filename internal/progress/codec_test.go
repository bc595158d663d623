package progress

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/ir"
)

func sampleSnapshot() *Snapshot {
	s := &Snapshot{
		Metadata: Metadata{OwnerID: "learner-1"},
		OverallProgress: OverallProgress{
			LessonCompletions:     map[int64]int64{100: 1700000000000},
			DomainsCompleted:      []int64{1},
			CurrentStreak:         3,
			LastStreakCheck:       1700000000000,
			TotalLessonsCompleted: 1,
			TotalDomainsCompleted: 1,
		},
		Settings:        DefaultSettings(),
		NavigationState: NavigationState{CurrentEntityID: 100, CurrentPage: 2, LastUpdated: 1700000000000},
		ComponentProgress: ComponentProgress{
			1001: ir.Obj(ir.O("complete", ir.IRBool(true))),
		},
	}
	s.Settings["theme"] = Setting{Value: ir.IRString("dark"), LastChanged: 1700000000000}
	return s
}

func TestEncode_WireShape(t *testing.T) {
	data, err := Encode(sampleSnapshot())
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))

	overall := generic["overall_progress"].(map[string]any)
	assert.Contains(t, overall["lesson_completions"], "100")
	assert.Equal(t, []any{float64(1)}, overall["domains_completed"])

	theme := generic["settings"].(map[string]any)["theme"].(map[string]any)
	assert.Equal(t, "dark", theme["value"])
	assert.Equal(t, float64(1700000000000), theme["last_changed"])

	comp := generic["component_progress"].(map[string]any)["1001"].(map[string]any)
	assert.Equal(t, true, comp["complete"])
}

func TestEncode_NilCollectionsBecomeEmpty(t *testing.T) {
	data, err := Encode(&Snapshot{Metadata: Metadata{OwnerID: "x"}})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"lesson_completions":{}`)
	assert.Contains(t, s, `"domains_completed":[]`)
	assert.Contains(t, s, `"component_progress":{}`)
	assert.NotContains(t, s, "null")
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	s := &Snapshot{}
	_, err := Encode(s)
	require.NoError(t, err)
	assert.Nil(t, s.OverallProgress.LessonCompletions)
}

func TestEncode_Deterministic(t *testing.T) {
	a, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	b, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestEncode_ComponentRecords(t *testing.T) {
	s := sampleSnapshot()
	s.ComponentProgress = ComponentProgress{
		9001: ir.Obj(),
		1002: ir.Obj(ir.O("complete", ir.IRBool(false))),
		1001: ir.Obj(
			ir.O("complete", ir.IRBool(true)),
			ir.O("checkboxes", ir.IRArray{ir.IRBool(true), ir.IRBool(false)}),
		),
		2001: ir.Obj(
			ir.O("complete", ir.IRBool(false)),
			ir.O("selected", ir.IRInt(-1)),
			ir.O("attempts", ir.IRInt(0)),
		),
	}

	data, err := Encode(s)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, `{"metadata":{"owner_id":"learner-1"},"overall_progress":`), text)
	assert.True(t, strings.HasSuffix(text, `"component_progress":{`+
		`"1001":{"checkboxes":[true,false],"complete":true},`+
		`"1002":{"complete":false},`+
		`"2001":{"attempts":0,"complete":false,"selected":-1},`+
		`"9001":{}}}`), text)
	assert.Contains(t, text, `"theme":{"value":"dark","last_changed":1700000000000}`)

	root, err := DecodeRaw(text)
	require.NoError(t, err)
	assert.Len(t, root["component_progress"], 4)
}

func TestEncodeIndent_ComponentRecords(t *testing.T) {
	data, err := EncodeIndent(sampleSnapshot())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")

	root, err := DecodeRaw(string(data))
	require.NoError(t, err)
	comps := root["component_progress"].(map[string]any)
	assert.Equal(t, map[string]any{"complete": true}, comps["1001"])
}

func TestSnapshot_EncodesWhenNested(t *testing.T) {
	payload := struct {
		OwnerID  string    `json:"owner_id"`
		Snapshot *Snapshot `json:"snapshot"`
	}{OwnerID: "learner-1", Snapshot: sampleSnapshot()}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	root, err := DecodeRaw(string(data))
	require.NoError(t, err)
	snap := root["snapshot"].(map[string]any)
	comps := snap["component_progress"].(map[string]any)
	assert.Equal(t, map[string]any{"complete": true}, comps["1001"])
}

func TestSettings_NilValueIsNull(t *testing.T) {
	data, err := Settings{"theme": {}}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"theme":{"value":null,"last_changed":0}}`, string(data))
}

func TestDecodeRaw(t *testing.T) {
	obj, err := DecodeRaw(`{"metadata":{"owner_id":"a"},"n":12345678901234567}`)
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567"), obj["n"])
}

func TestDecodeRaw_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"truncated", `{"metadata":{"owner_id":"a"`},
		{"garbage", `not json`},
		{"array root", `[1,2,3]`},
		{"string root", `"hello"`},
		{"null root", `null`},
		{"trailing value", `{} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRaw(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestDecodeRaw_TrailingWhitespace(t *testing.T) {
	_, err := DecodeRaw("{}\n\t ")
	assert.NoError(t, err)
}

func TestSnapshotClone_Independent(t *testing.T) {
	orig := sampleSnapshot()
	clone := orig.Clone()

	clone.OverallProgress.LessonCompletions[200] = 1
	clone.OverallProgress.DomainsCompleted[0] = 9
	clone.ComponentProgress[1001]["complete"] = ir.IRBool(false)
	clone.Settings["theme"] = Setting{Value: ir.IRString("light")}

	assert.Len(t, orig.OverallProgress.LessonCompletions, 1)
	assert.Equal(t, int64(1), orig.OverallProgress.DomainsCompleted[0])
	assert.Equal(t, ir.IRBool(true), orig.ComponentProgress[1001]["complete"])
	assert.Equal(t, ir.IRString("dark"), orig.Settings["theme"].Value)
}

func TestSettingsSchema(t *testing.T) {
	assert.Len(t, SettingsSchema, 11)
	for _, f := range SettingsSchema {
		assert.True(t, f.Allows(f.Default), "default of %s must be legal", f.Name)
	}

	defaults := DefaultSettings()
	assert.Len(t, defaults, len(SettingsSchema))
	for _, s := range defaults {
		assert.Zero(t, s.LastChanged)
	}
}

func TestSettingField_Allows(t *testing.T) {
	var goal SettingField
	for _, f := range SettingsSchema {
		if f.Name == "daily_goal_minutes" {
			goal = f
		}
	}
	assert.True(t, goal.Allows(ir.IRInt(30)))
	assert.False(t, goal.Allows(ir.IRInt(25)))
	assert.False(t, goal.Allows(ir.IRString("30")))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(0, 0))
	assert.Equal(t, 0.5, Ratio(1, 1))
	assert.Equal(t, 1.0, Ratio(3, 0))
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(sampleSnapshot())
	require.NoError(t, err)
	b, err := Fingerprint(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	changed := sampleSnapshot()
	changed.OverallProgress.CurrentStreak++
	c, err := Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
