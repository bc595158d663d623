package components

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/ir"
	"github.com/roach88/tally/internal/progress"
)

func TestBuiltins_InitializerPassesValidator(t *testing.T) {
	r := NewRegistry()
	for _, typ := range BuiltinTypes {
		t.Run(string(typ), func(t *testing.T) {
			p, ok := r.Lookup(string(typ))
			require.True(t, ok)
			require.NotNil(t, p.Validator)
			require.NotNil(t, p.Initializer)
			assert.True(t, p.Validator(p.Initializer()))
			assert.NoError(t, progress.ValidateSchema(p.Fields))
		})
	}
}

func TestBuiltins_InitializerReturnsFreshRecords(t *testing.T) {
	newRec := NewRegistry().Initializer(string(TypeText))
	a := newRec()
	a["complete"] = ir.IRBool(true)
	assert.Equal(t, ir.IRBool(false), newRec()["complete"])
}

func TestBuiltins_CompleteIsTrueWins(t *testing.T) {
	for _, typ := range BuiltinTypes {
		p, _ := builtin(typ)
		assert.Contains(t, p.Fields, progress.FieldSchema{Name: "complete", Strategy: progress.StrategyTrueWins}, typ)
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		rec  ir.IRObject
		want bool
	}{
		{"task ok", TypeTask, ir.Obj(ir.O("complete", ir.IRBool(true)), ir.O("checkboxes", ir.IRArray{ir.IRBool(true), ir.IRBool(false)})), true},
		{"task non-bool box", TypeTask, ir.Obj(ir.O("complete", ir.IRBool(true)), ir.O("checkboxes", ir.IRArray{ir.IRInt(1)})), false},
		{"task missing boxes", TypeTask, ir.Obj(ir.O("complete", ir.IRBool(true))), false},
		{"task too many boxes", TypeTask, ir.Obj(ir.O("complete", ir.IRBool(true)), ir.O("checkboxes", make(ir.IRArray, MaxCheckboxes+1))), false},
		{"text ok", TypeText, ir.Obj(ir.O("complete", ir.IRBool(false))), true},
		{"text string complete", TypeText, ir.Obj(ir.O("complete", ir.IRString("yes"))), false},
		{"text extra key", TypeText, ir.Obj(ir.O("complete", ir.IRBool(false)), ir.O("x", ir.IRInt(1))), false},
		{"mc ok", TypeMultipleChoice, ir.Obj(ir.O("complete", ir.IRBool(true)), ir.O("selected", ir.IRInt(2)), ir.O("attempts", ir.IRInt(1))), true},
		{"mc negative attempts", TypeMultipleChoice, ir.Obj(ir.O("complete", ir.IRBool(true)), ir.O("selected", ir.IRInt(2)), ir.O("attempts", ir.IRInt(-1))), false},
		{"mc bad selection", TypeMultipleChoice, ir.Obj(ir.O("complete", ir.IRBool(true)), ir.O("selected", ir.IRInt(-2)), ir.O("attempts", ir.IRInt(0))), false},
		{"empty", TypeText, ir.IRObject{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := builtin(tt.typ)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Validator(tt.rec))
		})
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	err := r.Register("slider", Plugin{
		Initializer: func() ir.IRObject { return ir.Obj(ir.O("value", ir.IRInt(0))) },
		Fields:      []progress.FieldSchema{{Name: "value", Strategy: progress.StrategyMax}},
	})
	require.NoError(t, err)

	p, ok := r.Lookup("slider")
	require.True(t, ok)
	assert.Nil(t, p.Validator, "validator is optional")
	assert.Equal(t, []string{"task", "text", "multiple_choice", "slider"}, r.Types())
}

func TestRegister_Rejects(t *testing.T) {
	newRec := func() ir.IRObject { return ir.IRObject{} }
	r := NewRegistry()
	require.NoError(t, r.Register("dup", Plugin{Initializer: newRec}))

	tests := []struct {
		name     string
		typeName string
		plugin   Plugin
	}{
		{"empty name", "", Plugin{Initializer: newRec}},
		{"builtin", "task", Plugin{Initializer: newRec}},
		{"no initializer", "x", Plugin{}},
		{"bad strategy", "y", Plugin{Initializer: newRec, Fields: []progress.FieldSchema{{Name: "v"}}}},
		{"duplicate", "dup", Plugin{Initializer: newRec}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.Register(tt.typeName, tt.plugin))
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("nope")
	assert.False(t, ok)
	assert.Nil(t, r.Validator("nope"))
	assert.Nil(t, r.Initializer("nope"))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = r.Lookup("task")
			_ = r.Types()
		}()
		go func(i int) {
			defer wg.Done()
			_ = r.Register(string(rune('a'+i)), Plugin{Initializer: func() ir.IRObject { return ir.IRObject{} }})
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Types(), len(BuiltinTypes)+8)
}
