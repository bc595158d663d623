package components

import (
	"github.com/roach88/tally/internal/ir"
	"github.com/roach88/tally/internal/progress"
)

// Type is a built-in component type.
type Type string

const (
	TypeTask           Type = "task"
	TypeText           Type = "text"
	TypeMultipleChoice Type = "multiple_choice"
)

// BuiltinTypes lists the built-in types in declaration order.
var BuiltinTypes = []Type{TypeTask, TypeText, TypeMultipleChoice}

// MaxCheckboxes is the largest number of checkboxes a task may have.
const MaxCheckboxes = 10

// Validator reports whether a stored progress record is well formed.
type Validator func(ir.IRObject) bool

// Initializer returns a fresh default progress record.
type Initializer func() ir.IRObject

// Plugin is everything the engine needs to know about one component type.
// Validator may be nil, which makes every stored record invalid.
type Plugin struct {
	Validator   Validator
	Initializer Initializer
	Fields      []progress.FieldSchema
}

// builtin resolves a built-in type. The switch is exhaustive over Type.
func builtin(t Type) (Plugin, bool) {
	switch t {
	case TypeTask:
		return Plugin{
			Validator:   validateTask,
			Initializer: initTask,
			Fields: []progress.FieldSchema{
				{Name: "complete", Strategy: progress.StrategyTrueWins},
				{Name: "checkboxes", Strategy: progress.StrategyOrElementwise},
			},
		}, true
	case TypeText:
		return Plugin{
			Validator:   validateText,
			Initializer: initText,
			Fields: []progress.FieldSchema{
				{Name: "complete", Strategy: progress.StrategyTrueWins},
			},
		}, true
	case TypeMultipleChoice:
		return Plugin{
			Validator:   validateMultipleChoice,
			Initializer: initMultipleChoice,
			Fields: []progress.FieldSchema{
				{Name: "complete", Strategy: progress.StrategyTrueWins},
				{Name: "selected", Strategy: progress.StrategyLatestTimestamp},
				{Name: "attempts", Strategy: progress.StrategyMax},
			},
		}, true
	default:
		return Plugin{}, false
	}
}

func initTask() ir.IRObject {
	return ir.Obj(
		ir.O("complete", ir.IRBool(false)),
		ir.O("checkboxes", ir.IRArray{}),
	)
}

func validateTask(rec ir.IRObject) bool {
	if len(rec) != 2 || !isBool(rec["complete"]) {
		return false
	}
	boxes, ok := rec["checkboxes"].(ir.IRArray)
	if !ok || len(boxes) > MaxCheckboxes {
		return false
	}
	for _, b := range boxes {
		if !isBool(b) {
			return false
		}
	}
	return true
}

func initText() ir.IRObject {
	return ir.Obj(ir.O("complete", ir.IRBool(false)))
}

func validateText(rec ir.IRObject) bool {
	return len(rec) == 1 && isBool(rec["complete"])
}

func initMultipleChoice() ir.IRObject {
	return ir.Obj(
		ir.O("complete", ir.IRBool(false)),
		ir.O("selected", ir.IRInt(-1)),
		ir.O("attempts", ir.IRInt(0)),
	)
}

func validateMultipleChoice(rec ir.IRObject) bool {
	if len(rec) != 3 || !isBool(rec["complete"]) {
		return false
	}
	selected, ok := rec["selected"].(ir.IRInt)
	if !ok || selected < -1 {
		return false
	}
	attempts, ok := rec["attempts"].(ir.IRInt)
	return ok && attempts >= 0
}

func isBool(v ir.IRValue) bool {
	_, ok := v.(ir.IRBool)
	return ok
}
