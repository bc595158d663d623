package progress

import (
	"errors"
	"fmt"
)

// Strategy declares how two independently edited copies of a field are
// reconciled. The set is closed: adding a variant requires a handler in
// every exhaustive switch below.
type Strategy int

const (
	// StrategyMax keeps the larger value.
	StrategyMax Strategy = iota + 1
	// StrategyUnion unions two sets or maps.
	StrategyUnion
	// StrategyLatestTimestamp prefers the most recently changed value.
	StrategyLatestTimestamp
	// StrategyOrElementwise ORs two boolean lists element by element.
	StrategyOrElementwise
	// StrategyTrueWins keeps true if either side is true.
	StrategyTrueWins
)

// AllStrategies lists every Strategy in declaration order.
var AllStrategies = []Strategy{
	StrategyMax,
	StrategyUnion,
	StrategyLatestTimestamp,
	StrategyOrElementwise,
	StrategyTrueWins,
}

// String returns the wire name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyMax:
		return "max"
	case StrategyUnion:
		return "union"
	case StrategyLatestTimestamp:
		return "latest_timestamp"
	case StrategyOrElementwise:
		return "or_elementwise"
	case StrategyTrueWins:
		return "true_wins"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Validate returns an error if s is not one of the declared variants.
func (s Strategy) Validate() error {
	switch s {
	case StrategyMax, StrategyUnion, StrategyLatestTimestamp, StrategyOrElementwise, StrategyTrueWins:
		return nil
	default:
		return fmt.Errorf("unknown merge strategy %d", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	for _, candidate := range AllStrategies {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown merge strategy %q", string(text))
}

// FieldSchema names a persisted field and the strategy that merges it.
type FieldSchema struct {
	Name     string   `json:"name" yaml:"name"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
}

// OverallProgressSchema declares the merge strategy of every overall-progress field.
// Counters are derived from the collections after any merge.
var OverallProgressSchema = []FieldSchema{
	{Name: "lesson_completions", Strategy: StrategyUnion},
	{Name: "domains_completed", Strategy: StrategyUnion},
	{Name: "current_streak", Strategy: StrategyMax},
	{Name: "last_streak_check", Strategy: StrategyMax},
	{Name: "total_lessons_completed", Strategy: StrategyMax},
	{Name: "total_domains_completed", Strategy: StrategyMax},
}

// NavigationSchema declares the navigation triple as one indivisible field.
var NavigationSchema = []FieldSchema{
	{Name: "navigation_state", Strategy: StrategyLatestTimestamp},
}

// ValidateSchema checks that every field has a unique name and exactly one
// declared strategy. Returns all problems found.
func ValidateSchema(fields []FieldSchema) error {
	var errs []error
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("fields[%d]: name is required", i))
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("fields[%d]: duplicate field %q", i, f.Name))
		}
		seen[f.Name] = true
		if err := f.Strategy.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("fields[%d] %q: %w", i, f.Name, err))
		}
	}
	return errors.Join(errs...)
}
