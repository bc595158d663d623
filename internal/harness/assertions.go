package harness

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/roach88/tally/internal/progress"
	"github.com/roach88/tally/internal/telemetry"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Path     string // Dotted path, if any
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Path != "" {
		fmt.Fprintf(&buf, " %s", e.Path)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	res := result.Enforcement
	if res == nil {
		return fmt.Errorf("no enforcement result")
	}

	switch a.Type {
	case AssertPerfectlyValid:
		return assertFlag(a, res.PerfectlyValid)
	case AssertOwnerMismatch:
		return assertFlag(a, res.CriticalFailures.OwnerMismatch != nil)
	case AssertSaveAccepted:
		return assertFlag(a, result.SaveAccepted)
	case AssertRepaired:
		got := telemetry.RepairedSections(res.Metrics)
		if got == nil {
			got = []string{}
		}
		if !slices.Equal(got, a.Sections) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Sections), Actual: fmt.Sprint(got)}
		}
		return nil
	case AssertMetric:
		view, err := toTree(res.Metrics)
		if err != nil {
			return err
		}
		return assertPath(a, view)
	case AssertSnapshot:
		data, err := progress.Encode(res.Snapshot)
		if err != nil {
			return err
		}
		view, err := progress.DecodeRaw(string(data))
		if err != nil {
			return err
		}
		return assertPath(a, view)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertFlag(a Assertion, got bool) error {
	if *a.Value != got {
		return &AssertionError{Type: a.Type, Expected: strconv.FormatBool(*a.Value), Actual: strconv.FormatBool(got)}
	}
	return nil
}

func assertPath(a Assertion, view any) error {
	got, ok := lookup(view, a.Path)
	if !ok {
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: describe(a.Equals), Actual: "path not found"}
	}
	equal, err := jsonEqual(a.Equals, got)
	if err != nil {
		return err
	}
	if !equal {
		return &AssertionError{Type: a.Type, Path: a.Path, Expected: describe(a.Equals), Actual: describe(got)}
	}
	return nil
}

// lookup walks a dotted path through decoded JSON. Numeric segments index
// arrays; every other segment is an object key.
func lookup(v any, path string) (any, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// toTree converts v to decoded JSON with numbers kept as json.Number.
func toTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return normalizeTree(data)
}

func normalizeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// jsonEqual compares two values by their JSON encodings, so a YAML 3 and a
// decoded json.Number "3" are equal.
func jsonEqual(want, got any) (bool, error) {
	wantData, err := json.Marshal(want)
	if err != nil {
		return false, fmt.Errorf("encode expected value: %w", err)
	}
	gotData, err := json.Marshal(got)
	if err != nil {
		return false, fmt.Errorf("encode actual value: %w", err)
	}
	w, err := normalizeTree(wantData)
	if err != nil {
		return false, err
	}
	g, err := normalizeTree(gotData)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(w, g), nil
}

func describe(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
