package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tally/internal/ir"
	"github.com/roach88/tally/internal/progress"
	"github.com/roach88/tally/internal/telemetry"
)

// Report is the golden-file view of a scenario result. Ratios are left
// out: canonical JSON has no floats, and the sections list already says
// which parts of the snapshot were touched.
type Report struct {
	ScenarioName     string
	PerfectlyValid   bool
	SaveAccepted     bool
	OwnerMismatch    bool
	RepairedSections []string
	Snapshot         *progress.Snapshot
}

// NewReport builds the report for a finished scenario.
func NewReport(scenarioName string, result *Result) *Report {
	res := result.Enforcement
	return &Report{
		ScenarioName:     scenarioName,
		PerfectlyValid:   res.PerfectlyValid,
		SaveAccepted:     result.SaveAccepted,
		OwnerMismatch:    res.CriticalFailures.OwnerMismatch != nil,
		RepairedSections: telemetry.RepairedSections(res.Metrics),
		Snapshot:         res.Snapshot,
	}
}

// MarshalCanonical renders the report as RFC 8785 canonical JSON.
func (r *Report) MarshalCanonical() ([]byte, error) {
	data, err := progress.Encode(r.Snapshot)
	if err != nil {
		return nil, err
	}
	root, err := progress.DecodeRaw(string(data))
	if err != nil {
		return nil, err
	}
	snap, err := ir.FromDecoded(root)
	if err != nil {
		return nil, fmt.Errorf("snapshot to IR: %w", err)
	}

	sections := make([]any, len(r.RepairedSections))
	for i, s := range r.RepairedSections {
		sections[i] = s
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario_name":     r.ScenarioName,
		"perfectly_valid":   r.PerfectlyValid,
		"save_accepted":     r.SaveAccepted,
		"owner_mismatch":    r.OwnerMismatch,
		"repaired_sections": sections,
		"snapshot":          snap,
	})
}

// RunWithGolden executes a scenario and compares its report against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the report doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against its golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewReport(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
