package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tally/internal/curriculum"
)

// Scenario defines a recovery scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Owner is the learner the stored snapshot is expected to belong to.
	Owner string `yaml:"owner"`

	// Now is the fixed clock, in Unix milliseconds. Zero means the
	// harness default.
	Now int64 `yaml:"now,omitempty"`

	// Curriculum is the inline curriculum the snapshot is checked against.
	Curriculum curriculum.Document `yaml:"curriculum"`

	// Input is the stored snapshot text, verbatim. It may be empty or
	// malformed; that is usually the point.
	Input string `yaml:"input"`

	// Assertions validate the recovery result.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a recovery result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Path is a dotted path into the metrics or the repaired snapshot
	// (used by metric and snapshot).
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path. Compared as JSON.
	Equals any `yaml:"equals,omitempty"`

	// Value is the expected flag (used by perfectly_valid, owner_mismatch
	// and save_accepted).
	Value *bool `yaml:"value,omitempty"`

	// Sections is the exact list of repaired sections (used by repaired).
	Sections []string `yaml:"sections,omitempty"`
}

// Assertion type constants.
const (
	AssertPerfectlyValid = "perfectly_valid"
	AssertOwnerMismatch  = "owner_mismatch"
	AssertSaveAccepted   = "save_accepted"
	AssertRepaired       = "repaired"
	AssertMetric         = "metric"
	AssertSnapshot       = "snapshot"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if s.Now < 0 {
		return fmt.Errorf("now must be non-negative")
	}
	if len(s.Curriculum.Lessons)+len(s.Curriculum.Menus)+len(s.Curriculum.Domains) == 0 {
		return fmt.Errorf("curriculum is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPerfectlyValid, AssertOwnerMismatch, AssertSaveAccepted:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertRepaired:
		if a.Sections == nil {
			return fmt.Errorf("assertions[%d]: sections is required for repaired (use [] for none)", index)
		}
	case AssertMetric, AssertSnapshot:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for %s", index, a.Type)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
