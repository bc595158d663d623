package harness

import "github.com/roach88/tally/internal/progress"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held and the
	// repaired snapshot was accepted by the save path.
	Pass bool `json:"pass"`

	// Enforcement is the load-time enforcement result.
	Enforcement *progress.EnforcementResult `json:"-"`

	// SaveAccepted reports whether the repaired snapshot could be saved.
	SaveAccepted bool `json:"save_accepted"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
