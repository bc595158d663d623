package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/tally/internal/progress"
	"github.com/roach88/tally/internal/telemetry"
)

// EnforcementSummary is the printable digest of one enforcement result.
type EnforcementSummary struct {
	Source           string                   `json:"source"`
	PerfectlyValid   bool                     `json:"perfectly_valid"`
	OwnerMismatch    *progress.OwnerMismatch  `json:"owner_mismatch,omitempty"`
	RepairedSections []string                 `json:"repaired_sections"`
	Metrics          progress.RecoveryMetrics `json:"metrics"`
}

func summarize(source string, res *progress.EnforcementResult) EnforcementSummary {
	sections := telemetry.RepairedSections(res.Metrics)
	if sections == nil {
		sections = []string{}
	}
	return EnforcementSummary{
		Source:           source,
		PerfectlyValid:   res.PerfectlyValid,
		OwnerMismatch:    res.CriticalFailures.OwnerMismatch,
		RepairedSections: sections,
		Metrics:          res.Metrics,
	}
}

// writeText prints a one-line verdict followed by detail lines for
// anything that was repaired.
func (s EnforcementSummary) writeText(w io.Writer, verbose bool) {
	if s.PerfectlyValid {
		fmt.Fprintf(w, "\u2713 %s\n", s.Source)
		return
	}
	fmt.Fprintf(w, "\u2717 %s\n", s.Source)
	if om := s.OwnerMismatch; om != nil {
		if om.Found == nil {
			fmt.Fprintf(w, "  unreadable: expected owner %s, found none\n", om.Expected)
		} else {
			fmt.Fprintf(w, "  owner mismatch: expected %s, found %s\n", om.Expected, *om.Found)
		}
	}
	if len(s.RepairedSections) > 0 {
		fmt.Fprintf(w, "  repaired: %s\n", strings.Join(s.RepairedSections, ", "))
	}
	if !verbose {
		return
	}

	m := s.Metrics
	op := m.OverallProgress
	fmt.Fprintf(w, "  lessons: kept %d, dropped %d", op.Lessons.KeptCount, op.Lessons.DroppedCount)
	if op.Lessons.CorruptionDetected {
		fmt.Fprintf(w, ", %d lost to corruption", op.Lessons.LostToCorruption)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  domains: kept %d, dropped %d", op.Domains.KeptCount, op.Domains.DroppedCount)
	if op.Domains.CorruptionDetected {
		fmt.Fprintf(w, ", %d lost to corruption", op.Domains.LostToCorruption)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  settings: %d of %d defaulted\n", m.Settings.DefaultedCount, m.Settings.TotalFields)
	fmt.Fprintf(w, "  components: %d retained, %d defaulted, %d orphans dropped\n",
		m.ComponentProgress.RetainedCount, m.ComponentProgress.DefaultedCount, m.ComponentProgress.OrphansDropped)
}
