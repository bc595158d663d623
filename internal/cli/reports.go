package cli

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/store"
)

// ReportsOptions holds flags for the reports command.
type ReportsOptions struct {
	*RootOptions
	Limit int
}

// ReportEntry is one recovery report as printed by the reports command.
type ReportEntry struct {
	ID                    string          `json:"id"`
	Phase                 store.Phase     `json:"phase"`
	SnapshotID            string          `json:"snapshot_id,omitempty"`
	PerfectlyValid        bool            `json:"perfectly_valid"`
	RecordedAt            int64           `json:"recorded_at"`
	CurriculumFingerprint string          `json:"curriculum_fingerprint,omitempty"`
	Report                json.RawMessage `json:"report"`
}

// NewReportsCommand creates the reports command.
func NewReportsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List recent recovery reports for a learner",
		Long: `List the owner's most recent recovery reports, newest first. A report
is recorded for every load of a stored snapshot and for every save attempt,
including refused ones.

Examples:
  tally reports --owner learner-1 --limit 5
  tally reports --owner learner-1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReports(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of reports")

	return cmd
}

func runReports(opts *ReportsOptions, cmd *cobra.Command) error {
	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if opts.Limit <= 0 {
		return NewExitError(ExitCommandError, "--limit must be positive")
	}
	owner, err := a.owner()
	if err != nil {
		return err
	}
	k, closeStore, err := a.openKeeper()
	if err != nil {
		return err
	}
	defer closeStore()

	recs, err := k.Reports(cmd.Context(), owner, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read reports", err)
	}

	entries := make([]ReportEntry, len(recs))
	for i, r := range recs {
		entries[i] = ReportEntry{
			ID:                    r.ID,
			Phase:                 r.Phase,
			SnapshotID:            r.SnapshotID,
			PerfectlyValid:        r.PerfectlyValid,
			RecordedAt:            r.RecordedAt,
			CurriculumFingerprint: r.CurriculumFingerprint,
			Report:                json.RawMessage(r.Report),
		}
	}

	if opts.Format == "json" {
		return a.formatter.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(w, "No reports for %s.\n", owner)
		return nil
	}
	for _, e := range entries {
		verdict := "perfect"
		if !e.PerfectlyValid {
			verdict = "repaired"
			if e.Phase == store.PhaseSave {
				verdict = "refused"
			}
		}
		fmt.Fprintf(w, "%s  %-4s  %-8s  %s\n",
			time.UnixMilli(e.RecordedAt).UTC().Format(time.RFC3339), e.Phase, verdict, e.SnapshotID)
	}
	return nil
}
