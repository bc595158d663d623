package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/progress"
)

// LoadOutput is the JSON payload of the load command.
type LoadOutput struct {
	OwnerID    string              `json:"owner_id"`
	SnapshotID string              `json:"snapshot_id,omitempty"`
	FirstTime  bool                `json:"first_time"`
	Summary    *EnforcementSummary `json:"summary,omitempty"`
	Snapshot   *progress.Snapshot  `json:"snapshot"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the learner's latest snapshot through recovery",
		Long: `Load the owner's most recent stored snapshot, repair it against the
current curriculum and print the result. A learner with nothing stored gets
the default snapshot. Every load is recorded as a recovery report.

Examples:
  tally load --owner learner-1
  tally load --owner learner-1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, cmd)
		},
	}
}

func runLoad(opts *RootOptions, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	owner, err := a.owner()
	if err != nil {
		return err
	}
	k, closeStore, err := a.openKeeper()
	if err != nil {
		return err
	}
	defer closeStore()

	loaded, err := k.Load(cmd.Context(), owner)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}

	out := LoadOutput{
		OwnerID:    owner,
		SnapshotID: loaded.SnapshotID,
		FirstTime:  loaded.FirstTime,
		Snapshot:   loaded.Snapshot,
	}
	if loaded.Result != nil {
		s := summarize(loaded.SnapshotID, loaded.Result)
		out.Summary = &s
	}

	if opts.Format == "json" {
		return a.formatter.Success(out)
	}

	w := cmd.OutOrStdout()
	switch {
	case loaded.FirstTime:
		fmt.Fprintf(w, "No stored snapshot for %s; starting from defaults.\n", owner)
	default:
		out.Summary.writeText(w, opts.Verbose)
	}
	data, err := progress.EncodeIndent(loaded.Snapshot)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode snapshot", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
