package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/engine"
	"github.com/roach88/tally/internal/progress"
)

// RepairOptions holds flags for the repair command.
type RepairOptions struct {
	*RootOptions
	Output string
}

// RepairResult is the JSON payload of the repair command.
type RepairResult struct {
	Summary EnforcementSummary `json:"summary"`
	Output  string             `json:"output,omitempty"`
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RepairOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repair <snapshot.json>",
		Short: "Write the repaired form of a snapshot file",
		Long: `Run integrity enforcement on a snapshot file and write the repaired
snapshot. Without --out the snapshot is written to stdout and nothing else is
printed there; the summary goes to stderr.

Repair never fails on bad data: whatever cannot be kept is defaulted.

Examples:
  tally repair --owner learner-1 broken.json --out fixed.json
  cat broken.json | tally repair --owner learner-1 - > fixed.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "write the repaired snapshot to this file")

	return cmd
}

func runRepair(opts *RepairOptions, path string, cmd *cobra.Command) error {
	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	owner, err := a.owner()
	if err != nil {
		return err
	}
	cat, err := a.loadCurriculum("")
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := engine.Enforce(raw, owner, a.engineContext(cat))
	if err != nil {
		return WrapExitError(ExitCommandError, "enforcement precondition failed", err)
	}
	a.metrics.ObserveEnforcement("repair", res, time.Since(start))

	data, err := progress.EncodeIndent(res.Snapshot)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode snapshot", err)
	}
	data = append(data, '\n')
	summary := summarize(path, res)

	if opts.Output == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}
		summary.writeText(cmd.ErrOrStderr(), opts.Verbose)
		return nil
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	a.logger.Info("repaired snapshot written", "path", opts.Output, "perfectly_valid", res.PerfectlyValid)

	if opts.Format == "json" {
		return a.formatter.Success(RepairResult{Summary: summary, Output: opts.Output})
	}
	w := cmd.OutOrStdout()
	summary.writeText(w, opts.Verbose)
	fmt.Fprintf(w, "Repaired snapshot written to %s\n", opts.Output)
	return nil
}
