package cli

import (
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/tally/internal/engine"
)

// CheckResult holds the outcome of a check run.
type CheckResult struct {
	Results   []EnforcementSummary `json:"results"`
	Perfect   int                  `json:"perfect"`
	Imperfect int                  `json:"imperfect"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <snapshot.json>...",
		Short: "Report what recovery would do to snapshot files",
		Long: `Run integrity enforcement on one or more snapshot files and report
what would be repaired. Files are never modified. Use "-" for stdin.

Exit codes:
  0 - Every snapshot is perfectly valid
  1 - At least one snapshot needed repair
  2 - Command error (missing files, bad curriculum, etc.)

Examples:
  tally check --owner learner-1 snapshot.json
  tally check --owner learner-1 --format json backups/*.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args, cmd)
		},
	}
}

func runCheck(opts *RootOptions, files []string, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	// Files are read concurrently; stdin can only be consumed once.
	if n := slices.Index(files, "-"); n >= 0 && slices.Contains(files[n+1:], "-") {
		return NewExitError(ExitCommandError, `stdin ("-") may be given only once`)
	}

	owner, err := a.owner()
	if err != nil {
		return err
	}
	cat, err := a.loadCurriculum("")
	if err != nil {
		return err
	}
	ectx := a.engineContext(cat)

	// Files are independent; enforce them in parallel, keeping input order.
	results := make([]EnforcementSummary, len(files))
	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			raw, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			start := time.Now()
			res, err := engine.Enforce(raw, owner, ectx)
			if err != nil {
				return WrapExitError(ExitCommandError, "enforcement precondition failed", err)
			}
			a.metrics.ObserveEnforcement("check", res, time.Since(start))
			results[i] = summarize(path, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := CheckResult{Results: results}
	for _, r := range results {
		if r.PerfectlyValid {
			out.Perfect++
		} else {
			out.Imperfect++
		}
	}
	a.logger.Info("check complete", "files", len(files), "perfect", out.Perfect, "imperfect", out.Imperfect)

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: out}
		if out.Imperfect > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_IMPERFECT", Message: fmt.Sprintf("%d snapshot(s) needed repair", out.Imperfect)}
		}
		if err := a.formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range results {
			r.writeText(w, opts.Verbose)
		}
		fmt.Fprintf(w, "\nCheck Summary: %d perfect, %d repaired, %d total\n", out.Perfect, out.Imperfect, len(results))
	}

	if out.Imperfect > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d snapshot(s) needed repair", out.Imperfect))
	}
	return nil
}
