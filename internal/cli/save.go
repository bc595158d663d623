package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/keeper"
)

// SaveResult is the JSON payload of the save and import commands.
type SaveResult struct {
	OwnerID     string `json:"owner_id"`
	SnapshotID  string `json:"snapshot_id"`
	Seq         int64  `json:"seq"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <snapshot.json>",
		Short: "Persist a snapshot through the intolerant save path",
		Long: `Save a snapshot file for the owner. The snapshot must be perfectly
valid against the current curriculum: anything that would need repair is
refused, reported, and not written.

Exit codes:
  0 - Saved (or unchanged since the last save)
  1 - Refused: the snapshot needed repair
  2 - Command error

Examples:
  tally save --owner learner-1 snapshot.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, args[0], cmd)
		},
	}
}

func runSave(opts *RootOptions, path string, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	owner, err := a.owner()
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	k, closeStore, err := a.openKeeper()
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := k.SaveRaw(cmd.Context(), owner, raw)
	var ise *keeper.ImperfectSaveError
	if errors.As(err, &ise) {
		summary := summarize(path, ise.Result)
		if opts.Format == "json" {
			if ferr := a.formatter.Error("IMPERFECT_SAVE", "snapshot needs repair; not saved", summary); ferr != nil {
				return ferr
			}
		} else {
			summary.writeText(cmd.OutOrStdout(), opts.Verbose)
		}
		return WrapExitError(ExitFailure, "save refused", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to save snapshot", err)
	}

	out := SaveResult{OwnerID: owner, SnapshotID: rec.ID, Seq: rec.Seq, Fingerprint: rec.Fingerprint}
	if opts.Format == "json" {
		return a.formatter.Success(out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (seq %d) for %s\n", rec.ID, rec.Seq, owner)
	return nil
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Store snapshot text verbatim, without enforcement",
		Long: `Store a snapshot file exactly as given, the way a sync transport or a
backup restore would. Nothing is checked; the next load repairs whatever was
imported.

Examples:
  tally import --owner learner-1 backup.json && tally load --owner learner-1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	owner, err := a.owner()
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	k, closeStore, err := a.openKeeper()
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := k.ImportRaw(cmd.Context(), owner, raw)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to import snapshot", err)
	}

	out := SaveResult{OwnerID: owner, SnapshotID: rec.ID, Seq: rec.Seq}
	if opts.Format == "json" {
		return a.formatter.Success(out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported snapshot %s (seq %d) for %s\n", rec.ID, rec.Seq, owner)
	return nil
}
