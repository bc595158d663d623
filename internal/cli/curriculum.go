package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/components"
	"github.com/roach88/tally/internal/curriculum"
)

// CurriculumSummary describes a loaded curriculum.
type CurriculumSummary struct {
	Dir            string         `json:"dir"`
	Fingerprint    string         `json:"fingerprint"`
	Lessons        int            `json:"lessons"`
	Menus          int            `json:"menus"`
	Domains        int            `json:"domains"`
	Components     int            `json:"components"`
	ComponentTypes map[string]int `json:"component_types"`
	UnknownTypes   []string       `json:"unknown_types,omitempty"`
}

// NewCurriculumCommand creates the curriculum command.
func NewCurriculumCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "curriculum [dir]",
		Short: "Load and summarize a curriculum directory",
		Long: `Load a curriculum directory (domains/, lessons/ and menus/ YAML files,
plus any CUE files) and print a summary. Fails on duplicate ids, on a
component declared with two types, and on component types with no plugin.

Examples:
  tally curriculum ./curriculum
  tally curriculum --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runCurriculum(rootOpts, dir, cmd)
		},
	}
}

func runCurriculum(opts *RootOptions, dir string, cmd *cobra.Command) error {
	a, err := newApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if dir == "" {
		dir = a.cfg.CurriculumDir
	}
	cat, err := a.loadCurriculum(dir)
	if err != nil {
		return err
	}
	fp, err := cat.Fingerprint()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to fingerprint curriculum", err)
	}

	plugins := components.NewRegistry()
	summary := CurriculumSummary{
		Dir:            dir,
		Fingerprint:    fp,
		Domains:        len(cat.DomainIDs()),
		Components:     len(cat.AllComponentIDs()),
		ComponentTypes: make(map[string]int),
	}
	for _, e := range cat.Entities() {
		if e.Kind == curriculum.KindLesson {
			summary.Lessons++
		} else {
			summary.Menus++
		}
	}
	for _, id := range cat.AllComponentIDs() {
		typ, _ := cat.ComponentType(id)
		summary.ComponentTypes[typ]++
	}
	for _, typ := range cat.ComponentTypes() {
		if plugins.Initializer(typ) == nil {
			summary.UnknownTypes = append(summary.UnknownTypes, typ)
		}
	}

	if opts.Format == "json" {
		if err := a.formatter.Success(summary); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Curriculum %s\n", dir)
		fmt.Fprintf(w, "  fingerprint: %s\n", fp)
		fmt.Fprintf(w, "  %d lesson(s), %d menu(s), %d domain(s), %d component(s)\n",
			summary.Lessons, summary.Menus, summary.Domains, summary.Components)
		for _, typ := range cat.ComponentTypes() {
			fmt.Fprintf(w, "    %-16s %d\n", typ, summary.ComponentTypes[typ])
		}
	}

	if len(summary.UnknownTypes) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("no plugin for component type(s) %v", summary.UnknownTypes))
	}
	return nil
}
