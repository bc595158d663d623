package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/tally/internal/components"
	"github.com/roach88/tally/internal/config"
	"github.com/roach88/tally/internal/curriculum"
	"github.com/roach88/tally/internal/engine"
	"github.com/roach88/tally/internal/keeper"
	"github.com/roach88/tally/internal/store"
	"github.com/roach88/tally/internal/telemetry"
)

// app is the per-invocation state shared by commands: resolved config,
// logger and metrics.
type app struct {
	opts      *RootOptions
	cfg       *config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *telemetry.Metrics
	formatter *OutputFormatter
}

// newApp resolves configuration (file, env, then flags) and sets up
// logging on the command's stderr.
func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.CurriculumDir != "" {
		cfg.CurriculumDir = opts.CurriculumDir
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.OwnerID != "" {
		cfg.OwnerID = opts.OwnerID
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	return &app{
		opts:     opts,
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  telemetry.New(registry),
		formatter: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
			Verbose:   opts.Verbose,
		},
	}, nil
}

// newLogger builds the slog handler. --verbose forces debug level.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// close flushes metrics to --metrics-file. Errors are logged, not returned,
// so they never mask the command's own result.
func (a *app) close() {
	if a.opts.MetricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(a.opts.MetricsFile, a.registry); err != nil {
		a.logger.Error("failed to write metrics file", "path", a.opts.MetricsFile, "error", err)
	}
}

// owner returns the configured learner id or a command error.
func (a *app) owner() (string, error) {
	if a.cfg.OwnerID == "" {
		return "", NewExitError(ExitCommandError, "owner id is required (--owner or TALLY_OWNER_ID)")
	}
	return a.cfg.OwnerID, nil
}

// loadCurriculum loads dir, or the configured directory when dir is empty.
func (a *app) loadCurriculum(dir string) (*curriculum.Catalog, error) {
	if dir == "" {
		dir = a.cfg.CurriculumDir
	}
	a.logger.Debug("loading curriculum", "dir", dir)
	cat, err := curriculum.LoadDir(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load curriculum", err)
	}
	a.logger.Debug("curriculum loaded", "entities", len(cat.Entities()), "components", len(cat.AllComponentIDs()))
	return cat, nil
}

// engineContext wires the catalog to the built-in component plugins and
// the wall clock.
func (a *app) engineContext(cat *curriculum.Catalog) engine.Context {
	return engine.Context{
		Curriculum: cat,
		Components: components.NewRegistry(),
		Clock:      engine.SystemClock{},
	}
}

// openKeeper loads the curriculum, opens the store and returns a keeper.
// The returned func closes the store.
func (a *app) openKeeper() (*keeper.Keeper, func(), error) {
	cat, err := a.loadCurriculum("")
	if err != nil {
		return nil, nil, err
	}

	a.logger.Debug("opening database", "path", a.cfg.Database)
	st, err := store.Open(a.cfg.Database, store.WithMaxRetries(a.cfg.SaveRetries))
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	closeStore := func() {
		if closeErr := st.Close(); closeErr != nil {
			a.logger.Error("error closing database", "error", closeErr)
		}
	}

	k, err := keeper.New(keeper.Options{
		Store:   st,
		Engine:  a.engineContext(cat),
		Metrics: a.metrics,
		Logger:  a.logger,
	})
	if err != nil {
		closeStore()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start keeper", err)
	}
	return k, closeStore, nil
}

// readInput reads a snapshot file; "-" means stdin.
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExitError(ExitCommandError, fmt.Sprintf("failed to read %s", path), err)
	}
	return string(data), nil
}
