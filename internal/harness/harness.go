package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tally/internal/components"
	"github.com/roach88/tally/internal/curriculum"
	"github.com/roach88/tally/internal/engine"
	"github.com/roach88/tally/internal/keeper"
	"github.com/roach88/tally/internal/store"
	"github.com/roach88/tally/internal/testutil"
)

// Harness holds the per-scenario collaborators.
type Harness struct {
	store  *store.Store
	keeper *keeper.Keeper
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// fixed clock so results are reproducible.
//
// Execution flow:
// 1. Build the inline curriculum
// 2. Import the input text verbatim
// 3. Load it through the tolerant path
// 4. Save the repaired snapshot through the intolerant path
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	ctx := context.Background()
	result := NewResult()

	if _, err := h.keeper.ImportRaw(ctx, scenario.Owner, scenario.Input); err != nil {
		return nil, fmt.Errorf("failed to import input: %w", err)
	}

	loaded, err := h.keeper.Load(ctx, scenario.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	result.Enforcement = loaded.Result

	_, err = h.keeper.Save(ctx, scenario.Owner, loaded.Snapshot)
	switch {
	case err == nil:
		result.SaveAccepted = true
	case keeper.IsImperfectSave(err):
		result.AddError(fmt.Sprintf("repaired snapshot was refused by save: %v", err))
	default:
		return nil, fmt.Errorf("failed to save repaired snapshot: %w", err)
	}

	h.logger.Info("scenario executed",
		"scenario", scenario.Name,
		"perfectly_valid", loaded.Result.PerfectlyValid,
		"save_accepted", result.SaveAccepted,
	)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(scenario *Scenario) (*Harness, error) {
	b := curriculum.NewBuilder()
	if err := b.AddDocument(scenario.Curriculum, scenario.Name); err != nil {
		return nil, fmt.Errorf("failed to build curriculum: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	now := scenario.Now
	if now == 0 {
		now = testutil.DefaultNow
	}
	clock := testutil.NewDeterministicClock(now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	k, err := keeper.New(keeper.Options{
		Store: st,
		Engine: engine.Context{
			Curriculum: b.Build(),
			Components: components.NewRegistry(),
			Clock:      clock,
		},
		Logger: logger,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create keeper: %w", err)
	}

	return &Harness{store: st, keeper: k, clock: clock, logger: logger}, nil
}
