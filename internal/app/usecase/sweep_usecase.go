// Package usecase provides seed sweep business logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"lifebench/internal/app/repository"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
)

// ErrInvalidSweepSpec is returned when a sweep specification fails validation.
var ErrInvalidSweepSpec = errors.New("invalid sweep specification")

// SweepSpec describes a batch of runs over consecutive seeds.
type SweepSpec struct {
	// Rows and Cols are the board dimensions shared by every run.
	Rows int
	Cols int

	// Steps is the requested number of generations per run.
	Steps int

	// Runs is the number of runs in the batch.
	Runs int

	// Workers bounds how many runs execute concurrently. Values below 1
	// run the sweep sequentially.
	Workers int

	// BaseSeed is the seed of the first run; run i uses BaseSeed+i.
	// Nil draws a random base, which the result records.
	BaseSeed *int64

	// Density, when set, is the alive probability for the random boards.
	Density *float64

	// PatternID seeds every board with the same built-in pattern instead
	// of random cells.
	PatternID string

	// DetectCycles stops a run when a board state repeats.
	DetectCycles bool

	// MaxCycleStates caps the cycle detection window; 0 uses the default.
	MaxCycleStates int

	// HaltOnExtinction stops a run once every cell is dead.
	HaltOnExtinction bool

	// Persist saves every completed run to history.
	Persist bool
}

// Validate checks the sweep specification.
func (s *SweepSpec) Validate() error {
	if s.Runs < 1 {
		return fmt.Errorf("%w: run count %d", ErrInvalidSweepSpec, s.Runs)
	}
	rs := s.runSpec(0, 0)
	if err := rs.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSweepSpec, err)
	}
	return nil
}

// runSpec builds the run specification for the i-th member of the sweep.
func (s *SweepSpec) runSpec(baseSeed int64, i int) RunSpec {
	seed := baseSeed + int64(i)
	return RunSpec{
		Rows:             s.Rows,
		Cols:             s.Cols,
		Steps:            s.Steps,
		Seed:             &seed,
		Density:          s.Density,
		PatternID:        s.PatternID,
		DetectCycles:     s.DetectCycles,
		MaxCycleStates:   s.MaxCycleStates,
		HaltOnExtinction: s.HaltOnExtinction,
	}
}

// SweepResult holds the outcome of a completed sweep.
type SweepResult struct {
	// BaseSeed is the seed of the first run.
	BaseSeed int64

	// Summaries holds one summary per run, in seed order.
	Summaries []execution.Summary

	// Aggregate holds statistics computed over Summaries.
	Aggregate history.AggregateStats

	// Elapsed is the wall-clock duration of the whole sweep.
	Elapsed time.Duration
}

// SweepUseCase runs batches of simulations across consecutive seeds.
type SweepUseCase struct {
	sim         *SimulationUseCase
	historyRepo repository.HistoryRepository
}

// NewSweepUseCase creates a new sweep use case.
func NewSweepUseCase(sim *SimulationUseCase, historyRepo repository.HistoryRepository) *SweepUseCase {
	return &SweepUseCase{
		sim:         sim,
		historyRepo: historyRepo,
	}
}

// Run executes the sweep. Unlike a single simulation, cancelling a sweep is
// an error: the batch is incomplete, so no partial result is returned.
func (uc *SweepUseCase) Run(ctx context.Context, spec SweepSpec) (*SweepResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	baseSeed := rand.Int64()
	if spec.BaseSeed != nil {
		baseSeed = *spec.BaseSeed
	}
	workers := spec.Workers
	if workers < 1 {
		workers = 1
	}

	slog.Info("Sweep: starting",
		"runs", spec.Runs,
		"workers", workers,
		"rows", spec.Rows,
		"cols", spec.Cols,
		"steps", spec.Steps,
		"base_seed", baseSeed)

	summaries := make([]execution.Summary, spec.Runs)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < spec.Runs; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary, err := uc.sim.Execute(gctx, spec.runSpec(baseSeed, i))
			if err != nil {
				return fmt.Errorf("sweep run %d: %w", i, err)
			}
			if summary.StopReason == execution.StopCancelled.String() {
				return gctx.Err()
			}
			summaries[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if spec.Persist {
		for i := range summaries {
			if err := uc.historyRepo.Save(ctx, &summaries[i]); err != nil {
				return nil, fmt.Errorf("save sweep run %d: %w", i, err)
			}
		}
	}

	agg := history.Aggregate(summaries)
	slog.Info("Sweep: completed",
		"runs", spec.Runs,
		"loop_runs", agg.LoopRuns,
		"extinct_runs", agg.ExtinctRuns,
		"elapsed", elapsed)

	return &SweepResult{
		BaseSeed:  baseSeed,
		Summaries: summaries,
		Aggregate: agg,
		Elapsed:   elapsed,
	}, nil
}
