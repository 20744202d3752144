// Package usecase provides simulation execution business logic.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"lifebench/internal/app/repository"
	"lifebench/internal/domain/board"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/life"
	"lifebench/internal/domain/pattern"
)

var (
	// ErrInvalidRunSpec is returned when a run specification fails validation.
	ErrInvalidRunSpec = errors.New("invalid run specification")
	// ErrNoBoardLoader is returned when a run needs an image board but no
	// loader is configured.
	ErrNoBoardLoader = errors.New("no image loader configured")
	// ErrNoFrameExporter is returned when a run requests an animation but no
	// exporter is configured.
	ErrNoFrameExporter = errors.New("no animation exporter configured")
)

// BoardLoader converts an image file into a board of at most the given
// dimensions. Implemented by the infrastructure layer.
type BoardLoader interface {
	Load(ctx context.Context, path string, maxRows, maxCols int) (board.Board, error)
}

// FrameExporter writes an animation of successive board generations.
// Implemented by the infrastructure layer.
type FrameExporter interface {
	Export(ctx context.Context, w io.Writer, frames []board.Board) error
}

// RunSpec describes a single simulation run.
type RunSpec struct {
	// Rows and Cols are the board dimensions.
	Rows int
	Cols int

	// Steps is the requested number of generations.
	Steps int

	// Seed pins the RNG used for random boards. Nil draws a fresh seed,
	// which the resulting summary still records.
	Seed *int64

	// Density, when set, is the alive probability for random boards.
	// Incompatible with PatternID and ImagePath.
	Density *float64

	// PatternID seeds the board with a built-in pattern centered on it.
	PatternID string

	// ImagePath seeds the board from an image file.
	ImagePath string

	// DetectCycles stops the run when a board state repeats.
	DetectCycles bool

	// MaxCycleStates caps the cycle detection window; 0 uses the default.
	MaxCycleStates int

	// HaltOnExtinction stops the run once every cell is dead.
	HaltOnExtinction bool

	// GIFPath, when set, writes an animation of the run to this file.
	GIFPath string

	// Observer, when set, receives every generation as it is produced.
	Observer func(board.Board)
}

// Validate checks the run specification.
func (s *RunSpec) Validate() error {
	if s.Rows < 1 || s.Cols < 1 {
		return fmt.Errorf("%w: board dimensions %dx%d", ErrInvalidRunSpec, s.Rows, s.Cols)
	}
	if s.Steps < 0 {
		return fmt.Errorf("%w: negative step count %d", ErrInvalidRunSpec, s.Steps)
	}
	if s.PatternID != "" && s.ImagePath != "" {
		return fmt.Errorf("%w: pattern and image board sources are mutually exclusive", ErrInvalidRunSpec)
	}
	if s.Density != nil {
		if s.PatternID != "" || s.ImagePath != "" {
			return fmt.Errorf("%w: density applies to random boards only", ErrInvalidRunSpec)
		}
		if *s.Density < 0 || *s.Density > 1 {
			return fmt.Errorf("%w: density %v outside [0, 1]", ErrInvalidRunSpec, *s.Density)
		}
	}
	return nil
}

// SimulationUseCase runs simulations and records their summaries.
type SimulationUseCase struct {
	historyRepo repository.HistoryRepository
	env         execution.EnvironmentProvider
	loader      BoardLoader
	frames      FrameExporter
}

// NewSimulationUseCase creates a new simulation use case. The loader and
// frame exporter may be nil; runs that need them then fail with a
// descriptive error.
func NewSimulationUseCase(
	historyRepo repository.HistoryRepository,
	env execution.EnvironmentProvider,
	loader BoardLoader,
	frames FrameExporter,
) *SimulationUseCase {
	return &SimulationUseCase{
		historyRepo: historyRepo,
		env:         env,
		loader:      loader,
		frames:      frames,
	}
}

// Run executes a simulation and saves its summary to history.
// Cancellation via ctx is a normal outcome: the run stops at the next step
// boundary and the saved summary reports it through stop_reason.
func (uc *SimulationUseCase) Run(ctx context.Context, spec RunSpec) (*execution.Summary, error) {
	summary, err := uc.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}

	// Cancelled runs still carry a valid partial summary, so the save must
	// survive the context that stopped them.
	if err := uc.historyRepo.Save(context.WithoutCancel(ctx), summary); err != nil {
		return nil, fmt.Errorf("save run to history: %w", err)
	}
	slog.Info("Simulation: run saved to history", "id", summary.ID)
	return summary, nil
}

// Execute runs a simulation without touching the history store.
func (uc *SimulationUseCase) Execute(ctx context.Context, spec RunSpec) (*execution.Summary, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.GIFPath != "" && uc.frames == nil {
		return nil, ErrNoFrameExporter
	}

	var gifFrames []board.Board
	observer := spec.Observer
	if spec.GIFPath != "" {
		collect := func(b board.Board) { gifFrames = append(gifFrames, b) }
		if next := spec.Observer; next != nil {
			observer = func(b board.Board) {
				collect(b)
				next(b)
			}
		} else {
			observer = collect
		}
	}

	engine, err := uc.buildEngine(ctx, spec, observer)
	if err != nil {
		return nil, err
	}

	initial := engine.Board()
	if spec.GIFPath != "" {
		gifFrames = append(gifFrames, initial)
	}

	rec, err := execution.NewRecord(initial, spec.Steps, engine.Seed(), uc.env.Capture())
	if err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}

	slog.Info("Simulation: starting run",
		"id", rec.ID,
		"rows", spec.Rows,
		"cols", spec.Cols,
		"steps", spec.Steps,
		"seed", engine.Seed())

	res, runErr := engine.Run(ctx, spec.Steps, rec)
	if runErr != nil && res.StopReason != execution.StopCancelled {
		return nil, fmt.Errorf("run simulation: %w", runErr)
	}

	summary, err := rec.Summary()
	if err != nil {
		return nil, fmt.Errorf("summarize run: %w", err)
	}

	slog.Info("Simulation: run finished",
		"id", summary.ID,
		"steps", summary.StepCount,
		"stop_reason", summary.StopReason,
		"elapsed", res.Elapsed)

	if spec.GIFPath != "" {
		// A cancelled run still writes the frames it produced, matching
		// the partial summary it reports.
		if err := uc.exportAnimation(context.WithoutCancel(ctx), spec.GIFPath, gifFrames); err != nil {
			return nil, fmt.Errorf("export animation: %w", err)
		}
		slog.Info("Simulation: animation written", "path", spec.GIFPath, "frames", len(gifFrames))
	}

	return &summary, nil
}

// BuildEngine constructs the engine a spec describes without running it.
// Interactive callers use it to inspect or step the initial board manually;
// nothing is recorded or persisted.
func (uc *SimulationUseCase) BuildEngine(ctx context.Context, spec RunSpec) (*life.Engine, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return uc.buildEngine(ctx, spec, spec.Observer)
}

// buildEngine resolves the board source described by the spec and
// constructs the engine around it.
func (uc *SimulationUseCase) buildEngine(ctx context.Context, spec RunSpec, observer func(board.Board)) (*life.Engine, error) {
	opts := life.Options{
		Seed:             spec.Seed,
		DetectCycles:     spec.DetectCycles,
		MaxCycleStates:   spec.MaxCycleStates,
		HaltOnExtinction: spec.HaltOnExtinction,
		Observer:         observer,
	}

	switch {
	case spec.ImagePath != "":
		if uc.loader == nil {
			return nil, ErrNoBoardLoader
		}
		b, err := uc.loader.Load(ctx, spec.ImagePath, spec.Rows, spec.Cols)
		if err != nil {
			return nil, fmt.Errorf("load board from image: %w", err)
		}
		engine, err := life.NewEngineFromBoard(b, opts)
		if err != nil {
			return nil, fmt.Errorf("create engine: %w", err)
		}
		return engine, nil

	case spec.PatternID != "":
		p, err := pattern.Lookup(spec.PatternID)
		if err != nil {
			return nil, err
		}
		b, err := p.CenteredOn(spec.Rows, spec.Cols)
		if err != nil {
			return nil, fmt.Errorf("place pattern %q: %w", spec.PatternID, err)
		}
		engine, err := life.NewEngineFromBoard(b, opts)
		if err != nil {
			return nil, fmt.Errorf("create engine: %w", err)
		}
		return engine, nil

	default:
		engine, err := life.NewEngine(spec.Rows, spec.Cols, opts)
		if err != nil {
			return nil, fmt.Errorf("create engine: %w", err)
		}
		if spec.Density != nil {
			if err := engine.RandomizeDensity(*spec.Density); err != nil {
				return nil, fmt.Errorf("randomize board: %w", err)
			}
		}
		return engine, nil
	}
}

// exportAnimation writes the collected generations to a GIF file.
func (uc *SimulationUseCase) exportAnimation(ctx context.Context, path string, frames []board.Board) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create animation directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create animation file: %w", err)
	}
	if err := uc.frames.Export(ctx, f, frames); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
