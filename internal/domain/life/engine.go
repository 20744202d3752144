// Package life implements the Conway's Game of Life transition engine.
package life

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"lifebench/internal/domain/board"
	"lifebench/internal/domain/execution"
)

var (
	// ErrInvalidSteps is returned when a run is requested with a negative
	// step budget.
	ErrInvalidSteps = errors.New("invalid step count")
	// ErrInvalidDensity is returned when a randomize density is outside [0, 1].
	ErrInvalidDensity = errors.New("invalid density")
)

// DefaultMaxCycleStates bounds the board fingerprint window kept for cycle
// detection when no explicit limit is configured.
const DefaultMaxCycleStates = 1024

// Options configures an Engine. The zero value runs with a freshly drawn
// random seed, no cycle detection and no extinction halt.
type Options struct {
	// Seed pins the engine RNG. Nil draws a random seed, which is still
	// recorded so the run stays reproducible.
	Seed *int64
	// DetectCycles stops a run when a board state repeats.
	DetectCycles bool
	// MaxCycleStates caps the fingerprint window; 0 means DefaultMaxCycleStates.
	MaxCycleStates int
	// HaltOnExtinction stops a run once every cell is dead.
	HaltOnExtinction bool
	// Observer, when set, receives every generation produced by Run.
	// Generations are immutable once published, so observers may retain them.
	Observer func(board.Board)
}

// Engine advances a toroidal board generation by generation. Each engine
// owns its board and its own seeded RNG; two engines never share generator
// state, so runs with equal dimensions, seeds and options produce identical
// board sequences.
type Engine struct {
	cur   board.Board
	seed  int64
	rng   *rand.Rand
	steps int

	detectCycles     bool
	maxCycleStates   int
	haltOnExtinction bool
	observer         func(board.Board)
	seen             map[[32]byte]int
}

// NewEngine creates an engine with a uniformly random initial board of the
// given dimensions, drawn from the engine RNG.
func NewEngine(rows, cols int, opts Options) (*Engine, error) {
	b, err := board.New(rows, cols)
	if err != nil {
		return nil, err
	}
	e := newEngine(b, opts)
	e.Randomize()
	return e, nil
}

// NewEngineFromBoard creates an engine starting from the given board.
// The board is copied; the caller keeps ownership of its value.
func NewEngineFromBoard(b board.Board, opts Options) (*Engine, error) {
	if b.Rows() < 1 || b.Cols() < 1 {
		return nil, fmt.Errorf("%w: engine needs a constructed board", board.ErrInvalidDimensions)
	}
	return newEngine(b.Clone(), opts), nil
}

func newEngine(b board.Board, opts Options) *Engine {
	seed := rand.Int64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	maxStates := opts.MaxCycleStates
	if maxStates <= 0 {
		maxStates = DefaultMaxCycleStates
	}
	return &Engine{
		cur:              b,
		seed:             seed,
		rng:              rand.New(rand.NewPCG(uint64(seed), 0)),
		detectCycles:     opts.DetectCycles,
		maxCycleStates:   maxStates,
		haltOnExtinction: opts.HaltOnExtinction,
		observer:         opts.Observer,
	}
}

// Board returns a snapshot copy of the current state.
func (e *Engine) Board() board.Board {
	return e.cur.Clone()
}

// Seed returns the seed driving the engine RNG.
func (e *Engine) Seed() int64 {
	return e.seed
}

// StepCount returns the number of generations computed since the last
// randomize.
func (e *Engine) StepCount() int {
	return e.steps
}

// Randomize refills the board uniformly from the engine RNG and restarts
// the generation counter.
func (e *Engine) Randomize() {
	cells := make([]uint8, e.cur.Size())
	for i := range cells {
		cells[i] = uint8(e.rng.IntN(2))
	}
	e.replaceBoard(cells)
}

// RandomizeDensity refills the board from the engine RNG with the given
// alive probability.
func (e *Engine) RandomizeDensity(density float64) error {
	if density < 0 || density > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidDensity, density)
	}
	cells := make([]uint8, e.cur.Size())
	for i := range cells {
		if e.rng.Float64() < density {
			cells[i] = board.Alive
		}
	}
	e.replaceBoard(cells)
	return nil
}

func (e *Engine) replaceBoard(cells []uint8) {
	b, err := board.FromCells(e.cur.Rows(), e.cur.Cols(), cells)
	if err != nil {
		// Unreachable: the engine only ever writes 0 and 1.
		panic(fmt.Sprintf("life: generated invalid board: %v", err))
	}
	e.cur = b
	e.steps = 0
	e.seen = nil
}

// neighbors counts the eight toroidal neighbors of (r, c) on the current
// board. On degenerate boards wrapped offsets can fold onto the cell itself.
func (e *Engine) neighbors(r, c int) int {
	n := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n += int(e.cur.Wrapped(r+dr, c+dc))
		}
	}
	return n
}

// NeighborCounts returns the toroidal neighbor count of every cell, computed
// entirely from the current snapshot.
func (e *Engine) NeighborCounts() [][]int {
	rows, cols := e.cur.Rows(), e.cur.Cols()
	counts := make([][]int, rows)
	for r := 0; r < rows; r++ {
		counts[r] = make([]int, cols)
		for c := 0; c < cols; c++ {
			counts[r][c] = e.neighbors(r, c)
		}
	}
	return counts
}

// Step computes the next generation from an immutable snapshot of the
// current board and replaces it wholesale. A cell survives with exactly two
// or three neighbors and is born with exactly three; the evaluation order
// can never leak a partially updated generation.
func (e *Engine) Step() {
	rows, cols := e.cur.Rows(), e.cur.Cols()
	next := make([]uint8, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			n := e.neighbors(r, c)
			alive := e.cur.Get(r, c) == board.Alive
			if (alive && n == 2) || n == 3 {
				next[r*cols+c] = board.Alive
			}
		}
	}

	b, err := board.FromCells(rows, cols, next)
	if err != nil {
		// Unreachable: the rule only writes 0 and 1.
		panic(fmt.Sprintf("life: generated invalid board: %v", err))
	}
	e.cur = b
	e.steps++
}

// RunResult reports how a run loop ended.
type RunResult struct {
	StepsExecuted int
	StopReason    execution.StopReason
	CycleLength   int
	Elapsed       time.Duration
}

// Run executes up to steps generations, feeding every new board into rec
// and finalizing it with the actual step count and wall-clock duration.
// rec may be nil to run without recording.
//
// The context is checked at step boundaries only; cancellation finalizes
// the record with the steps completed so far and returns the context error.
// With cycle detection enabled the initial board counts as the first
// recorded state and a revisited state stops the run; with extinction halt
// enabled an all-dead board stops the run.
func (e *Engine) Run(ctx context.Context, steps int, rec *execution.Record) (RunResult, error) {
	if steps < 0 {
		return RunResult{}, fmt.Errorf("%w: %d", ErrInvalidSteps, steps)
	}

	res := RunResult{StopReason: execution.StopCompleted}
	if e.detectCycles {
		e.seen = map[[32]byte]int{e.cur.Fingerprint(): 0}
	}

	var runErr error
	start := time.Now()

loop:
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			res.StopReason = execution.StopCancelled
			runErr = ctx.Err()
			break loop
		default:
		}

		e.Step()
		res.StepsExecuted++

		if rec != nil {
			if err := rec.ObserveStep(e.cur); err != nil {
				return res, fmt.Errorf("observe step %d: %w", res.StepsExecuted, err)
			}
		}
		if e.observer != nil {
			e.observer(e.cur)
		}

		if e.haltOnExtinction && e.cur.Empty() {
			res.StopReason = execution.StopExtinct
			break
		}

		if e.detectCycles {
			fp := e.cur.Fingerprint()
			if at, ok := e.seen[fp]; ok {
				res.StopReason = execution.StopCycle
				res.CycleLength = res.StepsExecuted - at
				break
			}
			if len(e.seen) < e.maxCycleStates {
				e.seen[fp] = res.StepsExecuted
			}
		}
	}

	res.Elapsed = time.Since(start)

	if rec != nil {
		if res.CycleLength > 0 {
			rec.MarkCycle(res.CycleLength)
		}
		rec.SetStopReason(res.StopReason)
		if err := rec.Finalize(res.StepsExecuted, res.Elapsed); err != nil {
			return res, fmt.Errorf("finalize record: %w", err)
		}
	}
	return res, runErr
}
