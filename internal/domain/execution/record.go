// Package execution provides the simulation run record domain model.
package execution

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifebench/internal/domain/board"
)

var (
	// ErrInvalidRecord is returned when a record is constructed or updated
	// with inconsistent data.
	ErrInvalidRecord = errors.New("invalid execution record")
	// ErrAlreadyFinalized is returned when a finalized record is modified.
	ErrAlreadyFinalized = errors.New("record already finalized")
	// ErrNotFinalized is returned when a summary is requested before the
	// run has been finalized.
	ErrNotFinalized = errors.New("record not finalized")
)

// Record tracks the analytics of a single simulation run: per-step alive-cell
// percentages, population extremes, timing and host environment. A record is
// created before the run starts, observes each new generation, and is
// finalized exactly once when the run stops.
type Record struct {
	ID             string     `json:"id"`
	Dimensions     [2]int     `json:"dimensions"` // rows, cols
	RequestedSteps int        `json:"steps"`
	InitialState   board.Board `json:"-"`
	Seed           int64      `json:"seed"`
	Timestamp      time.Time  `json:"timestamp"`

	StepCount       int           `json:"step_count"`
	AliveCellsStats []float64     `json:"alive_cells_stats"`
	MaxAliveCells   int           `json:"max_alive_cells"`
	MinAliveCells   int           `json:"min_alive_cells"`
	Elapsed         time.Duration `json:"-"`

	Env Environment `json:"environment"`

	LoopDetected bool       `json:"loop_detected"`
	LoopLength   int        `json:"loop_length"`
	StopReason   StopReason `json:"stop_reason"`

	finalized bool
}

// NewRecord creates a record for a run starting from the given board.
// The initial state is copied, so later engine steps never show through.
// MaxAliveCells starts at 0 and MinAliveCells at the board size; the first
// observation pulls both onto real values.
func NewRecord(initial board.Board, requestedSteps int, seed int64, env Environment) (*Record, error) {
	if initial.Rows() < 1 || initial.Cols() < 1 {
		return nil, fmt.Errorf("%w: empty initial state", ErrInvalidRecord)
	}
	if requestedSteps < 0 {
		return nil, fmt.Errorf("%w: requested steps %d", ErrInvalidRecord, requestedSteps)
	}
	return &Record{
		ID:             uuid.New().String(),
		Dimensions:     [2]int{initial.Rows(), initial.Cols()},
		RequestedSteps: requestedSteps,
		InitialState:   initial.Clone(),
		Seed:           seed,
		Timestamp:      time.Now(),
		MaxAliveCells:  0,
		MinAliveCells:  initial.Size(),
		Env:            env,
	}, nil
}

// ObserveStep folds the freshly computed generation into the statistics.
// It must be called with the board AFTER a transition; the initial state is
// never observed.
func (r *Record) ObserveStep(b board.Board) error {
	if r.finalized {
		return ErrAlreadyFinalized
	}
	if b.Rows() != r.Dimensions[0] || b.Cols() != r.Dimensions[1] {
		return fmt.Errorf("%w: board %dx%d does not match record %dx%d",
			ErrInvalidRecord, b.Rows(), b.Cols(), r.Dimensions[0], r.Dimensions[1])
	}

	alive := b.AliveCount()
	r.AliveCellsStats = append(r.AliveCellsStats, float64(alive)/float64(b.Size())*100)
	if alive > r.MaxAliveCells {
		r.MaxAliveCells = alive
	}
	if alive < r.MinAliveCells {
		r.MinAliveCells = alive
	}
	return nil
}

// MarkCycle flags the run as having revisited an earlier board state.
// Ignored once the record is finalized.
func (r *Record) MarkCycle(length int) {
	if r.finalized {
		return
	}
	r.LoopDetected = true
	r.LoopLength = length
}

// SetStopReason records why the run stopped. Ignored once finalized.
func (r *Record) SetStopReason(reason StopReason) {
	if r.finalized {
		return
	}
	r.StopReason = reason
}

// Finalize freezes the record with the actual number of executed steps and
// the wall-clock duration of the run loop. A second call fails.
func (r *Record) Finalize(stepCount int, elapsed time.Duration) error {
	if r.finalized {
		return ErrAlreadyFinalized
	}
	if stepCount != len(r.AliveCellsStats) {
		return fmt.Errorf("%w: step count %d does not match %d observations",
			ErrInvalidRecord, stepCount, len(r.AliveCellsStats))
	}
	if elapsed < 0 {
		return fmt.Errorf("%w: negative execution time", ErrInvalidRecord)
	}
	r.StepCount = stepCount
	r.Elapsed = elapsed
	if r.StopReason == "" {
		r.StopReason = StopCompleted
	}
	r.finalized = true
	return nil
}

// Finalized reports whether the record has been frozen.
func (r *Record) Finalized() bool {
	return r.finalized
}

// Summary returns the read-only export form of a finalized record.
// The returned value owns its own copy of the statistics.
func (r *Record) Summary() (Summary, error) {
	if !r.finalized {
		return Summary{}, ErrNotFinalized
	}
	stats := make([]float64, len(r.AliveCellsStats))
	copy(stats, r.AliveCellsStats)
	return Summary{
		ID:              r.ID,
		Dimensions:      r.Dimensions,
		Steps:           r.RequestedSteps,
		StepCount:       r.StepCount,
		ExecutionTime:   r.Elapsed.Seconds(),
		MaxAliveCells:   r.MaxAliveCells,
		MinAliveCells:   r.MinAliveCells,
		AliveCellsStats: stats,
		Seed:            r.Seed,
		Timestamp:       r.Timestamp,
		Processor:       r.Env.Processor,
		Architecture:    r.Env.Architecture,
		System:          r.Env.System,
		ProcessorName:   r.Env.ProcessorName,
		LoopDetected:    r.LoopDetected,
		LoopLength:      r.LoopLength,
		StopReason:      r.StopReason.String(),
	}, nil
}

// Summary is the serialized form of a finished run. The field set and JSON
// keys are a stable contract consumed by the history store, the report
// generators and external tooling.
type Summary struct {
	ID              string    `json:"id"`
	Dimensions      [2]int    `json:"dimensions"` // rows, cols
	Steps           int       `json:"steps"`
	StepCount       int       `json:"step_count"`
	ExecutionTime   float64   `json:"execution_time"` // seconds
	MaxAliveCells   int       `json:"max_alive_cells"`
	MinAliveCells   int       `json:"min_alive_cells"`
	AliveCellsStats []float64 `json:"alive_cells_stats"`
	Seed            int64     `json:"seed"`
	Timestamp       time.Time `json:"timestamp"`
	Processor       string    `json:"processor"`
	Architecture    string    `json:"architecture"`
	System          string    `json:"system"`
	ProcessorName   string    `json:"processor_name"`
	LoopDetected    bool      `json:"loop_detected"`
	LoopLength      int       `json:"loop_length"`
	StopReason      string    `json:"stop_reason"`
}

// Validate checks internal consistency of a summary.
func (s *Summary) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if s.Dimensions[0] < 1 || s.Dimensions[1] < 1 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidRecord, s.Dimensions[0], s.Dimensions[1])
	}
	if s.StepCount != len(s.AliveCellsStats) {
		return fmt.Errorf("%w: step count %d does not match %d stat entries",
			ErrInvalidRecord, s.StepCount, len(s.AliveCellsStats))
	}
	if s.ExecutionTime < 0 {
		return fmt.Errorf("%w: negative execution time", ErrInvalidRecord)
	}
	if s.StepCount > 0 && s.MinAliveCells > s.MaxAliveCells {
		return fmt.Errorf("%w: min alive %d exceeds max alive %d",
			ErrInvalidRecord, s.MinAliveCells, s.MaxAliveCells)
	}
	return nil
}

// FinalAlivePercent returns the alive percentage after the last executed
// step, or 0 when no steps ran.
func (s *Summary) FinalAlivePercent() float64 {
	if len(s.AliveCellsStats) == 0 {
		return 0
	}
	return s.AliveCellsStats[len(s.AliveCellsStats)-1]
}

// AlivePercentRange returns the lowest and highest observed alive
// percentages, or (0, 0) when no steps ran.
func (s *Summary) AlivePercentRange() (min, max float64) {
	if len(s.AliveCellsStats) == 0 {
		return 0, 0
	}
	min, max = s.AliveCellsStats[0], s.AliveCellsStats[0]
	for _, v := range s.AliveCellsStats[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// ToJSON serializes the summary.
func (s *Summary) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}
