package life

import (
	"context"
	"errors"
	"testing"

	"lifebench/internal/domain/board"
	"lifebench/internal/domain/execution"
)

func mustBoard(t *testing.T, rows [][]uint8) board.Board {
	t.Helper()
	b, err := board.FromRows(rows)
	if err != nil {
		t.Fatalf("board.FromRows() error: %v", err)
	}
	return b
}

func seedPtr(s int64) *int64 { return &s }

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		wantErr bool
	}{
		{name: "valid", rows: 10, cols: 10, wantErr: false},
		{name: "zero rows", rows: 0, cols: 10, wantErr: true},
		{name: "negative cols", rows: 10, cols: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.rows, tt.cols, Options{Seed: seedPtr(1)})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, board.ErrInvalidDimensions) {
					t.Errorf("NewEngine() error = %v, want ErrInvalidDimensions", err)
				}
				return
			}
			if e.Seed() != 1 {
				t.Errorf("Seed() = %d, want 1", e.Seed())
			}
			if e.StepCount() != 0 {
				t.Errorf("StepCount() = %d, want 0", e.StepCount())
			}
		})
	}
}

func TestNewEngine_RandomSeedRecorded(t *testing.T) {
	e, err := NewEngine(5, 5, Options{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	// Whatever seed was drawn must reproduce the same initial board.
	replay, err := NewEngine(5, 5, Options{Seed: seedPtr(e.Seed())})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	if !e.Board().Equal(replay.Board()) {
		t.Error("recorded seed did not reproduce the initial board")
	}
}

func TestEngine_NeighborCounts_Toroidal(t *testing.T) {
	// Three alive cells on a 3x3 torus; every other cell is a neighbor of
	// the far corner, so its count must see all three through the wrap.
	e, err := NewEngineFromBoard(mustBoard(t, [][]uint8{
		{1, 0, 1},
		{0, 0, 0},
		{1, 0, 0},
	}), Options{Seed: seedPtr(0)})
	if err != nil {
		t.Fatalf("NewEngineFromBoard() error: %v", err)
	}

	counts := e.NeighborCounts()
	if got := counts[2][2]; got != 3 {
		t.Errorf("corner neighbor count = %d, want 3", got)
	}
	if got := counts[1][1]; got != 3 {
		t.Errorf("center neighbor count = %d, want 3", got)
	}
}

func TestEngine_Step_Block(t *testing.T) {
	block := mustBoard(t, [][]uint8{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 0},
	})
	e, _ := NewEngineFromBoard(block, Options{Seed: seedPtr(0)})

	for i := 0; i < 5; i++ {
		e.Step()
		if !e.Board().Equal(block) {
			t.Fatalf("block mutated after %d steps:\n%s", i+1, e.Board())
		}
	}
}

func TestEngine_Step_Blinker(t *testing.T) {
	horizontal := mustBoard(t, [][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	})
	vertical := mustBoard(t, [][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0},
	})

	e, _ := NewEngineFromBoard(horizontal, Options{Seed: seedPtr(0)})

	e.Step()
	if !e.Board().Equal(vertical) {
		t.Fatalf("blinker after 1 step:\n%s\nwant:\n%s", e.Board(), vertical)
	}
	e.Step()
	if !e.Board().Equal(horizontal) {
		t.Fatalf("blinker after 2 steps:\n%s\nwant:\n%s", e.Board(), horizontal)
	}
}

func TestEngine_Step_GliderTranslation(t *testing.T) {
	g, _ := board.New(10, 10)
	for _, p := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}} {
		if err := g.Set(p[0], p[1], board.Alive); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	}

	want, _ := board.New(10, 10)
	for _, p := range [][2]int{{1, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}} {
		_ = want.Set(p[0], p[1], board.Alive)
	}

	e, _ := NewEngineFromBoard(g, Options{Seed: seedPtr(0)})
	for i := 0; i < 4; i++ {
		e.Step()
	}
	if !e.Board().Equal(want) {
		t.Fatalf("glider after 4 steps:\n%s\nwant:\n%s", e.Board(), want)
	}
	if got := e.Board().AliveCount(); got != 5 {
		t.Errorf("glider alive count = %d, want 5", got)
	}
}

func TestEngine_Step_SnapshotIsolation(t *testing.T) {
	e, _ := NewEngine(6, 6, Options{Seed: seedPtr(3)})

	before := e.Board()
	snapshot := before.Clone()
	e.Step()

	if !before.Equal(snapshot) {
		t.Error("stepping the engine mutated a previously returned board")
	}
}

func TestEngine_Determinism(t *testing.T) {
	a, _ := NewEngine(12, 12, Options{Seed: seedPtr(42)})
	b, _ := NewEngine(12, 12, Options{Seed: seedPtr(42)})

	if !a.Board().Equal(b.Board()) {
		t.Fatal("equal seeds produced different initial boards")
	}
	for i := 0; i < 10; i++ {
		a.Step()
		b.Step()
		if !a.Board().Equal(b.Board()) {
			t.Fatalf("equal seeds diverged at step %d", i+1)
		}
	}

	c, _ := NewEngine(12, 12, Options{Seed: seedPtr(43)})
	if a.Seed() == c.Seed() {
		t.Fatal("distinct seeds expected")
	}
}

func TestEngine_RandomizeDensity(t *testing.T) {
	e, _ := NewEngine(8, 8, Options{Seed: seedPtr(7)})

	if err := e.RandomizeDensity(0); err != nil {
		t.Fatalf("RandomizeDensity(0) error: %v", err)
	}
	if got := e.Board().AliveCount(); got != 0 {
		t.Errorf("density 0 alive count = %d, want 0", got)
	}

	if err := e.RandomizeDensity(1); err != nil {
		t.Fatalf("RandomizeDensity(1) error: %v", err)
	}
	if got := e.Board().AliveCount(); got != 64 {
		t.Errorf("density 1 alive count = %d, want 64", got)
	}

	if err := e.RandomizeDensity(1.5); !errors.Is(err, ErrInvalidDensity) {
		t.Errorf("RandomizeDensity(1.5) error = %v, want ErrInvalidDensity", err)
	}
}

func newTestRecord(t *testing.T, e *Engine, steps int) *execution.Record {
	t.Helper()
	rec, err := execution.NewRecord(e.Board(), steps, e.Seed(), execution.Environment{
		System: "test",
	})
	if err != nil {
		t.Fatalf("NewRecord() error: %v", err)
	}
	return rec
}

func TestEngine_Run(t *testing.T) {
	e, _ := NewEngine(10, 10, Options{Seed: seedPtr(11)})
	rec := newTestRecord(t, e, 20)

	res, err := e.Run(context.Background(), 20, rec)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.StepsExecuted != 20 {
		t.Errorf("StepsExecuted = %d, want 20", res.StepsExecuted)
	}
	if res.StopReason != execution.StopCompleted {
		t.Errorf("StopReason = %q, want %q", res.StopReason, execution.StopCompleted)
	}

	s, err := rec.Summary()
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if s.StepCount != 20 || len(s.AliveCellsStats) != 20 {
		t.Errorf("step_count = %d, stats = %d, want 20 each", s.StepCount, len(s.AliveCellsStats))
	}
	if s.ExecutionTime < 0 {
		t.Errorf("execution_time = %v, want >= 0", s.ExecutionTime)
	}
	if s.MinAliveCells > s.MaxAliveCells {
		t.Errorf("min alive %d exceeds max alive %d", s.MinAliveCells, s.MaxAliveCells)
	}
	for i, pct := range s.AliveCellsStats {
		if pct < 0 || pct > 100 {
			t.Errorf("stats[%d] = %v, want within [0, 100]", i, pct)
		}
	}
}

func TestEngine_Run_ZeroSteps(t *testing.T) {
	e, _ := NewEngine(5, 5, Options{Seed: seedPtr(2)})
	rec := newTestRecord(t, e, 0)

	res, err := e.Run(context.Background(), 0, rec)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.StepsExecuted != 0 {
		t.Errorf("StepsExecuted = %d, want 0", res.StepsExecuted)
	}

	s, err := rec.Summary()
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if s.StepCount != 0 || len(s.AliveCellsStats) != 0 {
		t.Errorf("zero-step run recorded step_count=%d stats=%d", s.StepCount, len(s.AliveCellsStats))
	}
}

func TestEngine_Run_NegativeSteps(t *testing.T) {
	e, _ := NewEngine(5, 5, Options{Seed: seedPtr(2)})

	if _, err := e.Run(context.Background(), -1, nil); !errors.Is(err, ErrInvalidSteps) {
		t.Errorf("Run(-1) error = %v, want ErrInvalidSteps", err)
	}
}

func TestEngine_Run_Cancelled(t *testing.T) {
	e, _ := NewEngine(5, 5, Options{Seed: seedPtr(2)})
	rec := newTestRecord(t, e, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx, 100, rec)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if res.StopReason != execution.StopCancelled {
		t.Errorf("StopReason = %q, want %q", res.StopReason, execution.StopCancelled)
	}
	if res.StepsExecuted != 0 {
		t.Errorf("StepsExecuted = %d, want 0", res.StepsExecuted)
	}
	if !rec.Finalized() {
		t.Error("record not finalized on cancellation")
	}
}

func TestEngine_Run_CycleDetection(t *testing.T) {
	blinker := mustBoard(t, [][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	})
	e, _ := NewEngineFromBoard(blinker, Options{Seed: seedPtr(0), DetectCycles: true})
	rec := newTestRecord(t, e, 50)

	res, err := e.Run(context.Background(), 50, rec)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.StopReason != execution.StopCycle {
		t.Errorf("StopReason = %q, want %q", res.StopReason, execution.StopCycle)
	}
	if res.StepsExecuted != 2 {
		t.Errorf("StepsExecuted = %d, want 2", res.StepsExecuted)
	}
	if res.CycleLength != 2 {
		t.Errorf("CycleLength = %d, want 2", res.CycleLength)
	}

	s, _ := rec.Summary()
	if !s.LoopDetected || s.LoopLength != 2 {
		t.Errorf("summary loop_detected=%v loop_length=%d, want true, 2", s.LoopDetected, s.LoopLength)
	}
	if s.StepCount != 2 {
		t.Errorf("summary step_count = %d, want the executed 2", s.StepCount)
	}
}

func TestEngine_Run_Extinction(t *testing.T) {
	lone := mustBoard(t, [][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	})
	e, _ := NewEngineFromBoard(lone, Options{Seed: seedPtr(0), HaltOnExtinction: true})
	rec := newTestRecord(t, e, 50)

	res, err := e.Run(context.Background(), 50, rec)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.StopReason != execution.StopExtinct {
		t.Errorf("StopReason = %q, want %q", res.StopReason, execution.StopExtinct)
	}
	if res.StepsExecuted != 1 {
		t.Errorf("StepsExecuted = %d, want 1", res.StepsExecuted)
	}

	s, _ := rec.Summary()
	if s.MinAliveCells != 0 {
		t.Errorf("min_alive_cells = %d, want 0", s.MinAliveCells)
	}
	if s.FinalAlivePercent() != 0 {
		t.Errorf("final alive percent = %v, want 0", s.FinalAlivePercent())
	}
}

func TestEngine_Run_Observer(t *testing.T) {
	blinker := mustBoard(t, [][]uint8{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	})

	var frames []board.Board
	e, err := NewEngineFromBoard(blinker, Options{
		Seed:     seedPtr(0),
		Observer: func(b board.Board) { frames = append(frames, b) },
	})
	if err != nil {
		t.Fatalf("NewEngineFromBoard() error: %v", err)
	}

	if _, err := e.Run(context.Background(), 4, nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(frames) != 4 {
		t.Fatalf("observed %d generations, want 4", len(frames))
	}
	// The blinker alternates, so retained frames must keep their own state.
	if frames[0].Equal(frames[1]) {
		t.Error("consecutive blinker generations compare equal; observer frames share state")
	}
	if !frames[0].Equal(frames[2]) {
		t.Error("generations two apart should match for a blinker")
	}
}

func BenchmarkEngine_Step(b *testing.B) {
	e, err := NewEngine(128, 128, Options{Seed: seedPtr(1)})
	if err != nil {
		b.Fatalf("NewEngine() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step()
	}
}
