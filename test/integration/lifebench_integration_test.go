// Package integration provides end-to-end tests for LifeBench.
// These tests verify the complete integration of domain, use case, and
// infrastructure layers against a real SQLite database.
package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	imggif "image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifebench/internal/app/usecase"
	"lifebench/internal/domain/board"
	"lifebench/internal/domain/config"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
	"lifebench/internal/domain/report"
	"lifebench/internal/infra/database"
	dbrepo "lifebench/internal/infra/database/repository"
	"lifebench/internal/infra/gif"
	"lifebench/internal/infra/imageload"
	"lifebench/internal/infra/sysinfo"
)

// stack bundles the wired layers for one test.
type stack struct {
	db        *sql.DB
	dir       string
	simUC     *usecase.SimulationUseCase
	historyUC *usecase.HistoryUseCase
	exportUC  *usecase.ExportUseCase
	sweepUC   *usecase.SweepUseCase
}

// newStack wires the full application stack against a temp-dir database,
// the way the cmd mains do.
func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := database.InitializeSQLite(ctx, filepath.Join(dir, "history.db"))
	require.NoError(t, err, "initialize database")
	t.Cleanup(func() { db.Close() })

	env := sysinfo.Static{Env: execution.Environment{
		Processor:     "amd64",
		Architecture:  "amd64",
		System:        "linux",
		ProcessorName: "integration-cpu",
	}}
	gifCfg := config.GIFConfig{CellPixels: 4, DelayMS: 120, MaxFrames: 500}

	historyRepo := dbrepo.NewSQLiteHistoryRepository(db)
	simUC := usecase.NewSimulationUseCase(historyRepo, env, imageload.NewThresholdLoader(), gif.NewExporter(gifCfg))

	return &stack{
		db:        db,
		dir:       dir,
		simUC:     simUC,
		historyUC: usecase.NewHistoryUseCase(historyRepo),
		exportUC:  usecase.NewExportUseCase(historyRepo, filepath.Join(dir, "exports")),
		sweepUC:   usecase.NewSweepUseCase(simUC, historyRepo),
	}
}

// summaryKeys is the fixed key set of an exported run summary.
var summaryKeys = []string{
	"id", "dimensions", "steps", "step_count", "execution_time",
	"max_alive_cells", "min_alive_cells", "alive_cells_stats", "seed",
	"timestamp", "processor", "architecture", "system", "processor_name",
	"loop_detected", "loop_length", "stop_reason",
}

// TestIntegration_RunPersistExport tests the core workflow.
// Scenario:
// 1. Run a glider simulation with a pinned seed
// 2. Verify the summary (a glider keeps exactly 5 cells alive)
// 3. Retrieve the saved run from the database
// 4. Export it as JSON and verify the canonical key layout
// 5. Export it as Markdown and verify the report sections
func TestIntegration_RunPersistExport(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)

	seed := int64(7)
	summary, err := st.simUC.Run(ctx, usecase.RunSpec{
		Rows:      10,
		Cols:      10,
		Steps:     30,
		Seed:      &seed,
		PatternID: "glider",
	})
	require.NoError(t, err, "run simulation")

	assert.Equal(t, [2]int{10, 10}, summary.Dimensions)
	assert.Equal(t, 30, summary.StepCount)
	assert.Equal(t, execution.StopCompleted.String(), summary.StopReason)
	assert.Equal(t, 5, summary.MinAliveCells, "glider holds 5 cells")
	assert.Equal(t, 5, summary.MaxAliveCells)
	require.Len(t, summary.AliveCellsStats, 30)
	for _, pct := range summary.AliveCellsStats {
		assert.InDelta(t, 5.0, pct, 1e-9)
	}
	assert.Equal(t, seed, summary.Seed)
	assert.Equal(t, "integration-cpu", summary.ProcessorName)

	// Step 3: the run is in the database.
	stored, err := st.historyUC.Get(ctx, summary.ID)
	require.NoError(t, err, "load saved run")
	assert.Equal(t, summary.ID, stored.ID)
	assert.Equal(t, summary.AliveCellsStats, stored.AliveCellsStats)

	// Step 4: JSON export carries the canonical summary layout.
	jsonPath, err := st.exportUC.ExportRun(ctx, summary.ID, report.FormatJSON, nil)
	require.NoError(t, err, "export json")

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range summaryKeys {
		assert.Contains(t, decoded, key)
	}
	assert.Len(t, decoded, len(summaryKeys), "no extra keys in exported summary")
	assert.Equal(t, summary.ID, decoded["id"])
	assert.Equal(t, float64(30), decoded["step_count"])
	assert.Equal(t, "completed", decoded["stop_reason"])

	// Step 5: Markdown export has the report sections.
	mdPath, err := st.exportUC.ExportRun(ctx, summary.ID, report.FormatMarkdown, nil)
	require.NoError(t, err, "export markdown")

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	for _, section := range []string{"## Summary", "## Environment", "## Population", "## Charts"} {
		assert.Contains(t, string(md), section)
	}
}

// TestIntegration_CycleDetection tests cycle handling end to end.
// Scenario:
// 1. Run a blinker with cycle detection (period 2 oscillator)
// 2. Verify the run stopped at step 2 with loop metadata
// 3. Verify the looped-runs history filter finds it
func TestIntegration_CycleDetection(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)

	summary, err := st.simUC.Run(ctx, usecase.RunSpec{
		Rows:         8,
		Cols:         8,
		Steps:        100,
		PatternID:    "blinker",
		DetectCycles: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.StepCount, "blinker revisits the initial state after 2 steps")
	assert.True(t, summary.LoopDetected)
	assert.Equal(t, 2, summary.LoopLength)
	assert.Equal(t, execution.StopCycle.String(), summary.StopReason)

	looped, err := st.historyUC.List(ctx, history.Filter{OnlyLooped: true})
	require.NoError(t, err)
	require.Len(t, looped, 1)
	assert.Equal(t, summary.ID, looped[0].ID)
}

// TestIntegration_CancelledRunIsSaved tests the cancellation contract.
// Scenario:
// 1. Start a run whose observer cancels the context after 5 generations
// 2. Verify Run returns a valid partial summary with no error
// 3. Verify the partial run was still saved to history
func TestIntegration_CancelledRunIsSaved(t *testing.T) {
	st := newStack(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed := int64(3)
	generations := 0
	summary, err := st.simUC.Run(ctx, usecase.RunSpec{
		Rows:  16,
		Cols:  16,
		Steps: 1000,
		Seed:  &seed,
		Observer: func(board.Board) {
			generations++
			if generations == 5 {
				cancel()
			}
		},
	})
	require.NoError(t, err, "cancellation is a normal outcome")

	assert.Equal(t, 5, summary.StepCount)
	assert.Equal(t, execution.StopCancelled.String(), summary.StopReason)
	assert.Len(t, summary.AliveCellsStats, 5)

	stored, err := st.historyUC.Get(context.Background(), summary.ID)
	require.NoError(t, err, "cancelled run must be saved")
	assert.Equal(t, execution.StopCancelled.String(), stored.StopReason)
}

// TestIntegration_SweepPersistsRuns tests seed sweeps end to end.
// Scenario:
// 1. Sweep 4 runs from a pinned base seed with 2 workers
// 2. Verify member seeds are consecutive and all runs completed
// 3. Verify all 4 runs were saved to history
// 4. Verify a cancelled sweep reports an error instead of partial results
// 5. Clear history and verify it is empty
func TestIntegration_SweepPersistsRuns(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)

	baseSeed := int64(99)
	result, err := st.sweepUC.Run(ctx, usecase.SweepSpec{
		Rows:     12,
		Cols:     12,
		Steps:    20,
		Runs:     4,
		Workers:  2,
		BaseSeed: &baseSeed,
		Persist:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, baseSeed, result.BaseSeed)
	require.Len(t, result.Summaries, 4)
	for i, s := range result.Summaries {
		assert.Equal(t, baseSeed+int64(i), s.Seed, "run %d seed", i)
		assert.Equal(t, 20, s.StepCount, "run %d steps", i)
	}
	assert.Equal(t, 4, result.Aggregate.Runs)
	assert.True(t, result.Aggregate.StepCount.IsValid())

	count, err := st.historyUC.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// Step 4: a cancelled sweep is an error, not a partial batch.
	cancelled, cancelNow := context.WithCancel(ctx)
	cancelNow()
	_, err = st.sweepUC.Run(cancelled, usecase.SweepSpec{
		Rows: 12, Cols: 12, Steps: 20, Runs: 4, Workers: 2, BaseSeed: &baseSeed,
	})
	require.Error(t, err)

	// Step 5: clear history.
	removed, err := st.historyUC.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	count, err = st.historyUC.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// TestIntegration_ImageBoardAndAnimation tests image boards and GIF export.
// Scenario:
// 1. Write a PNG whose left half is black and right half is white
// 2. Run a simulation seeded from that image, exporting an animation
// 3. Verify the run used the image dimensions
// 4. Verify the GIF holds the initial board plus one frame per step
func TestIntegration_ImageBoardAndAnimation(t *testing.T) {
	ctx := context.Background()
	st := newStack(t)

	imgPath := filepath.Join(st.dir, "seed.png")
	writeSplitPNG(t, imgPath)
	gifPath := filepath.Join(st.dir, "run.gif")

	summary, err := st.simUC.Run(ctx, usecase.RunSpec{
		Rows:      8,
		Cols:      8,
		Steps:     3,
		ImagePath: imgPath,
		GIFPath:   gifPath,
	})
	require.NoError(t, err)

	assert.Equal(t, [2]int{8, 8}, summary.Dimensions)
	assert.Equal(t, 3, summary.StepCount)

	f, err := os.Open(gifPath)
	require.NoError(t, err)
	defer f.Close()

	anim, err := imggif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 4, "initial board plus 3 generations")
	assert.Equal(t, 0, anim.LoopCount, "animation loops forever")
	assert.Equal(t, 32, anim.Image[0].Bounds().Dx(), "8 cells at 4 px")
}

// writeSplitPNG writes an 8x8 grayscale PNG, left half black, right half
// white.
func writeSplitPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x >= 4 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}
