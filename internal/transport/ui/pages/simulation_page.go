// Package pages provides GUI pages for LifeBench.
// Simulation page implementation.
package pages

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"lifebench/internal/app/usecase"
	"lifebench/internal/domain/board"
	"lifebench/internal/domain/life"
	"lifebench/internal/domain/pattern"
)

// randomBoardOption is the pattern selector entry for a random board.
const randomBoardOption = "random"

var (
	aliveCellColor = color.RGBA{G: 0xFF, A: 0xFF}
	deadCellColor  = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
)

// SimulationPage provides the interactive simulation GUI.
type SimulationPage struct {
	win        fyne.Window
	simUC      *usecase.SimulationUseCase
	settingsUC *usecase.SettingsUseCase

	rowsEntry    *widget.Entry
	colsEntry    *widget.Entry
	stepsEntry   *widget.Entry
	seedEntry    *widget.Entry
	densityEntry *widget.Entry
	patternSel   *widget.Select
	cycleCheck   *widget.Check
	extinctCheck *widget.Check

	raster      *canvas.Raster
	statusLabel *widget.Label
	genLabel    *widget.Label
	aliveLabel  *widget.Label

	btnStart *widget.Button
	btnPause *widget.Button
	btnStop  *widget.Button
	btnStep  *widget.Button
	btnReset *widget.Button

	mu      sync.RWMutex
	current board.Board

	preview    *life.Engine
	running    bool
	paused     atomic.Bool
	cancelRun  context.CancelFunc
	frameDelay time.Duration
}

// NewSimulationPage creates a new simulation page.
func NewSimulationPage(win fyne.Window, simUC *usecase.SimulationUseCase, settingsUC *usecase.SettingsUseCase) fyne.CanvasObject {
	page := &SimulationPage{
		win:        win,
		simUC:      simUC,
		settingsUC: settingsUC,
		frameDelay: 120 * time.Millisecond,
	}

	page.buildForm()
	page.buildBoardView()
	page.buildControls()
	page.applyDefaults()
	page.onReset()

	form := widget.NewForm(
		widget.NewFormItem("Rows", page.rowsEntry),
		widget.NewFormItem("Cols", page.colsEntry),
		widget.NewFormItem("Steps", page.stepsEntry),
		widget.NewFormItem("Seed (blank = random)", page.seedEntry),
		widget.NewFormItem("Density", page.densityEntry),
		widget.NewFormItem("Board", page.patternSel),
	)

	controls := container.NewVBox(
		page.cycleCheck,
		page.extinctCheck,
		container.NewHBox(page.btnStart, page.btnPause, page.btnStop),
		container.NewHBox(page.btnStep, page.btnReset),
	)

	left := container.NewVBox(
		widget.NewCard("Simulation", "", container.NewPadded(form)),
		controls,
	)

	statusBar := container.NewHBox(
		page.statusLabel,
		widget.NewSeparator(),
		page.genLabel,
		widget.NewSeparator(),
		page.aliveLabel,
	)

	return container.NewBorder(nil, statusBar, left, nil, page.raster)
}

func (p *SimulationPage) buildForm() {
	p.rowsEntry = widget.NewEntry()
	p.colsEntry = widget.NewEntry()
	p.stepsEntry = widget.NewEntry()
	p.seedEntry = widget.NewEntry()
	p.densityEntry = widget.NewEntry()

	options := append([]string{randomBoardOption}, pattern.IDs()...)
	p.patternSel = widget.NewSelect(options, func(string) {})
	p.patternSel.SetSelected(randomBoardOption)

	p.cycleCheck = widget.NewCheck("Detect cycles", nil)
	p.extinctCheck = widget.NewCheck("Halt on extinction", nil)
}

func (p *SimulationPage) buildBoardView() {
	p.raster = canvas.NewRasterWithPixels(func(x, y, w, h int) color.Color {
		p.mu.RLock()
		defer p.mu.RUnlock()

		b := p.current
		if b.Rows() == 0 || b.Cols() == 0 || w == 0 || h == 0 {
			return deadCellColor
		}
		r := y * b.Rows() / h
		c := x * b.Cols() / w
		if r >= b.Rows() {
			r = b.Rows() - 1
		}
		if c >= b.Cols() {
			c = b.Cols() - 1
		}
		if b.Get(r, c) == board.Alive {
			return aliveCellColor
		}
		return deadCellColor
	})
	p.raster.SetMinSize(fyne.NewSize(480, 360))

	p.statusLabel = widget.NewLabel("Status: Idle")
	p.genLabel = widget.NewLabel("Generation: 0")
	p.aliveLabel = widget.NewLabel("Alive: --")
}

func (p *SimulationPage) buildControls() {
	p.btnStart = widget.NewButton("▶ Start", func() { p.onStart() })
	p.btnPause = widget.NewButton("⏸ Pause", func() { p.onPauseResume() })
	p.btnStop = widget.NewButton("⏹ Stop", func() { p.onStop() })
	p.btnStep = widget.NewButton("⏭ Step", func() { p.onStep() })
	p.btnReset = widget.NewButton("🔄 Reset", func() { p.onReset() })
	p.setControlsRunning(false)
}

// applyDefaults prefills the form from the stored configuration.
func (p *SimulationPage) applyDefaults() {
	cfg, err := p.settingsUC.GetConfig(context.Background())
	if err != nil {
		slog.Warn("Simulation: failed to load defaults", "error", err)
		p.rowsEntry.SetText("25")
		p.colsEntry.SetText("25")
		p.stepsEntry.SetText("100")
		p.densityEntry.SetText("0.5")
		return
	}

	p.rowsEntry.SetText(strconv.Itoa(cfg.Simulation.DefaultRows))
	p.colsEntry.SetText(strconv.Itoa(cfg.Simulation.DefaultCols))
	p.stepsEntry.SetText(strconv.Itoa(cfg.Simulation.DefaultSteps))
	p.densityEntry.SetText(strconv.FormatFloat(cfg.Simulation.DefaultDensity, 'f', -1, 64))
	p.cycleCheck.SetChecked(cfg.Simulation.CycleDetection)
	p.extinctCheck.SetChecked(cfg.Simulation.HaltOnExtinction)
	p.frameDelay = time.Duration(cfg.GIF.DelayMS) * time.Millisecond
}

// buildSpec assembles a run spec from the form fields.
func (p *SimulationPage) buildSpec() (usecase.RunSpec, error) {
	var spec usecase.RunSpec

	rows, err := strconv.Atoi(strings.TrimSpace(p.rowsEntry.Text))
	if err != nil || rows < 1 {
		return spec, fmt.Errorf("invalid rows value")
	}
	cols, err := strconv.Atoi(strings.TrimSpace(p.colsEntry.Text))
	if err != nil || cols < 1 {
		return spec, fmt.Errorf("invalid cols value")
	}
	steps, err := strconv.Atoi(strings.TrimSpace(p.stepsEntry.Text))
	if err != nil || steps < 0 {
		return spec, fmt.Errorf("invalid steps value")
	}

	spec.Rows = rows
	spec.Cols = cols
	spec.Steps = steps
	spec.DetectCycles = p.cycleCheck.Checked
	spec.HaltOnExtinction = p.extinctCheck.Checked

	if sel := p.patternSel.Selected; sel != "" && sel != randomBoardOption {
		spec.PatternID = sel
	}

	if txt := strings.TrimSpace(p.seedEntry.Text); txt != "" {
		seed, err := strconv.ParseInt(txt, 10, 64)
		if err != nil {
			return spec, fmt.Errorf("invalid seed value")
		}
		spec.Seed = &seed
	}

	if txt := strings.TrimSpace(p.densityEntry.Text); txt != "" && spec.PatternID == "" {
		density, err := strconv.ParseFloat(txt, 64)
		if err != nil || density < 0 || density > 1 {
			return spec, fmt.Errorf("invalid density value, want 0..1")
		}
		spec.Density = &density
	}

	return spec, nil
}

// onStart runs the configured simulation in the background and saves it
// to history when it finishes.
func (p *SimulationPage) onStart() {
	if p.running {
		return
	}

	spec, err := p.buildSpec()
	if err != nil {
		dialog.ShowError(err, p.win)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelRun = cancel
	p.running = true
	p.paused.Store(false)
	p.preview = nil
	p.setControlsRunning(true)
	p.statusLabel.SetText("Status: Running")

	generation := 0
	spec.Observer = func(b board.Board) {
		generation++
		gen := generation
		p.setBoard(b)
		fyne.Do(func() {
			p.raster.Refresh()
			p.genLabel.SetText(fmt.Sprintf("Generation: %d", gen))
			p.aliveLabel.SetText(fmt.Sprintf("Alive: %.2f%%", b.AlivePercent()))
		})

		time.Sleep(p.frameDelay)
		for p.paused.Load() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
	}

	go func() {
		summary, err := p.simUC.Run(ctx, spec)
		cancel()

		fyne.Do(func() {
			p.running = false
			p.cancelRun = nil
			p.paused.Store(false)
			p.btnPause.SetText("⏸ Pause")
			p.setControlsRunning(false)

			if err != nil {
				slog.Error("Simulation: run failed", "error", err)
				p.statusLabel.SetText("Status: Failed")
				dialog.ShowError(fmt.Errorf("run failed: %v", err), p.win)
				return
			}

			p.statusLabel.SetText(fmt.Sprintf("Status: %s", summary.StopReason))
			dialog.ShowInformation("Run Complete", fmt.Sprintf(
				"Run %s saved to history.\n\nSteps: %d of %d\nStop reason: %s\nFinal alive: %.2f%%\nExecution time: %.4fs",
				shortRunID(summary.ID),
				summary.StepCount,
				summary.Steps,
				summary.StopReason,
				summary.FinalAlivePercent(),
				summary.ExecutionTime), p.win)
		})
	}()
}

// onPauseResume toggles the pause flag the run observer spins on.
func (p *SimulationPage) onPauseResume() {
	if !p.running {
		return
	}
	if p.paused.Load() {
		p.paused.Store(false)
		p.btnPause.SetText("⏸ Pause")
		p.statusLabel.SetText("Status: Running")
	} else {
		p.paused.Store(true)
		p.btnPause.SetText("▶ Resume")
		p.statusLabel.SetText("Status: Paused")
	}
}

// onStop cancels the active run. The partial run is still saved with its
// stop reason.
func (p *SimulationPage) onStop() {
	if p.cancelRun != nil {
		p.paused.Store(false)
		p.cancelRun()
	}
}

// onStep advances the preview board by one generation without recording
// anything.
func (p *SimulationPage) onStep() {
	if p.running {
		return
	}
	if p.preview == nil {
		if !p.rebuildPreview() {
			return
		}
	}

	p.preview.Step()
	b := p.preview.Board()
	p.setBoard(b)
	p.raster.Refresh()
	p.genLabel.SetText(fmt.Sprintf("Generation: %d", p.preview.StepCount()))
	p.aliveLabel.SetText(fmt.Sprintf("Alive: %.2f%%", b.AlivePercent()))
}

// onReset rebuilds the preview board from the form.
func (p *SimulationPage) onReset() {
	if p.running {
		return
	}
	if !p.rebuildPreview() {
		return
	}

	b := p.preview.Board()
	p.setBoard(b)
	p.raster.Refresh()
	p.statusLabel.SetText("Status: Idle")
	p.genLabel.SetText("Generation: 0")
	p.aliveLabel.SetText(fmt.Sprintf("Alive: %.2f%%", b.AlivePercent()))
}

// rebuildPreview replaces the preview engine from the current form values.
func (p *SimulationPage) rebuildPreview() bool {
	spec, err := p.buildSpec()
	if err != nil {
		dialog.ShowError(err, p.win)
		return false
	}

	engine, err := p.simUC.BuildEngine(context.Background(), spec)
	if err != nil {
		dialog.ShowError(fmt.Errorf("build board: %v", err), p.win)
		return false
	}

	p.preview = engine
	return true
}

func (p *SimulationPage) setBoard(b board.Board) {
	p.mu.Lock()
	p.current = b
	p.mu.Unlock()
}

// setControlsRunning flips the buttons between the idle and running sets.
func (p *SimulationPage) setControlsRunning(running bool) {
	if running {
		p.btnStart.Disable()
		p.btnPause.Enable()
		p.btnStop.Enable()
		p.btnStep.Disable()
		p.btnReset.Disable()
	} else {
		p.btnStart.Enable()
		p.btnPause.Disable()
		p.btnStop.Disable()
		p.btnStep.Enable()
		p.btnReset.Enable()
	}
}

// shortRunID trims a run ID for display.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
