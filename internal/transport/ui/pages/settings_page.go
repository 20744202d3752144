package pages

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"lifebench/internal/app/usecase"
	"lifebench/internal/domain/config"
)

// SettingsPage edits the stored application configuration.
type SettingsPage struct {
	win        fyne.Window
	settingsUC *usecase.SettingsUseCase

	rowsEntry      *widget.Entry
	colsEntry      *widget.Entry
	stepsEntry     *widget.Entry
	densityEntry   *widget.Entry
	cycleCheck     *widget.Check
	extinctCheck   *widget.Check
	maxStatesEntry *widget.Entry

	runsEntry    *widget.Entry
	workersEntry *widget.Entry

	cellPixelsEntry *widget.Entry
	delayEntry      *widget.Entry
	maxFramesEntry  *widget.Entry

	chartWidthEntry *widget.Entry
	outputDirEntry  *widget.Entry

	dbPathEntry *widget.Entry
	logLevelSel *widget.Select
}

// NewSettingsPage creates the settings page.
func NewSettingsPage(win fyne.Window, settingsUC *usecase.SettingsUseCase) fyne.CanvasObject {
	page := &SettingsPage{win: win, settingsUC: settingsUC}

	page.rowsEntry = widget.NewEntry()
	page.colsEntry = widget.NewEntry()
	page.stepsEntry = widget.NewEntry()
	page.densityEntry = widget.NewEntry()
	page.cycleCheck = widget.NewCheck("Detect cycles", nil)
	page.extinctCheck = widget.NewCheck("Halt on extinction", nil)
	page.maxStatesEntry = widget.NewEntry()
	page.runsEntry = widget.NewEntry()
	page.workersEntry = widget.NewEntry()
	page.cellPixelsEntry = widget.NewEntry()
	page.delayEntry = widget.NewEntry()
	page.maxFramesEntry = widget.NewEntry()
	page.chartWidthEntry = widget.NewEntry()
	page.outputDirEntry = widget.NewEntry()
	page.dbPathEntry = widget.NewEntry()
	page.logLevelSel = widget.NewSelect([]string{"debug", "info", "warn", "error"}, func(string) {})

	page.load()

	simCard := widget.NewCard("Simulation Defaults", "", widget.NewForm(
		widget.NewFormItem("Rows", page.rowsEntry),
		widget.NewFormItem("Cols", page.colsEntry),
		widget.NewFormItem("Steps", page.stepsEntry),
		widget.NewFormItem("Density", page.densityEntry),
		widget.NewFormItem("Cycle states (0 = default)", page.maxStatesEntry),
		widget.NewFormItem("", page.cycleCheck),
		widget.NewFormItem("", page.extinctCheck),
	))

	sweepCard := widget.NewCard("Seed Sweeps", "", widget.NewForm(
		widget.NewFormItem("Runs", page.runsEntry),
		widget.NewFormItem("Workers", page.workersEntry),
	))

	gifCard := widget.NewCard("Animation Export", "", widget.NewForm(
		widget.NewFormItem("Cell pixels", page.cellPixelsEntry),
		widget.NewFormItem("Frame delay (ms)", page.delayEntry),
		widget.NewFormItem("Max frames", page.maxFramesEntry),
	))

	reportCard := widget.NewCard("Reports", "", widget.NewForm(
		widget.NewFormItem("Chart width", page.chartWidthEntry),
		widget.NewFormItem("Output directory", page.outputDirEntry),
	))

	advancedCard := widget.NewCard("Advanced", "", widget.NewForm(
		widget.NewFormItem("Log level", page.logLevelSel),
		widget.NewFormItem("Database path (applies on restart)", page.dbPathEntry),
	))

	saveBtn := widget.NewButton("💾 Save Settings", func() { page.onSave() })
	resetBtn := widget.NewButton("Reset to Defaults", func() { page.onReset() })

	content := container.NewVBox(
		simCard,
		sweepCard,
		gifCard,
		reportCard,
		advancedCard,
		container.NewHBox(saveBtn, resetBtn),
	)
	return container.NewVScroll(content)
}

// load fills the form from the stored configuration.
func (p *SettingsPage) load() {
	go func() {
		cfg, err := p.settingsUC.GetConfig(context.Background())
		fyne.Do(func() {
			if err != nil {
				slog.Error("Settings: load failed", "error", err)
				dialog.ShowError(fmt.Errorf("load settings: %v", err), p.win)
				return
			}
			p.populate(cfg)
		})
	}()
}

func (p *SettingsPage) populate(cfg *config.Config) {
	p.rowsEntry.SetText(strconv.Itoa(cfg.Simulation.DefaultRows))
	p.colsEntry.SetText(strconv.Itoa(cfg.Simulation.DefaultCols))
	p.stepsEntry.SetText(strconv.Itoa(cfg.Simulation.DefaultSteps))
	p.densityEntry.SetText(strconv.FormatFloat(cfg.Simulation.DefaultDensity, 'f', -1, 64))
	p.cycleCheck.SetChecked(cfg.Simulation.CycleDetection)
	p.extinctCheck.SetChecked(cfg.Simulation.HaltOnExtinction)
	p.maxStatesEntry.SetText(strconv.Itoa(cfg.Simulation.MaxCycleStates))
	p.runsEntry.SetText(strconv.Itoa(cfg.Sweep.Runs))
	p.workersEntry.SetText(strconv.Itoa(cfg.Sweep.Workers))
	p.cellPixelsEntry.SetText(strconv.Itoa(cfg.GIF.CellPixels))
	p.delayEntry.SetText(strconv.Itoa(cfg.GIF.DelayMS))
	p.maxFramesEntry.SetText(strconv.Itoa(cfg.GIF.MaxFrames))
	p.chartWidthEntry.SetText(strconv.Itoa(cfg.Reports.ChartWidth))
	p.outputDirEntry.SetText(cfg.Reports.OutputDir)
	p.dbPathEntry.SetText(cfg.Database.Path)
	p.logLevelSel.SetSelected(cfg.Advanced.LogLevel)
}

// collect parses the form back into a configuration. Validation happens in
// the use case so the form only has to produce well typed values.
func (p *SettingsPage) collect() (*config.Config, error) {
	cfg := &config.Config{Version: 1}

	var err error
	if cfg.Simulation.DefaultRows, err = intField("rows", p.rowsEntry.Text); err != nil {
		return nil, err
	}
	if cfg.Simulation.DefaultCols, err = intField("cols", p.colsEntry.Text); err != nil {
		return nil, err
	}
	if cfg.Simulation.DefaultSteps, err = intField("steps", p.stepsEntry.Text); err != nil {
		return nil, err
	}
	if cfg.Simulation.DefaultDensity, err = floatField("density", p.densityEntry.Text); err != nil {
		return nil, err
	}
	if cfg.Simulation.MaxCycleStates, err = intField("cycle states", p.maxStatesEntry.Text); err != nil {
		return nil, err
	}
	cfg.Simulation.CycleDetection = p.cycleCheck.Checked
	cfg.Simulation.HaltOnExtinction = p.extinctCheck.Checked

	if cfg.Sweep.Runs, err = intField("sweep runs", p.runsEntry.Text); err != nil {
		return nil, err
	}
	if cfg.Sweep.Workers, err = intField("sweep workers", p.workersEntry.Text); err != nil {
		return nil, err
	}

	if cfg.GIF.CellPixels, err = intField("cell pixels", p.cellPixelsEntry.Text); err != nil {
		return nil, err
	}
	if cfg.GIF.DelayMS, err = intField("frame delay", p.delayEntry.Text); err != nil {
		return nil, err
	}
	if cfg.GIF.MaxFrames, err = intField("max frames", p.maxFramesEntry.Text); err != nil {
		return nil, err
	}

	if cfg.Reports.ChartWidth, err = intField("chart width", p.chartWidthEntry.Text); err != nil {
		return nil, err
	}
	cfg.Reports.OutputDir = strings.TrimSpace(p.outputDirEntry.Text)

	cfg.Database.Path = strings.TrimSpace(p.dbPathEntry.Text)
	cfg.Advanced.LogLevel = p.logLevelSel.Selected

	return cfg, nil
}

func (p *SettingsPage) onSave() {
	cfg, err := p.collect()
	if err != nil {
		dialog.ShowError(err, p.win)
		return
	}

	go func() {
		err := p.settingsUC.UpdateConfig(context.Background(), cfg)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(fmt.Errorf("save settings: %v", err), p.win)
				return
			}
			dialog.ShowInformation("Settings", "Settings saved.", p.win)
		})
	}()
}

func (p *SettingsPage) onReset() {
	dialog.ShowConfirm("Reset Settings", "Restore all settings to their defaults?", func(ok bool) {
		if !ok {
			return
		}
		go func() {
			err := p.settingsUC.ResetSettings(context.Background())
			cfg, loadErr := p.settingsUC.GetConfig(context.Background())
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("reset settings: %v", err), p.win)
					return
				}
				if loadErr == nil {
					p.populate(cfg)
				}
				dialog.ShowInformation("Settings", "Settings restored to defaults.", p.win)
			})
		}()
	}, p.win)
}

func intField(name, text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value", name)
	}
	return v, nil
}

func floatField(name, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value", name)
	}
	return v, nil
}
