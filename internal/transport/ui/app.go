// Package ui provides the GUI implementation using Fyne.
// Only handles I/O and user interaction; all business logic is delegated
// to use cases.
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"

	"lifebench/internal/app/usecase"
	"lifebench/internal/transport/ui/pages"
)

// Application represents the Fyne GUI application.
type Application struct {
	app        fyne.App
	simUC      *usecase.SimulationUseCase
	historyUC  *usecase.HistoryUseCase
	exportUC   *usecase.ExportUseCase
	settingsUC *usecase.SettingsUseCase
}

// NewApplication creates a new Fyne application.
func NewApplication(simUC *usecase.SimulationUseCase, historyUC *usecase.HistoryUseCase, exportUC *usecase.ExportUseCase, settingsUC *usecase.SettingsUseCase) *Application {
	return &Application{
		app:        app.NewWithID("com.lifebench.app"),
		simUC:      simUC,
		historyUC:  historyUC,
		exportUC:   exportUC,
		settingsUC: settingsUC,
	}
}

// Run starts the application and blocks until the main window closes.
func (a *Application) Run() {
	window := a.app.NewWindow("LifeBench")
	window.Resize(fyne.NewSize(1024, 768))
	window.SetMaster()

	window.SetCloseIntercept(func() {
		a.app.Quit()
	})

	historyPage, historyPageContent := pages.NewHistoryPage(window, a.historyUC, a.exportUC)

	tabs := container.NewAppTabs(
		container.NewTabItem("Simulation", pages.NewSimulationPage(window, a.simUC, a.settingsUC)),
		container.NewTabItem("History", historyPageContent),
		container.NewTabItem("Settings", pages.NewSettingsPage(window, a.settingsUC)),
	)

	tabs.SetTabLocation(container.TabLocationTop)

	// Refresh the history list whenever its tab is opened so runs started
	// from the simulation tab show up without a manual refresh.
	tabs.OnSelected = func(tab *container.TabItem) {
		if tab.Text == "History" {
			historyPage.Refresh()
		}
	}

	window.SetContent(tabs)
	window.ShowAndRun()
}
