package pages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"lifebench/internal/app/usecase"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
	"lifebench/internal/domain/report"
)

// HistoryPage lists persisted runs with detail, export and delete actions.
type HistoryPage struct {
	win       fyne.Window
	historyUC *usecase.HistoryUseCase
	exportUC  *usecase.ExportUseCase

	records    []execution.Summary
	list       *widget.List
	countLabel *widget.Label
}

// NewHistoryPage creates the history page. It returns both the page handle
// and its content so other tabs can trigger a refresh.
func NewHistoryPage(win fyne.Window, historyUC *usecase.HistoryUseCase, exportUC *usecase.ExportUseCase) (*HistoryPage, fyne.CanvasObject) {
	page := &HistoryPage{
		win:       win,
		historyUC: historyUC,
		exportUC:  exportUC,
	}

	page.countLabel = widget.NewLabel("0 runs")
	page.list = widget.NewList(
		func() int { return len(page.records) },
		func() fyne.CanvasObject {
			details := widget.NewButton("🔍 Details", nil)
			details.Importance = widget.LowImportance
			export := widget.NewButton("📥 Export", nil)
			export.Importance = widget.LowImportance
			del := widget.NewButton("❌ Delete", nil)
			del.Importance = widget.LowImportance
			return container.NewHBox(widget.NewLabel("run"), layout.NewSpacer(), details, export, del)
		},
		func(i widget.ListItemID, item fyne.CanvasObject) {
			if i < 0 || i >= len(page.records) {
				return
			}
			rec := page.records[i]
			row := item.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(describeRun(&rec))
			row.Objects[2].(*widget.Button).OnTapped = func() { page.showDetails(rec.ID) }
			row.Objects[3].(*widget.Button).OnTapped = func() { page.exportRun(rec.ID) }
			row.Objects[4].(*widget.Button).OnTapped = func() { page.deleteRun(rec.ID) }
		},
	)

	refreshBtn := widget.NewButton("🔄 Refresh", func() { page.Refresh() })
	exportAllBtn := widget.NewButton("💾 Export All", func() { page.exportAll() })
	deleteAllBtn := widget.NewButton("🗑️ Delete All", func() { page.deleteAll() })
	toolbar := container.NewHBox(refreshBtn, exportAllBtn, deleteAllBtn, layout.NewSpacer(), page.countLabel)

	page.Refresh()
	return page, container.NewBorder(toolbar, nil, nil, nil, page.list)
}

// Refresh reloads the run list in the background.
func (p *HistoryPage) Refresh() {
	go func() {
		records, err := p.historyUC.List(context.Background(), history.Filter{})
		fyne.Do(func() {
			if err != nil {
				slog.Error("History: list failed", "error", err)
				dialog.ShowError(fmt.Errorf("load history: %v", err), p.win)
				return
			}
			p.records = records
			p.countLabel.SetText(fmt.Sprintf("%d runs", len(records)))
			p.list.Refresh()
		})
	}()
}

func (p *HistoryPage) showDetails(id string) {
	go func() {
		summary, err := p.historyUC.Get(context.Background(), id)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(fmt.Errorf("load run: %v", err), p.win)
				return
			}
			label := widget.NewLabel(formatRunDetails(summary))
			label.TextStyle = fyne.TextStyle{Monospace: true}
			d := dialog.NewCustom("Run Details", "Close", container.NewVScroll(label), p.win)
			d.Resize(fyne.NewSize(540, 420))
			d.Show()
		})
	}()
}

func (p *HistoryPage) exportRun(id string) {
	formats := widget.NewRadioGroup([]string{"JSON", "Markdown"}, nil)
	formats.SetSelected("JSON")
	dialog.ShowCustomConfirm("Export Run", "Export", "Cancel", formats, func(ok bool) {
		if !ok {
			return
		}
		format := report.FormatJSON
		if formats.Selected == "Markdown" {
			format = report.FormatMarkdown
		}
		go func() {
			path, err := p.exportUC.ExportRun(context.Background(), id, format, nil)
			fyne.Do(func() {
				if err != nil {
					slog.Error("Export: run export failed", "id", id, "error", err)
					dialog.ShowError(fmt.Errorf("export failed: %v", err), p.win)
					return
				}
				dialog.ShowInformation("Export Complete", fmt.Sprintf("Report written to %s", path), p.win)
			})
		}()
	}, p.win)
}

func (p *HistoryPage) exportAll() {
	if len(p.records) == 0 {
		dialog.ShowInformation("Export All", "No runs to export.", p.win)
		return
	}

	formats := widget.NewRadioGroup([]string{"JSON", "Markdown"}, nil)
	formats.SetSelected("JSON")
	dialog.ShowCustomConfirm("Export All Runs", "Export", "Cancel", formats, func(ok bool) {
		if !ok {
			return
		}
		format := report.FormatJSON
		if formats.Selected == "Markdown" {
			format = report.FormatMarkdown
		}
		go func() {
			count, dir, err := p.exportUC.ExportAll(context.Background(), history.Filter{}, format, nil)
			fyne.Do(func() {
				if err != nil {
					slog.Error("Export: export all failed", "error", err)
					dialog.ShowError(fmt.Errorf("export failed after %d reports: %v", count, err), p.win)
					return
				}
				dialog.ShowInformation("Export Complete", fmt.Sprintf("Wrote %d reports to %s", count, dir), p.win)
			})
		}()
	}, p.win)
}

func (p *HistoryPage) deleteRun(id string) {
	msg := fmt.Sprintf("Delete run %s? This cannot be undone.", shortRunID(id))
	dialog.ShowConfirm("Delete Run", msg, func(ok bool) {
		if !ok {
			return
		}
		go func() {
			err := p.historyUC.Delete(context.Background(), id)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("delete run: %v", err), p.win)
					return
				}
				p.Refresh()
			})
		}()
	}, p.win)
}

func (p *HistoryPage) deleteAll() {
	if len(p.records) == 0 {
		dialog.ShowInformation("Delete All", "History is already empty.", p.win)
		return
	}

	msg := fmt.Sprintf("Delete all %d runs? This cannot be undone.", len(p.records))
	dialog.ShowConfirm("Delete All Runs", msg, func(ok bool) {
		if !ok {
			return
		}
		go func() {
			removed, err := p.historyUC.Clear(context.Background())
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("clear history: %v", err), p.win)
					return
				}
				dialog.ShowInformation("History Cleared", fmt.Sprintf("Deleted %d runs.", removed), p.win)
				p.Refresh()
			})
		}()
	}, p.win)
}

// describeRun renders the one line list entry for a run.
func describeRun(s *execution.Summary) string {
	return fmt.Sprintf("%dx%d | %d/%d steps | %s | seed %d | %s",
		s.Dimensions[0], s.Dimensions[1],
		s.StepCount, s.Steps,
		s.StopReason, s.Seed,
		s.Timestamp.Local().Format("2006-01-02 15:04:05"))
}

// formatRunDetails renders the full detail block shown by the details dialog.
func formatRunDetails(s *execution.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:             %s\n", s.ID)
	fmt.Fprintf(&b, "Dimensions:     %dx%d\n", s.Dimensions[0], s.Dimensions[1])
	fmt.Fprintf(&b, "Steps:          %d requested, %d executed\n", s.Steps, s.StepCount)
	fmt.Fprintf(&b, "Execution time: %.6fs\n", s.ExecutionTime)
	fmt.Fprintf(&b, "Alive cells:    min %d, max %d\n", s.MinAliveCells, s.MaxAliveCells)
	if len(s.AliveCellsStats) > 0 {
		fmt.Fprintf(&b, "Final alive:    %.2f%%\n", s.FinalAlivePercent())
	}
	fmt.Fprintf(&b, "Seed:           %d\n", s.Seed)
	fmt.Fprintf(&b, "Timestamp:      %s\n", s.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Stop reason:    %s\n", s.StopReason)
	if s.LoopDetected {
		fmt.Fprintf(&b, "Loop:           detected, length %d\n", s.LoopLength)
	}
	fmt.Fprintf(&b, "Host:           %s/%s", s.System, s.Architecture)
	if s.ProcessorName != "" {
		fmt.Fprintf(&b, " (%s)", s.ProcessorName)
	}
	b.WriteByte('\n')
	return b.String()
}
