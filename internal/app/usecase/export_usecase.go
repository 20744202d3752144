// Package usecase provides report export business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lifebench/internal/app/repository"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
	"lifebench/internal/domain/report"
	infrareport "lifebench/internal/infra/report"
)

// ExportUseCase renders run summaries into report files.
type ExportUseCase struct {
	historyRepo repository.HistoryRepository
	exportDir   string

	// Registered generators
	generators map[report.Format]report.Generator
}

// NewExportUseCase creates a new export use case writing into exportDir.
func NewExportUseCase(historyRepo repository.HistoryRepository, exportDir string) *ExportUseCase {
	if exportDir == "" {
		exportDir = "./exports"
	}
	uc := &ExportUseCase{
		historyRepo: historyRepo,
		exportDir:   exportDir,
		generators:  make(map[report.Format]report.Generator),
	}

	// Register default generators
	uc.RegisterGenerator(infrareport.NewJSONGenerator())
	uc.RegisterGenerator(infrareport.NewMarkdownGenerator())

	return uc
}

// RegisterGenerator registers a report generator.
func (uc *ExportUseCase) RegisterGenerator(generator report.Generator) {
	uc.generators[generator.Format()] = generator
}

// ExportDir returns the directory reports are written into.
func (uc *ExportUseCase) ExportDir() string {
	return uc.exportDir
}

// ExportRun exports a single run summary to the specified format and
// returns the path of the written file.
func (uc *ExportUseCase) ExportRun(ctx context.Context, id string, format report.Format, opts *report.Options) (string, error) {
	summary, err := uc.historyRepo.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("find run: %w", err)
	}

	content, err := uc.generate(report.NewInput(summary, opts), format)
	if err != nil {
		return "", err
	}

	path, err := uc.writeFile(uc.runFilename(summary, format), content)
	if err != nil {
		return "", err
	}
	slog.Info("Export: wrote run report", "id", id, "format", format, "path", path)
	return path, nil
}

// ExportAll exports every run matching the filter to the specified format.
// Returns the count of successfully exported runs and the directory path.
func (uc *ExportUseCase) ExportAll(ctx context.Context, filter history.Filter, format report.Format, opts *report.Options) (int, string, error) {
	summaries, err := uc.historyRepo.FindAll(ctx, filter)
	if err != nil {
		return 0, "", fmt.Errorf("load runs: %w", err)
	}
	if len(summaries) == 0 {
		return 0, "", fmt.Errorf("no runs to export")
	}

	successCount := 0
	failed := []string{}

	for i := range summaries {
		summary := &summaries[i]
		content, err := uc.generate(report.NewInput(summary, opts), format)
		if err == nil {
			_, err = uc.writeFile(uc.runFilename(summary, format), content)
		}
		if err != nil {
			slog.Error("Export: failed to export run", "index", i, "id", summary.ID, "error", err)
			failed = append(failed, summary.ID)
			continue
		}
		successCount++
	}

	if len(failed) > 0 {
		return successCount, uc.exportDir, fmt.Errorf("failed to export %d runs: %v", len(failed), failed)
	}
	return successCount, uc.exportDir, nil
}

// ExportSweep exports a sweep result, aggregate statistics plus every
// member run, and returns the path of the written file.
func (uc *ExportUseCase) ExportSweep(ctx context.Context, result *SweepResult, format report.Format, opts *report.Options) (string, error) {
	in := report.NewSweepInput(&result.Aggregate, result.Summaries, opts)
	content, err := uc.generate(in, format)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("life_sweep_%druns_%s%s",
		len(result.Summaries),
		time.Now().Format("20060102_150405"),
		format.FileExtension())

	path, err := uc.writeFile(filename, content)
	if err != nil {
		return "", err
	}
	slog.Info("Export: wrote sweep report", "runs", len(result.Summaries), "format", format, "path", path)
	return path, nil
}

// generate runs the registered generator for the format over the input.
func (uc *ExportUseCase) generate(in *report.Input, format report.Format) ([]byte, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}
	if in.Options == nil {
		in.Options = report.DefaultOptions(format)
	}
	in.Options.Format = format

	generator, ok := uc.generators[format]
	if !ok {
		return nil, fmt.Errorf("no generator registered for format: %s", format)
	}

	rpt, err := generator.Generate(in)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	return rpt.Content, nil
}

// writeFile writes report content under the export directory.
func (uc *ExportUseCase) writeFile(filename string, content []byte) (string, error) {
	if err := os.MkdirAll(uc.exportDir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(uc.exportDir, filename)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// runFilename generates a filename for an exported run summary.
func (uc *ExportUseCase) runFilename(summary *execution.Summary, format report.Format) string {
	id := summary.ID
	if len(id) > 8 {
		id = id[:8]
	}
	timestamp := summary.Timestamp.Format("20060102_150405")
	return fmt.Sprintf("life_%dx%d_%s_%s%s",
		summary.Dimensions[0], summary.Dimensions[1], timestamp, id, format.FileExtension())
}
