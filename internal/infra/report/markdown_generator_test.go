// Package report provides unit tests for the Markdown generator.
package report

import (
	"strings"
	"testing"

	"lifebench/internal/domain/report"
)

// TestMarkdownGenerator_Format tests format detection.
func TestMarkdownGenerator_Format(t *testing.T) {
	gen := NewMarkdownGenerator()
	if gen.Format() != report.FormatMarkdown {
		t.Errorf("Format() = %v, want %v", gen.Format(), report.FormatMarkdown)
	}
}

// TestMarkdownGenerator_Generate_SingleRun tests single-run report sections.
func TestMarkdownGenerator_Generate_SingleRun(t *testing.T) {
	gen := NewMarkdownGenerator()
	summary := runSummaryFixture("run-1", 42)
	summary.LoopDetected = true
	summary.LoopLength = 2
	summary.StopReason = "cycle"

	rpt, err := gen.Generate(report.NewInput(&summary, report.DefaultOptions(report.FormatMarkdown)))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	content := string(rpt.Content)

	wantSections := []string{
		"# Life Run Report - run-1",
		"## Summary",
		"- **Board**: 10x10 (100 cells)",
		"- **Steps**: 4 executed of 20 requested",
		"- **Stop Reason**: cycle",
		"- **Cycle**: length 2",
		"- **Seed**: 42",
		"## Environment",
		"| Processor Name | test-cpu |",
		"## Population",
		"| **Max Alive Cells** | 40 |",
		"| **Final Alive** | 12.00% |",
		"## Charts",
		"### Alive Cells Over Time",
		"Generated by lifebench",
	}
	for _, want := range wantSections {
		if !strings.Contains(content, want) {
			t.Errorf("report misses %q", want)
		}
	}

	if strings.Contains(content, "## Step Series") {
		t.Error("series section present although IncludeSeries defaults to false")
	}
}

// TestMarkdownGenerator_Generate_Options tests section toggles.
func TestMarkdownGenerator_Generate_Options(t *testing.T) {
	gen := NewMarkdownGenerator()
	summary := runSummaryFixture("run-1", 42)

	opts := report.DefaultOptions(report.FormatMarkdown)
	opts.IncludeEnvironment = false
	opts.IncludeChart = false
	opts.IncludeSeries = true
	opts.Title = "Custom Title"

	rpt, err := gen.Generate(report.NewInput(&summary, opts))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	content := string(rpt.Content)

	if !strings.Contains(content, "# Custom Title") {
		t.Error("custom title not used")
	}
	if strings.Contains(content, "## Environment") {
		t.Error("environment section present although disabled")
	}
	if strings.Contains(content, "## Charts") {
		t.Error("chart section present although disabled")
	}
	if !strings.Contains(content, "## Step Series") {
		t.Error("series section missing although enabled")
	}
	if !strings.Contains(content, "| 4 | 12.00 |") {
		t.Error("series rows missing")
	}
}

// TestMarkdownGenerator_Generate_Sweep tests sweep report sections.
func TestMarkdownGenerator_Generate_Sweep(t *testing.T) {
	gen := NewMarkdownGenerator()

	rpt, err := gen.Generate(sweepInputFixture(report.DefaultOptions(report.FormatMarkdown)))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	content := string(rpt.Content)

	wantSections := []string{
		"# Life Sweep Report - 2 runs",
		"- **Runs**: 2",
		"## Aggregate Statistics",
		"| **Execution Time (s)** |",
		"| **Final Alive (%)** |",
		"### Final Alive by Run",
		"seed 100",
		"## Runs",
		"| 1 | 100 | 4 |",
	}
	for _, want := range wantSections {
		if !strings.Contains(content, want) {
			t.Errorf("sweep report misses %q", want)
		}
	}
}
