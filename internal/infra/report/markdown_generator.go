// Package report provides the Markdown report generator implementation.
package report

import (
	"fmt"
	"strings"
	"time"

	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
	"lifebench/internal/domain/report"
)

// MarkdownGenerator generates Markdown format reports.
type MarkdownGenerator struct {
	chartGen *ChartGenerator
}

// NewMarkdownGenerator creates a new Markdown generator.
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{
		chartGen: NewChartGenerator(),
	}
}

// Generate generates a Markdown report.
func (g *MarkdownGenerator) Generate(in *report.Input) (*report.Report, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var sb strings.Builder
	runID := ""
	if in.IsSweep() {
		g.writeSweep(&sb, in)
	} else {
		runID = in.Summary.ID
		g.writeRun(&sb, in)
	}
	g.writeFooter(&sb)

	return &report.Report{
		Format:      report.FormatMarkdown,
		Content:     []byte(sb.String()),
		GeneratedAt: time.Now(),
		RunID:       runID,
	}, nil
}

// Format returns the format this generator produces.
func (g *MarkdownGenerator) Format() report.Format {
	return report.FormatMarkdown
}

// writeRun writes all sections of a single-run report.
func (g *MarkdownGenerator) writeRun(sb *strings.Builder, in *report.Input) {
	s := in.Summary
	opts := in.Options

	// Title
	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Life Run Report - %s", s.ID)
	}
	fmt.Fprintf(sb, "# %s\n\n", title)

	// Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(sb, "- **Board**: %dx%d (%d cells)\n", s.Dimensions[0], s.Dimensions[1], s.Dimensions[0]*s.Dimensions[1])
	fmt.Fprintf(sb, "- **Steps**: %d executed of %d requested\n", s.StepCount, s.Steps)
	fmt.Fprintf(sb, "- **Stop Reason**: %s\n", s.StopReason)
	if s.LoopDetected {
		fmt.Fprintf(sb, "- **Cycle**: length %d\n", s.LoopLength)
	}
	fmt.Fprintf(sb, "- **Seed**: %d\n", s.Seed)
	fmt.Fprintf(sb, "- **Started**: %s\n", report.FormatTimestamp(s.Timestamp))
	fmt.Fprintf(sb, "- **Execution Time**: %ss\n", report.FormatFloat(s.ExecutionTime, 4))
	sb.WriteString("\n")

	// Environment
	if opts.IncludeEnvironment {
		g.writeEnvironment(sb, s)
	}

	// Population metrics
	g.writePopulation(sb, s)

	// Charts
	if opts.IncludeChart && len(s.AliveCellsStats) > 0 {
		g.writeCharts(sb, s.AliveCellsStats, opts.ChartWidth)
	}

	// Per-step series
	if opts.IncludeSeries && len(s.AliveCellsStats) > 0 {
		g.writeSeries(sb, s.AliveCellsStats)
	}
}

// writeEnvironment writes the host environment section.
func (g *MarkdownGenerator) writeEnvironment(sb *strings.Builder, s *execution.Summary) {
	sb.WriteString("## Environment\n\n")
	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|----------|-------|\n")
	fmt.Fprintf(sb, "| Run ID | `%s` |\n", s.ID)
	fmt.Fprintf(sb, "| System | %s |\n", s.System)
	fmt.Fprintf(sb, "| Architecture | %s |\n", s.Architecture)
	fmt.Fprintf(sb, "| Processor | %s |\n", s.Processor)
	if s.ProcessorName != "" {
		fmt.Fprintf(sb, "| Processor Name | %s |\n", s.ProcessorName)
	}
	sb.WriteString("\n")
}

// writePopulation writes the population metrics section.
func (g *MarkdownGenerator) writePopulation(sb *strings.Builder, s *execution.Summary) {
	sb.WriteString("## Population\n\n")

	if len(s.AliveCellsStats) == 0 {
		sb.WriteString("*No generations were computed*\n\n")
		return
	}

	min, max := s.AlivePercentRange()
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(sb, "| **Max Alive Cells** | %d |\n", s.MaxAliveCells)
	fmt.Fprintf(sb, "| **Min Alive Cells** | %d |\n", s.MinAliveCells)
	fmt.Fprintf(sb, "| **Final Alive** | %.2f%% |\n", s.FinalAlivePercent())
	fmt.Fprintf(sb, "| **Alive Range** | %.2f%% .. %.2f%% |\n", min, max)
	sb.WriteString("\n")
}

// writeCharts writes the charts section.
func (g *MarkdownGenerator) writeCharts(sb *strings.Builder, stats []float64, width int) {
	sb.WriteString("## Charts\n\n")

	if sparkline := g.chartGen.GenerateAliveSparkline(stats, width, 10); sparkline != "" {
		sb.WriteString("### Alive Cells Over Time\n\n")
		sb.WriteString("```\n")
		sb.WriteString(sparkline)
		sb.WriteString("```\n\n")
	}

	if dist := g.chartGen.GenerateAliveDistribution(stats, width); dist != "" {
		sb.WriteString("### Alive Percentage Distribution\n\n")
		sb.WriteString("```\n")
		sb.WriteString(dist)
		sb.WriteString("```\n\n")
	}
}

// writeSeries writes the per-step alive series section.
func (g *MarkdownGenerator) writeSeries(sb *strings.Builder, stats []float64) {
	sb.WriteString("## Step Series\n\n")
	sb.WriteString("| Step | Alive (%) |\n")
	sb.WriteString("|------|-----------|\n")
	for i, pct := range stats {
		fmt.Fprintf(sb, "| %d | %.2f |\n", i+1, pct)
	}
	sb.WriteString("\n")
}

// writeSweep writes all sections of a sweep report.
func (g *MarkdownGenerator) writeSweep(sb *strings.Builder, in *report.Input) {
	agg := in.Aggregate
	opts := in.Options

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Life Sweep Report - %d runs", agg.Runs)
	}
	fmt.Fprintf(sb, "# %s\n\n", title)

	// Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(sb, "- **Runs**: %d\n", agg.Runs)
	fmt.Fprintf(sb, "- **Runs With Cycles**: %d (%.1f%%)\n", agg.LoopRuns, agg.LoopRate)
	fmt.Fprintf(sb, "- **Extinct Runs**: %d\n", agg.ExtinctRuns)
	sb.WriteString("\n")

	// Aggregate statistics
	sb.WriteString("## Aggregate Statistics\n\n")
	sb.WriteString("| Metric | Mean ± StdDev | Min .. Max |\n")
	sb.WriteString("|--------|---------------|------------|\n")
	fmt.Fprintf(sb, "| **Execution Time (s)** | %s | %s |\n",
		history.FormatMeanStdDev(agg.ExecutionTime), history.FormatMinMax(agg.ExecutionTime))
	fmt.Fprintf(sb, "| **Final Alive (%%)** | %s | %s |\n",
		history.FormatMeanStdDev(agg.FinalAlivePercent), history.FormatMinMax(agg.FinalAlivePercent))
	fmt.Fprintf(sb, "| **Step Count** | %s | %s |\n",
		history.FormatMeanStdDev(agg.StepCount), history.FormatMinMax(agg.StepCount))
	sb.WriteString("\n")

	// Per-run chart
	if opts.IncludeChart && len(in.Members) > 0 {
		g.writeSweepChart(sb, in.Members, opts.ChartWidth)
	}

	// Per-run table
	if len(in.Members) > 0 {
		g.writeSweepRuns(sb, in.Members)
	}
}

// writeSweepChart writes the per-run final alive bar chart.
func (g *MarkdownGenerator) writeSweepChart(sb *strings.Builder, members []execution.Summary, width int) {
	labels := make([]string, len(members))
	values := make([]float64, len(members))
	for i := range members {
		labels[i] = fmt.Sprintf("seed %d", members[i].Seed)
		values[i] = members[i].FinalAlivePercent()
	}

	if chart := g.chartGen.GenerateBarChart(labels, values, width); chart != "" {
		sb.WriteString("### Final Alive by Run\n\n")
		sb.WriteString("```\n")
		sb.WriteString(chart)
		sb.WriteString("```\n\n")
	}
}

// writeSweepRuns writes the member run table.
func (g *MarkdownGenerator) writeSweepRuns(sb *strings.Builder, members []execution.Summary) {
	sb.WriteString("## Runs\n\n")
	sb.WriteString("| # | Seed | Steps | Final Alive (%) | Stop Reason |\n")
	sb.WriteString("|---|------|-------|-----------------|-------------|\n")
	for i := range members {
		s := &members[i]
		fmt.Fprintf(sb, "| %d | %d | %d | %.2f | %s |\n",
			i+1, s.Seed, s.StepCount, s.FinalAlivePercent(), s.StopReason)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (g *MarkdownGenerator) writeFooter(sb *strings.Builder) {
	sb.WriteString("---\n\n")
	fmt.Fprintf(sb, "*Generated by lifebench at %s*\n", time.Now().Format(time.RFC1123))
}
