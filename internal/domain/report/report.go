// Package report provides report generation domain models.
package report

import (
	"fmt"
	"time"

	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
)

// Format represents the output format for a report.
type Format string

const (
	// FormatMarkdown generates Markdown format reports.
	FormatMarkdown Format = "markdown"
	// FormatJSON generates JSON format reports.
	FormatJSON Format = "json"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Validate checks if the format is valid.
func (f Format) Validate() error {
	switch f {
	case FormatMarkdown, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid report format: %s", f)
	}
}

// FileExtension returns the file extension for this format.
func (f Format) FileExtension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Options represents configuration for report generation.
type Options struct {
	// Format is the output format.
	Format Format

	// IncludeChart enables the alive-percentage chart section.
	IncludeChart bool

	// IncludeEnvironment includes the host environment section.
	IncludeEnvironment bool

	// IncludeSeries includes the full per-step alive series.
	IncludeSeries bool

	// ChartWidth is the width in characters for text-based charts.
	ChartWidth int

	// Title is the custom report title (optional).
	Title string
}

// DefaultOptions returns default report options for a format.
func DefaultOptions(format Format) *Options {
	return &Options{
		Format:             format,
		IncludeChart:       true,
		IncludeEnvironment: true,
		IncludeSeries:      false,
		ChartWidth:         60,
	}
}

// Report represents a generated report.
type Report struct {
	// Format is the report format.
	Format Format

	// Content is the report content.
	Content []byte

	// GeneratedAt is when the report was generated.
	GeneratedAt time.Time

	// RunID is the associated run ID, empty for sweep reports.
	RunID string

	// FilePath is the file path if saved to disk.
	FilePath string
}

// Generator is the interface for report generators.
type Generator interface {
	// Generate generates a report from the provided data.
	Generate(in *Input) (*Report, error)

	// Format returns the format this generator produces.
	Format() Format
}

// Input contains the data a generator renders. A single-run input carries
// just Summary; a sweep input additionally carries Aggregate and Members.
type Input struct {
	// Summary is the run being reported. Required for single-run reports,
	// nil for sweep reports.
	Summary *execution.Summary

	// Aggregate holds sweep statistics when reporting a batch of runs.
	Aggregate *history.AggregateStats

	// Members are the individual runs behind Aggregate.
	Members []execution.Summary

	// Options is the report configuration.
	Options *Options
}

// NewInput creates an input for a single-run report.
func NewInput(summary *execution.Summary, opts *Options) *Input {
	return &Input{
		Summary: summary,
		Options: opts,
	}
}

// NewSweepInput creates an input for a sweep report.
func NewSweepInput(agg *history.AggregateStats, members []execution.Summary, opts *Options) *Input {
	return &Input{
		Aggregate: agg,
		Members:   members,
		Options:   opts,
	}
}

// IsSweep reports whether the input describes a batch of runs.
func (in *Input) IsSweep() bool {
	return in.Aggregate != nil
}

// Validate validates the input.
func (in *Input) Validate() error {
	if in.Options == nil {
		return fmt.Errorf("options are required")
	}
	if err := in.Options.Format.Validate(); err != nil {
		return err
	}
	if in.Summary == nil && in.Aggregate == nil {
		return fmt.Errorf("either a summary or an aggregate is required")
	}
	if in.Summary != nil {
		if err := in.Summary.Validate(); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
	}
	return nil
}

// FormatTimestamp returns the RFC 3339 rendering of a timestamp, or "N/A"
// for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC3339)
}

// FormatFloat formats a float value with the given precision.
func FormatFloat(value float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, value)
}
