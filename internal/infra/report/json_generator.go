// Package report provides the JSON report generator implementation.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
	"lifebench/internal/domain/report"
)

// JSONGenerator generates JSON format reports.
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator.
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Generate generates a JSON report. A single-run report is the summary
// itself in its canonical key layout, so external tooling can consume
// exported files and direct summary dumps interchangeably. Sweep reports
// wrap the aggregate and its member runs in a meta envelope.
func (g *JSONGenerator) Generate(in *report.Input) (*report.Report, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var (
		content []byte
		err     error
		runID   string
	)
	if in.IsSweep() {
		content, err = json.MarshalIndent(g.buildSweepJSON(in), "", "  ")
	} else {
		runID = in.Summary.ID
		content, err = json.MarshalIndent(in.Summary, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	return &report.Report{
		Format:      report.FormatJSON,
		Content:     content,
		GeneratedAt: time.Now(),
		RunID:       runID,
	}, nil
}

// Format returns the format this generator produces.
func (g *JSONGenerator) Format() report.Format {
	return report.FormatJSON
}

// jsonSweepReport represents the sweep report structure.
type jsonSweepReport struct {
	Meta      jsonMeta               `json:"meta"`
	Aggregate history.AggregateStats `json:"aggregate"`
	Runs      []execution.Summary    `json:"runs,omitempty"`
}

// jsonMeta represents report metadata.
type jsonMeta struct {
	Format      string `json:"format"`
	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
}

// buildSweepJSON builds the sweep report structure.
func (g *JSONGenerator) buildSweepJSON(in *report.Input) *jsonSweepReport {
	return &jsonSweepReport{
		Meta: jsonMeta{
			Format:      report.FormatJSON.String(),
			GeneratedAt: time.Now().Format(time.RFC3339),
			Version:     "1.0",
		},
		Aggregate: *in.Aggregate,
		Runs:      in.Members,
	}
}
