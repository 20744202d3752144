// Package history provides run history filtering and aggregation domain models.
package history

import (
	"fmt"
	"math"

	"lifebench/internal/domain/execution"
)

// Filter narrows a history query. Zero values impose no constraint.
type Filter struct {
	// MinRows keeps runs with at least this many board rows.
	MinRows int `json:"min_rows,omitempty"`

	// MinCols keeps runs with at least this many board columns.
	MinCols int `json:"min_cols,omitempty"`

	// OnlyLooped keeps runs that detected a cycle.
	OnlyLooped bool `json:"only_looped,omitempty"`

	// StopReason keeps runs that stopped for the given reason.
	StopReason string `json:"stop_reason,omitempty"`

	// Limit caps the number of returned runs, newest first. 0 means all.
	Limit int `json:"limit,omitempty"`
}

// Matches reports whether a summary passes the filter.
func (f Filter) Matches(s *execution.Summary) bool {
	if f.MinRows > 0 && s.Dimensions[0] < f.MinRows {
		return false
	}
	if f.MinCols > 0 && s.Dimensions[1] < f.MinCols {
		return false
	}
	if f.OnlyLooped && !s.LoopDetected {
		return false
	}
	if f.StopReason != "" && s.StopReason != f.StopReason {
		return false
	}
	return true
}

// MetricStats summarizes a single metric across N runs.
type MetricStats struct {
	N      int       `json:"n"`
	Values []float64 `json:"values,omitempty"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"stddev"`
}

// IsValid reports whether the stats were computed from at least one value.
func (s MetricStats) IsValid() bool {
	return s.N > 0
}

// CalculateMetricStats computes min, max, mean and sample standard
// deviation for one metric across runs.
func CalculateMetricStats(values []float64) MetricStats {
	n := len(values)
	if n == 0 {
		return MetricStats{}
	}

	stats := MetricStats{
		N:      n,
		Values: values,
		Min:    values[0],
		Max:    values[0],
	}

	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(n)

	// Sample standard deviation (n-1).
	if n > 1 {
		var varianceSum float64
		for _, v := range values {
			diff := v - stats.Mean
			varianceSum += diff * diff
		}
		stats.StdDev = math.Sqrt(varianceSum / float64(n-1))
	}

	return stats
}

// CalculateCV calculates the coefficient of variation (CV%).
// Higher CV indicates more run-to-run variability.
func CalculateCV(mean, stddev float64) float64 {
	if mean == 0 {
		return 0
	}
	return (stddev / mean) * 100
}

// AggregateStats summarizes a set of run summaries.
type AggregateStats struct {
	Runs              int         `json:"runs"`
	ExecutionTime     MetricStats `json:"execution_time"`
	FinalAlivePercent MetricStats `json:"final_alive_percent"`
	StepCount         MetricStats `json:"step_count"`
	LoopRuns          int         `json:"loop_runs"`
	LoopRate          float64     `json:"loop_rate_percent"`
	ExtinctRuns       int         `json:"extinct_runs"`
}

// Aggregate computes aggregate statistics across run summaries.
func Aggregate(summaries []execution.Summary) AggregateStats {
	if len(summaries) == 0 {
		return AggregateStats{}
	}

	n := len(summaries)
	agg := AggregateStats{Runs: n}

	times := make([]float64, n)
	alive := make([]float64, n)
	steps := make([]float64, n)
	for i := range summaries {
		s := &summaries[i]
		times[i] = s.ExecutionTime
		alive[i] = s.FinalAlivePercent()
		steps[i] = float64(s.StepCount)
		if s.LoopDetected {
			agg.LoopRuns++
		}
		if s.StopReason == execution.StopExtinct.String() {
			agg.ExtinctRuns++
		}
	}

	agg.ExecutionTime = CalculateMetricStats(times)
	agg.FinalAlivePercent = CalculateMetricStats(alive)
	agg.StepCount = CalculateMetricStats(steps)
	agg.LoopRate = float64(agg.LoopRuns) / float64(n) * 100
	return agg
}

// FormatMeanStdDev formats mean and stddev as "mean ± stddev".
func FormatMeanStdDev(stats MetricStats) string {
	if !stats.IsValid() {
		return "N/A"
	}
	if stats.N == 1 {
		return fmt.Sprintf("%.2f", stats.Mean)
	}
	return fmt.Sprintf("%.2f ± %.2f", stats.Mean, stats.StdDev)
}

// FormatMinMax formats min and max as "min .. max".
func FormatMinMax(stats MetricStats) string {
	if !stats.IsValid() {
		return "N/A"
	}
	if stats.N == 1 {
		return fmt.Sprintf("%.2f", stats.Min)
	}
	return fmt.Sprintf("%.2f .. %.2f", stats.Min, stats.Max)
}
