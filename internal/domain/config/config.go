// Package config provides configuration domain models.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

var (
	// ErrInvalidConfiguration is returned when configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// SimulationConfig represents default parameters for new simulations.
type SimulationConfig struct {
	// DefaultRows is the board height used when none is given.
	DefaultRows int `json:"default_rows"`

	// DefaultCols is the board width used when none is given.
	DefaultCols int `json:"default_cols"`

	// DefaultSteps is the step budget used when none is given.
	DefaultSteps int `json:"default_steps"`

	// DefaultDensity is the alive probability for random boards.
	DefaultDensity float64 `json:"default_density"`

	// CycleDetection stops runs that revisit an earlier board state.
	CycleDetection bool `json:"cycle_detection"`

	// MaxCycleStates caps the fingerprint window for cycle detection.
	// 0 uses the engine default.
	MaxCycleStates int `json:"max_cycle_states"`

	// HaltOnExtinction stops runs once every cell is dead.
	HaltOnExtinction bool `json:"halt_on_extinction"`
}

// Validate validates the simulation configuration.
func (c *SimulationConfig) Validate() error {
	if c.DefaultRows < 1 || c.DefaultRows > 10000 {
		return fmt.Errorf("%w: default_rows must be between 1 and 10000", ErrInvalidConfiguration)
	}
	if c.DefaultCols < 1 || c.DefaultCols > 10000 {
		return fmt.Errorf("%w: default_cols must be between 1 and 10000", ErrInvalidConfiguration)
	}
	if c.DefaultSteps < 0 || c.DefaultSteps > 1000000 {
		return fmt.Errorf("%w: default_steps must be between 0 and 1000000", ErrInvalidConfiguration)
	}
	if c.DefaultDensity < 0 || c.DefaultDensity > 1 {
		return fmt.Errorf("%w: default_density must be between 0 and 1", ErrInvalidConfiguration)
	}
	if c.MaxCycleStates < 0 || c.MaxCycleStates > 1000000 {
		return fmt.Errorf("%w: max_cycle_states must be between 0 and 1000000", ErrInvalidConfiguration)
	}
	return nil
}

// DatabaseConfig represents history database configuration.
type DatabaseConfig struct {
	// Path is the path to the SQLite history database file.
	Path string `json:"path"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfiguration)
	}
	return nil
}

// SweepConfig represents seed sweep configuration.
type SweepConfig struct {
	// Runs is the default number of runs per sweep.
	Runs int `json:"runs"`

	// Workers bounds how many runs execute concurrently.
	Workers int `json:"workers"`
}

// Validate validates the sweep configuration.
func (c *SweepConfig) Validate() error {
	if c.Runs < 1 || c.Runs > 100000 {
		return fmt.Errorf("%w: runs must be between 1 and 100000", ErrInvalidConfiguration)
	}
	if c.Workers < 1 || c.Workers > 256 {
		return fmt.Errorf("%w: workers must be between 1 and 256", ErrInvalidConfiguration)
	}
	return nil
}

// GIFConfig represents animation export configuration.
type GIFConfig struct {
	// CellPixels is the square pixel size of one cell.
	CellPixels int `json:"cell_pixels"`

	// DelayMS is the frame delay in milliseconds.
	DelayMS int `json:"delay_ms"`

	// MaxFrames truncates exports to this many frames.
	MaxFrames int `json:"max_frames"`
}

// Validate validates the GIF configuration.
func (c *GIFConfig) Validate() error {
	if c.CellPixels < 1 || c.CellPixels > 64 {
		return fmt.Errorf("%w: cell_pixels must be between 1 and 64", ErrInvalidConfiguration)
	}
	if c.DelayMS < 10 || c.DelayMS > 5000 {
		return fmt.Errorf("%w: delay_ms must be between 10 and 5000", ErrInvalidConfiguration)
	}
	if c.MaxFrames < 1 || c.MaxFrames > 10000 {
		return fmt.Errorf("%w: max_frames must be between 1 and 10000", ErrInvalidConfiguration)
	}
	return nil
}

// ReportConfig represents report generation configuration.
type ReportConfig struct {
	// ChartWidth is the width for text-based charts.
	ChartWidth int `json:"chart_width"`

	// OutputDir is the default directory for report output.
	OutputDir string `json:"output_dir"`
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if c.ChartWidth < 20 || c.ChartWidth > 200 {
		return fmt.Errorf("%w: chart_width must be between 20 and 200", ErrInvalidConfiguration)
	}
	return nil
}

// AdvancedConfig represents advanced configuration.
type AdvancedConfig struct {
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `json:"log_level"`
}

// Validate validates the advanced configuration.
func (c *AdvancedConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("%w: invalid log level: %s", ErrInvalidConfiguration, c.LogLevel)
	}
	return nil
}

// SlogLevel maps the configured log level onto slog.
func (c *AdvancedConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config represents the complete application configuration.
type Config struct {
	// Version is the configuration version.
	Version int `json:"version"`

	// Simulation holds default simulation parameters.
	Simulation SimulationConfig `json:"simulation"`

	// Database is the history database configuration.
	Database DatabaseConfig `json:"database"`

	// Sweep is the seed sweep configuration.
	Sweep SweepConfig `json:"sweep"`

	// GIF is the animation export configuration.
	GIF GIFConfig `json:"gif"`

	// Reports is the report configuration.
	Reports ReportConfig `json:"reports"`

	// Advanced is the advanced configuration.
	Advanced AdvancedConfig `json:"advanced"`
}

// Validate validates the complete configuration.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("%w: unsupported configuration version: %d", ErrInvalidConfiguration, c.Version)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if err := c.GIF.Validate(); err != nil {
		return fmt.Errorf("gif: %w", err)
	}
	if err := c.Reports.Validate(); err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	if err := c.Advanced.Validate(); err != nil {
		return fmt.Errorf("advanced: %w", err)
	}
	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	userHomeDir, _ := os.UserHomeDir()
	defaultDBPath := filepath.Join(userHomeDir, ".lifebench", "history.db")
	defaultOutputDir := filepath.Join(userHomeDir, ".lifebench", "reports")

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > 256 {
		workers = 256
	}

	return &Config{
		Version: 1,
		Simulation: SimulationConfig{
			DefaultRows:    25,
			DefaultCols:    25,
			DefaultSteps:   100,
			DefaultDensity: 0.5,
			CycleDetection: false,
			MaxCycleStates: 0,
		},
		Database: DatabaseConfig{
			Path: defaultDBPath,
		},
		Sweep: SweepConfig{
			Runs:    10,
			Workers: workers,
		},
		GIF: GIFConfig{
			CellPixels: 8,
			DelayMS:    120,
			MaxFrames:  500,
		},
		Reports: ReportConfig{
			ChartWidth: 60,
			OutputDir:  defaultOutputDir,
		},
		Advanced: AdvancedConfig{
			LogLevel: "info",
		},
	}
}
