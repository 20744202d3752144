// Package usecase defines repository interfaces for persistence operations.
// These interfaces are defined by the use case layer and implemented by the
// infrastructure layer.
package usecase

import (
	"context"

	"lifebench/internal/domain/config"
)

// SettingsRepository defines the interface for settings persistence operations.
// This interface is defined by the use case layer and implemented by the
// infrastructure layer.
type SettingsRepository interface {
	// GetConfig retrieves the current configuration.
	// Returns the default configuration if none has been saved yet.
	GetConfig(ctx context.Context) (*config.Config, error)

	// SaveConfig persists the configuration.
	SaveConfig(ctx context.Context, cfg *config.Config) error

	// ResetToDefaults replaces the stored configuration with the defaults.
	ResetToDefaults(ctx context.Context) error
}
