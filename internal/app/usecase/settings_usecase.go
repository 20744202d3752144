// Package usecase provides settings management business logic.
package usecase

import (
	"context"
	"fmt"

	"lifebench/internal/domain/config"
)

// SettingsUseCase provides settings management business operations.
type SettingsUseCase struct {
	settingsRepo SettingsRepository
}

// NewSettingsUseCase creates a new settings use case.
func NewSettingsUseCase(settingsRepo SettingsRepository) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
	}
}

// GetConfig retrieves the current configuration.
func (uc *SettingsUseCase) GetConfig(ctx context.Context) (*config.Config, error) {
	return uc.settingsRepo.GetConfig(ctx)
}

// UpdateConfig updates the configuration.
func (uc *SettingsUseCase) UpdateConfig(ctx context.Context, cfg *config.Config) error {
	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return uc.settingsRepo.SaveConfig(ctx, cfg)
}

// ResetSettings resets all settings to defaults.
func (uc *SettingsUseCase) ResetSettings(ctx context.Context) error {
	return uc.settingsRepo.ResetToDefaults(ctx)
}

// GetSimulationConfig retrieves simulation configuration.
func (uc *SettingsUseCase) GetSimulationConfig(ctx context.Context) (*config.SimulationConfig, error) {
	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &cfg.Simulation, nil
}

// UpdateSimulationConfig updates simulation configuration.
func (uc *SettingsUseCase) UpdateSimulationConfig(ctx context.Context, simCfg config.SimulationConfig) error {
	if err := simCfg.Validate(); err != nil {
		return fmt.Errorf("validate simulation config: %w", err)
	}

	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	cfg.Simulation = simCfg
	return uc.settingsRepo.SaveConfig(ctx, cfg)
}

// GetSweepConfig retrieves sweep configuration.
func (uc *SettingsUseCase) GetSweepConfig(ctx context.Context) (*config.SweepConfig, error) {
	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &cfg.Sweep, nil
}

// UpdateSweepConfig updates sweep configuration.
func (uc *SettingsUseCase) UpdateSweepConfig(ctx context.Context, sweepCfg config.SweepConfig) error {
	if err := sweepCfg.Validate(); err != nil {
		return fmt.Errorf("validate sweep config: %w", err)
	}

	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	cfg.Sweep = sweepCfg
	return uc.settingsRepo.SaveConfig(ctx, cfg)
}

// GetGIFConfig retrieves animation export configuration.
func (uc *SettingsUseCase) GetGIFConfig(ctx context.Context) (*config.GIFConfig, error) {
	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &cfg.GIF, nil
}

// UpdateGIFConfig updates animation export configuration.
func (uc *SettingsUseCase) UpdateGIFConfig(ctx context.Context, gifCfg config.GIFConfig) error {
	if err := gifCfg.Validate(); err != nil {
		return fmt.Errorf("validate gif config: %w", err)
	}

	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	cfg.GIF = gifCfg
	return uc.settingsRepo.SaveConfig(ctx, cfg)
}

// GetReportConfig retrieves report configuration.
func (uc *SettingsUseCase) GetReportConfig(ctx context.Context) (*config.ReportConfig, error) {
	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &cfg.Reports, nil
}

// UpdateReportConfig updates report configuration.
func (uc *SettingsUseCase) UpdateReportConfig(ctx context.Context, reportCfg config.ReportConfig) error {
	if err := reportCfg.Validate(); err != nil {
		return fmt.Errorf("validate report config: %w", err)
	}

	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	cfg.Reports = reportCfg
	return uc.settingsRepo.SaveConfig(ctx, cfg)
}

// GetAdvancedConfig retrieves advanced configuration.
func (uc *SettingsUseCase) GetAdvancedConfig(ctx context.Context) (*config.AdvancedConfig, error) {
	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &cfg.Advanced, nil
}

// UpdateAdvancedConfig updates advanced configuration.
func (uc *SettingsUseCase) UpdateAdvancedConfig(ctx context.Context, advCfg config.AdvancedConfig) error {
	if err := advCfg.Validate(); err != nil {
		return fmt.Errorf("validate advanced config: %w", err)
	}

	cfg, err := uc.settingsRepo.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	cfg.Advanced = advCfg
	return uc.settingsRepo.SaveConfig(ctx, cfg)
}
