// Package usecase provides run history business logic.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"lifebench/internal/app/repository"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
)

// HistoryUseCase provides run history business operations.
type HistoryUseCase struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryUseCase creates a new history use case.
func NewHistoryUseCase(historyRepo repository.HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{
		historyRepo: historyRepo,
	}
}

// List retrieves run summaries matching the filter, newest first.
func (uc *HistoryUseCase) List(ctx context.Context, filter history.Filter) ([]execution.Summary, error) {
	return uc.historyRepo.FindAll(ctx, filter)
}

// Get retrieves a single run summary by ID.
func (uc *HistoryUseCase) Get(ctx context.Context, id string) (*execution.Summary, error) {
	return uc.historyRepo.FindByID(ctx, id)
}

// Delete removes a single run summary from history.
func (uc *HistoryUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.historyRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("History: deleted run", "id", id)
	return nil
}

// Clear removes every stored run summary and returns how many were removed.
func (uc *HistoryUseCase) Clear(ctx context.Context) (int, error) {
	n, err := uc.historyRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	slog.Info("History: cleared", "removed", n)
	return n, nil
}

// Count returns the number of stored run summaries.
func (uc *HistoryUseCase) Count(ctx context.Context) (int, error) {
	return uc.historyRepo.Count(ctx)
}

// Aggregate computes aggregate statistics over the runs matching the
// filter and returns them together with the matched summaries.
func (uc *HistoryUseCase) Aggregate(ctx context.Context, filter history.Filter) (history.AggregateStats, []execution.Summary, error) {
	summaries, err := uc.historyRepo.FindAll(ctx, filter)
	if err != nil {
		return history.AggregateStats{}, nil, fmt.Errorf("load runs: %w", err)
	}
	return history.Aggregate(summaries), summaries, nil
}
