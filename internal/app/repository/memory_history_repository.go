// Package repository provides run history repository interfaces and implementations.
package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
)

// MemoryHistoryRepository provides an in-memory implementation of
// HistoryRepository for tests and ephemeral runs that should not touch
// the on-disk store.
type MemoryHistoryRepository struct {
	summaries map[string]execution.Summary
	mu        sync.RWMutex
}

// NewMemoryHistoryRepository creates a new in-memory history repository.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		summaries: make(map[string]execution.Summary),
	}
}

// Save saves a run summary, overwriting any previous summary with the same ID.
func (r *MemoryHistoryRepository) Save(ctx context.Context, summary *execution.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[summary.ID] = cloneSummary(*summary)
	slog.Debug("MemoryHistoryRepository: saved run", "id", summary.ID, "steps", summary.StepCount)
	return nil
}

// FindByID finds a run summary by its ID.
func (r *MemoryHistoryRepository) FindByID(ctx context.Context, id string) (*execution.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	out := cloneSummary(s)
	return &out, nil
}

// FindAll finds run summaries matching the filter, newest first.
func (r *MemoryHistoryRepository) FindAll(ctx context.Context, filter history.Filter) ([]execution.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]execution.Summary, 0, len(r.summaries))
	for _, s := range r.summaries {
		if filter.Matches(&s) {
			matched = append(matched, cloneSummary(s))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID < matched[j].ID
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Delete deletes a run summary by its ID.
func (r *MemoryHistoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.summaries[id]; !ok {
		return ErrRunNotFound
	}
	delete(r.summaries, id)
	slog.Debug("MemoryHistoryRepository: deleted run", "id", id)
	return nil
}

// DeleteAll deletes every stored summary.
func (r *MemoryHistoryRepository) DeleteAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.summaries)
	r.summaries = make(map[string]execution.Summary)
	slog.Debug("MemoryHistoryRepository: cleared history", "removed", n)
	return n, nil
}

// Count returns the number of stored summaries.
func (r *MemoryHistoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.summaries), nil
}

// cloneSummary copies a summary including its stats slice, so stored and
// returned values never share backing arrays with the caller.
func cloneSummary(s execution.Summary) execution.Summary {
	stats := make([]float64, len(s.AliveCellsStats))
	copy(stats, s.AliveCellsStats)
	s.AliveCellsStats = stats
	return s
}
