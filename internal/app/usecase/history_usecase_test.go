// Package usecase provides unit tests for the history use case.
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifebench/internal/app/repository"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
)

func newTestHistoryUC(t *testing.T) (*HistoryUseCase, *repository.MemoryHistoryRepository) {
	t.Helper()
	repo := repository.NewMemoryHistoryRepository()
	return NewHistoryUseCase(repo), repo
}

func storedSummary(t *testing.T, repo *repository.MemoryHistoryRepository, id string, age time.Duration, looped bool) *execution.Summary {
	t.Helper()
	s := &execution.Summary{
		ID:              id,
		Dimensions:      [2]int{20, 20},
		Steps:           10,
		StepCount:       2,
		ExecutionTime:   1.5,
		MaxAliveCells:   20,
		MinAliveCells:   10,
		AliveCellsStats: []float64{5, 2.5},
		Seed:            3,
		Timestamp:       time.Now().Add(-age),
		Processor:       "amd64",
		Architecture:    "amd64",
		System:          "linux",
		StopReason:      execution.StopCompleted.String(),
	}
	if looped {
		s.LoopDetected = true
		s.LoopLength = 2
		s.StopReason = execution.StopCycle.String()
	}
	if err := repo.Save(context.Background(), s); err != nil {
		t.Fatalf("Save(%s) error: %v", id, err)
	}
	return s
}

func TestHistoryUseCase_ListAndGet(t *testing.T) {
	uc, repo := newTestHistoryUC(t)
	ctx := context.Background()

	storedSummary(t, repo, "old", 2*time.Hour, false)
	storedSummary(t, repo, "new", time.Minute, true)

	all, err := uc.List(ctx, history.Filter{})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 2 || all[0].ID != "new" {
		t.Errorf("List() = %d entries starting with %q, want newest first", len(all), all[0].ID)
	}

	looped, err := uc.List(ctx, history.Filter{OnlyLooped: true})
	if err != nil {
		t.Fatalf("List(looped) error: %v", err)
	}
	if len(looped) != 1 || looped[0].ID != "new" {
		t.Errorf("List(looped) = %v, want only the looped run", looped)
	}

	got, err := uc.Get(ctx, "old")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != "old" {
		t.Errorf("Get() = %q, want old", got.ID)
	}

	if _, err := uc.Get(ctx, "missing"); !errors.Is(err, repository.ErrRunNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrRunNotFound", err)
	}
}

func TestHistoryUseCase_DeleteAndClear(t *testing.T) {
	uc, repo := newTestHistoryUC(t)
	ctx := context.Background()

	storedSummary(t, repo, "a", time.Minute, false)
	storedSummary(t, repo, "b", time.Second, false)

	if err := uc.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := uc.Delete(ctx, "a"); !errors.Is(err, repository.ErrRunNotFound) {
		t.Errorf("Delete(gone) error = %v, want ErrRunNotFound", err)
	}

	n, err := uc.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count() = %d, %v, want 1", n, err)
	}

	removed, err := uc.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Clear() removed %d, want 1", removed)
	}
}

func TestHistoryUseCase_Aggregate(t *testing.T) {
	uc, repo := newTestHistoryUC(t)
	ctx := context.Background()

	storedSummary(t, repo, "a", time.Minute, false)
	storedSummary(t, repo, "b", 2*time.Minute, true)
	storedSummary(t, repo, "c", 3*time.Minute, true)

	agg, members, err := uc.Aggregate(ctx, history.Filter{})
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if agg.Runs != 3 || len(members) != 3 {
		t.Errorf("Aggregate() runs = %d with %d members, want 3/3", agg.Runs, len(members))
	}
	if agg.LoopRuns != 2 {
		t.Errorf("LoopRuns = %d, want 2", agg.LoopRuns)
	}
	if agg.ExecutionTime.Mean != 1.5 {
		t.Errorf("ExecutionTime.Mean = %v, want 1.5", agg.ExecutionTime.Mean)
	}
}
