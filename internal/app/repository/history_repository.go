// Package repository provides run history repository interfaces and implementations.
package repository

import (
	"context"
	"errors"

	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
)

// ErrRunNotFound is returned when a run summary does not exist in the store.
var ErrRunNotFound = errors.New("run not found")

// HistoryRepository defines the interface for run summary persistence.
// Implementations must treat stored summaries as immutable: a summary
// handed out by a query never changes under the caller.
type HistoryRepository interface {
	// Save saves a run summary. Saving an existing ID overwrites it.
	Save(ctx context.Context, summary *execution.Summary) error

	// FindByID retrieves a run summary by ID.
	// Returns ErrRunNotFound if no summary with the ID exists.
	FindByID(ctx context.Context, id string) (*execution.Summary, error)

	// FindAll retrieves run summaries matching the filter, newest first.
	// Returns an empty slice if nothing matches.
	FindAll(ctx context.Context, filter history.Filter) ([]execution.Summary, error)

	// Delete deletes a run summary by ID.
	// Returns ErrRunNotFound if no summary with the ID exists.
	Delete(ctx context.Context, id string) error

	// DeleteAll deletes every stored summary and returns how many were removed.
	DeleteAll(ctx context.Context) (int, error)

	// Count returns the number of stored summaries.
	Count(ctx context.Context) (int, error)
}
