// Package repository provides SQLite repository implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"lifebench/internal/app/repository"
	"lifebench/internal/domain/execution"
	"lifebench/internal/domain/history"
)

// timestampLayout is fixed width so lexicographic order in the timestamp
// column matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteHistoryRepository implements the HistoryRepository interface on
// the run archive database.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite history repository.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// Save stores a run summary. Saving an existing ID replaces the stored
// summary.
func (r *SQLiteHistoryRepository) Save(ctx context.Context, summary *execution.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	query := `
		INSERT INTO executions (
			id, board_rows, board_cols, steps, step_count, seed,
			timestamp, loop_detected, stop_reason, summary_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			board_rows = excluded.board_rows,
			board_cols = excluded.board_cols,
			steps = excluded.steps,
			step_count = excluded.step_count,
			seed = excluded.seed,
			timestamp = excluded.timestamp,
			loop_detected = excluded.loop_detected,
			stop_reason = excluded.stop_reason,
			summary_json = excluded.summary_json
	`

	_, err = r.db.ExecContext(ctx, query,
		summary.ID,
		summary.Dimensions[0],
		summary.Dimensions[1],
		summary.Steps,
		summary.StepCount,
		summary.Seed,
		summary.Timestamp.UTC().Format(timestampLayout),
		summary.LoopDetected,
		summary.StopReason,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}

	return nil
}

// FindByID retrieves a run summary by ID.
func (r *SQLiteHistoryRepository) FindByID(ctx context.Context, id string) (*execution.Summary, error) {
	row := r.db.QueryRowContext(ctx, "SELECT summary_json FROM executions WHERE id = ?", id)

	var summaryJSON string
	if err := row.Scan(&summaryJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrRunNotFound
		}
		return nil, fmt.Errorf("scan execution: %w", err)
	}

	return unmarshalSummary(summaryJSON)
}

// FindAll retrieves run summaries matching the filter, newest first.
func (r *SQLiteHistoryRepository) FindAll(ctx context.Context, filter history.Filter) ([]execution.Summary, error) {
	query := "SELECT summary_json FROM executions WHERE 1=1"
	args := []interface{}{}

	if filter.MinRows > 0 {
		query += " AND board_rows >= ?"
		args = append(args, filter.MinRows)
	}
	if filter.MinCols > 0 {
		query += " AND board_cols >= ?"
		args = append(args, filter.MinCols)
	}
	if filter.OnlyLooped {
		query += " AND loop_detected = 1"
	}
	if filter.StopReason != "" {
		query += " AND stop_reason = ?"
		args = append(args, filter.StopReason)
	}

	query += " ORDER BY timestamp DESC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var summaries []execution.Summary
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}

		summary, err := unmarshalSummary(summaryJSON)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}

	return summaries, nil
}

// Delete removes a run summary by ID.
func (r *SQLiteHistoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM executions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete execution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrRunNotFound
	}

	return nil
}

// DeleteAll removes every run summary and reports how many were removed.
func (r *SQLiteHistoryRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM executions")
	if err != nil {
		return 0, fmt.Errorf("delete executions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// Count reports the number of stored run summaries.
func (r *SQLiteHistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count executions: %w", err)
	}
	return count, nil
}

// unmarshalSummary rehydrates a summary from its stored JSON form.
func unmarshalSummary(summaryJSON string) (*execution.Summary, error) {
	var summary execution.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &summary, nil
}
