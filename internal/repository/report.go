package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/models"
)

// ListCheckIns returns the instants of the user's CHECKED_IN activities within [from, to].
func (r *Repository) ListCheckIns(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	defer r.observe("list_check_ins", time.Now())

	query := `
		SELECT created_at
		FROM activities
		WHERE actor_id = $1 AND action = $2 AND created_at BETWEEN $3 AND $4
		ORDER BY created_at;
	`

	rows, err := r.db.Query(ctx, query, userID, string(models.ActionCheckedIn), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	defer rows.Close()

	instants := make([]time.Time, 0)
	for rows.Next() {
		var at time.Time
		if err = rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		instants = append(instants, at)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-ins: %w", err)
	}

	return instants, nil
}

// ListCompletedTasks returns the tasks completed within [from, to] whose completion snapshot
// includes the user. Soft deleted tasks are left out.
func (r *Repository) ListCompletedTasks(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]models.CompletedTask, error) {
	defer r.observe("list_completed_tasks", time.Now())

	query := `
		SELECT id, title, completed_at, expected_revenue, currency, completed_assignee_ids
		FROM tasks
		WHERE status = $1
			AND deleted_at IS NULL
			AND $2 = ANY(completed_assignee_ids)
			AND completed_at BETWEEN $3 AND $4
		ORDER BY completed_at, id;
	`

	rows, err := r.db.Query(ctx, query, string(models.StatusCompleted), userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.CompletedTask, 0)
	for rows.Next() {
		var t models.CompletedTask
		if err = rows.Scan(&t.ID, &t.Title, &t.CompletedAt, &t.ExpectedRevenue, &t.Currency, &t.AssigneeIDs); err != nil {
			return nil, fmt.Errorf("failed to scan completed task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completed tasks: %w", err)
	}

	return tasks, nil
}
