// Package lifecycle holds the task status state machine and its role gated transitions.
package lifecycle

import (
	"fmt"
	"slices"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/models"
)

// InitialStatus is the status every new task starts in.
const InitialStatus = models.StatusPreparing

// CanTransition reports whether actor may move a task with the given assignees from one status to another.
//
// Admins move tasks out of preparation and may freeze any task, completed ones included, or
// unfreeze it into any state. Execution steps (READY -> IN_PROGRESS -> COMPLETED) need the actor
// to be assigned, admin or worker alike. A transition to the current status is not a transition.
func CanTransition(actor access.Actor, from, to models.TaskStatus, assigneeIDs []string) bool {
	if !from.IsValid() || !to.IsValid() || from == to {
		return false
	}

	if actor.IsAdmin() {
		switch {
		case from == models.StatusPreparing && to == models.StatusReady:
			return true
		case to == models.StatusOnHold:
			return true
		case from == models.StatusOnHold:
			return true
		}
	}

	if (actor.IsAdmin() || actor.IsWorker()) && access.IsAssigned(actor, assigneeIDs) {
		return isExecutionStep(from, to)
	}

	return false
}

func isExecutionStep(from, to models.TaskStatus) bool {
	return (from == models.StatusReady && to == models.StatusInProgress) ||
		(from == models.StatusInProgress && to == models.StatusCompleted)
}

// Check is CanTransition returning a permission denied error. Unknown target statuses are
// reported as validation errors since they never reach the table.
func Check(actor access.Actor, from, to models.TaskStatus, assigneeIDs []string) error {
	if !to.IsValid() {
		return apperr.Invalid("status", "oneof")
	}
	if !CanTransition(actor, from, to, assigneeIDs) {
		return apperr.Forbidden(fmt.Sprintf("change status %s -> %s", from, to))
	}
	return nil
}

// Apply moves the task to status `to` and stamps the lifecycle timestamps. The caller must have
// checked the transition. A task leaving COMPLETED loses its completion stamp and snapshot.
func Apply(task *models.Task, to models.TaskStatus, now time.Time) {
	if task.Status == models.StatusCompleted && to != models.StatusCompleted {
		task.CompletedAt = nil
		task.CompletedAssigneeIDs = nil
	}
	task.Status = to

	switch to {
	case models.StatusInProgress:
		if task.StartedAt == nil {
			task.StartedAt = &now
		}
	case models.StatusCompleted:
		task.CompletedAt = &now
		task.CompletedAssigneeIDs = Distinct(task.AssigneeIDs)
	}
}

// Distinct returns ids without duplicates and empty entries, keeping the first occurrence order.
func Distinct(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
