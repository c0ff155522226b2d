package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/aeolus/internal/lifecycle"
	"github.com/UnknownOlympus/aeolus/internal/models"
)

const unknownStatus = "UNKNOWN"

// UpdateStatus moves a task to status `to`. The check runs against the locked row, so of two
// concurrent conflicting requests the second is judged against the status the first one left.
func (ts *TaskService) UpdateStatus(
	ctx context.Context, actor access.Actor, id int64, to models.TaskStatus,
) (models.Task, error) {
	const opn = "Tasks.UpdateStatus"
	log := ts.initLogger(opn)

	if !to.IsValid() {
		return models.Task{}, apperr.Invalid("status", "oneof")
	}

	from := models.TaskStatus(unknownStatus)
	task, err := ts.repo.MutateTask(ctx, id, func(task *models.Task) ([]models.Activity, error) {
		from = task.Status
		if err := lifecycle.Check(actor, from, to, task.AssigneeIDs); err != nil {
			return nil, err
		}
		lifecycle.Apply(task, to, ts.now())
		return []models.Activity{models.NewActivity(models.ActionStatusChanged, actor.ID(), "",
			models.Payload{"from": from, "to": to})}, nil
	})
	if err != nil {
		ts.metrics.Transitions.WithLabelValues(string(from), string(to), transitionResult(err)).Inc()
		switch {
		case errors.Is(err, apperr.ErrPermissionDenied):
			log.InfoContext(ctx, "Transition refused", "id", id, "from", from, "to", to, "actor", actor.ID())
		case apperr.StatusCode(err) >= http.StatusInternalServerError:
			log.ErrorContext(ctx, "Transition failed", "id", id, sl.Err(err))
		}
		return models.Task{}, fmt.Errorf("failed to change status of task '%d': %w", id, err)
	}

	ts.metrics.Transitions.WithLabelValues(string(from), string(to), "applied").Inc()
	log.InfoContext(ctx, "Task status changed", "id", id, "from", from, "to", to)
	return task, nil
}

func transitionResult(err error) string {
	switch apperr.CodeOf(err) {
	case apperr.CodePermissionDenied, apperr.CodeValidation:
		return "denied"
	default:
		return "failed"
	}
}
