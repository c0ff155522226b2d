package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/aeolus/internal/lifecycle"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
)

type TaskService struct {
	log        *slog.Logger
	repo       repository.TaskRepoIface
	activities repository.ActivityRepoIface
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewTaskService(log *slog.Logger,
	repo repository.TaskRepoIface,
	activities repository.ActivityRepoIface,
	metrics *metrics.Metrics,
) *TaskService {
	return &TaskService{log: log, repo: repo, activities: activities, metrics: metrics, now: time.Now}
}

func (ts *TaskService) initLogger(opn string) *slog.Logger {
	return ts.log.With(
		slog.String("op", opn),
		slog.String("division", "task"),
	)
}

// Create stores a new task in PREPARING. Only admins dispatch work.
func (ts *TaskService) Create(ctx context.Context, actor access.Actor, in models.NewTask) (models.Task, error) {
	const opn = "Tasks.Create"
	log := ts.initLogger(opn)

	if !access.CanManageTasks(actor) {
		return models.Task{}, apperr.Forbidden("create task")
	}
	if err := validateNewTask(&in); err != nil {
		log.DebugContext(ctx, "rejected task input", "fields", sl.RedactFields(apperr.Fields(err)))
		return models.Task{}, err
	}

	in.AssigneeIDs = lifecycle.Distinct(in.AssigneeIDs)
	in.CreatedBy = actor.ID()

	task, err := ts.repo.CreateTask(ctx, in)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	log.InfoContext(ctx, "Task created", "id", task.ID, "assignees", len(task.AssigneeIDs))
	return task, nil
}

// Get returns a task the actor is allowed to see.
func (ts *TaskService) Get(ctx context.Context, actor access.Actor, id int64) (models.Task, error) {
	task, err := ts.repo.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if !access.CanViewTask(actor, task.AssigneeIDs) {
		return models.Task{}, apperr.Forbidden(fmt.Sprintf("view task %d", id))
	}
	return task, nil
}

// UpdateDetails applies a partial update of the descriptive fields. The searchable text is refreshed
// by the repository in the same write.
func (ts *TaskService) UpdateDetails(
	ctx context.Context, actor access.Actor, id int64, patch models.TaskPatch,
) (models.Task, error) {
	const opn = "Tasks.UpdateDetails"
	log := ts.initLogger(opn)

	if !access.CanManageTasks(actor) {
		return models.Task{}, apperr.Forbidden("edit task")
	}
	if err := validatePatch(&patch); err != nil {
		log.DebugContext(ctx, "rejected task patch", "fields", sl.RedactFields(apperr.Fields(err)))
		return models.Task{}, err
	}

	task, err := ts.repo.MutateTask(ctx, id, func(task *models.Task) ([]models.Activity, error) {
		changed := applyPatch(task, patch)
		if len(changed) == 0 {
			return nil, nil
		}
		return []models.Activity{models.NewActivity(models.ActionTaskUpdated, actor.ID(), "",
			models.Payload{"fields": changed})}, nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to update task '%d': %w", id, err)
	}

	log.InfoContext(ctx, "Task details updated", "id", id)
	return task, nil
}

// ReplaceAssignees sets the assignee list. A completed task keeps its completion snapshot.
func (ts *TaskService) ReplaceAssignees(
	ctx context.Context, actor access.Actor, id int64, assigneeIDs []string,
) (models.Task, error) {
	const opn = "Tasks.ReplaceAssignees"
	log := ts.initLogger(opn)

	if !access.CanManageTasks(actor) {
		return models.Task{}, apperr.Forbidden("assign task")
	}
	assignees := lifecycle.Distinct(assigneeIDs)

	task, err := ts.repo.MutateTask(ctx, id, func(task *models.Task) ([]models.Activity, error) {
		if slices.Equal(task.AssigneeIDs, assignees) {
			return nil, nil
		}
		previous := task.AssigneeIDs
		task.AssigneeIDs = assignees
		return []models.Activity{models.NewActivity(models.ActionAssigneesChanged, actor.ID(), "",
			models.Payload{"from": previous, "to": assignees})}, nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to assign task '%d': %w", id, err)
	}

	log.InfoContext(ctx, "Task assignees replaced", "id", id, "assignees", len(assignees))
	return task, nil
}

// Delete soft deletes the task. It disappears from listings but its history stays.
func (ts *TaskService) Delete(ctx context.Context, actor access.Actor, id int64) error {
	const opn = "Tasks.Delete"
	log := ts.initLogger(opn)

	if !access.CanManageTasks(actor) {
		return apperr.Forbidden("delete task")
	}

	_, err := ts.repo.MutateTask(ctx, id, func(task *models.Task) ([]models.Activity, error) {
		now := ts.now()
		task.DeletedAt = &now
		return []models.Activity{models.NewActivity(models.ActionTaskDeleted, actor.ID(), "",
			models.Payload{"title": task.Title})}, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete task '%d': %w", id, err)
	}

	log.InfoContext(ctx, "Task deleted", "id", id)
	return nil
}
