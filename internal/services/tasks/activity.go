package tasks

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/models"
)

// Comment appends a comment to the task feed. Comments never touch the task row.
func (ts *TaskService) Comment(ctx context.Context, actor access.Actor, id int64, text string) (models.Activity, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return models.Activity{}, apperr.Invalid("text", "required")
	case utf8.RuneCountInString(text) > maxCommentLength:
		return models.Activity{}, apperr.Invalid("text", "max")
	}

	task, err := ts.repo.GetTask(ctx, id)
	if err != nil {
		return models.Activity{}, err
	}
	if !access.CanComment(actor, task.AssigneeIDs) {
		return models.Activity{}, apperr.Forbidden(fmt.Sprintf("comment on task %d", id))
	}

	return ts.append(ctx, models.NewActivity(models.ActionCommented, actor.ID(), models.TaskTopic(id),
		models.Payload{"text": text}))
}

// CheckIn records the actor arriving on site. Only assignees check in, admins included.
func (ts *TaskService) CheckIn(ctx context.Context, actor access.Actor, id int64, pos models.Position) (models.Activity, error) {
	return ts.checkPoint(ctx, actor, id, pos, models.ActionCheckedIn)
}

// CheckOut records the actor leaving the site.
func (ts *TaskService) CheckOut(ctx context.Context, actor access.Actor, id int64, pos models.Position) (models.Activity, error) {
	return ts.checkPoint(ctx, actor, id, pos, models.ActionCheckedOut)
}

func (ts *TaskService) checkPoint(
	ctx context.Context, actor access.Actor, id int64, pos models.Position, action models.ActivityAction,
) (models.Activity, error) {
	const opn = "Tasks.checkPoint"
	log := ts.initLogger(opn)

	if err := validatePosition(pos); err != nil {
		return models.Activity{}, err
	}

	task, err := ts.repo.GetTask(ctx, id)
	if err != nil {
		return models.Activity{}, err
	}
	if !access.CanCheckIn(actor, task.AssigneeIDs) {
		return models.Activity{}, apperr.Forbidden(fmt.Sprintf("check in on task %d", id))
	}

	payload := models.Payload{"latitude": pos.Latitude, "longitude": pos.Longitude}
	if pos.Accuracy != nil {
		payload["accuracy"] = *pos.Accuracy
	}

	activity, err := ts.append(ctx, models.NewActivity(action, actor.ID(), models.TaskTopic(id), payload))
	if err != nil {
		return models.Activity{}, err
	}

	log.InfoContext(ctx, "Worker position recorded", "id", id, "action", action, "actor", actor.ID())
	return activity, nil
}

// Activities returns the task feed in creation order.
func (ts *TaskService) Activities(ctx context.Context, actor access.Actor, id int64) ([]models.Activity, error) {
	task, err := ts.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewTask(actor, task.AssigneeIDs) {
		return nil, apperr.Forbidden(fmt.Sprintf("view task %d", id))
	}

	activities, err := ts.activities.ListActivities(ctx, models.TaskTopic(id))
	if err != nil {
		return nil, fmt.Errorf("failed to list activities of task '%d': %w", id, err)
	}
	return activities, nil
}

func (ts *TaskService) append(ctx context.Context, activity models.Activity) (models.Activity, error) {
	stored, err := ts.activities.AppendActivity(ctx, activity)
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to append %s activity: %w", activity.Action, err)
	}
	return stored, nil
}
