package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/models"
)

// created_at is taken at statement time, so inside a transaction that waited on a row lock the
// activity still sorts after the one written by the lock holder.
const insertActivityQuery = `
		INSERT INTO activities (action, actor_id, topic, payload, created_at)
		VALUES ($1, $2, $3, $4, clock_timestamp())
		RETURNING id, created_at;
	`

// AppendActivity inserts a single activity outside of any other write.
func (r *Repository) AppendActivity(ctx context.Context, activity models.Activity) (models.Activity, error) {
	defer r.observe("append_activity", time.Now())

	return insertActivity(ctx, r.db, activity)
}

// ListActivities returns the activities of a topic, oldest first.
func (r *Repository) ListActivities(ctx context.Context, topic string) ([]models.Activity, error) {
	defer r.observe("list_activities", time.Now())

	query := `
		SELECT id, action, actor_id, topic, payload, created_at
		FROM activities
		WHERE topic = $1
		ORDER BY created_at, id;
	`

	rows, err := r.db.Query(ctx, query, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		var (
			activity models.Activity
			action   string
			payload  []byte
		)
		if err = rows.Scan(
			&activity.ID, &action, &activity.ActorID, &activity.Topic, &payload, &activity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activity.Action = models.ActivityAction(action)
		if err = json.Unmarshal(payload, &activity.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode activity payload %d: %w", activity.ID, err)
		}
		activities = append(activities, activity)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}

func insertActivity(ctx context.Context, q querier, activity models.Activity) (models.Activity, error) {
	if activity.Payload == nil {
		activity.Payload = models.Payload{}
	}
	payload, err := json.Marshal(activity.Payload)
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to encode activity payload: %w", err)
	}

	err = q.QueryRow(ctx, insertActivityQuery, string(activity.Action), activity.ActorID, activity.Topic, payload).
		Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to insert %s activity: %w", activity.Action, err)
	}

	return activity, nil
}
