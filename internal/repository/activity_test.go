package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendActivity(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, clock_timestamp())")).
		WithArgs("COMMENTED", pgxmock.AnyArg(), "TASK:7", []byte(`{"text":"xong"}`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))

	repo := repository.NewActivityRepository(mock, newMetrics())
	got, err := repo.AppendActivity(context.Background(),
		models.NewActivity(models.ActionCommented, "w1", models.TaskTopic(7), models.Payload{"text": "xong"}))

	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NotNil(t, got.ActorID)
	assert.Equal(t, "w1", *got.ActorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendActivity_Error(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activities")).WillReturnError(assert.AnError)

	repo := repository.NewActivityRepository(mock, newMetrics())
	_, err = repo.AppendActivity(context.Background(), models.NewActivity(models.ActionCheckedIn, "w1", "TASK:1", nil))

	assert.Equal(t, "failed to insert CHECKED_IN activity: "+assert.AnError.Error(), err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActivities(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	first := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE topic = $1")).
		WithArgs("TASK:7").
		WillReturnRows(pgxmock.NewRows([]string{"id", "action", "actor_id", "topic", "payload", "created_at"}).
			AddRow(int64(1), "TASK_CREATED", ptr("admin"), "TASK:7", []byte(`{"status":"PREPARING"}`), first).
			AddRow(int64(2), "STATUS_CHANGED", nil, "TASK:7", []byte(`{"from":"PREPARING","to":"READY"}`),
				first.Add(time.Hour)))

	repo := repository.NewActivityRepository(mock, newMetrics())
	got, err := repo.ListActivities(context.Background(), "TASK:7")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ActionTaskCreated, got[0].Action)
	assert.Equal(t, "admin", *got[0].ActorID)
	assert.Nil(t, got[1].ActorID)
	assert.Equal(t, models.Payload{"from": "PREPARING", "to": "READY"}, got[1].Payload)
	require.NoError(t, mock.ExpectationsWereMet())
}
