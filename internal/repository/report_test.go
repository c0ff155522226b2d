package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCheckIns(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	at := from.Add(26 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE actor_id = $1 AND action = $2 AND created_at BETWEEN $3 AND $4")).
		WithArgs("w1", "CHECKED_IN", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(at))

	repo := repository.NewReportRepository(mock, newMetrics())
	got, err := repo.ListCheckIns(context.Background(), "w1", from, to)

	require.NoError(t, err)
	assert.Equal(t, []time.Time{at}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompletedTasks(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	done := from.Add(48 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("$2 = ANY(completed_assignee_ids)")).
		WithArgs("COMPLETED", "w1", from, to).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "completed_at", "expected_revenue", "currency", "completed_assignee_ids",
		}).
			AddRow(int64(1), "Lắp máy", done, "4000000", "VND", []string{"w1", "w2"}).
			AddRow(int64(2), "Bảo trì", done, nil, "VND", []string{"w1"}))

	repo := repository.NewReportRepository(mock, newMetrics())
	got, err := repo.ListCompletedTasks(context.Background(), "w1", from, to)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, decimal.NewFromInt(4_000_000).Equal(got[0].ExpectedRevenue.Decimal))
	assert.Equal(t, []string{"w1", "w2"}, got[0].AssigneeIDs)
	assert.False(t, got[1].ExpectedRevenue.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCompletedTasks_Error(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM tasks").WillReturnError(assert.AnError)

	repo := repository.NewReportRepository(mock, newMetrics())
	_, err = repo.ListCompletedTasks(context.Background(), "w1", time.Now(), time.Now())

	assert.Equal(t, "failed to list completed tasks: "+assert.AnError.Error(), err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}
