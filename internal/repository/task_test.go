package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskColumns = []string{
	"id", "title", "description", "status", "assignee_ids", "completed_assignee_ids",
	"expected_revenue", "currency", "customer_id", "scheduled_at", "started_at", "completed_at",
	"created_at", "updated_at", "created_by", "searchable_text", "deleted_at",
	"name", "phone", "id", "latitude", "longitude", "name", "address",
}

func newMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func ptr[T any](v T) *T { return &v }

func plainTaskRow(id int64, title, status string, assignees []string, created time.Time) []any {
	return []any{
		id, title, nil, status, assignees, nil,
		nil, "VND", nil, nil, nil, nil,
		created, created, "admin-1", "", nil,
		nil, nil, nil, nil, nil, nil, nil,
	}
}

func TestCreateTask_Success(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
		WithArgs("Nguyễn Văn An", "0901").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs("Lắp máy", pgxmock.AnyArg(), "PREPARING", []string{"w1", "w2"}, pgxmock.AnyArg(),
			"VND", pgxmock.AnyArg(), pgxmock.AnyArg(), "admin-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO locations")).
		WithArgs(int64(42), pgxmock.AnyArg(), pgxmock.AnyArg(), "Nhà", "12 Lê Lợi").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET searchable_text")).
		WithArgs(int64(42), "42 lap may nguyen van an 0901 12 le loi nha").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activities")).
		WithArgs("TASK_CREATED", pgxmock.AnyArg(), "TASK:42", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	mock.ExpectCommit()

	repo := repository.NewTaskRepository(mock, newMetrics())
	task, err := repo.CreateTask(context.Background(), models.NewTask{
		Title:           "Lắp máy",
		AssigneeIDs:     []string{"w1", "w2"},
		ExpectedRevenue: decimal.NewNullDecimal(decimal.NewFromInt(4_000_000)),
		Customer:        &models.Customer{Name: "Nguyễn Văn An", Phone: "0901"},
		Location: &models.Location{
			Latitude:  pgtype.Float8{Float64: 10.77, Valid: true},
			Longitude: pgtype.Float8{Float64: 106.7, Valid: true},
			Name:      "Nhà",
			Address:   "12 Lê Lợi",
		},
		CreatedBy: "admin-1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), task.ID)
	assert.Equal(t, models.StatusPreparing, task.Status)
	assert.Equal(t, "VND", task.Currency)
	require.NotNil(t, task.CustomerID)
	assert.Equal(t, int64(5), *task.CustomerID)
	assert.Equal(t, int64(9), task.Location.ID)
	assert.Equal(t, "42 lap may nguyen van an 0901 12 le loi nha", task.SearchableText)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTask_RollsBackOnActivityFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(3), now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET searchable_text")).
		WithArgs(int64(3), "3 bao tri").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activities")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := repository.NewTaskRepository(mock, newMetrics())
	_, err = repo.CreateTask(context.Background(), models.NewTask{Title: "Bảo trì", CreatedBy: "admin-1"})

	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to create task")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1 AND t.deleted_at IS NULL")).
			WithArgs(int64(7)).
			WillReturnError(pgx.ErrNoRows)

		repo := repository.NewTaskRepository(mock, newMetrics())
		_, err = repo.GetTask(context.Background(), 7)

		require.ErrorIs(t, err, apperr.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with customer and location", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
		row := []any{
			int64(7), "Thay gas", ptr("Tầng 2"), "IN_PROGRESS", []string{"w1"}, nil,
			"1500000", "VND", ptr(int64(5)), nil, &now, nil,
			now, now, "admin-1", "7 thay gas tang 2 an", nil,
			ptr("An"), ptr("0901"), ptr(int64(9)), 10.77, 106.7, ptr("Nhà"), ptr("12 Lê Lợi"),
		}
		mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1 AND t.deleted_at IS NULL")).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows(taskColumns).AddRow(row...))

		repo := repository.NewTaskRepository(mock, newMetrics())
		task, err := repo.GetTask(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, task.Status)
		assert.Equal(t, "Tầng 2", *task.Description)
		assert.True(t, task.ExpectedRevenue.Valid)
		assert.True(t, decimal.NewFromInt(1_500_000).Equal(task.ExpectedRevenue.Decimal))
		require.NotNil(t, task.Customer)
		assert.Equal(t, models.Customer{ID: 5, Name: "An", Phone: "0901"}, *task.Customer)
		require.NotNil(t, task.Location)
		assert.Equal(t, int64(9), task.Location.ID)
		assert.InDelta(t, 10.77, task.Location.Latitude.Float64, 1e-9)
		assert.Equal(t, "12 Lê Lợi", task.Location.Address)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMutateTask_Success(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF t")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(taskColumns).AddRow(plainTaskRow(7, "Thay gas", "READY", []string{"w1"}, now)...))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks")).
		WithArgs(int64(7), "Thay gas", pgxmock.AnyArg(), "IN_PROGRESS", []string{"w1"},
			pgxmock.AnyArg(), pgxmock.AnyArg(), "VND", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), "7 thay gas", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now.Add(time.Minute)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activities")).
		WithArgs("STATUS_CHANGED", pgxmock.AnyArg(), "TASK:7", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))
	mock.ExpectCommit()

	repo := repository.NewTaskRepository(mock, newMetrics())
	task, err := repo.MutateTask(context.Background(), 7, func(task *models.Task) ([]models.Activity, error) {
		task.Status = models.StatusInProgress
		return []models.Activity{
			models.NewActivity(models.ActionStatusChanged, "w1", "", models.Payload{"from": "READY", "to": "IN_PROGRESS"}),
		}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.Equal(t, now.Add(time.Minute), task.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateTask_MutationErrorRollsBack(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF t")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(taskColumns).AddRow(plainTaskRow(7, "Thay gas", "COMPLETED", []string{"w1"}, now)...))
	mock.ExpectRollback()

	repo := repository.NewTaskRepository(mock, newMetrics())
	_, err = repo.MutateTask(context.Background(), 7, func(_ *models.Task) ([]models.Activity, error) {
		return nil, apperr.Forbidden("change status COMPLETED -> READY")
	})

	require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateTask_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF t")).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	called := false
	repo := repository.NewTaskRepository(mock, newMetrics())
	_, err = repo.MutateTask(context.Background(), 404, func(_ *models.Task) ([]models.Activity, error) {
		called = true
		return nil, nil
	})

	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateTask_RefreshesRelationsAndSearchableText(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	row := []any{
		int64(7), "Thay gas", nil, "READY", []string{"w1"}, nil,
		nil, "VND", ptr(int64(5)), nil, nil, nil,
		now, now, "admin-1", "7 thay gas an 12 le loi", nil,
		ptr("An"), ptr(""), ptr(int64(9)), nil, nil, ptr(""), ptr("12 Lê Lợi"),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF t")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(taskColumns).AddRow(row...))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
		WithArgs("Bình", "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(6)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM locations")).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks")).
		WithArgs(int64(7), "Thay gas", pgxmock.AnyArg(), "READY", []string{"w1"},
			pgxmock.AnyArg(), pgxmock.AnyArg(), "VND", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), "7 thay gas binh", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectCommit()

	repo := repository.NewTaskRepository(mock, newMetrics())
	task, err := repo.MutateTask(context.Background(), 7, func(task *models.Task) ([]models.Activity, error) {
		task.Customer = &models.Customer{Name: "Bình"}
		task.Location = nil
		return nil, nil
	})

	require.NoError(t, err)
	require.NotNil(t, task.CustomerID)
	assert.Equal(t, int64(6), *task.CustomerID)
	assert.Nil(t, task.Location)
	assert.Equal(t, "7 thay gas binh", task.SearchableText)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchTasks(t *testing.T) {
	t.Parallel()

	t.Run("default listing", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(
			"WHERE t.deleted_at IS NULL ORDER BY t.created_at DESC NULLS LAST, t.id DESC")).
			WillReturnRows(pgxmock.NewRows(taskColumns).
				AddRow(plainTaskRow(2, "B", "READY", []string{}, now)...).
				AddRow(plainTaskRow(1, "A", "PREPARING", []string{}, now)...))

		repo := repository.NewTaskRepository(mock, newMetrics())
		tasks, err := repo.SearchTasks(context.Background(), models.TaskFilter{})

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, int64(2), tasks[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all filters", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(
			"t.searchable_text LIKE $1 AND t.status = ANY($2) AND $3 = ANY(t.assignee_ids) AND "+
				"t.created_at >= $4 AND t.scheduled_at <= $5 "+
				"ORDER BY t.scheduled_at ASC NULLS LAST, t.id ASC LIMIT $6 OFFSET $7")).
			WithArgs(`%nguyen\_\%%`, []string{"READY", "ON_HOLD"}, "w1", from, from, 11, 10).
			WillReturnRows(pgxmock.NewRows(taskColumns))

		repo := repository.NewTaskRepository(mock, newMetrics())
		tasks, err := repo.SearchTasks(context.Background(), models.TaskFilter{
			Query:       "nguyen_%",
			Statuses:    []models.TaskStatus{models.StatusReady, models.StatusOnHold},
			AssigneeID:  "w1",
			CreatedFrom: &from,
			ScheduledTo: &from,
			Sort:        models.SortScheduledAt,
			Ascending:   true,
			Limit:       11,
			Offset:      10,
		})

		require.NoError(t, err)
		assert.Empty(t, tasks)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

		repo := repository.NewTaskRepository(mock, newMetrics())
		_, err = repo.SearchTasks(context.Background(), models.TaskFilter{Sort: "unknown"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, assert.AnError))
		assert.Equal(t, "failed to search tasks: "+assert.AnError.Error(), err.Error())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
