package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayment(t *testing.T) {
	t.Parallel()

	t.Run("payment and activity committed together", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
			WithArgs(int64(7), pgxmock.AnyArg(), "VND", "w1", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "collected_at"}).AddRow(int64(4), now))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activities")).
			WithArgs("PAYMENT_RECORDED", pgxmock.AnyArg(), "TASK:7", pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), now))
		mock.ExpectCommit()

		repo := repository.NewPaymentRepository(mock, newMetrics())
		got, err := repo.CreatePayment(context.Background(), models.Payment{
			TaskID:      7,
			Amount:      decimal.NewFromInt(1_500_000),
			Currency:    "VND",
			CollectedBy: "w1",
			InvoiceKey:  ptr("tasks/7/invoice.pdf"),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(4), got.ID)
		assert.Equal(t, now, got.CollectedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("activity failure rolls back the payment", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
			WillReturnRows(pgxmock.NewRows([]string{"id", "collected_at"}).AddRow(int64(4), time.Now()))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activities")).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		repo := repository.NewPaymentRepository(mock, newMetrics())
		_, err = repo.CreatePayment(context.Background(), models.Payment{
			TaskID: 7, Amount: decimal.NewFromInt(10), Currency: "VND", CollectedBy: "w1",
		})

		require.ErrorIs(t, err, assert.AnError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListPayments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "task_id", "amount", "currency", "collected_by", "invoice_key", "notes", "collected_at",
		}).AddRow(int64(1), int64(7), "500000", "VND", "w1", nil, ptr("đặt cọc"), now))

	repo := repository.NewPaymentRepository(mock, newMetrics())
	got, err := repo.ListPayments(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(500_000).Equal(got[0].Amount))
	assert.Nil(t, got[0].InvoiceKey)
	assert.Equal(t, "đặt cọc", *got[0].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPayments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM payments")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"sum", "count"}).AddRow("1500000", 2))

	repo := repository.NewPaymentRepository(mock, newMetrics())
	total, count, err := repo.SumPayments(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1_500_000).Equal(total))
	assert.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
