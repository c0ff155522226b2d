package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// TaskMutation changes a locked task in place and returns the activities describing the change.
// Returning an error rolls the whole mutation back.
type TaskMutation func(task *models.Task) ([]models.Activity, error)

// TaskRepoIface is the single write path of tasks. Every write recomputes the searchable text.
type TaskRepoIface interface {
	CreateTask(ctx context.Context, in models.NewTask) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	SearchTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	MutateTask(ctx context.Context, id int64, mutate TaskMutation) (models.Task, error)
}

func NewTaskRepository(db Database, metrics *metrics.Metrics) TaskRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// ActivityRepoIface represents the append-only activity log.
type ActivityRepoIface interface {
	AppendActivity(ctx context.Context, activity models.Activity) (models.Activity, error)
	ListActivities(ctx context.Context, topic string) ([]models.Activity, error)
}

func NewActivityRepository(db Database, metrics *metrics.Metrics) ActivityRepoIface {
	return &Repository{db: db, metrics: metrics}
}

type PaymentRepoIface interface {
	CreatePayment(ctx context.Context, payment models.Payment) (models.Payment, error)
	ListPayments(ctx context.Context, taskID int64) ([]models.Payment, error)
	SumPayments(ctx context.Context, taskID int64) (decimal.Decimal, int, error)
}

func NewPaymentRepository(db Database, metrics *metrics.Metrics) PaymentRepoIface {
	return &Repository{db: db, metrics: metrics}
}

type AttachmentRepoIface interface {
	CreateAttachment(ctx context.Context, attachment models.Attachment) (models.Attachment, error)
	ListAttachments(ctx context.Context, taskID int64) ([]models.Attachment, error)
	GetAttachment(ctx context.Context, id int64) (models.Attachment, error)
}

func NewAttachmentRepository(db Database, metrics *metrics.Metrics) AttachmentRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// EmployeeRepoIface represents the interface for interacting with employee data in the repository.
type EmployeeRepoIface interface {
	SaveEmployee(ctx context.Context, employee models.Employee, activity models.Activity) error
	UpdateEmployee(ctx context.Context, employee models.Employee, activity models.Activity) error
	GetEmployeeByID(ctx context.Context, identifier string) (models.Employee, error)
	ListEmployees(ctx context.Context, active *bool) ([]models.Employee, error)
}

func NewEmployeeRepository(db Database, metrics *metrics.Metrics) EmployeeRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// ReportRepoIface reads the raw facts the employee report is aggregated from.
type ReportRepoIface interface {
	ListCheckIns(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)
	ListCompletedTasks(ctx context.Context, userID string, from, to time.Time) ([]models.CompletedTask, error)
}

func NewReportRepository(db Database, metrics *metrics.Metrics) ReportRepoIface {
	return &Repository{db: db, metrics: metrics}
}

func (r *Repository) observe(queryType string, startTime time.Time) {
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}

// withTx runs fn inside a transaction. The transaction is committed when fn returns nil and rolled
// back otherwise.
func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
