// Package payments records money collected on site and compares it with the expected revenue.
package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/UnknownOlympus/aeolus/internal/storage"
	"github.com/shopspring/decimal"
)

const uploadKind = "invoice"

// Input is a payment as reported by the collector. Invoice is optional.
type Input struct {
	Amount   decimal.Decimal
	Currency string
	Notes    string
	Invoice  *storage.Upload
}

type PaymentService struct {
	log       *slog.Logger
	tasks     repository.TaskRepoIface
	repo      repository.PaymentRepoIface
	files     storage.FileStorage
	metrics   *metrics.Metrics
	maxUpload int64
}

func NewPaymentService(log *slog.Logger,
	tasks repository.TaskRepoIface,
	repo repository.PaymentRepoIface,
	files storage.FileStorage,
	metrics *metrics.Metrics,
	maxUpload int64,
) *PaymentService {
	return &PaymentService{log: log, tasks: tasks, repo: repo, files: files, metrics: metrics, maxUpload: maxUpload}
}

func (ps *PaymentService) initLogger(opn string) *slog.Logger {
	return ps.log.With(
		slog.String("op", opn),
		slog.String("division", "payment"),
	)
}

// Record stores a payment for the task. When an invoice is attached it is uploaded first; if the
// payment cannot be stored afterwards the uploaded file is removed again.
func (ps *PaymentService) Record(ctx context.Context, actor access.Actor, taskID int64, in Input) (models.Payment, error) {
	const opn = "Payments.Record"
	log := ps.initLogger(opn)

	task, err := ps.tasks.GetTask(ctx, taskID)
	if err != nil {
		return models.Payment{}, err
	}
	if !access.CanRecordPayment(actor, task.AssigneeIDs) {
		return models.Payment{}, apperr.Forbidden(fmt.Sprintf("record payment on task %d", taskID))
	}
	if err = ps.validate(&in, task); err != nil {
		return models.Payment{}, err
	}

	payment := models.Payment{
		TaskID:      taskID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		CollectedBy: actor.ID(),
	}
	if in.Notes != "" {
		payment.Notes = &in.Notes
	}

	if in.Invoice != nil {
		key, putErr := ps.files.Put(ctx, storage.NewKey(taskID, in.Invoice.FileName), in.Invoice.Body,
			in.Invoice.ContentType)
		if putErr != nil {
			ps.metrics.Uploads.WithLabelValues(uploadKind, "failure").Inc()
			return models.Payment{}, fmt.Errorf("failed to upload invoice: %w", putErr)
		}
		payment.InvoiceKey = &key
	}

	stored, err := ps.repo.CreatePayment(ctx, payment)
	if err != nil {
		if payment.InvoiceKey != nil {
			ps.metrics.Uploads.WithLabelValues(uploadKind, "failure").Inc()
			if delErr := ps.files.Delete(ctx, *payment.InvoiceKey); delErr != nil {
				log.ErrorContext(ctx, "failed to remove orphaned invoice", "key", *payment.InvoiceKey, sl.Err(delErr))
			}
		}
		return models.Payment{}, fmt.Errorf("failed to store payment: %w", err)
	}

	if stored.InvoiceKey != nil {
		ps.metrics.Uploads.WithLabelValues(uploadKind, "success").Inc()
	}
	log.InfoContext(ctx, "Payment recorded", "task", taskID, "amount", stored.Amount.String(),
		"currency", stored.Currency)
	return stored, nil
}

func (ps *PaymentService) validate(in *Input, task models.Task) error {
	fields := map[string]string{}

	if !in.Amount.IsPositive() {
		fields["amount"] = "gt"
	}

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	switch in.Currency {
	case "":
		in.Currency = task.Currency
	case task.Currency:
	default:
		fields["currency"] = "eqfield"
	}
	in.Notes = strings.TrimSpace(in.Notes)

	if in.Invoice != nil {
		for k, v := range apperr.Fields(in.Invoice.Check(ps.maxUpload)) {
			fields["invoice."+k] = v
		}
	}

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// List returns the payments of a task the actor may see.
func (ps *PaymentService) List(ctx context.Context, actor access.Actor, taskID int64) ([]models.Payment, error) {
	if _, err := ps.visibleTask(ctx, actor, taskID); err != nil {
		return nil, err
	}

	payments, err := ps.repo.ListPayments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of task '%d': %w", taskID, err)
	}
	return payments, nil
}

// Summary compares the collected total with the expected revenue. Outstanding stays null while
// the expected revenue is unknown.
func (ps *PaymentService) Summary(ctx context.Context, actor access.Actor, taskID int64) (models.PaymentSummary, error) {
	task, err := ps.visibleTask(ctx, actor, taskID)
	if err != nil {
		return models.PaymentSummary{}, err
	}

	collected, count, err := ps.repo.SumPayments(ctx, taskID)
	if err != nil {
		return models.PaymentSummary{}, fmt.Errorf("failed to sum payments of task '%d': %w", taskID, err)
	}

	summary := models.PaymentSummary{
		TaskID:    taskID,
		Currency:  task.Currency,
		Expected:  task.ExpectedRevenue,
		Collected: collected,
		Payments:  count,
	}
	if task.ExpectedRevenue.Valid {
		summary.Outstanding = decimal.NewNullDecimal(task.ExpectedRevenue.Decimal.Sub(collected))
	}
	return summary, nil
}

func (ps *PaymentService) visibleTask(ctx context.Context, actor access.Actor, taskID int64) (models.Task, error) {
	task, err := ps.tasks.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if !access.CanViewTask(actor, task.AssigneeIDs) {
		return models.Task{}, apperr.Forbidden(fmt.Sprintf("view payments of task %d", taskID))
	}
	return task, nil
}
