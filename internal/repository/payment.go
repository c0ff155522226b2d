package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CreatePayment stores a payment and its PAYMENT_RECORDED activity in one transaction.
func (r *Repository) CreatePayment(ctx context.Context, payment models.Payment) (models.Payment, error) {
	defer r.observe("create_payment", time.Now())

	query := `
		INSERT INTO payments (task_id, amount, currency, collected_by, invoice_key, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, collected_at;
	`

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			payment.TaskID, payment.Amount, payment.Currency, payment.CollectedBy, payment.InvoiceKey, payment.Notes,
		).Scan(&payment.ID, &payment.CollectedAt)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		payload := models.Payload{
			"paymentId": payment.ID,
			"amount":    payment.Amount.String(),
			"currency":  payment.Currency,
		}
		if payment.InvoiceKey != nil {
			payload["invoiceKey"] = *payment.InvoiceKey
		}
		_, err = insertActivity(ctx, tx, models.NewActivity(
			models.ActionPaymentRecorded, payment.CollectedBy, models.TaskTopic(payment.TaskID), payload,
		))
		return err
	})
	if err != nil {
		return models.Payment{}, fmt.Errorf("failed to record payment: %w", err)
	}

	return payment, nil
}

// ListPayments returns the payments of a task in collection order.
func (r *Repository) ListPayments(ctx context.Context, taskID int64) ([]models.Payment, error) {
	defer r.observe("list_payments", time.Now())

	query := `
		SELECT id, task_id, amount, currency, collected_by, invoice_key, notes, collected_at
		FROM payments
		WHERE task_id = $1
		ORDER BY collected_at, id;
	`

	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		if err = rows.Scan(
			&p.ID, &p.TaskID, &p.Amount, &p.Currency, &p.CollectedBy, &p.InvoiceKey, &p.Notes, &p.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// SumPayments returns the total collected for a task and the number of payments.
func (r *Repository) SumPayments(ctx context.Context, taskID int64) (decimal.Decimal, int, error) {
	defer r.observe("sum_payments", time.Now())

	var (
		total decimal.Decimal
		count int
	)
	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM payments WHERE task_id = $1`

	if err := r.db.QueryRow(ctx, query, taskID).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum payments: %w", err)
	}

	return total, count, nil
}
