package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/jackc/pgx/v5"
)

const attachmentColumns = `id, task_id, storage_key, file_name, content_type, size, uploaded_by, created_at`

// CreateAttachment links a stored file to a task and appends FILE_ATTACHED in one transaction.
func (r *Repository) CreateAttachment(ctx context.Context, attachment models.Attachment) (models.Attachment, error) {
	defer r.observe("create_attachment", time.Now())

	query := `
		INSERT INTO attachments (task_id, storage_key, file_name, content_type, size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at;
	`

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			attachment.TaskID, attachment.StorageKey, attachment.FileName, attachment.ContentType,
			attachment.Size, attachment.UploadedBy,
		).Scan(&attachment.ID, &attachment.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}

		_, err = insertActivity(ctx, tx, models.NewActivity(
			models.ActionFileAttached, attachment.UploadedBy, models.TaskTopic(attachment.TaskID),
			models.Payload{"attachmentId": attachment.ID, "fileName": attachment.FileName},
		))
		return err
	})
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to attach file: %w", err)
	}

	return attachment, nil
}

func (r *Repository) ListAttachments(ctx context.Context, taskID int64) ([]models.Attachment, error) {
	defer r.observe("list_attachments", time.Now())

	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE task_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]models.Attachment, 0)
	for rows.Next() {
		attachment, scanErr := scanAttachment(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		attachments = append(attachments, attachment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attachments: %w", err)
	}

	return attachments, nil
}

func (r *Repository) GetAttachment(ctx context.Context, id int64) (models.Attachment, error) {
	defer r.observe("get_attachment", time.Now())

	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`

	attachment, err := scanAttachment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Attachment{}, apperr.NotFound("attachment", id)
	}
	if err != nil {
		return models.Attachment{}, err
	}

	return attachment, nil
}

func scanAttachment(row pgx.Row) (models.Attachment, error) {
	var a models.Attachment
	err := row.Scan(&a.ID, &a.TaskID, &a.StorageKey, &a.FileName, &a.ContentType, &a.Size, &a.UploadedBy, &a.CreatedAt)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to scan attachment: %w", err)
	}
	return a, nil
}
