// Package attachments links site photos and documents to tasks.
package attachments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/UnknownOlympus/aeolus/internal/storage"
)

const uploadKind = "attachment"

type AttachmentService struct {
	log           *slog.Logger
	tasks         repository.TaskRepoIface
	repo          repository.AttachmentRepoIface
	files         storage.FileStorage
	metrics       *metrics.Metrics
	maxUpload     int64
	workerUploads bool
}

func NewAttachmentService(log *slog.Logger,
	tasks repository.TaskRepoIface,
	repo repository.AttachmentRepoIface,
	files storage.FileStorage,
	metrics *metrics.Metrics,
	maxUpload int64,
	workerUploads bool,
) *AttachmentService {
	return &AttachmentService{
		log:           log,
		tasks:         tasks,
		repo:          repo,
		files:         files,
		metrics:       metrics,
		maxUpload:     maxUpload,
		workerUploads: workerUploads,
	}
}

func (as *AttachmentService) initLogger(opn string) *slog.Logger {
	return as.log.With(
		slog.String("op", opn),
		slog.String("division", "attachment"),
	)
}

// Attach uploads the file and links it to the task. Either both happen or neither: a failed link
// removes the uploaded object.
func (as *AttachmentService) Attach(
	ctx context.Context, actor access.Actor, taskID int64, upload storage.Upload,
) (models.Attachment, error) {
	const opn = "Attachments.Attach"
	log := as.initLogger(opn)

	task, err := as.tasks.GetTask(ctx, taskID)
	if err != nil {
		return models.Attachment{}, err
	}
	if !access.CanAttach(actor, task.AssigneeIDs, as.workerUploads) {
		return models.Attachment{}, apperr.Forbidden(fmt.Sprintf("attach file to task %d", taskID))
	}
	if err = upload.Check(as.maxUpload); err != nil {
		return models.Attachment{}, err
	}

	key, err := as.files.Put(ctx, storage.NewKey(taskID, upload.FileName), upload.Body, upload.ContentType)
	if err != nil {
		as.metrics.Uploads.WithLabelValues(uploadKind, "failure").Inc()
		return models.Attachment{}, fmt.Errorf("failed to upload file: %w", err)
	}

	attachment, err := as.repo.CreateAttachment(ctx, models.Attachment{
		TaskID:      taskID,
		StorageKey:  key,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		UploadedBy:  actor.ID(),
	})
	if err != nil {
		as.metrics.Uploads.WithLabelValues(uploadKind, "failure").Inc()
		if delErr := as.files.Delete(ctx, key); delErr != nil {
			log.ErrorContext(ctx, "failed to remove orphaned file", "key", key, sl.Err(delErr))
		}
		return models.Attachment{}, fmt.Errorf("failed to link file to task '%d': %w", taskID, err)
	}

	as.metrics.Uploads.WithLabelValues(uploadKind, "success").Inc()
	log.InfoContext(ctx, "File attached", "task", taskID, "attachment", attachment.ID, "size", attachment.Size)
	return attachment, nil
}

// List returns the attachments of a task the actor may see.
func (as *AttachmentService) List(ctx context.Context, actor access.Actor, taskID int64) ([]models.Attachment, error) {
	if err := as.checkVisible(ctx, actor, taskID); err != nil {
		return nil, err
	}

	attachments, err := as.repo.ListAttachments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments of task '%d': %w", taskID, err)
	}
	return attachments, nil
}

// URL returns a short lived download link for an attachment.
func (as *AttachmentService) URL(ctx context.Context, actor access.Actor, attachmentID int64) (string, error) {
	attachment, err := as.repo.GetAttachment(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	if err = as.checkVisible(ctx, actor, attachment.TaskID); err != nil {
		return "", err
	}

	link, err := as.files.SignedURL(ctx, attachment.StorageKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign link for attachment '%d': %w", attachmentID, err)
	}
	return link, nil
}

func (as *AttachmentService) checkVisible(ctx context.Context, actor access.Actor, taskID int64) error {
	task, err := as.tasks.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !access.CanViewTask(actor, task.AssigneeIDs) {
		return apperr.Forbidden(fmt.Sprintf("view attachments of task %d", taskID))
	}
	return nil
}
