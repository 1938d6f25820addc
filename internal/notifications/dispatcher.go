package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modavia/backend/internal/emaillogs"
	"github.com/modavia/backend/internal/mailer"
	"github.com/modavia/backend/internal/models"
	"github.com/modavia/backend/pkg/queue"
)

// EmailRequest is the send request for a catalog-published email.
type EmailRequest struct {
	To          string
	Subject     string
	UserID      uuid.UUID
	UserName    string
	BrandID     uuid.UUID
	BrandName   string
	CatalogName string
	CatalogCode string
}

// Dispatcher accepts a catalog-published email send request. Delivery is
// best effort: the caller records failures but never rolls anything back.
type Dispatcher interface {
	Dispatch(ctx context.Context, req EmailRequest) error
}

// QueueDispatcher hands emails to the background worker: it writes a
// pending email_logs row and pushes a job onto the Redis email queue. The
// worker sends via SMTP and records the outcome on the same log row.
type QueueDispatcher struct {
	queue     *queue.Queue
	emailLogs *emaillogs.Repository
	logger    *zap.Logger
}

// NewQueueDispatcher creates a queue-backed email dispatcher.
func NewQueueDispatcher(q *queue.Queue, emailLogs *emaillogs.Repository, logger *zap.Logger) *QueueDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueDispatcher{queue: q, emailLogs: emailLogs, logger: logger}
}

// Dispatch renders the email body, records a pending log row and enqueues
// the job.
func (d *QueueDispatcher) Dispatch(ctx context.Context, req EmailRequest) error {
	bodyHTML, err := mailer.RenderCatalogPublished(mailer.CatalogPublishedData{
		UserName:    req.UserName,
		BrandName:   req.BrandName,
		CatalogName: req.CatalogName,
		CatalogCode: req.CatalogCode,
	})
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}

	el := &models.EmailLog{
		BrandID:        &req.BrandID,
		UserID:         &req.UserID,
		EmailType:      models.EmailTypeCatalogPublished,
		RecipientEmail: req.To,
		Subject:        req.Subject,
	}
	if err := d.emailLogs.Create(ctx, el); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}

	payload := queue.EmailPayload{
		EmailType:      models.EmailTypeCatalogPublished,
		EmailLogID:     el.ID,
		BrandID:        req.BrandID,
		UserID:         req.UserID,
		RecipientEmail: req.To,
		RecipientName:  req.UserName,
		Subject:        req.Subject,
		BodyHTML:       bodyHTML,
	}
	if err := d.queue.EnqueueEmail(ctx, payload); err != nil {
		if markErr := d.emailLogs.MarkFailed(ctx, el.ID, err.Error()); markErr != nil {
			d.logger.Error("mark email log failed", zap.Error(markErr), zap.String("email_log_id", el.ID.String()))
		}
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}
