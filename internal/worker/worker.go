package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/modavia/backend/internal/emaillogs"
	"github.com/modavia/backend/internal/mailer"
	"github.com/modavia/backend/pkg/queue"
)

// EmailProcessor consumes email jobs and delivers them over SMTP,
// recording the outcome on the email log row created at enqueue time.
type EmailProcessor struct {
	queue     *queue.Queue
	mailer    *mailer.Mailer
	emailLogs *emaillogs.Repository
	logger    *zap.Logger
}

// NewEmailProcessor creates an email worker.
func NewEmailProcessor(q *queue.Queue, m *mailer.Mailer, emailLogs *emaillogs.Repository, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, mailer: m, emailLogs: emailLogs, logger: logger}
}

// Process handles a single job. A returned error means the job should be
// retried; permanent failures are recorded on the log row and swallowed.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		p.logger.Warn("skipping unknown job type", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return nil
	}

	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		p.logger.Error("invalid email payload, dropping job", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}

	if err := p.mailer.Send(payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		if job.Attempt+1 >= queue.MaxRetries {
			if markErr := p.emailLogs.MarkFailed(ctx, payload.EmailLogID, err.Error()); markErr != nil {
				p.logger.Error("mark email failed", zap.Error(markErr), zap.String("email_log_id", payload.EmailLogID.String()))
			}
		}
		return fmt.Errorf("send email: %w", err)
	}

	if err := p.emailLogs.MarkSent(ctx, payload.EmailLogID); err != nil {
		// The mail went out; do not retry and send a duplicate.
		p.logger.Error("mark email sent", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
		return nil
	}

	p.logger.Info("email delivered",
		zap.String("job_id", job.ID),
		zap.String("recipient", payload.RecipientEmail),
		zap.String("email_type", payload.EmailType),
	)
	return nil
}

// Run consumes jobs until ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Warn("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			if retryErr := p.queue.Retry(ctx, job); retryErr != nil {
				p.logger.Error("retry failed", zap.Error(retryErr), zap.String("job_id", job.ID))
			}
		}
	}
}
