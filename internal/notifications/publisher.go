package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modavia/backend/internal/models"
)

// Notification appearance for catalog publications.
const (
	catalogAddedIcon  = "book-open"
	catalogAddedColor = "indigo"
)

// catalogSource loads the catalog detail needed for the announcement.
// Satisfied by *catalogs.Repository.
type catalogSource interface {
	GetDetail(ctx context.Context, id uuid.UUID) (*models.CatalogDetail, error)
}

// recipientSource resolves the client accounts entitled to be notified.
// Satisfied by *Resolver.
type recipientSource interface {
	ActiveClientsForBrand(ctx context.Context, brandID uuid.UUID) ([]Recipient, error)
}

// notificationStore persists notification rows. Satisfied by *Repository.
type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Pusher delivers a realtime copy of a notification to a connected user.
// Best effort: a disconnected user just misses the live event.
type Pusher interface {
	PushNotification(userID uuid.UUID, n *models.Notification)
}

// Failure records one failed side effect for one recipient.
type Failure struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Stage  string    `json:"stage"` // "notification" or "email"
	Reason string    `json:"reason"`
}

// Report summarizes a publication fan-out. The catalog status change is
// already committed when fan-out starts; failures here are per-recipient
// and never abort the rest.
type Report struct {
	Recipients int       `json:"recipients"`
	Notified   int       `json:"notified"`
	Emailed    int       `json:"emailed"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Partial reports whether some side effects failed while others succeeded.
func (r *Report) Partial() bool {
	return len(r.Failures) > 0 && (r.Notified > 0 || r.Emailed > 0)
}

// Publisher orchestrates the catalog publication fan-out: one persisted
// notification and one email per recipient, processed concurrently under a
// bounded semaphore.
type Publisher struct {
	catalogs        catalogSource
	recipients      recipientSource
	store           notificationStore
	dispatcher      Dispatcher
	pusher          Pusher // optional
	maxConcurrent   int
	dispatchTimeout time.Duration
	logger          *zap.Logger
}

// NewPublisher creates a publication notifier. pusher may be nil.
func NewPublisher(
	catalogs catalogSource,
	recipients recipientSource,
	store notificationStore,
	dispatcher Dispatcher,
	pusher Pusher,
	maxConcurrent int,
	dispatchTimeout time.Duration,
	logger *zap.Logger,
) *Publisher {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if dispatchTimeout <= 0 {
		dispatchTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		catalogs:        catalogs,
		recipients:      recipients,
		store:           store,
		dispatcher:      dispatcher,
		pusher:          pusher,
		maxConcurrent:   maxConcurrent,
		dispatchTimeout: dispatchTimeout,
		logger:          logger,
	}
}

// NotifyCatalogPublication fans out notifications and emails for a catalog
// that just became published. The error return covers only the load and
// resolution phases; per-recipient side-effect failures are collected in
// the report. Zero recipients is a successful no-op.
func (p *Publisher) NotifyCatalogPublication(ctx context.Context, catalogID, brandID uuid.UUID) (*Report, error) {
	detail, err := p.catalogs.GetDetail(ctx, catalogID)
	if err != nil {
		return nil, err
	}

	recipients, err := p.recipients.ActiveClientsForBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	report := &Report{Recipients: len(recipients)}
	if len(recipients) == 0 {
		return report, nil
	}

	message := PublicationMessage(detail.BrandName, detail.Type, detail.Season, detail.Year)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.maxConcurrent)
	)
	for _, rec := range recipients {
		rec := rec
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			p.notifyOne(ctx, detail, rec, message, report, &mu)
		}()
	}
	wg.Wait()

	p.logger.Info("catalog publication fan-out finished",
		zap.String("catalog_id", catalogID.String()),
		zap.String("catalog_code", detail.Code),
		zap.Int("recipients", report.Recipients),
		zap.Int("notified", report.Notified),
		zap.Int("emailed", report.Emailed),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

// notifyOne performs both side effects for a single recipient. The
// notification insert and the email dispatch fail independently.
func (p *Publisher) notifyOne(ctx context.Context, detail *models.CatalogDetail, rec Recipient, message string, report *Report, mu *sync.Mutex) {
	brandID := detail.BrandID
	n := &models.Notification{
		UserID:    rec.UserID,
		Type:      models.NotificationTypeCatalogAdded,
		Icon:      catalogAddedIcon,
		Color:     catalogAddedColor,
		BrandID:   &brandID,
		BrandName: detail.BrandName,
		Message:   message,
	}
	if err := p.store.Create(ctx, n); err != nil {
		p.logger.Warn("notification insert failed",
			zap.Error(err),
			zap.String("user_id", rec.UserID.String()),
			zap.String("catalog_code", detail.Code),
		)
		mu.Lock()
		report.Failures = append(report.Failures, Failure{UserID: rec.UserID, Email: rec.Email, Stage: "notification", Reason: err.Error()})
		mu.Unlock()
	} else {
		mu.Lock()
		report.Notified++
		mu.Unlock()
		if p.pusher != nil {
			p.pusher.PushNotification(rec.UserID, n)
		}
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, p.dispatchTimeout)
	defer cancel()
	err := p.dispatcher.Dispatch(dispatchCtx, EmailRequest{
		To:          rec.Email,
		Subject:     message,
		UserID:      rec.UserID,
		UserName:    rec.FirstName + " " + rec.LastName,
		BrandID:     brandID,
		BrandName:   detail.BrandName,
		CatalogName: detail.Name,
		CatalogCode: detail.Code,
	})
	if err != nil {
		p.logger.Warn("email dispatch failed",
			zap.Error(err),
			zap.String("recipient", rec.Email),
			zap.String("catalog_code", detail.Code),
		)
		mu.Lock()
		report.Failures = append(report.Failures, Failure{UserID: rec.UserID, Email: rec.Email, Stage: "email", Reason: err.Error()})
		mu.Unlock()
		return
	}
	mu.Lock()
	report.Emailed++
	mu.Unlock()
}
