package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modavia/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending email log row and fills in its ID.
func (r *Repository) Create(ctx context.Context, el *models.EmailLog) error {
	const q = `INSERT INTO email_logs (brand_id, user_id, email_type, recipient_email, subject)
		VALUES ($1, $2, $3, $4, NULLIF($5,''))
		RETURNING id, status, created_at`
	return r.pool.QueryRow(ctx, q, el.BrandID, el.UserID, el.EmailType, el.RecipientEmail, el.Subject).
		Scan(&el.ID, &el.Status, &el.CreatedAt)
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE email_logs SET status = 'sent', sent_at = NOW(), error_message = NULL WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// MarkFailed records a delivery failure with its error message.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	const q = `UPDATE email_logs SET status = 'failed', error_message = $1 WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, errMsg, id)
	return err
}

// ListByBrand returns email logs for a brand, newest first.
func (r *Repository) ListByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT id, brand_id, user_id, email_type, recipient_email, COALESCE(subject,''), status, sent_at, COALESCE(error_message,''), created_at
		FROM email_logs
		WHERE brand_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.BrandID, &el.UserID, &el.EmailType, &el.RecipientEmail, &el.Subject, &el.Status, &el.SentAt, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
