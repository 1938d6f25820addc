package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modavia/backend/internal/models"
)

// Repository handles notification persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a notification row (read = false).
func (r *Repository) Create(ctx context.Context, n *models.Notification) error {
	const q = `INSERT INTO notifications (user_id, type, icon, color, brand_id, brand_name, message)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), $7)
		RETURNING id, read, created_at`
	return r.pool.QueryRow(ctx, q, n.UserID, n.Type, n.Icon, n.Color, n.BrandID, n.BrandName, n.Message).
		Scan(&n.ID, &n.Read, &n.CreatedAt)
}

// ListByUser returns a user's notifications, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, user_id, type, icon, color, brand_id, COALESCE(brand_name,''), message, read, read_at, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Icon, &n.Color, &n.BrandID, &n.BrandName, &n.Message, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// UnreadCount returns the number of unread notifications for a user.
func (r *Repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	return count, err
}

// MarkRead sets the read flag for one notification owned by the user.
// Idempotent: re-marking a read notification leaves read_at unchanged.
func (r *Repository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	const q = `UPDATE notifications SET read = TRUE, read_at = NOW() WHERE id = $1 AND user_id = $2 AND NOT read`
	_, err := r.pool.Exec(ctx, q, id, userID)
	return err
}

// MarkAllRead sets the read flag on all of the user's unread notifications.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	const q = `UPDATE notifications SET read = TRUE, read_at = NOW() WHERE user_id = $1 AND NOT read`
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
