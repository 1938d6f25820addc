package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recipient is one client account entitled to publication notifications.
type Recipient struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	ClientID    uuid.UUID `json:"client_id"`
	CompanyName string    `json:"company_name"`
}

// querier is the subset of pgxpool.Pool the resolver needs.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Resolver determines which client accounts are notified when a brand
// publishes a catalog.
type Resolver struct {
	pool querier
}

// NewResolver creates a recipient resolver.
func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{pool: pool}
}

// ActiveClientsForBrand returns the active, brand-linked clients whose
// owning user is active, distinct by user. An empty result is not an
// error: the caller treats it as nothing to notify.
func (r *Resolver) ActiveClientsForBrand(ctx context.Context, brandID uuid.UUID) ([]Recipient, error) {
	const q = `SELECT DISTINCT ON (u.id) u.id, u.email, u.first_name, u.last_name, cl.id, cl.company_name
		FROM client_brands cb
		JOIN clients cl ON cl.id = cb.client_id
		JOIN users u ON u.id = cl.user_id
		WHERE cb.brand_id = $1 AND cl.status = 'active' AND u.active
		ORDER BY u.id, cl.created_at`
	rows, err := r.pool.Query(ctx, q, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Recipient
	for rows.Next() {
		var rec Recipient
		if err := rows.Scan(&rec.UserID, &rec.Email, &rec.FirstName, &rec.LastName, &rec.ClientID, &rec.CompanyName); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
