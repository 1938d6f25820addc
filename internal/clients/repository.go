package clients

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modavia/backend/internal/models"
)

// ErrClientNotFound is returned when a referenced client does not exist.
var ErrClientNotFound = errors.New("client not found")

const clientColumns = `id, user_id, company_name, COALESCE(vat_number,''), COALESCE(address,''), COALESCE(city,''), COALESCE(country,''), status, created_at, updated_at`

// Repository handles client and client-brand association persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a clients repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanClient(row pgx.Row, cl *models.Client) error {
	return row.Scan(&cl.ID, &cl.UserID, &cl.CompanyName, &cl.VATNumber, &cl.Address, &cl.City, &cl.Country, &cl.Status, &cl.CreatedAt, &cl.UpdatedAt)
}

// Create inserts a client in pending_activation status.
func (r *Repository) Create(ctx context.Context, cl *models.Client) error {
	const q = `INSERT INTO clients (user_id, company_name, vat_number, address, city, country)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''))
		RETURNING ` + clientColumns
	return scanClient(r.pool.QueryRow(ctx, q, cl.UserID, cl.CompanyName, cl.VATNumber, cl.Address, cl.City, cl.Country), cl)
}

// GetByID returns a client by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	var cl models.Client
	if err := scanClient(r.pool.QueryRow(ctx, q, id), &cl); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &cl, nil
}

// ListByUser returns the clients owned by a user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

// List returns clients with an optional status filter.
func (r *Repository) List(ctx context.Context, status *string) ([]models.Client, error) {
	base := `SELECT ` + clientColumns + ` FROM clients`
	var args []interface{}
	var cond string
	if status != nil {
		cond = " WHERE status = $1"
		args = append(args, *status)
	}
	rows, err := r.pool.Query(ctx, base+cond+" ORDER BY company_name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

func scanClients(rows pgx.Rows) ([]models.Client, error) {
	var list []models.Client
	for rows.Next() {
		var cl models.Client
		if err := scanClient(rows, &cl); err != nil {
			return nil, err
		}
		list = append(list, cl)
	}
	return list, rows.Err()
}

// SetStatus moves a client through its lifecycle
// (pending_activation / active / inactive / deleted).
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	const q = `UPDATE clients SET status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// AddBrand links a client to a brand, authorizing it to view and order
// that brand's catalogs. Idempotent.
func (r *Repository) AddBrand(ctx context.Context, clientID, brandID uuid.UUID) error {
	const q = `INSERT INTO client_brands (client_id, brand_id) VALUES ($1, $2)
		ON CONFLICT (client_id, brand_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, clientID, brandID)
	return err
}

// RemoveBrand removes a client-brand association.
func (r *Repository) RemoveBrand(ctx context.Context, clientID, brandID uuid.UUID) error {
	const q = `DELETE FROM client_brands WHERE client_id = $1 AND brand_id = $2`
	_, err := r.pool.Exec(ctx, q, clientID, brandID)
	return err
}

// ListBrands returns the brands linked to a client.
func (r *Repository) ListBrands(ctx context.Context, clientID uuid.UUID) ([]models.Brand, error) {
	const q = `SELECT b.id, b.name, COALESCE(b.description,''), COALESCE(b.logo_key,''), b.created_at, b.updated_at
		FROM client_brands cb JOIN brands b ON b.id = cb.brand_id
		WHERE cb.client_id = $1 ORDER BY b.name`
	rows, err := r.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.LogoKey, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
