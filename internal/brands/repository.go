package brands

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modavia/backend/internal/models"
)

// ErrBrandNotFound is returned when a referenced brand does not exist.
var ErrBrandNotFound = errors.New("brand not found")

// NormalizeName returns the canonical stored form of a brand name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Repository handles brand persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a brand repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new brand with a normalized, unique name.
func (r *Repository) Create(ctx context.Context, b *models.Brand) error {
	const q = `INSERT INTO brands (name, description)
		VALUES ($1, NULLIF($2,''))
		RETURNING id, created_at, updated_at`
	b.Name = NormalizeName(b.Name)
	return r.pool.QueryRow(ctx, q, b.Name, b.Description).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns a brand by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	const q = `SELECT id, name, COALESCE(description,''), COALESCE(logo_key,''), created_at, updated_at
		FROM brands WHERE id = $1`
	var b models.Brand
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.Name, &b.Description, &b.LogoKey, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns all brands ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Brand, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description,''), COALESCE(logo_key,''), created_at, updated_at
		FROM brands ORDER BY name`)
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

// Update modifies brand description (name is immutable once assigned).
func (r *Repository) Update(ctx context.Context, id uuid.UUID, description string) error {
	const q = `UPDATE brands SET description = NULLIF($1,''), updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, description, id)
	return err
}

// SetLogoKey stores the S3 object key of the brand logo.
func (r *Repository) SetLogoKey(ctx context.Context, id uuid.UUID, key string) error {
	const q = `UPDATE brands SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, key, id)
	return err
}
