package catalogs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modavia/backend/internal/models"
)

const catalogColumns = `id, code, COALESCE(name,''), brand_id, type, season, year,
	order_start, order_end, delivery_at, COALESCE(conditions,''), COALESCE(cover_key,''), status, created_at, updated_at`

// db is the subset of pgxpool.Pool the repository needs.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles catalog persistence.
type Repository struct {
	pool db
}

// NewRepository creates a catalog repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanCatalog(row pgx.Row, cat *models.Catalog) error {
	return row.Scan(&cat.ID, &cat.Code, &cat.Name, &cat.BrandID, &cat.Type, &cat.Season, &cat.Year,
		&cat.OrderStart, &cat.OrderEnd, &cat.DeliveryAt, &cat.Conditions, &cat.CoverKey, &cat.Status,
		&cat.CreatedAt, &cat.UpdatedAt)
}

// Create inserts a new catalog in draft status and assigns its code from
// the catalog_code_seq sequence (CATG + 9 zero-padded digits, immutable).
func (r *Repository) Create(ctx context.Context, cat *models.Catalog) error {
	const q = `INSERT INTO catalogs (code, name, brand_id, type, season, year, order_start, order_end, delivery_at, conditions)
		VALUES ('CATG' || lpad(nextval('catalog_code_seq')::text, 9, '0'), NULLIF($1,''), $2, $3, $4, $5, $6, $7, $8, NULLIF($9,''))
		RETURNING ` + catalogColumns
	return scanCatalog(r.pool.QueryRow(ctx, q, cat.Name, cat.BrandID, cat.Type, cat.Season, cat.Year,
		cat.OrderStart, cat.OrderEnd, cat.DeliveryAt, cat.Conditions), cat)
}

// GetByID returns a catalog by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Catalog, error) {
	const q = `SELECT ` + catalogColumns + ` FROM catalogs WHERE id = $1`
	var cat models.Catalog
	if err := scanCatalog(r.pool.QueryRow(ctx, q, id), &cat); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCatalogNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// GetDetail returns a catalog joined with its brand name.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.CatalogDetail, error) {
	const q = `SELECT c.id, c.code, COALESCE(c.name,''), c.brand_id, c.type, c.season, c.year,
		c.order_start, c.order_end, c.delivery_at, COALESCE(c.conditions,''), COALESCE(c.cover_key,''), c.status, c.created_at, c.updated_at,
		b.name
		FROM catalogs c JOIN brands b ON b.id = c.brand_id
		WHERE c.id = $1`
	var d models.CatalogDetail
	err := r.pool.QueryRow(ctx, q, id).Scan(&d.ID, &d.Code, &d.Name, &d.BrandID, &d.Type, &d.Season, &d.Year,
		&d.OrderStart, &d.OrderEnd, &d.DeliveryAt, &d.Conditions, &d.CoverKey, &d.Status,
		&d.CreatedAt, &d.UpdatedAt, &d.BrandName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCatalogNotFound
		}
		return nil, err
	}
	return &d, nil
}

// UpdateParams holds the mutable catalog fields for Update. Nil pointers
// leave the stored value untouched.
type UpdateParams struct {
	Name       *string
	Type       *string
	Season     *string
	Year       *int
	OrderStart *time.Time
	OrderEnd   *time.Time
	DeliveryAt *time.Time
	Conditions *string
}

// lockStatus reads the stored status under FOR UPDATE so a concurrent
// status change cannot interleave with this transaction.
func lockStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM catalogs WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrCatalogNotFound
	}
	return status, err
}

// Update modifies catalog fields. Any update against an archived catalog is
// rejected; the check and the write share one transaction.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Catalog, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status, err := lockStatus(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if status == models.CatalogStatusArchived {
		return nil, ErrCatalogArchived
	}

	const q = `UPDATE catalogs SET
		name = COALESCE($1, name),
		type = COALESCE($2, type),
		season = COALESCE($3, season),
		year = COALESCE($4, year),
		order_start = COALESCE($5, order_start),
		order_end = COALESCE($6, order_end),
		delivery_at = COALESCE($7, delivery_at),
		conditions = COALESCE($8, conditions),
		updated_at = NOW()
		WHERE id = $9
		RETURNING ` + catalogColumns
	var cat models.Catalog
	if err := scanCatalog(tx.QueryRow(ctx, q, p.Name, p.Type, p.Season, p.Year,
		p.OrderStart, p.OrderEnd, p.DeliveryAt, p.Conditions, id), &cat); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateStatus applies a status transition inside a single transaction:
// read current status under lock, validate against the transition table,
// write the new status. Returns the updated catalog and whether this write
// was the publication edge (stored != published, new == published).
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string) (*models.Catalog, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	current, err := lockStatus(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if err := ValidateTransition(current, newStatus); err != nil {
		return nil, false, err
	}

	const q = `UPDATE catalogs SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + catalogColumns
	var cat models.Catalog
	if err := scanCatalog(tx.QueryRow(ctx, q, newStatus, id), &cat); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return &cat, BecamePublished(current, newStatus), nil
}

// SetCoverKey stores the S3 object key of the catalog cover image.
func (r *Repository) SetCoverKey(ctx context.Context, id uuid.UUID, key string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	status, err := lockStatus(ctx, tx, id)
	if err != nil {
		return err
	}
	if status == models.CatalogStatusArchived {
		return ErrCatalogArchived
	}
	if _, err := tx.Exec(ctx, `UPDATE catalogs SET cover_key = $1, updated_at = NOW() WHERE id = $2`, key, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// List returns catalogs with optional brand and status filters. An unknown
// (nil) filter is omitted; a known filter becomes a parameterized predicate.
func (r *Repository) List(ctx context.Context, brandID *uuid.UUID, status *string) ([]models.CatalogDetail, error) {
	base := `SELECT c.id, c.code, COALESCE(c.name,''), c.brand_id, c.type, c.season, c.year,
		c.order_start, c.order_end, c.delivery_at, COALESCE(c.conditions,''), COALESCE(c.cover_key,''), c.status, c.created_at, c.updated_at,
		b.name
		FROM catalogs c JOIN brands b ON b.id = c.brand_id`
	var args []interface{}
	var cond string
	if brandID != nil {
		cond = " WHERE c.brand_id = $1"
		args = append(args, *brandID)
	}
	if status != nil {
		if cond == "" {
			cond = " WHERE c.status = $1"
		} else {
			cond += " AND c.status = $2"
		}
		args = append(args, *status)
	}
	rows, err := r.pool.Query(ctx, base+cond+" ORDER BY c.created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// ListPublishedForUser returns published catalogs of brands linked to the
// user's active client accounts. This is the client-facing listing.
func (r *Repository) ListPublishedForUser(ctx context.Context, userID uuid.UUID) ([]models.CatalogDetail, error) {
	const q = `SELECT c.id, c.code, COALESCE(c.name,''), c.brand_id, c.type, c.season, c.year,
		c.order_start, c.order_end, c.delivery_at, COALESCE(c.conditions,''), COALESCE(c.cover_key,''), c.status, c.created_at, c.updated_at,
		b.name
		FROM catalogs c
		JOIN brands b ON b.id = c.brand_id
		JOIN client_brands cb ON cb.brand_id = c.brand_id
		JOIN clients cl ON cl.id = cb.client_id
		WHERE c.status = $1 AND cl.user_id = $2 AND cl.status = $3
		ORDER BY c.created_at DESC`
	rows, err := r.pool.Query(ctx, q, models.CatalogStatusPublished, userID, models.ClientStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

func scanDetails(rows pgx.Rows) ([]models.CatalogDetail, error) {
	var list []models.CatalogDetail
	for rows.Next() {
		var d models.CatalogDetail
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.BrandID, &d.Type, &d.Season, &d.Year,
			&d.OrderStart, &d.OrderEnd, &d.DeliveryAt, &d.Conditions, &d.CoverKey, &d.Status,
			&d.CreatedAt, &d.UpdatedAt, &d.BrandName); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
