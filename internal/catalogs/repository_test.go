package catalogs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modavia/backend/internal/models"
)

const lockQuery = `SELECT status FROM catalogs WHERE id = \$1 FOR UPDATE`

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Repository{pool: mock}, mock
}

func TestUpdateRejectsArchivedCatalog(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.CatalogStatusArchived))
	mock.ExpectRollback()

	name := "FW26 Preorder"
	cat, err := repo.Update(context.Background(), id, UpdateParams{Name: &name})

	assert.ErrorIs(t, err, ErrCatalogArchived)
	assert.Nil(t, cat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCoverKeyRejectsArchivedCatalog(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.CatalogStatusArchived))
	mock.ExpectRollback()

	err := repo.SetCoverKey(context.Background(), id, "covers/x/cover.jpg")

	assert.ErrorIs(t, err, ErrCatalogArchived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingCatalog(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs(id).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	name := "FW26 Preorder"
	_, err := repo.Update(context.Background(), id, UpdateParams{Name: &name})

	assert.ErrorIs(t, err, ErrCatalogNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusPublicationEdge(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	brandID := uuid.New()
	now := time.Now()
	start := now.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.CatalogStatusDraft))
	mock.ExpectQuery(`UPDATE catalogs SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 RETURNING`).
		WithArgs(models.CatalogStatusPublished, id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "code", "name", "brand_id", "type", "season", "year",
			"order_start", "order_end", "delivery_at", "conditions", "cover_key", "status", "created_at", "updated_at",
		}).AddRow(
			id, "CATG000000042", "FW25 Preorder", brandID, models.CatalogTypePreorder, models.SeasonPreFallWinter, 2025,
			&start, &start, &start, "", "", models.CatalogStatusPublished, now, now,
		))
	mock.ExpectCommit()

	cat, becamePublished, err := repo.UpdateStatus(context.Background(), id, models.CatalogStatusPublished)

	require.NoError(t, err)
	assert.True(t, becamePublished)
	assert.Equal(t, models.CatalogStatusPublished, cat.Status)
	assert.Equal(t, "CATG000000042", cat.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.CatalogStatusPublished))
	mock.ExpectRollback()

	_, becamePublished, err := repo.UpdateStatus(context.Background(), id, models.CatalogStatusDraft)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.CatalogStatusPublished, invalid.From)
	assert.Equal(t, models.CatalogStatusDraft, invalid.To)
	assert.False(t, becamePublished)
	assert.NoError(t, mock.ExpectationsWereMet())
}
