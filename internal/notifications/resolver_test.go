package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recipientQuery pins the entitlement predicate: only clients linked to
// the brand, in active status, with an active owning user.
const recipientQuery = `SELECT DISTINCT ON \(u\.id\) .+ WHERE cb\.brand_id = \$1 AND cl\.status = 'active' AND u\.active`

func newMockResolver(t *testing.T) (*Resolver, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Resolver{pool: mock}, mock
}

func TestActiveClientsForBrand(t *testing.T) {
	resolver, mock := newMockResolver(t)
	brandID := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	clientA, clientB := uuid.New(), uuid.New()

	mock.ExpectQuery(recipientQuery).WithArgs(brandID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "client_id", "company_name"}).
			AddRow(userA, "ada@rossi.example", "Ada", "Rossi", clientA, "Rossi Retail").
			AddRow(userB, "bo@verdi.example", "Bo", "Verdi", clientB, "Verdi Moda"))

	recipients, err := resolver.ActiveClientsForBrand(context.Background(), brandID)

	require.NoError(t, err)
	require.Len(t, recipients, 2)
	assert.Equal(t, userA, recipients[0].UserID)
	assert.Equal(t, "ada@rossi.example", recipients[0].Email)
	assert.Equal(t, clientA, recipients[0].ClientID)
	assert.Equal(t, "Rossi Retail", recipients[0].CompanyName)
	assert.Equal(t, userB, recipients[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveClientsForBrandEmpty(t *testing.T) {
	resolver, mock := newMockResolver(t)
	brandID := uuid.New()

	mock.ExpectQuery(recipientQuery).WithArgs(brandID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "client_id", "company_name"}))

	recipients, err := resolver.ActiveClientsForBrand(context.Background(), brandID)

	require.NoError(t, err)
	assert.Empty(t, recipients)
	assert.NoError(t, mock.ExpectationsWereMet())
}
