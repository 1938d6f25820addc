package catalogs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modavia/backend/internal/models"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"draft to published", models.CatalogStatusDraft, models.CatalogStatusPublished, nil},
		{"draft to archived", models.CatalogStatusDraft, models.CatalogStatusArchived, nil},
		{"published to archived", models.CatalogStatusPublished, models.CatalogStatusArchived, nil},
		{"published back to draft", models.CatalogStatusPublished, models.CatalogStatusDraft, &InvalidTransitionError{}},
		{"draft to draft", models.CatalogStatusDraft, models.CatalogStatusDraft, &InvalidTransitionError{}},
		{"published to published", models.CatalogStatusPublished, models.CatalogStatusPublished, &InvalidTransitionError{}},
		{"archived to archived", models.CatalogStatusArchived, models.CatalogStatusArchived, ErrCatalogArchived},
		{"archived to draft", models.CatalogStatusArchived, models.CatalogStatusDraft, ErrCatalogArchived},
		{"archived to published", models.CatalogStatusArchived, models.CatalogStatusPublished, ErrCatalogArchived},
		{"unknown source status", "deleted", models.CatalogStatusPublished, ErrUnknownStatus},
		{"unknown target status", models.CatalogStatusDraft, "live", ErrUnknownStatus},
		{"empty target", models.CatalogStatusDraft, "", ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			switch want := tt.wantErr.(type) {
			case nil:
				assert.NoError(t, err)
			case *InvalidTransitionError:
				var invalid *InvalidTransitionError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tt.from, invalid.From)
				assert.Equal(t, tt.to, invalid.To)
			default:
				assert.True(t, errors.Is(err, want), "got %v, want %v", err, want)
			}
		})
	}
}

func TestValidateTransitionUnknownTargetOnArchived(t *testing.T) {
	// A bad target value reports the unknown status even when the catalog
	// is archived, so callers see the more specific error.
	err := ValidateTransition(models.CatalogStatusArchived, "live")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestBecamePublished(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"draft to published fires", models.CatalogStatusDraft, models.CatalogStatusPublished, true},
		{"published to published does not fire", models.CatalogStatusPublished, models.CatalogStatusPublished, false},
		{"draft to archived does not fire", models.CatalogStatusDraft, models.CatalogStatusArchived, false},
		{"published to archived does not fire", models.CatalogStatusPublished, models.CatalogStatusArchived, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BecamePublished(tt.from, tt.to))
		})
	}
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{From: models.CatalogStatusPublished, To: models.CatalogStatusDraft}
	assert.Equal(t, "invalid catalog status transition: pubblicato -> bozza", err.Error())
}
