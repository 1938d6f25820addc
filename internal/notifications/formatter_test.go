package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modavia/backend/internal/models"
)

func TestPublicationMessage(t *testing.T) {
	tests := []struct {
		name        string
		brand       string
		catalogType string
		season      string
		year        int
		want        string
	}{
		{
			name:        "preorder pre fall-winter",
			brand:       "Acme",
			catalogType: models.CatalogTypePreorder,
			season:      models.SeasonPreFallWinter,
			year:        2025,
			want:        "Acme PRE FW25 Preorders Open Now!",
		},
		{
			name:        "preorder main fall-winter",
			brand:       "Acme",
			catalogType: models.CatalogTypePreorder,
			season:      models.SeasonMainFallWinter,
			year:        2024,
			want:        "Acme FW24 Preorders Open Now!",
		},
		{
			name:        "preorder pre spring-summer",
			brand:       "Maison Rive",
			catalogType: models.CatalogTypePreorder,
			season:      models.SeasonPreSpringSummer,
			year:        2026,
			want:        "Maison Rive PRE SS26 Preorders Open Now!",
		},
		{
			name:        "preorder other season has no code",
			brand:       "Acme",
			catalogType: models.CatalogTypePreorder,
			season:      models.SeasonOther,
			year:        2025,
			want:        "Acme 25 Preorders Open Now!",
		},
		{
			name:        "available",
			brand:       "Acme",
			catalogType: models.CatalogTypeAvailable,
			season:      models.SeasonMainSpringSummer,
			year:        2025,
			want:        "New List Acme Available Now!",
		},
		{
			name:        "restock names the type",
			brand:       "Acme",
			catalogType: models.CatalogTypeRestock,
			season:      models.SeasonOther,
			year:        2025,
			want:        "New List Acme Riassortimento Available Now!",
		},
		{
			name:        "stock names the type",
			brand:       "Acme",
			catalogType: models.CatalogTypeStock,
			season:      models.SeasonOther,
			year:        2025,
			want:        "New List Acme Stock Available Now!",
		},
		{
			name:        "year folds to two digits",
			brand:       "Acme",
			catalogType: models.CatalogTypePreorder,
			season:      models.SeasonMainFallWinter,
			year:        2107,
			want:        "Acme FW07 Preorders Open Now!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicationMessage(tt.brand, tt.catalogType, tt.season, tt.year)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSubjectAndBodyShareOneSource(t *testing.T) {
	d := &models.CatalogDetail{
		Catalog: models.Catalog{
			Type:   models.CatalogTypePreorder,
			Season: models.SeasonPreFallWinter,
			Year:   2025,
		},
		BrandName: "Acme",
	}
	assert.Equal(t, FormatSubject(d), FormatBody(d))
	assert.Equal(t, "Acme PRE FW25 Preorders Open Now!", FormatSubject(d))
}
