package notifications

import (
	"fmt"
	"strings"

	"github.com/modavia/backend/internal/models"
)

// PublicationMessage derives the announcement text for a catalog that just
// went published. The same text serves as email subject and in-app
// notification message.
//
// Preorder catalogs get a season-coded line ("Acme PRE FW25 Preorders Open
// Now!"): FW for fall-winter seasons, SS for spring-summer, a PRE prefix
// for pre-season drops, and the last two digits of the year. Available
// catalogs get a plain "New List" line; any other type is named verbatim.
func PublicationMessage(brandName, catalogType, season string, year int) string {
	switch catalogType {
	case models.CatalogTypePreorder:
		seasonCode := ""
		if strings.Contains(season, "FALL-WINTER") {
			seasonCode = "FW"
		} else if strings.Contains(season, "SPRING-SUMMER") {
			seasonCode = "SS"
		}
		prePrefix := ""
		if strings.Contains(season, "PRE") {
			prePrefix = "PRE "
		}
		yearSuffix := fmt.Sprintf("%02d", year%100)
		return fmt.Sprintf("%s %s%s%s Preorders Open Now!", brandName, prePrefix, seasonCode, yearSuffix)
	case models.CatalogTypeAvailable:
		return fmt.Sprintf("New List %s Available Now!", brandName)
	default:
		return fmt.Sprintf("New List %s %s Available Now!", brandName, catalogType)
	}
}

// FormatSubject returns the email subject line for a published catalog.
func FormatSubject(d *models.CatalogDetail) string {
	return PublicationMessage(d.BrandName, d.Type, d.Season, d.Year)
}

// FormatBody returns the in-app notification message for a published
// catalog. Identical to the subject by design: the two share one source of
// truth.
func FormatBody(d *models.CatalogDetail) string {
	return PublicationMessage(d.BrandName, d.Type, d.Season, d.Year)
}
