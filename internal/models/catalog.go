package models

import (
	"time"

	"github.com/google/uuid"
)

// Catalog status values as stored (legacy Italian enum).
const (
	CatalogStatusDraft     = "bozza"
	CatalogStatusPublished = "pubblicato"
	CatalogStatusArchived  = "archiviato"
)

// Catalog type values.
const (
	CatalogTypePreorder   = "Preordine"
	CatalogTypeAvailable  = "Disponibile"
	CatalogTypeRestock    = "Riassortimento"
	CatalogTypeStock      = "Stock"
	CatalogTypeRemainders = "Rimanenze"
)

// Catalog season values. PRE variants precede the main season drop.
const (
	SeasonPreFallWinter    = "PRE FALL-WINTER"
	SeasonPreSpringSummer  = "PRE SPRING-SUMMER"
	SeasonMainFallWinter   = "MAIN FALL-WINTER"
	SeasonMainSpringSummer = "MAIN SPRING-SUMMER"
	SeasonOther            = "OTHER"
)

// Catalog is a seasonal product listing published by a brand to its
// authorized clients. Code is assigned at insert and immutable; once the
// status reaches archived no field may change.
type Catalog struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"` // CATG + 9 zero-padded digits
	Name        string     `json:"name,omitempty"`
	BrandID     uuid.UUID  `json:"brand_id"`
	Type        string     `json:"type"`
	Season      string     `json:"season"`
	Year        int        `json:"year"`
	OrderStart  *time.Time `json:"order_start,omitempty"`
	OrderEnd    *time.Time `json:"order_end,omitempty"`
	DeliveryAt  *time.Time `json:"delivery_at,omitempty"`
	Conditions  string     `json:"conditions,omitempty"`
	CoverKey    string     `json:"cover_key,omitempty"` // S3 object key
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CatalogDetail is a catalog joined with its brand name, as needed by the
// publication fan-out and client-facing listings.
type CatalogDetail struct {
	Catalog
	BrandName string `json:"brand_name"`
}
