package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a vendor entity owning catalogs. Clients gain visibility into
// a brand's catalogs via an explicit association (ClientBrand).
type Brand struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"` // unique, stored normalized (upper-cased, trimmed)
	Description string    `json:"description,omitempty"`
	LogoKey     string    `json:"logo_key,omitempty"` // S3 object key
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
