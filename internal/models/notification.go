package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification type tags.
const (
	NotificationTypeCatalogAdded   = "catalog_added"
	NotificationTypeBrandActivated = "brand_activated"
)

// Notification is an in-app notification created only by server-side
// workflows; end users may only mark it read.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Icon      string     `json:"icon"`
	Color     string     `json:"color"`
	BrandID   *uuid.UUID `json:"brand_id,omitempty"`
	BrandName string     `json:"brand_name,omitempty"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
