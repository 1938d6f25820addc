package models

import (
	"time"

	"github.com/google/uuid"
)

// Client status values.
const (
	ClientStatusPending  = "pending_activation"
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusDeleted  = "deleted"
)

// Client is a business account representing a wholesale buyer, owned by
// exactly one user. A client only counts as active for notification
// purposes when its status is active AND its owning user is active.
type Client struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
	VATNumber   string    `json:"vat_number,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientBrand links a client to a brand it is authorized to buy from.
type ClientBrand struct {
	ClientID uuid.UUID `json:"client_id"`
	BrandID  uuid.UUID `json:"brand_id"`
	AddedAt  time.Time `json:"added_at"`
}
