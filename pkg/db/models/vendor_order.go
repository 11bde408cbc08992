package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorOrder is the per-vendor order as mirrored from the order-management system.
// Status and amounts are stored as received; the analytics normalizer owns their interpretation.
type VendorOrder struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerStoreID  uuid.UUID       `gorm:"column:buyer_store_id;type:uuid;not null"`
	VendorStoreID uuid.UUID       `gorm:"column:vendor_store_id;type:uuid;not null"`
	OrderNumber   int64           `gorm:"column:order_number;not null"`
	Status        string          `gorm:"column:status;type:text;not null"`
	TotalCents    *int64          `gorm:"column:total_cents"`
	PlacedAt      *time.Time      `gorm:"column:placed_at"`
	Items         []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaymentIntent *PaymentIntent  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PrintJob      *PrintJob       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipment      *Shipment       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
