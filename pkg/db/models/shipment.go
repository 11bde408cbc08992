package models

import (
	"time"

	"github.com/google/uuid"
)

// Shipment records a dispatch for an order. OrderedAt is snapshotted from the order at dispatch time.
type Shipment struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	VendorStoreID uuid.UUID  `gorm:"column:vendor_store_id;type:uuid;not null"`
	Method        *string    `gorm:"column:method"`
	TrackingID    *string    `gorm:"column:tracking_id"`
	OrderedAt     *time.Time `gorm:"column:ordered_at"`
	ShippedAt     *time.Time `gorm:"column:shipped_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
