package models

import (
	"time"

	"github.com/google/uuid"
)

// Reconciliation is a settlement line matching a payout to an order.
type Reconciliation struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	VendorStoreID uuid.UUID  `gorm:"column:vendor_store_id;type:uuid;not null"`
	Status        string     `gorm:"column:status;type:text;not null;default:'pending'"`
	AmountCents   *int64     `gorm:"column:amount_cents"`
	OrderedAt     *time.Time `gorm:"column:ordered_at"`
	ReconciledAt  *time.Time `gorm:"column:reconciled_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
