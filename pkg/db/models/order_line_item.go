package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures the snapshot of each item within a vendor order.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	UnitPriceCents *int64     `gorm:"column:unit_price_cents"`
	Qty            int        `gorm:"column:qty;not null;default:1"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
