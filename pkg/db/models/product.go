package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog listing a vendor publishes.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID    uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	SKU        string    `gorm:"column:sku;not null"`
	Title      string    `gorm:"column:title;not null"`
	Status     string    `gorm:"column:status;type:text;not null;default:'draft'"`
	PriceCents *int64    `gorm:"column:price_cents"`
	Channel    *string   `gorm:"column:channel"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
