package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentIntent is the payment reference attached to a vendor order.
type PaymentIntent struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	Method      string     `gorm:"column:method;type:text;not null;default:''"`
	Status      string     `gorm:"column:status;type:text;not null;default:'unpaid'"`
	AmountCents *int64     `gorm:"column:amount_cents"`
	PaidAt      *time.Time `gorm:"column:paid_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
