package models

import (
	"time"

	"github.com/google/uuid"
)

// PrintJob tracks the label/packaging print attached to an order.
type PrintJob struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	Status    string    `gorm:"column:status;type:text;not null;default:'queued'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
