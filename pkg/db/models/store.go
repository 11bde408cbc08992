package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Store is the tenant row the digest iterates over.
type Store struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type               enums.StoreType `gorm:"column:type;type:store_type;not null"`
	CompanyName        string          `gorm:"column:company_name;not null"`
	SubscriptionActive bool            `gorm:"column:subscription_active;not null;default:false"`
	LastActiveAt       *time.Time      `gorm:"column:last_active_at"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
