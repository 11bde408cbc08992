package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-ops/pkg/db/models"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Repository reads tenant stores.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store lookups.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// ListDigestVendors returns vendor stores with an active subscription or any activity since the cutoff,
// ordered by id so digest runs visit stores in a stable order.
func (r *Repository) ListDigestVendors(ctx context.Context, activeSince time.Time) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("type = ?", enums.StoreTypeVendor).
		Where("subscription_active = ? OR last_active_at >= ?", true, activeSince).
		Order("id ASC").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("list digest vendors: %w", err)
	}
	return stores, nil
}
