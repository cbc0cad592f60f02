package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
)

// Repository defines the read-only queries reporting runs over the store.
type Repository interface {
	SalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error)
	CountActiveProducts(ctx context.Context) (int64, error)
	CountLowStockProducts(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountActiveProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *repository) CountLowStockProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ? AND stock > 0 AND stock <= min_stock", true).
		Count(&count).Error
	return count, err
}
