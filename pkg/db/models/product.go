package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultMinStock is the low-stock threshold applied when a product is
// created without one.
const DefaultMinStock = 5

// Product represents a catalog entry on the register. Stock is mutated only
// by cash checkouts and explicit adjustments.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Description *string          `gorm:"column:description"`
	Category    string           `gorm:"column:category;not null;default:'General'"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Cost        *decimal.Decimal `gorm:"column:cost;type:numeric(10,2)"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	MinStock    int              `gorm:"column:min_stock;not null;default:5"`
	SKU         *string          `gorm:"column:sku"`
	Barcode     *string          `gorm:"column:barcode"`
	// No struct-tag default: gorm would skip the zero value on insert and an
	// inactive product could never be created. The column default lives in SQL.
	IsActive    bool             `gorm:"column:is_active;not null"`
	CreatedBy   *uuid.UUID       `gorm:"column:created_by;type:uuid"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the identifier client-side so the model works on both
// Postgres and SQLite backends.
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the product sits at or below its reorder
// threshold while still having units on hand.
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.MinStock
}
