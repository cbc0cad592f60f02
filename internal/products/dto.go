package products

import (
	"github.com/shopspring/decimal"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
)

// CreateProductInput captures a new catalog entry.
type CreateProductInput struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	Stock       int              `json:"stock"`
	MinStock    *int             `json:"min_stock"`
	SKU         *string          `json:"sku"`
	Barcode     *string          `json:"barcode"`
}

// UpdateProductInput carries a partial catalog update. Nil fields are left
// untouched.
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	Stock       *int             `json:"stock"`
	MinStock    *int             `json:"min_stock"`
	SKU         *string          `json:"sku"`
	Barcode     *string          `json:"barcode"`
}

// Stock filter values for the browse endpoint.
const (
	StockFilterInStock    = "in_stock"
	StockFilterOutOfStock = "out_of_stock"
	StockFilterLowStock   = "low_stock"
)

// ListFilters describe the supported filter knobs for the catalog endpoint.
type ListFilters struct {
	Query         string
	Category      string
	Stock         string
	IncludeHidden bool
	SortBy        string
	SortDir       string
}

// ProductList is one page of products plus the cursor for the next one.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ImportRowError reports one rejected spreadsheet row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// StockAdjustment moves a product's stock by a signed delta.
type StockAdjustment struct {
	Delta int `json:"delta"`
}
