package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/enums"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

// Repository defines persistence operations for sales and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextSaleNumber(ctx context.Context) (int64, error)
	CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	CreateSaleItems(ctx context.Context, items []models.SaleItem) error
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
	FindSaleByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	FindSaleByNumber(ctx context.Context, number int64) (*models.Sale, error)
	ListSales(ctx context.Context, params pagination.Params, filters ListFilters) (*SaleList, error)
	ListSalesBetween(ctx context.Context, filters RangeFilters) ([]models.Sale, error)
	UpdateSaleStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error
}
