package sales

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/enums"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextSaleNumber assigns the next monotonic receipt number. Must run inside
// the checkout transaction so concurrent commits cannot observe the same max.
func (r *repository) NextSaleNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(MAX(sale_number), 0) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *repository) CreateSaleItems(ctx context.Context, items []models.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// DecrementStock subtracts qty guarded by the current level. Zero rows
// affected means the product is gone or understocked; callers decide what to
// do with that.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) FindSaleByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindSaleByNumber(ctx context.Context, number int64) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("sale_number = ?", number).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) ListSales(ctx context.Context, params pagination.Params, filters ListFilters) (*SaleList, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Items")
	qb = applyListFilters(qb, filters)

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Sale
	err = qb.Order("created_at DESC, id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &SaleList{
		Sales:      rows,
		NextCursor: nextCursor,
	}, nil
}

// ListSalesBetween returns every sale in the window ordered oldest first.
// Reporting and spreadsheet export scan whole days, so no cursor here.
func (r *repository) ListSalesBetween(ctx context.Context, filters RangeFilters) ([]models.Sale, error) {
	qb := r.db.WithContext(ctx).Model(&models.Sale{}).Preload("Items")
	if filters.From != nil {
		qb = qb.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		qb = qb.Where("created_at < ?", *filters.To)
	}

	var rows []models.Sale
	if err := qb.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateSaleStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func applyListFilters(qb *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.From != nil {
		qb = qb.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		qb = qb.Where("created_at < ?", *filters.To)
	}
	if filters.Status != "" {
		qb = qb.Where("status = ?", filters.Status)
	}
	if filters.AccountType != "" {
		qb = qb.Where("account_type = ?", filters.AccountType)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		qb = qb.Where("LOWER(customer_name) LIKE ? OR CAST(sale_number AS TEXT) LIKE ?", like, "%"+q+"%")
	}
	return qb
}
