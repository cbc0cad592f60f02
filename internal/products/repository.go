package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

// Repository defines persistence operations for the catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	CreateProducts(ctx context.Context, products []models.Product) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) CreateProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&products).Error
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Product{}).Error
}

// AdjustStock applies a signed delta guarded so stock never goes negative.
func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock + ? >= 0
	`, delta, id, delta)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Product{})
	qb = applyProductFilters(qb, filters)

	orderExpr, cursorless := sortExpression(filters)
	if cursorless {
		// Custom sorts page by offsetless limit only; the register UI loads
		// the whole catalog for those.
		qb = qb.Order(orderExpr).Limit(pagination.MaxLimit)
		var rows []models.Product
		if err := qb.Find(&rows).Error; err != nil {
			return nil, err
		}
		return &ProductList{Products: rows}, nil
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
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

	return &ProductList{
		Products:   rows,
		NextCursor: nextCursor,
	}, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func applyProductFilters(qb *gorm.DB, filters ListFilters) *gorm.DB {
	if !filters.IncludeHidden {
		qb = qb.Where("is_active = ?", true)
	}
	if filters.Category != "" {
		qb = qb.Where("category = ?", filters.Category)
	}
	switch filters.Stock {
	case StockFilterInStock:
		qb = qb.Where("stock > 0")
	case StockFilterOutOfStock:
		qb = qb.Where("stock <= 0")
	case StockFilterLowStock:
		qb = qb.Where("stock > 0 AND stock <= min_stock")
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		qb = qb.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ? OR LOWER(COALESCE(barcode, '')) LIKE ?", like, like, like)
	}
	return qb
}

func sortExpression(filters ListFilters) (string, bool) {
	dir := "ASC"
	if strings.EqualFold(filters.SortDir, "desc") {
		dir = "DESC"
	}
	switch strings.ToLower(filters.SortBy) {
	case "name":
		return "name " + dir, true
	case "price":
		return "price " + dir, true
	case "stock":
		return "stock " + dir, true
	case "category":
		return "category " + dir + ", name ASC", true
	default:
		return "", false
	}
}
