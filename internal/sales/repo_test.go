package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/enums"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

func setupSalesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL DEFAULT 'General',
  price NUMERIC NOT NULL,
  cost NUMERIC,
  stock INTEGER NOT NULL DEFAULT 0,
  min_stock INTEGER NOT NULL DEFAULT 5,
  sku TEXT,
  barcode TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	sales := `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  sale_number INTEGER NOT NULL UNIQUE,
  customer_name TEXT NOT NULL DEFAULT 'Cliente ocasional',
  phone TEXT,
  address TEXT,
  account_type TEXT NOT NULL,
  product_state TEXT,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  subtotal NUMERIC NOT NULL,
  total_amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	saleItems := `
CREATE TABLE IF NOT EXISTS sale_items (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(sales).Error)
	require.NoError(t, db.Exec(saleItems).Error)
	return db
}

func createTestSale(t *testing.T, db *gorm.DB, number int64, created time.Time, customer string, accountType enums.AccountType, status enums.SaleStatus) *models.Sale {
	t.Helper()

	sale := &models.Sale{
		SaleNumber:    number,
		CustomerName:  customer,
		AccountType:   accountType,
		DeliveryFee:   decimal.Zero,
		Subtotal:      decimal.RequireFromString("10.00"),
		TotalAmount:   decimal.RequireFromString("10.00"),
		PaymentMethod: enums.PaymentMethodCash,
		Status:        status,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Omit("Items").Create(sale).Error)

	item := &models.SaleItem{
		SaleID:      sale.ID,
		ProductName: "Empanada",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("5.00"),
		Subtotal:    decimal.RequireFromString("10.00"),
		CreatedAt:   created,
	}
	require.NoError(t, db.Create(item).Error)
	return sale
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString("5.00"),
		Stock:    stock,
		MinStock: models.DefaultMinStock,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryNextSaleNumber(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	first, err := repo.NextSaleNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	now := time.Now().UTC()
	createTestSale(t, db, 7, now, models.OccasionalCustomer, enums.AccountTypeCash, enums.SaleStatusCompleted)

	next, err := repo.NextSaleNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), next)
}

func TestRepositoryFindSalePreloadsItems(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	created := createTestSale(t, db, 1, now, "María", enums.AccountTypeCredit, enums.SaleStatusPending)

	byID, err := repo.FindSaleByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, byID.Items, 1)
	assert.Equal(t, "Empanada", byID.Items[0].ProductName)
	assert.Equal(t, "María", byID.CustomerName)

	byNumber, err := repo.FindSaleByNumber(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)
	require.Len(t, byNumber.Items, 1)
}

func TestRepositoryDecrementStockGuarded(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	product := createTestProduct(t, db, "Empanada", 3)

	affected, err := repo.DecrementStock(context.Background(), product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var stock int
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Select("stock").Scan(&stock).Error)
	assert.Equal(t, 1, stock)

	affected, err = repo.DecrementStock(context.Background(), product.ID, 5)
	require.NoError(t, err)
	assert.Zero(t, affected)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Select("stock").Scan(&stock).Error)
	assert.Equal(t, 1, stock)
}

func TestRepositoryListSales_pagination(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createTestSale(t, db, 1, now.Add(-time.Hour), models.OccasionalCustomer, enums.AccountTypeCash, enums.SaleStatusCompleted)
	createTestSale(t, db, 2, now, "Pedro", enums.AccountTypeCredit, enums.SaleStatusPending)

	list, err := repo.ListSales(context.Background(), pagination.Params{Limit: 1}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, list.Sales, 1)
	assert.Equal(t, int64(2), list.Sales[0].SaleNumber)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListSales(context.Background(), pagination.Params{Limit: 1, Cursor: list.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Sales, 1)
	assert.Equal(t, int64(1), second.Sales[0].SaleNumber)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListSales_filtersAndSearch(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createTestSale(t, db, 1, now.Add(-48*time.Hour), "Pedro", enums.AccountTypeCash, enums.SaleStatusCompleted)
	createTestSale(t, db, 2, now, "María López", enums.AccountTypeCredit, enums.SaleStatusPending)

	from := now.Add(-time.Hour)
	list, err := repo.ListSales(context.Background(), pagination.Params{Limit: 10}, ListFilters{From: &from})
	require.NoError(t, err)
	require.Len(t, list.Sales, 1)
	assert.Equal(t, int64(2), list.Sales[0].SaleNumber)

	list, err = repo.ListSales(context.Background(), pagination.Params{Limit: 10}, ListFilters{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, list.Sales, 1)
	assert.Equal(t, enums.SaleStatusPending, list.Sales[0].Status)

	list, err = repo.ListSales(context.Background(), pagination.Params{Limit: 10}, ListFilters{Query: "maría"})
	require.NoError(t, err)
	require.Len(t, list.Sales, 1)
	assert.Equal(t, "María López", list.Sales[0].CustomerName)

	list, err = repo.ListSales(context.Background(), pagination.Params{Limit: 10}, ListFilters{AccountType: "cash"})
	require.NoError(t, err)
	require.Len(t, list.Sales, 1)
	assert.Equal(t, int64(1), list.Sales[0].SaleNumber)
}

func TestRepositoryListSalesBetween(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createTestSale(t, db, 1, now.Add(-48*time.Hour), models.OccasionalCustomer, enums.AccountTypeCash, enums.SaleStatusCompleted)
	createTestSale(t, db, 2, now.Add(-time.Minute), models.OccasionalCustomer, enums.AccountTypeCash, enums.SaleStatusCompleted)
	createTestSale(t, db, 3, now, models.OccasionalCustomer, enums.AccountTypeCash, enums.SaleStatusCompleted)

	from := now.Add(-time.Hour)
	rows, err := repo.ListSalesBetween(context.Background(), RangeFilters{From: &from})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].SaleNumber)
	assert.Equal(t, int64(3), rows[1].SaleNumber)
	require.Len(t, rows[0].Items, 1)
}

func TestRepositoryUpdateSaleStatus(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	sale := createTestSale(t, db, 1, now, models.OccasionalCustomer, enums.AccountTypeCredit, enums.SaleStatusPending)

	require.NoError(t, repo.UpdateSaleStatus(context.Background(), sale.ID, enums.SaleStatusCompleted))

	reloaded, err := repo.FindSaleByID(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusCompleted, reloaded.Status)
}
