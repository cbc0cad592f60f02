package products

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

type stubProductsRepo struct {
	products     map[uuid.UUID]*models.Product
	created      []*models.Product
	batchCreated []models.Product
	updates      map[string]any
	adjustResult int64
	createErr    error
}

func newStubProductsRepo() *stubProductsRepo {
	return &stubProductsRepo{
		products:     map[uuid.UUID]*models.Product{},
		adjustResult: 1,
	}
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubProductsRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	s.created = append(s.created, product)
	return product, nil
}

func (s *stubProductsRepo) CreateProducts(ctx context.Context, products []models.Product) error {
	s.batchCreated = append(s.batchCreated, products...)
	return nil
}

func (s *stubProductsRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubProductsRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	product, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		product.Name = name
	}
	if price, ok := updates["price"].(decimal.Decimal); ok {
		product.Price = price
	}
	if active, ok := updates["is_active"].(bool); ok {
		product.IsActive = active
	}
	if stock, ok := updates["stock"].(int); ok {
		product.Stock = stock
	}
	return nil
}

func (s *stubProductsRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	delete(s.products, id)
	return nil
}

func (s *stubProductsRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	if s.adjustResult == 1 {
		if product, ok := s.products[id]; ok {
			product.Stock += delta
		}
	}
	return s.adjustResult, nil
}

func (s *stubProductsRepo) ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	return &ProductList{}, nil
}

func (s *stubProductsRepo) ListCategories(ctx context.Context) ([]string, error) {
	return []string{"General"}, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCreateProductDefaults(t *testing.T) {
	repo := newStubProductsRepo()
	svc := newTestService(t, repo)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name:  "  Empanada  ",
		Price: money("5.00"),
	}, nil)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if product.Name != "Empanada" {
		t.Fatalf("expected trimmed name got %q", product.Name)
	}
	if product.Category != "General" {
		t.Fatalf("expected default category got %q", product.Category)
	}
	if product.MinStock != models.DefaultMinStock {
		t.Fatalf("expected default min stock got %d", product.MinStock)
	}
	if !product.IsActive {
		t.Fatal("expected product active")
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t, newStubProductsRepo())

	cases := []CreateProductInput{
		{Price: money("5.00")},
		{Name: "Empanada"},
		{Name: "Empanada", Price: money("-1.00")},
		{Name: "Empanada", Price: money("5.00"), Stock: -3},
	}
	for i, input := range cases {
		_, err := svc.Create(context.Background(), input, nil)
		if err == nil {
			t.Fatalf("case %d: expected error", i)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
	}
}

func TestUpdateProduct(t *testing.T) {
	repo := newStubProductsRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{ID: id, Name: "Empanada", Price: money("5.00"), IsActive: true}
	svc := newTestService(t, repo)

	newName := "Empanada de pollo"
	newPrice := money("6.00")
	product, err := svc.Update(context.Background(), id, UpdateProductInput{Name: &newName, Price: &newPrice})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if product.Name != newName {
		t.Fatalf("expected name updated got %q", product.Name)
	}
	if !product.Price.Equal(newPrice) {
		t.Fatalf("expected price updated got %s", product.Price)
	}
}

func TestUpdateProductRejectsEmptyPatch(t *testing.T) {
	svc := newTestService(t, newStubProductsRepo())

	_, err := svc.Update(context.Background(), uuid.New(), UpdateProductInput{})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestToggleActive(t *testing.T) {
	repo := newStubProductsRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{ID: id, Name: "Empanada", IsActive: true}
	svc := newTestService(t, repo)

	product, err := svc.ToggleActive(context.Background(), id)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if product.IsActive {
		t.Fatal("expected product hidden")
	}

	product, err = svc.ToggleActive(context.Background(), id)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !product.IsActive {
		t.Fatal("expected product visible again")
	}
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	repo := newStubProductsRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{ID: id, Name: "Empanada", Stock: 2}
	repo.adjustResult = 0
	svc := newTestService(t, repo)

	_, err := svc.AdjustStock(context.Background(), id, -5)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestAdjustStockAppliesDelta(t *testing.T) {
	repo := newStubProductsRepo()
	id := uuid.New()
	repo.products[id] = &models.Product{ID: id, Name: "Empanada", Stock: 2}
	svc := newTestService(t, repo)

	product, err := svc.AdjustStock(context.Background(), id, 10)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if product.Stock != 12 {
		t.Fatalf("expected stock 12 got %d", product.Stock)
	}
}

func TestImportKeepsValidRows(t *testing.T) {
	repo := newStubProductsRepo()
	svc := newTestService(t, repo)

	rows := []ImportRow{
		{Line: 2, Input: CreateProductInput{Name: "Empanada", Price: money("5.00"), Stock: 10}},
		{Line: 3, Input: CreateProductInput{Name: "", Price: money("3.00")}},
		{Line: 4, Input: CreateProductInput{Name: "Arepa", Price: money("0.00")}},
		{Line: 5, Input: CreateProductInput{Name: "Jugo", Price: money("2.50")}},
	}

	result, err := svc.Import(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Created != 2 {
		t.Fatalf("expected 2 created got %d", result.Created)
	}
	if result.Skipped != 2 {
		t.Fatalf("expected 2 skipped got %d", result.Skipped)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors got %d", len(result.Errors))
	}
	if result.Errors[0].Row != 3 || result.Errors[1].Row != 4 {
		t.Fatalf("unexpected error rows %+v", result.Errors)
	}
	if len(repo.batchCreated) != 2 {
		t.Fatalf("expected 2 batched inserts got %d", len(repo.batchCreated))
	}
}

func TestListRejectsUnknownStockFilter(t *testing.T) {
	svc := newTestService(t, newStubProductsRepo())

	_, err := svc.List(context.Background(), pagination.Params{}, ListFilters{Stock: "plenty"})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
}
