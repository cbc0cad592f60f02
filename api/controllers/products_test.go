package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cajaregistradora/pos-backend/api/middleware"
	productsvc "github.com/cajaregistradora/pos-backend/internal/products"
	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

type stubProductsService struct {
	createInput *productsvc.CreateProductInput
	createdBy   *uuid.UUID
	product     *models.Product
	listFilters productsvc.ListFilters
	toggled     uuid.UUID
	adjusted    int
}

func (s *stubProductsService) Create(_ context.Context, input productsvc.CreateProductInput, createdBy *uuid.UUID) (*models.Product, error) {
	s.createInput = &input
	s.createdBy = createdBy
	return s.product, nil
}

func (s *stubProductsService) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.product, nil
}

func (s *stubProductsService) Update(_ context.Context, _ uuid.UUID, _ productsvc.UpdateProductInput) (*models.Product, error) {
	return s.product, nil
}

func (s *stubProductsService) Delete(context.Context, uuid.UUID) error { return nil }

func (s *stubProductsService) ToggleActive(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.toggled = id
	return s.product, nil
}

func (s *stubProductsService) AdjustStock(_ context.Context, _ uuid.UUID, delta int) (*models.Product, error) {
	s.adjusted = delta
	return s.product, nil
}

func (s *stubProductsService) List(_ context.Context, _ pagination.Params, filters productsvc.ListFilters) (*productsvc.ProductList, error) {
	s.listFilters = filters
	return &productsvc.ProductList{Products: []models.Product{}}, nil
}

func (s *stubProductsService) Categories(context.Context) ([]string, error) {
	return []string{"Bebidas", "General"}, nil
}

func (s *stubProductsService) Import(_ context.Context, rows []productsvc.ImportRow, _ *uuid.UUID) (*productsvc.ImportResult, error) {
	return &productsvc.ImportResult{Created: len(rows)}, nil
}

func testProduct() *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     "Café",
		Category: "Bebidas",
		Price:    decimal.RequireFromString("2.50"),
		Stock:    10,
		IsActive: true,
	}
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withProductID(req *http.Request, id uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateProductRecordsCreator(t *testing.T) {
	svc := &stubProductsService{product: testProduct()}
	handler := CreateProduct(svc, nil)
	userID := uuid.New()

	body := `{"name":"Café","category":"Bebidas","price":"2.50","stock":10}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(body)), userID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.createdBy == nil || *svc.createdBy != userID {
		t.Errorf("creator not forwarded: %v", svc.createdBy)
	}
	if svc.createInput == nil || svc.createInput.Name != "Café" {
		t.Errorf("input not forwarded: %+v", svc.createInput)
	}
}

func TestCreateProductRequiresUserContext(t *testing.T) {
	svc := &stubProductsService{product: testProduct()}
	handler := CreateProduct(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Café","price":"2.50"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestListProductsForwardsFilters(t *testing.T) {
	svc := &stubProductsService{}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=cafe&category=Bebidas&stock=low_stock&include_hidden=true&sort_by=name&sort_dir=asc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	want := productsvc.ListFilters{
		Query:         "cafe",
		Category:      "Bebidas",
		Stock:         "low_stock",
		IncludeHidden: true,
		SortBy:        "name",
		SortDir:       "asc",
	}
	if svc.listFilters != want {
		t.Errorf("filters not forwarded: %+v", svc.listFilters)
	}
}

func TestAdjustProductStockForwardsDelta(t *testing.T) {
	svc := &stubProductsService{product: testProduct()}
	handler := AdjustProductStock(svc, nil)
	id := uuid.New()

	req := withProductID(httptest.NewRequest(http.MethodPost, "/api/v1/products/"+id.String()+"/stock", strings.NewReader(`{"delta":-3}`)), id)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.adjusted != -3 {
		t.Errorf("delta not forwarded: %d", svc.adjusted)
	}
}

func TestGetProductRejectsBadID(t *testing.T) {
	svc := &stubProductsService{product: testProduct()}
	handler := GetProduct(svc, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", "no-es-uuid")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/no-es-uuid", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
