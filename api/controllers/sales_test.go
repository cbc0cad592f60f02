package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cajaregistradora/pos-backend/internal/receipt"
	salesvc "github.com/cajaregistradora/pos-backend/internal/sales"
	"github.com/cajaregistradora/pos-backend/pkg/config"
	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/enums"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

type stubSalesService struct {
	checkoutInput *salesvc.CheckoutInput
	checkoutErr   error
	sale          *models.Sale
	listParams    pagination.Params
	listFilters   salesvc.ListFilters
	statusCalled  string
}

func (s *stubSalesService) Checkout(_ context.Context, input salesvc.CheckoutInput) (*models.Sale, error) {
	s.checkoutInput = &input
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return s.sale, nil
}

func (s *stubSalesService) GetSale(_ context.Context, id uuid.UUID) (*models.Sale, error) {
	if s.sale == nil || s.sale.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return s.sale, nil
}

func (s *stubSalesService) GetSaleByNumber(_ context.Context, _ int64) (*models.Sale, error) {
	return s.sale, nil
}

func (s *stubSalesService) ListSales(_ context.Context, params pagination.Params, filters salesvc.ListFilters) (*salesvc.SaleList, error) {
	s.listParams = params
	s.listFilters = filters
	return &salesvc.SaleList{Sales: []models.Sale{}}, nil
}

func (s *stubSalesService) UpdateStatus(_ context.Context, _ uuid.UUID, status string) (*models.Sale, error) {
	s.statusCalled = status
	return s.sale, nil
}

func testSale() *models.Sale {
	phone := "3001234567"
	return &models.Sale{
		ID:            uuid.New(),
		SaleNumber:    42,
		CustomerName:  "María López",
		Phone:         &phone,
		AccountType:   enums.AccountTypeCash,
		Subtotal:      decimal.RequireFromString("10.00"),
		TotalAmount:   decimal.RequireFromString("11.00"),
		DeliveryFee:   decimal.RequireFromString("1.00"),
		PaymentMethod: enums.PaymentMethodCash,
		Status:        enums.SaleStatusCompleted,
		Items: []models.SaleItem{
			{ProductName: "Café", Quantity: 2, UnitPrice: decimal.RequireFromString("2.50"), Subtotal: decimal.RequireFromString("5.00")},
			{ProductName: "Sandwich", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00"), Subtotal: decimal.RequireFromString("5.00")},
		},
	}
}

func withSaleID(req *http.Request, id uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("saleID", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateSaleReturnsCreated(t *testing.T) {
	svc := &stubSalesService{sale: testSale()}
	handler := CreateSale(svc, nil)

	body := `{
		"customer_name": "María López",
		"account_type": "cash",
		"payment_method": "cash",
		"delivery_fee": "1.00",
		"items": [{"name": "Café", "quantity": 2, "unit_price": "2.50"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.checkoutInput == nil || len(svc.checkoutInput.Items) != 1 {
		t.Fatalf("checkout input not forwarded: %+v", svc.checkoutInput)
	}
	if svc.checkoutInput.Items[0].Quantity != 2 {
		t.Errorf("unexpected quantity %d", svc.checkoutInput.Items[0].Quantity)
	}
}

func TestCreateSaleMapsValidationError(t *testing.T) {
	svc := &stubSalesService{checkoutErr: pkgerrors.New(pkgerrors.CodeValidation, "cart cannot be empty")}
	handler := CreateSale(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(`{"items":[]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cart cannot be empty") {
		t.Errorf("expected service message, got %s", rec.Body.String())
	}
}

func TestListSalesForwardsFilters(t *testing.T) {
	svc := &stubSalesService{}
	handler := ListSales(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?limit=10&status=pending&account_type=credit&q=maria&from=2026-08-01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.listParams.Limit != 10 {
		t.Errorf("limit not forwarded: %d", svc.listParams.Limit)
	}
	if svc.listFilters.Status != "pending" || svc.listFilters.AccountType != "credit" || svc.listFilters.Query != "maria" {
		t.Errorf("filters not forwarded: %+v", svc.listFilters)
	}
	if svc.listFilters.From == nil {
		t.Error("from date not parsed")
	}
}

func TestGetSaleReceiptRendersHTML(t *testing.T) {
	sale := testSale()
	svc := &stubSalesService{sale: sale}
	renderer, err := receipt.NewRenderer(config.ReceiptConfig{
		BusinessName: "CAJA REGISTRADORA",
		FooterLine:   "¡Gracias por su compra!",
	})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	handler := GetSaleReceipt(svc, renderer, nil)

	req := withSaleID(httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+sale.ID.String()+"/receipt", nil), sale.ID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
	for _, want := range []string{"CAJA REGISTRADORA", "María López", "Café", "#42"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("receipt missing %q", want)
		}
	}
}

func TestUpdateSaleStatusForwardsStatus(t *testing.T) {
	sale := testSale()
	svc := &stubSalesService{sale: sale}
	handler := UpdateSaleStatus(svc, nil)

	req := withSaleID(httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+sale.ID.String()+"/status", strings.NewReader(`{"status":"completed"}`)), sale.ID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.statusCalled != "completed" {
		t.Errorf("status not forwarded: %q", svc.statusCalled)
	}

	var envelope struct {
		Data models.Sale `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SaleNumber != 42 {
		t.Errorf("unexpected sale in response: %+v", envelope.Data)
	}
}
