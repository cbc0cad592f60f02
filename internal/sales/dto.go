package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
)

// CheckoutItemInput is one cart line as captured at the register.
type CheckoutItemInput struct {
	ProductID *uuid.UUID      `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutInput carries everything needed to commit a sale.
type CheckoutInput struct {
	CustomerName  string              `json:"customer_name"`
	Phone         *string             `json:"phone"`
	Address       *string             `json:"address"`
	AccountType   string              `json:"account_type"`
	ProductState  *string             `json:"product_state"`
	DeliveryFee   decimal.Decimal     `json:"delivery_fee"`
	PaymentMethod string              `json:"payment_method"`
	Items         []CheckoutItemInput `json:"items"`
}

// ListFilters describe the supported filter knobs for the sales history endpoint.
type ListFilters struct {
	From        *time.Time
	To          *time.Time
	Status      string
	AccountType string
	Query       string
}

// RangeFilters bound an unpaginated range scan, used by reporting and export.
type RangeFilters struct {
	From *time.Time
	To   *time.Time
}

// SaleList is one page of sales plus the cursor for the next one.
type SaleList struct {
	Sales      []models.Sale `json:"sales"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
