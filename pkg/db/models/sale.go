package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/enums"
)

// OccasionalCustomer is the sentinel recorded when no customer name was
// captured at the register.
const OccasionalCustomer = "Cliente ocasional"

// Sale is the durable record of one checkout. Immutable after creation
// except for the status field.
type Sale struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SaleNumber    int64               `gorm:"column:sale_number;not null;uniqueIndex"`
	CustomerName  string              `gorm:"column:customer_name;not null;default:'Cliente ocasional'"`
	Phone         *string             `gorm:"column:phone"`
	Address       *string             `gorm:"column:address"`
	AccountType   enums.AccountType   `gorm:"column:account_type;type:text;not null"`
	ProductState  *enums.ProductState `gorm:"column:product_state;type:text"`
	DeliveryFee   decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Status        enums.SaleStatus    `gorm:"column:status;type:text;not null"`
	Items         []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the identifier client-side so the model works on both
// Postgres and SQLite backends.
func (s *Sale) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
