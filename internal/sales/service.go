package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/enums"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
	"github.com/cajaregistradora/pos-backend/pkg/metrics"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SaleNotifier mirrors a committed sale to the bookkeeping webhook. The call
// must never block or fail the checkout.
type SaleNotifier interface {
	Dispatch(ctx context.Context, sale *models.Sale)
}

// Service defines the register-facing sale operations.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	GetSaleByNumber(ctx context.Context, number int64) (*models.Sale, error)
	ListSales(ctx context.Context, params pagination.Params, filters ListFilters) (*SaleList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Sale, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier SaleNotifier
	metrics  *metrics.SaleMetrics
	logg     *logger.Logger
}

// NewService builds a sale service with the required dependencies. The
// notifier is optional.
func NewService(repo Repository, tx txRunner, notifier SaleNotifier, m *metrics.SaleMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		metrics:  m,
		logg:     logg,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Sale, error) {
	started := time.Now()

	sale, items, err := buildSale(input)
	if err != nil {
		s.metrics.IncCheckoutError(string(errorCode(err)))
		return nil, err
	}

	var shortfalls error
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := repo.NextSaleNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign sale number")
		}
		sale.SaleNumber = number

		if _, err := repo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}

		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := repo.CreateSaleItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale items")
		}

		if sale.AccountType == enums.AccountTypeCash {
			for _, item := range items {
				if item.ProductID == nil {
					continue
				}
				affected, err := repo.DecrementStock(ctx, *item.ProductID, item.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
				}
				if affected == 0 {
					shortfalls = multierr.Append(shortfalls,
						fmt.Errorf("product %s: stock below %d", item.ProductID, item.Quantity))
				}
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.IncCheckoutError(string(errorCode(err)))
		return nil, err
	}

	sale.Items = items

	if shortfalls != nil {
		wctx := s.logg.WithSaleNumber(ctx, sale.SaleNumber)
		wctx = s.logg.WithField(wctx, "shortfalls", shortfalls.Error())
		s.logg.Warn(wctx, "sale committed with stock shortfalls")
	}

	s.metrics.IncCommitted(string(sale.AccountType))
	s.metrics.ObserveCheckoutDuration(time.Since(started))

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, sale)
	}

	return sale, nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	sale, err := s.repo.FindSaleByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func (s *service) GetSaleByNumber(ctx context.Context, number int64) (*models.Sale, error) {
	if number <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale number must be positive")
	}
	sale, err := s.repo.FindSaleByNumber(ctx, number)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func (s *service) ListSales(ctx context.Context, params pagination.Params, filters ListFilters) (*SaleList, error) {
	if filters.Status != "" {
		if _, err := enums.ParseSaleStatus(filters.Status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
	}
	if filters.AccountType != "" {
		if _, err := enums.ParseAccountType(filters.AccountType); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
	}

	list, err := s.repo.ListSales(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return list, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Sale, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	target, err := enums.ParseSaleStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var updated *models.Sale
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sale, err := repo.FindSaleByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}
		if sale.Status == target {
			updated = sale
			return nil
		}
		if !sale.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("sale cannot move from %s to %s", sale.Status, target))
		}

		if err := repo.UpdateSaleStatus(ctx, sale.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale status")
		}
		sale.Status = target
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// buildSale normalizes checkout input into a sale header plus its line items.
// Money never goes through floats: quantities multiply decimals directly.
func buildSale(input CheckoutInput) (*models.Sale, []models.SaleItem, error) {
	if len(input.Items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	accountType, err := enums.ParseAccountType(input.AccountType)
	if err != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	paymentMethod, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var productState *enums.ProductState
	if input.ProductState != nil && strings.TrimSpace(*input.ProductState) != "" {
		parsed, err := enums.ParseProductState(*input.ProductState)
		if err != nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		productState = &parsed
	}

	if input.DeliveryFee.IsNegative() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}

	items := make([]models.SaleItem, 0, len(input.Items))
	subtotal := decimal.Zero
	for i, line := range input.Items {
		name := strings.TrimSpace(line.Name)
		if name == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: name required", i+1))
		}
		if line.Quantity <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: unit price cannot be negative", i+1))
		}

		lineSubtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, models.SaleItem{
			ProductID:   line.ProductID,
			ProductName: name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    lineSubtotal,
		})
	}

	total := subtotal.Add(input.DeliveryFee)
	if !total.IsPositive() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "sale total must be positive")
	}

	customerName := strings.TrimSpace(input.CustomerName)
	if customerName == "" {
		customerName = models.OccasionalCustomer
	}

	status := enums.SaleStatusCompleted
	if accountType == enums.AccountTypeCredit {
		status = enums.SaleStatusPending
	}

	sale := &models.Sale{
		CustomerName:  customerName,
		Phone:         normalizeOptional(input.Phone),
		Address:       normalizeOptional(input.Address),
		AccountType:   accountType,
		ProductState:  productState,
		DeliveryFee:   input.DeliveryFee,
		Subtotal:      subtotal,
		TotalAmount:   total,
		PaymentMethod: paymentMethod,
		Status:        status,
	}
	return sale, items, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func errorCode(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}
