package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cajaregistradora/pos-backend/pkg/db"
	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
	"github.com/cajaregistradora/pos-backend/pkg/pagination"
)

const defaultCategory = "General"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines catalog-level operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput, createdBy *uuid.UUID) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error)
	Categories(ctx context.Context) ([]string, error)
	Import(ctx context.Context, rows []ImportRow, createdBy *uuid.UUID) (*ImportResult, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput, createdBy *uuid.UUID) (*models.Product, error) {
	product, err := buildProduct(input, createdBy)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates, err := buildUpdates(input)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindProductByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if err := repo.UpdateProduct(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}

		product, err := repo.FindProductByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ToggleActive(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		next := !product.IsActive
		if err := repo.UpdateProduct(ctx, id, map[string]any{"is_active": next}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle product")
		}
		product.IsActive = next
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.AdjustStock(ctx, id, delta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
		}
		if affected == 0 {
			if _, err := repo.FindProductByID(ctx, id); err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot go negative")
		}

		product, err := repo.FindProductByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	if filters.Stock != "" {
		switch filters.Stock {
		case StockFilterInStock, StockFilterOutOfStock, StockFilterLowStock:
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid stock filter %q", filters.Stock))
		}
	}
	list, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

// Import validates spreadsheet rows and inserts the valid ones in one batch.
// Row failures are reported but never abort the rest of the file.
func (s *service) Import(ctx context.Context, rows []ImportRow, createdBy *uuid.UUID) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file has no data rows")
	}

	result := &ImportResult{}
	batch := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		product, err := buildProduct(row.Input, createdBy)
		if err != nil {
			result.Skipped++
			message := err.Error()
			if typed := pkgerrors.As(err); typed != nil {
				message = typed.Message()
			}
			result.Errors = append(result.Errors, ImportRowError{Row: row.Line, Message: message})
			continue
		}
		batch = append(batch, *product)
	}

	if len(batch) > 0 {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).CreateProducts(ctx, batch)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert imported products")
		}
	}
	result.Created = len(batch)

	wctx := s.logg.WithFields(ctx, map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
	})
	s.logg.Info(wctx, "catalog import finished")
	return result, nil
}

func buildProduct(input CreateProductInput, createdBy *uuid.UUID) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Cost != nil && input.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = defaultCategory
	}

	minStock := models.DefaultMinStock
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_stock cannot be negative")
		}
		minStock = *input.MinStock
	}

	return &models.Product{
		Name:        name,
		Description: trimOptional(input.Description),
		Category:    category,
		Price:       input.Price,
		Cost:        input.Cost,
		Stock:       input.Stock,
		MinStock:    minStock,
		SKU:         trimOptional(input.SKU),
		Barcode:     trimOptional(input.Barcode),
		IsActive:    true,
		CreatedBy:   createdBy,
	}, nil
}

func buildUpdates(input UpdateProductInput) (map[string]any, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			category = defaultCategory
		}
		updates["category"] = category
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
		}
		updates["cost"] = *input.Cost
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		updates["stock"] = *input.Stock
	}
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_stock cannot be negative")
		}
		updates["min_stock"] = *input.MinStock
	}
	if input.SKU != nil {
		updates["sku"] = strings.TrimSpace(*input.SKU)
	}
	if input.Barcode != nil {
		updates["barcode"] = strings.TrimSpace(*input.Barcode)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	return updates, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
