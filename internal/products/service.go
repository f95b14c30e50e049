package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// Service exposes product catalog management.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type stockLedger interface {
	Adjust(ctx context.Context, tx *gorm.DB, input ledger.AdjustInput) (*models.StockAdjustment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type categoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type supplierLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	ledger     stockLedger
	categories categoryLoader
	suppliers  supplierLoader
}

// NewService constructs the product service.
func NewService(repo Repository, tx txRunner, stock stockLedger, categories categoryLoader, suppliers supplierLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("products: transaction runner is required")
	}
	if stock == nil {
		return nil, fmt.Errorf("products: stock ledger is required")
	}
	if categories == nil {
		return nil, fmt.Errorf("products: category loader is required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("products: supplier loader is required")
	}
	return &service{repo: repo, tx: tx, ledger: stock, categories: categories, suppliers: suppliers}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	if input.Name == "" || input.SKU == "" {
		return nil, errors.New(errors.CodeValidation, "name and sku are required")
	}
	if input.SellingPrice.IsNegative() || input.CostPrice.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "prices cannot be negative")
	}
	if input.StockQuantity < 0 {
		return nil, errors.New(errors.CodeValidation, "stock quantity cannot be negative")
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         input.Name,
		SKU:          input.SKU,
		Description:  input.Description,
		SellingPrice: input.SellingPrice,
		CostPrice:    input.CostPrice,
		CategoryID:   input.CategoryID,
		SupplierID:   input.SupplierID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, product); err != nil {
			if errors.IsUniqueViolation(err, "products_sku_key") {
				return errors.New(errors.CodeConflict, fmt.Sprintf("sku %q already exists", input.SKU))
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to create product")
		}
		if input.StockQuantity > 0 {
			adj, err := s.ledger.Adjust(ctx, tx, ledger.AdjustInput{
				Target:   enums.StockTargetProduct,
				TargetID: product.ID,
				Delta:    decimal.NewFromInt(int64(input.StockQuantity)),
				Reason:   "initial stock",
				Actor:    input.Actor,
			})
			if err != nil {
				return err
			}
			product.StockQuantity = int(adj.QuantityAfter.IntPart())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list products")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &ProductListResult{Products: rows}
	if len(rows) > limit {
		result.Products = rows[:limit]
		last := result.Products[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "product not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load product")
		}

		if err := applyUpdate(product, input); err != nil {
			return err
		}
		if input.CategoryID != nil {
			if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
				return err
			}
		}
		if input.SupplierID != nil {
			if err := s.ensureSupplier(ctx, input.SupplierID); err != nil {
				return err
			}
		}

		// The stock column only moves through the ledger; Save rewrites the
		// current value and the adjustment below applies the delta.
		stockDelta := 0
		if input.StockQuantity != nil {
			if *input.StockQuantity < 0 {
				return errors.New(errors.CodeValidation, "stock quantity cannot be negative")
			}
			stockDelta = *input.StockQuantity - product.StockQuantity
		}

		if err := txRepo.Save(ctx, product); err != nil {
			if errors.IsUniqueViolation(err, "products_sku_key") {
				return errors.New(errors.CodeConflict, fmt.Sprintf("sku %q already exists", product.SKU))
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to update product")
		}

		if stockDelta != 0 {
			adj, err := s.ledger.Adjust(ctx, tx, ledger.AdjustInput{
				Target:   enums.StockTargetProduct,
				TargetID: product.ID,
				Delta:    decimal.NewFromInt(int64(stockDelta)),
				Reason:   "manual edit",
				Actor:    input.Actor,
			})
			if err != nil {
				return err
			}
			product.StockQuantity = int(adj.QuantityAfter.IntPart())
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
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "product not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load product")
		}

		count, err := txRepo.CountOrderReferences(ctx, id)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to check order references")
		}
		if count > 0 {
			return errors.New(errors.CodeConflict, "product has order history and cannot be deleted")
		}

		if err := txRepo.Delete(ctx, id); err != nil {
			if errors.IsForeignKeyViolation(err) {
				return errors.New(errors.CodeConflict, "product is referenced by other records")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to delete product")
		}
		return nil
	})
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New(errors.CodeValidation, "category id is required")
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.New(errors.CodeValidation, "category not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load category")
	}
	return nil
}

func (s *service) ensureSupplier(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.suppliers.FindByID(ctx, *id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.New(errors.CodeValidation, "supplier not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load supplier")
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return errors.New(errors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return errors.New(errors.CodeValidation, "sku cannot be empty")
		}
		product.SKU = sku
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.SellingPrice != nil {
		if input.SellingPrice.IsNegative() {
			return errors.New(errors.CodeValidation, "selling price cannot be negative")
		}
		product.SellingPrice = *input.SellingPrice
	}
	if input.CostPrice != nil {
		if input.CostPrice.IsNegative() {
			return errors.New(errors.CodeValidation, "cost price cannot be negative")
		}
		product.CostPrice = *input.CostPrice
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.SupplierID != nil {
		product.SupplierID = input.SupplierID
	}
	return nil
}
