package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// Service records material purchases. Each intake bumps material stock
// through the ledger and moves the material's unit cost to the
// quantity-weighted average of the old holding and the new batch.
type Service interface {
	Record(ctx context.Context, input RecordPurchaseInput) (*models.RawMaterialPurchase, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RawMaterialPurchase, error)
	List(ctx context.Context, input ListPurchasesInput) (*PurchaseListResult, error)
}

type stockLedger interface {
	Adjust(ctx context.Context, tx *gorm.DB, input ledger.AdjustInput) (*models.StockAdjustment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type supplierLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	ledger    stockLedger
	suppliers supplierLoader
}

// NewService constructs the purchase service.
func NewService(repo Repository, tx txRunner, stock stockLedger, suppliers supplierLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("purchases: transaction runner is required")
	}
	if stock == nil {
		return nil, fmt.Errorf("purchases: stock ledger is required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("purchases: supplier loader is required")
	}
	return &service{repo: repo, tx: tx, ledger: stock, suppliers: suppliers}, nil
}

func (s *service) Record(ctx context.Context, input RecordPurchaseInput) (*models.RawMaterialPurchase, error) {
	if !input.Quantity.IsPositive() {
		return nil, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "unit price cannot be negative")
	}
	if _, err := s.suppliers.FindByID(ctx, input.SupplierID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeValidation, "supplier not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load supplier")
	}
	if input.PurchaseDate.IsZero() {
		input.PurchaseDate = time.Now().UTC()
	}

	purchase := &models.RawMaterialPurchase{
		PurchaseDate:  input.PurchaseDate,
		RawMaterialID: input.RawMaterialID,
		SupplierID:    input.SupplierID,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		TotalPrice:    input.Quantity.Mul(input.UnitPrice),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		material, err := txRepo.FindMaterial(ctx, input.RawMaterialID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeValidation, "raw material not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load raw material")
		}

		adj, err := s.ledger.Adjust(ctx, tx, ledger.AdjustInput{
			Target:   enums.StockTargetRawMaterial,
			TargetID: material.ID,
			Delta:    input.Quantity,
			Reason:   fmt.Sprintf("purchase inbound: %s %s", input.Quantity, material.Unit),
			Actor:    input.Actor,
		})
		if err != nil {
			return err
		}

		// The average only moves when the batch price differs from the
		// current cost: (oldStock*oldCost + qty*price) / newStock.
		if !material.UnitCost.Equal(input.UnitPrice) {
			totalValue := adj.QuantityBefore.Mul(material.UnitCost).
				Add(input.Quantity.Mul(input.UnitPrice))
			newCost := totalValue.DivRound(adj.QuantityAfter, 4)
			if err := txRepo.UpdateMaterialCost(ctx, material.ID, newCost); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to update material cost")
			}
		}

		if err := txRepo.Create(ctx, purchase); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to record purchase")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RawMaterialPurchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "purchase not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load purchase")
	}
	return purchase, nil
}

func (s *service) List(ctx context.Context, input ListPurchasesInput) (*PurchaseListResult, error) {
	rows, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list purchases")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &PurchaseListResult{Purchases: rows}
	if len(rows) > limit {
		result.Purchases = rows[:limit]
		last := result.Purchases[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}
