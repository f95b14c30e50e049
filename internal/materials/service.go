package materials

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// Service exposes raw material management.
type Service interface {
	Create(ctx context.Context, input CreateMaterialInput) (*models.RawMaterial, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error)
	List(ctx context.Context, input ListMaterialsInput) (*MaterialListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateMaterialInput) (*models.RawMaterial, error)
	Delete(ctx context.Context, id uuid.UUID) error
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

// NewService constructs the raw material service.
func NewService(repo Repository, tx txRunner, stock stockLedger, suppliers supplierLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("materials: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("materials: transaction runner is required")
	}
	if stock == nil {
		return nil, fmt.Errorf("materials: stock ledger is required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("materials: supplier loader is required")
	}
	return &service{repo: repo, tx: tx, ledger: stock, suppliers: suppliers}, nil
}

func (s *service) Create(ctx context.Context, input CreateMaterialInput) (*models.RawMaterial, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	if input.Name == "" || input.Unit == "" {
		return nil, errors.New(errors.CodeValidation, "name and unit are required")
	}
	if input.StockQuantity.IsNegative() || input.UnitCost.IsNegative() || input.SafetyStock.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "quantities and cost cannot be negative")
	}
	if err := s.ensureSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	material := &models.RawMaterial{
		Name:        input.Name,
		Unit:        input.Unit,
		UnitCost:    input.UnitCost,
		SafetyStock: input.SafetyStock,
		SupplierID:  input.SupplierID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, material); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to create raw material")
		}
		if input.StockQuantity.IsPositive() {
			adj, err := s.ledger.Adjust(ctx, tx, ledger.AdjustInput{
				Target:   enums.StockTargetRawMaterial,
				TargetID: material.ID,
				Delta:    input.StockQuantity,
				Reason:   "initial stock",
				Actor:    input.Actor,
			})
			if err != nil {
				return err
			}
			material.StockQuantity = adj.QuantityAfter
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return material, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "raw material not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load raw material")
	}
	return material, nil
}

func (s *service) List(ctx context.Context, input ListMaterialsInput) (*MaterialListResult, error) {
	rows, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list raw materials")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &MaterialListResult{Materials: rows}
	if len(rows) > limit {
		result.Materials = rows[:limit]
		last := result.Materials[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateMaterialInput) (*models.RawMaterial, error) {
	var updated *models.RawMaterial
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		material, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "raw material not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load raw material")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return errors.New(errors.CodeValidation, "name cannot be empty")
			}
			material.Name = name
		}
		if input.Unit != nil {
			unit := strings.TrimSpace(*input.Unit)
			if unit == "" {
				return errors.New(errors.CodeValidation, "unit cannot be empty")
			}
			material.Unit = unit
		}
		if input.UnitCost != nil {
			if input.UnitCost.IsNegative() {
				return errors.New(errors.CodeValidation, "unit cost cannot be negative")
			}
			material.UnitCost = *input.UnitCost
		}
		if input.SafetyStock != nil {
			if input.SafetyStock.IsNegative() {
				return errors.New(errors.CodeValidation, "safety stock cannot be negative")
			}
			material.SafetyStock = *input.SafetyStock
		}
		if input.SupplierID != nil {
			if err := s.ensureSupplier(ctx, input.SupplierID); err != nil {
				return err
			}
			material.SupplierID = input.SupplierID
		}

		var stockDelta *ledger.AdjustInput
		if input.StockQuantity != nil {
			if input.StockQuantity.IsNegative() {
				return errors.New(errors.CodeValidation, "stock quantity cannot be negative")
			}
			delta := input.StockQuantity.Sub(material.StockQuantity)
			if !delta.IsZero() {
				stockDelta = &ledger.AdjustInput{
					Target:   enums.StockTargetRawMaterial,
					TargetID: material.ID,
					Delta:    delta,
					Reason:   "manual edit",
					Actor:    input.Actor,
				}
			}
		}

		if err := txRepo.Save(ctx, material); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to update raw material")
		}
		if stockDelta != nil {
			adj, err := s.ledger.Adjust(ctx, tx, *stockDelta)
			if err != nil {
				return err
			}
			material.StockQuantity = adj.QuantityAfter
		}

		updated = material
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
				return errors.New(errors.CodeNotFound, "raw material not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load raw material")
		}

		if err := txRepo.Delete(ctx, id); err != nil {
			if errors.IsForeignKeyViolation(err) {
				return errors.New(errors.CodeConflict, "raw material is referenced by purchases or adjustments")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to delete raw material")
		}
		return nil
	})
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
