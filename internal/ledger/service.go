package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/metrics"
)

// AdjustInput describes a single stock movement. Delta is signed: positive
// values add stock, negative values remove it.
type AdjustInput struct {
	Target   enums.StockTargetType
	TargetID uuid.UUID
	Delta    decimal.Decimal
	Reason   string
	Actor    string
}

// ManualAdjustInput is an operator-initiated correction outside the order and
// purchase flows.
type ManualAdjustInput struct {
	Target       enums.StockTargetType  `json:"target_type" validate:"required"`
	TargetID     uuid.UUID              `json:"target_id" validate:"required"`
	Quantity     decimal.Decimal        `json:"quantity" validate:"required"`
	Reason       enums.AdjustmentReason `json:"reason" validate:"required"`
	ReasonDetail string                 `json:"reason_detail,omitempty"`
	Actor        string                 `json:"-"`
}

// Service is the single entry point for stock mutations. Every quantity
// change on products and raw materials flows through Adjust so the
// adjustment log stays a complete account of stock history.
type Service interface {
	// Adjust applies a signed delta inside the caller's transaction and
	// appends exactly one adjustment row.
	Adjust(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.StockAdjustment, error)
	// ManualAdjust wraps Adjust in its own transaction for operator
	// corrections such as stocktakes and shrinkage write-offs.
	ManualAdjust(ctx context.Context, input ManualAdjustInput) (*models.StockAdjustment, error)
	// History lists adjustments for one target, newest first.
	History(ctx context.Context, target enums.StockTargetType, targetID uuid.UUID) ([]models.StockAdjustment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.StockMetrics
}

// NewService builds the ledger service. The metrics collector may be nil.
func NewService(repo Repository, tx txRunner, stockMetrics *metrics.StockMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("ledger: transaction runner is required")
	}
	return &service{repo: repo, tx: tx, metrics: stockMetrics}, nil
}

func (s *service) Adjust(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.StockAdjustment, error) {
	if !input.Target.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown stock target %q", input.Target))
	}
	if input.TargetID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "target id is required")
	}
	if input.Delta.IsZero() {
		return nil, errors.New(errors.CodeValidation, "adjustment quantity must be non-zero")
	}
	if input.Reason == "" {
		return nil, errors.New(errors.CodeValidation, "adjustment reason is required")
	}
	actor := input.Actor
	if actor == "" {
		actor = "system"
	}

	repo := s.repo.WithTx(tx)

	var adjustment *models.StockAdjustment
	var err error
	switch input.Target {
	case enums.StockTargetProduct:
		adjustment, err = s.adjustProduct(ctx, repo, input, actor)
	case enums.StockTargetRawMaterial:
		adjustment, err = s.adjustRawMaterial(ctx, repo, input, actor)
	}
	if err != nil {
		if errors.As(err).Code() == errors.CodeInsufficientStock {
			s.metrics.IncRejection(string(input.Target))
		}
		return nil, err
	}

	s.metrics.IncAdjustment(string(input.Target), !input.Delta.IsNegative())
	return adjustment, nil
}

func (s *service) adjustProduct(ctx context.Context, repo Repository, input AdjustInput, actor string) (*models.StockAdjustment, error) {
	if !input.Delta.IsInteger() {
		return nil, errors.New(errors.CodeValidation, "product stock adjustments must be whole units")
	}

	product, err := repo.LockProduct(ctx, input.TargetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load product for adjustment")
	}

	before := decimal.NewFromInt(int64(product.StockQuantity))
	after := before.Add(input.Delta)
	if after.IsNegative() {
		return nil, insufficientStock(product.Name, before, input.Delta)
	}

	if err := repo.UpdateProductStock(ctx, product.ID, int(after.IntPart())); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update product stock")
	}

	adjustment := &models.StockAdjustment{
		AdjustmentDate:     time.Now().UTC(),
		TargetType:         enums.StockTargetProduct,
		ProductID:          &product.ID,
		QuantityBefore:     before,
		QuantityAfter:      after,
		AdjustmentQuantity: input.Delta,
		Reason:             input.Reason,
		CreatedBy:          actor,
	}
	if err := repo.CreateAdjustment(ctx, adjustment); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to record stock adjustment")
	}
	return adjustment, nil
}

func (s *service) adjustRawMaterial(ctx context.Context, repo Repository, input AdjustInput, actor string) (*models.StockAdjustment, error) {
	material, err := repo.LockRawMaterial(ctx, input.TargetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "raw material not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load raw material for adjustment")
	}

	before := material.StockQuantity
	after := before.Add(input.Delta)
	if after.IsNegative() {
		return nil, insufficientStock(material.Name, before, input.Delta)
	}

	if err := repo.UpdateRawMaterialStock(ctx, material.ID, after); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update raw material stock")
	}

	adjustment := &models.StockAdjustment{
		AdjustmentDate:     time.Now().UTC(),
		TargetType:         enums.StockTargetRawMaterial,
		RawMaterialID:      &material.ID,
		QuantityBefore:     before,
		QuantityAfter:      after,
		AdjustmentQuantity: input.Delta,
		Reason:             input.Reason,
		CreatedBy:          actor,
	}
	if err := repo.CreateAdjustment(ctx, adjustment); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to record stock adjustment")
	}
	return adjustment, nil
}

func (s *service) ManualAdjust(ctx context.Context, input ManualAdjustInput) (*models.StockAdjustment, error) {
	if !input.Reason.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown adjustment reason %q", input.Reason))
	}
	if input.Quantity.IsZero() {
		return nil, errors.New(errors.CodeValidation, "adjustment quantity must be non-zero")
	}

	reason := string(input.Reason)
	if input.ReasonDetail != "" {
		reason = reason + ": " + input.ReasonDetail
	}

	var adjustment *models.StockAdjustment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		adjustment, err = s.Adjust(ctx, tx, AdjustInput{
			Target:   input.Target,
			TargetID: input.TargetID,
			Delta:    input.Quantity,
			Reason:   reason,
			Actor:    input.Actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return adjustment, nil
}

func (s *service) History(ctx context.Context, target enums.StockTargetType, targetID uuid.UUID) ([]models.StockAdjustment, error) {
	if !target.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown stock target %q", target))
	}
	if targetID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "target id is required")
	}
	adjustments, err := s.repo.ListByTarget(ctx, target, targetID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list stock adjustments")
	}
	return adjustments, nil
}

func insufficientStock(name string, available, delta decimal.Decimal) error {
	requested := delta.Neg()
	return errors.New(errors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", name)).
		WithDetails(map[string]any{
			"name":      name,
			"available": available,
			"requested": requested,
			"shortfall": requested.Sub(available),
		})
}
