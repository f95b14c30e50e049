package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// Service exposes order management. Every stock movement an order causes
// runs through the ledger inside the same transaction as the order rows, so
// an order either commits with all its reservations or not at all.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, actor string) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

type stockLedger interface {
	Adjust(ctx context.Context, tx *gorm.DB, input ledger.AdjustInput) (*models.StockAdjustment, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	ledger    stockLedger
	customers customerLoader
	now       func() time.Time
}

// NewService constructs the order service.
func NewService(repo Repository, tx txRunner, stock stockLedger, customers customerLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("orders: transaction runner is required")
	}
	if stock == nil {
		return nil, fmt.Errorf("orders: stock ledger is required")
	}
	if customers == nil {
		return nil, fmt.Errorf("orders: customer loader is required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		ledger:    stock,
		customers: customers,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	status := input.Status
	if status == "" {
		status = enums.OrderStatusPending
	}
	if !status.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown order status %q", status))
	}
	payment := input.PaymentMethod
	if payment == "" {
		payment = enums.PaymentMethodOther
	}
	if !payment.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown payment method %q", payment))
	}
	if len(input.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "an order needs at least one item")
	}
	if err := s.ensureCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		items, total, err := buildItems(ctx, txRepo, input.Items)
		if err != nil {
			return err
		}

		number, err := newOrderNumber(s.now())
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to generate order number")
		}

		order = &models.Order{
			OrderNumber:   number,
			OrderDate:     orderDate,
			CustomerID:    input.CustomerID,
			Status:        status,
			PaymentMethod: payment,
			TotalAmount:   total,
			Notes:         input.Notes,
			Items:         items,
		}
		if err := txRepo.Create(ctx, order); err != nil {
			if errors.IsUniqueViolation(err, "orders_order_number_key") {
				return errors.New(errors.CodeConflict, "order number collision, retry the request")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to create order")
		}

		// A cancelled order records the sale without holding stock, the
		// same as cancelling an active one right away.
		if !status.IsActive() {
			return nil
		}

		reason := fmt.Sprintf("sale outbound: order %s", order.OrderNumber)
		return s.adjustItems(ctx, tx, order.Items, -1, reason, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
	rows, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list orders")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	result := &OrderListResult{Orders: rows}
	if len(rows) > limit {
		result.Orders = rows[:limit]
		last := result.Orders[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// Update edits the order header and, when Items is present, replaces the
// line items wholesale. Stock follows the status transition:
// active to active applies per-product deltas between the old and new sets,
// active to cancelled releases the old reservations, cancelled to active
// reserves the effective set in full, cancelled to cancelled moves no stock.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load order")
		}

		oldStatus := order.Status
		newStatus := oldStatus
		if input.Status != nil {
			if !input.Status.IsValid() {
				return errors.New(errors.CodeValidation, fmt.Sprintf("unknown order status %q", *input.Status))
			}
			newStatus = *input.Status
		}
		if input.PaymentMethod != nil {
			if !input.PaymentMethod.IsValid() {
				return errors.New(errors.CodeValidation, fmt.Sprintf("unknown payment method %q", *input.PaymentMethod))
			}
			order.PaymentMethod = *input.PaymentMethod
		}
		if input.CustomerID != nil {
			if err := s.ensureCustomer(ctx, *input.CustomerID); err != nil {
				return err
			}
			order.CustomerID = *input.CustomerID
		}
		if input.OrderDate != nil {
			order.OrderDate = *input.OrderDate
		}
		if input.Notes != nil {
			order.Notes = input.Notes
		}

		oldItems := order.Items
		newItems := oldItems
		if input.Items != nil {
			if len(*input.Items) == 0 {
				return errors.New(errors.CodeValidation, "an order needs at least one item")
			}
			newItems, _, err = buildItems(ctx, txRepo, *input.Items)
			if err != nil {
				return err
			}
		}

		wasActive := oldStatus.IsActive()
		isActive := newStatus.IsActive()
		switch {
		case wasActive && isActive:
			if input.Items != nil {
				if err := s.applyItemDeltas(ctx, tx, order.OrderNumber, oldItems, newItems, input.Actor); err != nil {
					return err
				}
			}
		case wasActive && !isActive:
			reason := fmt.Sprintf("order cancelled: order %s", order.OrderNumber)
			if err := s.adjustItems(ctx, tx, oldItems, +1, reason, input.Actor); err != nil {
				return err
			}
		case !wasActive && isActive:
			reason := fmt.Sprintf("order restored: order %s", order.OrderNumber)
			if err := s.adjustItems(ctx, tx, newItems, -1, reason, input.Actor); err != nil {
				return err
			}
		}

		if input.Items != nil {
			if err := txRepo.ReplaceItems(ctx, order.ID, newItems); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "failed to replace order items")
			}
			order.Items = newItems
		}

		order.Status = newStatus
		order.TotalAmount = sumSubtotals(order.Items)
		if err := txRepo.Save(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to update order")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStatus flips the order status. Cancelling releases every item's
// reservation; leaving cancelled re-reserves every item, all or nothing.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, actor string) (*models.Order, error) {
	if !status.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown order status %q", status))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load order")
		}

		if order.Status == status {
			updated = order
			return nil
		}

		switch {
		case order.Status.IsActive() && !status.IsActive():
			reason := fmt.Sprintf("order cancelled: order %s", order.OrderNumber)
			if err := s.adjustItems(ctx, tx, order.Items, +1, reason, actor); err != nil {
				return err
			}
		case !order.Status.IsActive() && status.IsActive():
			reason := fmt.Sprintf("order restored: order %s", order.OrderNumber)
			if err := s.adjustItems(ctx, tx, order.Items, -1, reason, actor); err != nil {
				return err
			}
		}

		order.Status = status
		if err := txRepo.Save(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to update order status")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the order and its items. Active orders hand their stock
// back first; cancelled orders already did when they were cancelled.
func (s *service) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		order, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "failed to load order")
		}

		if order.Status.IsActive() {
			reason := fmt.Sprintf("order deleted: order %s", order.OrderNumber)
			if err := s.adjustItems(ctx, tx, order.Items, +1, reason, actor); err != nil {
				return err
			}
		}

		if err := txRepo.Delete(ctx, order.ID); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to delete order")
		}
		return nil
	})
}

// adjustItems moves sign*quantity units of stock for every item.
func (s *service) adjustItems(ctx context.Context, tx *gorm.DB, items []models.OrderItem, sign int, reason, actor string) error {
	for _, item := range items {
		_, err := s.ledger.Adjust(ctx, tx, ledger.AdjustInput{
			Target:   enums.StockTargetProduct,
			TargetID: item.ProductID,
			Delta:    decimal.NewFromInt(int64(sign * item.Quantity)),
			Reason:   reason,
			Actor:    actor,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// applyItemDeltas reconciles stock between the old and new item sets of a
// still-active order, netting quantities per product.
func (s *service) applyItemDeltas(ctx context.Context, tx *gorm.DB, orderNumber string, oldItems, newItems []models.OrderItem, actor string) error {
	oldQty := make(map[uuid.UUID]int)
	for _, item := range oldItems {
		oldQty[item.ProductID] += item.Quantity
	}
	newQty := make(map[uuid.UUID]int)
	for _, item := range newItems {
		newQty[item.ProductID] += item.Quantity
	}

	// Deterministic order keeps adjustment logs stable: walk new items
	// first, then old items that disappeared.
	seen := make(map[uuid.UUID]bool)
	for _, item := range newItems {
		productID := item.ProductID
		if seen[productID] {
			continue
		}
		seen[productID] = true

		before, existed := oldQty[productID]
		delta := before - newQty[productID]
		reason := fmt.Sprintf("order edited: order %s", orderNumber)
		if !existed {
			reason = fmt.Sprintf("order item added: order %s", orderNumber)
		}
		if delta == 0 {
			continue
		}
		_, err := s.ledger.Adjust(ctx, tx, ledger.AdjustInput{
			Target:   enums.StockTargetProduct,
			TargetID: productID,
			Delta:    decimal.NewFromInt(int64(delta)),
			Reason:   reason,
			Actor:    actor,
		})
		if err != nil {
			return err
		}
	}
	for _, item := range oldItems {
		productID := item.ProductID
		if seen[productID] {
			continue
		}
		seen[productID] = true

		_, err := s.ledger.Adjust(ctx, tx, ledger.AdjustInput{
			Target:   enums.StockTargetProduct,
			TargetID: productID,
			Delta:    decimal.NewFromInt(int64(oldQty[productID])),
			Reason:   fmt.Sprintf("order item removed: order %s", orderNumber),
			Actor:    actor,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ensureCustomer(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New(errors.CodeValidation, "customer id is required")
	}
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.New(errors.CodeValidation, "customer not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "failed to load customer")
	}
	return nil
}

// buildItems validates line inputs and materializes item rows.
func buildItems(ctx context.Context, repo Repository, inputs []OrderItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, decimal.Zero, errors.New(errors.CodeValidation, "item quantity must be positive")
		}
		if in.UnitPrice.IsNegative() {
			return nil, decimal.Zero, errors.New(errors.CodeValidation, "item unit price cannot be negative")
		}
		if _, err := repo.FindProduct(ctx, in.ProductID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, decimal.Zero, errors.New(errors.CodeValidation, fmt.Sprintf("product %s not found", in.ProductID))
			}
			return nil, decimal.Zero, errors.Wrap(errors.CodeInternal, err, "failed to load product")
		}
		subtotal := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items = append(items, models.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}
	return items, total, nil
}

func sumSubtotals(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}
