package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/errors"
)

type fakeRepo struct {
	products   map[uuid.UUID]*models.Product
	orderRefs  map[uuid.UUID]int64
	deleted    []uuid.UUID
	skuTaken   string
	listResult []models.Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:  make(map[uuid.UUID]*models.Product),
		orderRefs: make(map[uuid.UUID]int64),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, product *models.Product) error {
	if f.skuTaken != "" && product.SKU == f.skuTaken {
		return errors.New(errors.CodeInternal, `duplicate key value violates unique constraint "products_sku_key"`)
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeRepo) Save(_ context.Context, product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListProductsInput) ([]models.Product, error) {
	return f.listResult, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.products, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) CountOrderReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return f.orderRefs[id], nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeLedger struct {
	calls []ledger.AdjustInput
	stock map[uuid.UUID]int
}

func (f *fakeLedger) Adjust(_ context.Context, _ *gorm.DB, input ledger.AdjustInput) (*models.StockAdjustment, error) {
	f.calls = append(f.calls, input)
	before := f.stock[input.TargetID]
	after := before + int(input.Delta.IntPart())
	if after < 0 {
		return nil, errors.New(errors.CodeInsufficientStock, "insufficient stock")
	}
	f.stock[input.TargetID] = after
	return &models.StockAdjustment{
		QuantityBefore:     decimal.NewFromInt(int64(before)),
		QuantityAfter:      decimal.NewFromInt(int64(after)),
		AdjustmentQuantity: input.Delta,
		Reason:             input.Reason,
	}, nil
}

type fakeCategories struct{ known map[uuid.UUID]bool }

func (f fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Category{ID: id}, nil
}

type fakeSuppliers struct{ known map[uuid.UUID]bool }

func (f fakeSuppliers) FindByID(_ context.Context, id uuid.UUID) (*models.Supplier, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Supplier{ID: id}, nil
}

type fixture struct {
	repo       *fakeRepo
	ledger     *fakeLedger
	categoryID uuid.UUID
	svc        Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	stock := &fakeLedger{stock: make(map[uuid.UUID]int)}
	categoryID := uuid.New()
	svc, err := NewService(
		repo,
		fakeTx{},
		stock,
		fakeCategories{known: map[uuid.UUID]bool{categoryID: true}},
		fakeSuppliers{known: map[uuid.UUID]bool{}},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{repo: repo, ledger: stock, categoryID: categoryID, svc: svc}
}

func TestCreateProductRecordsInitialStock(t *testing.T) {
	fx := newFixture(t)

	product, err := fx.svc.Create(context.Background(), CreateProductInput{
		Name:          "walnut stool",
		SKU:           "WS-001",
		SellingPrice:  decimal.RequireFromString("89.00"),
		CostPrice:     decimal.RequireFromString("35.00"),
		StockQuantity: 12,
		CategoryID:    fx.categoryID,
		Actor:         "owner",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if product.StockQuantity != 12 {
		t.Fatalf("expected stock 12, got %d", product.StockQuantity)
	}
	if len(fx.ledger.calls) != 1 {
		t.Fatalf("expected one ledger call, got %d", len(fx.ledger.calls))
	}
	call := fx.ledger.calls[0]
	if call.Reason != "initial stock" || !call.Delta.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("unexpected ledger call %+v", call)
	}
}

func TestCreateProductZeroStockSkipsLedger(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.svc.Create(context.Background(), CreateProductInput{
		Name:       "oak bench",
		SKU:        "OB-001",
		CategoryID: fx.categoryID,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(fx.ledger.calls) != 0 {
		t.Fatalf("expected no ledger calls, got %d", len(fx.ledger.calls))
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	fx := newFixture(t)
	fx.repo.skuTaken = "WS-001"

	_, err := fx.svc.Create(context.Background(), CreateProductInput{
		Name:       "walnut stool",
		SKU:        "WS-001",
		CategoryID: fx.categoryID,
	})
	if errors.As(err).Code() != errors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), CreateProductInput{
		Name:       "walnut stool",
		SKU:        "WS-002",
		CategoryID: uuid.New(),
	})
	if errors.As(err).Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateProductStockGoesThroughLedger(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	fx.repo.products[productID] = &models.Product{
		ID:            productID,
		Name:          "walnut stool",
		SKU:           "WS-001",
		StockQuantity: 5,
		CategoryID:    fx.categoryID,
	}
	fx.ledger.stock[productID] = 5

	newStock := 9
	product, err := fx.svc.Update(context.Background(), productID, UpdateProductInput{
		StockQuantity: &newStock,
		Actor:         "owner",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if product.StockQuantity != 9 {
		t.Fatalf("expected stock 9, got %d", product.StockQuantity)
	}
	if len(fx.ledger.calls) != 1 {
		t.Fatalf("expected one ledger call, got %d", len(fx.ledger.calls))
	}
	call := fx.ledger.calls[0]
	if call.Reason != "manual edit" || !call.Delta.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("unexpected ledger call %+v", call)
	}
}

func TestUpdateProductUnchangedStockSkipsLedger(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	fx.repo.products[productID] = &models.Product{
		ID:            productID,
		Name:          "walnut stool",
		SKU:           "WS-001",
		StockQuantity: 5,
		CategoryID:    fx.categoryID,
	}

	same := 5
	name := "walnut stool v2"
	if _, err := fx.svc.Update(context.Background(), productID, UpdateProductInput{
		Name:          &name,
		StockQuantity: &same,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(fx.ledger.calls) != 0 {
		t.Fatalf("expected no ledger calls, got %d", len(fx.ledger.calls))
	}
}

func TestDeleteProductBlockedByOrders(t *testing.T) {
	fx := newFixture(t)
	productID := uuid.New()
	fx.repo.products[productID] = &models.Product{ID: productID, Name: "walnut stool"}
	fx.repo.orderRefs[productID] = 2

	err := fx.svc.Delete(context.Background(), productID)
	if errors.As(err).Code() != errors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(fx.repo.deleted) != 0 {
		t.Fatalf("product deleted despite references")
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	fx := newFixture(t)

	err := fx.svc.Delete(context.Background(), uuid.New())
	if errors.As(err).Code() != errors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
