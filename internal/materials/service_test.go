package materials

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
	materials map[uuid.UUID]*models.RawMaterial
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{materials: make(map[uuid.UUID]*models.RawMaterial)}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, material *models.RawMaterial) error {
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	f.materials[material.ID] = material
	return nil
}

func (f *fakeRepo) Save(_ context.Context, material *models.RawMaterial) error {
	f.materials[material.ID] = material
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.RawMaterial, error) {
	material, ok := f.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *material
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListMaterialsInput) ([]models.RawMaterial, error) {
	return nil, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.materials, id)
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeLedger struct {
	calls []ledger.AdjustInput
	stock map[uuid.UUID]decimal.Decimal
}

func (f *fakeLedger) Adjust(_ context.Context, _ *gorm.DB, input ledger.AdjustInput) (*models.StockAdjustment, error) {
	f.calls = append(f.calls, input)
	before := f.stock[input.TargetID]
	after := before.Add(input.Delta)
	if after.IsNegative() {
		return nil, errors.New(errors.CodeInsufficientStock, "insufficient stock")
	}
	f.stock[input.TargetID] = after
	return &models.StockAdjustment{
		QuantityBefore:     before,
		QuantityAfter:      after,
		AdjustmentQuantity: input.Delta,
		Reason:             input.Reason,
	}, nil
}

type fakeSuppliers struct{ known map[uuid.UUID]bool }

func (f fakeSuppliers) FindByID(_ context.Context, id uuid.UUID) (*models.Supplier, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Supplier{ID: id}, nil
}

func newTestService(t *testing.T, repo Repository, stock stockLedger) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTx{}, stock, fakeSuppliers{known: map[uuid.UUID]bool{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateMaterialRecordsInitialStock(t *testing.T) {
	repo := newFakeRepo()
	stock := &fakeLedger{stock: make(map[uuid.UUID]decimal.Decimal)}
	svc := newTestService(t, repo, stock)

	material, err := svc.Create(context.Background(), CreateMaterialInput{
		Name:          "walnut board",
		Unit:          "m",
		StockQuantity: decimal.RequireFromString("25.500"),
		UnitCost:      decimal.RequireFromString("4.20"),
		Actor:         "owner",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !material.StockQuantity.Equal(decimal.RequireFromString("25.5")) {
		t.Fatalf("unexpected stock %s", material.StockQuantity)
	}
	if len(stock.calls) != 1 || stock.calls[0].Reason != "initial stock" {
		t.Fatalf("unexpected ledger calls %+v", stock.calls)
	}
}

func TestUpdateMaterialStockGoesThroughLedger(t *testing.T) {
	repo := newFakeRepo()
	stock := &fakeLedger{stock: make(map[uuid.UUID]decimal.Decimal)}
	materialID := uuid.New()
	repo.materials[materialID] = &models.RawMaterial{
		ID:            materialID,
		Name:          "walnut board",
		Unit:          "m",
		StockQuantity: decimal.NewFromInt(10),
	}
	stock.stock[materialID] = decimal.NewFromInt(10)
	svc := newTestService(t, repo, stock)

	target := decimal.RequireFromString("7.500")
	material, err := svc.Update(context.Background(), materialID, UpdateMaterialInput{
		StockQuantity: &target,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !material.StockQuantity.Equal(target) {
		t.Fatalf("unexpected stock %s", material.StockQuantity)
	}
	if len(stock.calls) != 1 {
		t.Fatalf("expected one ledger call, got %d", len(stock.calls))
	}
	if !stock.calls[0].Delta.Equal(decimal.RequireFromString("-2.5")) {
		t.Fatalf("unexpected delta %s", stock.calls[0].Delta)
	}
	if stock.calls[0].Reason != "manual edit" {
		t.Fatalf("unexpected reason %q", stock.calls[0].Reason)
	}
}

func TestCreateMaterialRejectsNegativeValues(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeLedger{stock: make(map[uuid.UUID]decimal.Decimal)})

	_, err := svc.Create(context.Background(), CreateMaterialInput{
		Name:     "glue",
		Unit:     "kg",
		UnitCost: decimal.RequireFromString("-1"),
	})
	if errors.As(err).Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteMaterialMapsForeignKeyToConflict(t *testing.T) {
	repo := newFakeRepo()
	materialID := uuid.New()
	repo.materials[materialID] = &models.RawMaterial{ID: materialID, Name: "walnut board"}
	repo.deleteErr = errors.New(errors.CodeInternal, "FOREIGN KEY constraint failed")
	svc := newTestService(t, repo, &fakeLedger{stock: make(map[uuid.UUID]decimal.Decimal)})

	err := svc.Delete(context.Background(), materialID)
	if errors.As(err).Code() != errors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
