package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/errors"
)

type fakeRepo struct {
	customers map[uuid.UUID]*models.Customer
	orders    map[uuid.UUID]int64
	deleted   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		customers: make(map[uuid.UUID]*models.Customer),
		orders:    make(map[uuid.UUID]int64),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, customer *models.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeRepo) Save(_ context.Context, customer *models.Customer) error {
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *customer
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, _ string) ([]models.Customer, error) { return nil, nil }

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.customers, id)
	f.deleted++
	return nil
}

func (f *fakeRepo) CountOrders(_ context.Context, id uuid.UUID) (int64, error) {
	return f.orders[id], nil
}

func TestCreateCustomerRequiresName(t *testing.T) {
	svc, err := NewService(newFakeRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_, err = svc.Create(context.Background(), CreateCustomerInput{Name: "   "})
	if errors.As(err).Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteCustomerBlockedByOrders(t *testing.T) {
	repo := newFakeRepo()
	customerID := uuid.New()
	repo.customers[customerID] = &models.Customer{ID: customerID, Name: "Lin"}
	repo.orders[customerID] = 3
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.Delete(context.Background(), customerID)
	if errors.As(err).Code() != errors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.deleted != 0 {
		t.Fatalf("customer deleted despite orders")
	}
}

func TestUpdateCustomerPartial(t *testing.T) {
	repo := newFakeRepo()
	customerID := uuid.New()
	phone := "555-0100"
	repo.customers[customerID] = &models.Customer{ID: customerID, Name: "Lin", Phone: &phone}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	name := "Lin Wei"
	customer, err := svc.Update(context.Background(), customerID, UpdateCustomerInput{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if customer.Name != "Lin Wei" {
		t.Fatalf("name not updated: %q", customer.Name)
	}
	if customer.Phone == nil || *customer.Phone != "555-0100" {
		t.Fatalf("phone should be untouched")
	}
}
