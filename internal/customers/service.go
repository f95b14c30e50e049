package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/errors"
)

// CreateCustomerInput holds the payload to register a customer.
type CreateCustomerInput struct {
	Name    string  `json:"name" validate:"required"`
	Contact *string `json:"contact,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// UpdateCustomerInput holds optional mutation values.
type UpdateCustomerInput struct {
	Name    *string `json:"name,omitempty"`
	Contact *string `json:"contact,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Service exposes customer management.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, search string) ([]models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs the customer service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}
	customer := &models.Customer{
		Name:    name,
		Contact: input.Contact,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create customer")
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "customer not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list customers")
	}
	return customers, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "name cannot be empty")
		}
		customer.Name = name
	}
	if input.Contact != nil {
		customer.Contact = input.Contact
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update customer")
	}
	return customer, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to check customer orders")
	}
	if count > 0 {
		return errors.New(errors.CodeConflict, "customer has orders and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete customer")
	}
	return nil
}
