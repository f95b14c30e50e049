package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/errors"
)

// CreateSupplierInput holds the payload to register a supplier.
type CreateSupplierInput struct {
	Name    string  `json:"name" validate:"required"`
	Contact *string `json:"contact,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// UpdateSupplierInput holds optional mutation values.
type UpdateSupplierInput struct {
	Name    *string `json:"name,omitempty"`
	Contact *string `json:"contact,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Service exposes supplier management.
type Service interface {
	Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, search string) ([]models.Supplier, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*models.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs the supplier service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}
	supplier := &models.Supplier{
		Name:    name,
		Contact: input.Contact,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create supplier")
	}
	return supplier, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "supplier not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load supplier")
	}
	return supplier, nil
}

func (s *service) List(ctx context.Context, search string) ([]models.Supplier, error) {
	suppliers, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list suppliers")
	}
	return suppliers, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*models.Supplier, error) {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "name cannot be empty")
		}
		supplier.Name = name
	}
	if input.Contact != nil {
		supplier.Contact = input.Contact
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update supplier")
	}
	return supplier, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to check supplier references")
	}
	if count > 0 {
		return errors.New(errors.CodeConflict, "supplier has linked products or purchases and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete supplier")
	}
	return nil
}
