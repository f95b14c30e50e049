package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/errors"
)

// CreateCategoryInput holds the payload to create a category.
type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// UpdateCategoryInput holds optional mutation values.
type UpdateCategoryInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Service exposes category management.
type Service interface {
	Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs the category service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "name is required")
	}
	category := &models.Category{Name: name, Description: input.Description}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to create category")
	}
	return category, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "category not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load category")
	}
	return category, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list categories")
	}
	return categories, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "name cannot be empty")
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to update category")
	}
	return category, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to check category products")
	}
	if count > 0 {
		return errors.New(errors.CodeConflict, "category still has products and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to delete category")
	}
	return nil
}
