package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog/internal/domain"
	"catalog/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, name string) (*domain.Category, error)
	Rename(ctx context.Context, id, name string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns every category ordered by name
func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

// Get returns a category. Malformed ids are reported as not found.
func (s *categoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrCategoryNotFound
	}
	return s.categoryRepo.FindByID(ctx, categoryID)
}

// Create adds a category after checking the name is free
func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	category, err := domain.NewCategory(uuid.New(), name, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, category.Name, uuid.Nil); err != nil {
		return nil, err
	}

	created, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Category created",
		zap.String("category_id", created.ID.String()),
		zap.String("slug", created.Slug),
	)
	return created, nil
}

// Rename changes the name and slug of a category
func (s *categoryService) Rename(ctx context.Context, id, name string) (*domain.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Rename(name); err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, category.Name, category.ID); err != nil {
		return nil, err
	}

	return s.categoryRepo.Update(ctx, category)
}

// Delete removes a category that no product references
func (s *categoryService) Delete(ctx context.Context, id string) error {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return repository.ErrCategoryNotFound
	}
	return s.categoryRepo.Delete(ctx, categoryID)
}

// ensureNameFree fails with ErrCategoryAlreadyExists when another category
// uses name. The unique constraint in the store remains the backstop.
func (s *categoryService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check existing category: %w", err)
	}
	if existing.ID != self {
		return repository.ErrCategoryAlreadyExists
	}
	return nil
}
