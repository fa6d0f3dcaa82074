package service

import (
	"context"
	"fmt"

	"catalog/internal/domain"
	"catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VariantInput describes a variant to create.
type VariantInput struct {
	SKU           string
	Size          string
	Stock         int
	Price         *decimal.Decimal
	PurchasePrice *decimal.Decimal
}

// ImageInput describes an image to attach.
type ImageInput struct {
	URL       string
	AltText   string
	SortOrder int
	IsPrimary bool
}

// CreateProductInput carries everything needed to create a product.
type CreateProductInput struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	PurchasePrice *decimal.Decimal
	CategoryID    uuid.UUID
	ImageURL      *string
	Images        []ImageInput
	Variants      []VariantInput
}

// UpdateProductInput is a partial scalar update. Nil fields are left unchanged.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	PurchasePrice *decimal.Decimal
	ImageURL      *string
	CategoryID    *uuid.UUID
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddVariant(ctx context.Context, id string, input VariantInput) (*domain.Product, error)
	AddImage(ctx context.Context, id string, input ImageInput) (*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns every product with its variants and images
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// GetByID returns a product. Malformed ids are reported as not found.
func (s *productService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrProductNotFound
	}
	return s.productRepo.FindByID(ctx, productID)
}

// GetBySlug returns the product with the given slug
func (s *productService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.productRepo.FindBySlug(ctx, slug)
}

// Create builds the aggregate from input and stores it with its variants and
// images in one step.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(domain.ProductParams{
		ID:            uuid.New(),
		Description:   input.Description,
		Price:         input.Price,
		PurchasePrice: input.PurchasePrice,
		ImageURL:      input.ImageURL,
		CategoryID:    input.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	if err := product.Rename(input.Name); err != nil {
		return nil, err
	}

	primaries := 0
	for _, img := range input.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return nil, fmt.Errorf("%w: at most one image can be primary, got %d", domain.ErrInvalidArgument, primaries)
	}

	for _, in := range input.Variants {
		variant, err := buildVariant(in)
		if err != nil {
			return nil, err
		}
		if err := product.AddVariant(variant); err != nil {
			return nil, err
		}
	}

	for _, in := range input.Images {
		image, err := buildImage(in)
		if err != nil {
			return nil, err
		}
		product.AddImage(image)
	}

	if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Product created",
		zap.String("product_id", created.ID.String()),
		zap.String("slug", created.Slug),
		zap.Int("variants", len(created.Variants)),
		zap.Int("images", len(created.Images)),
	)
	return created, nil
}

// Update applies a partial scalar update. A new name re-derives the slug;
// variants and images are kept.
func (s *productService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = product.ApplyUpdate(domain.ProductUpdate{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		PurchasePrice: input.PurchasePrice,
		ImageURL:      input.ImageURL,
		CategoryID:    input.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	return s.productRepo.Update(ctx, product)
}

// Delete removes a product together with its variants and images
func (s *productService) Delete(ctx context.Context, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return repository.ErrProductNotFound
	}
	return s.productRepo.Delete(ctx, productID)
}

// AddVariant adds a variant, rejecting SKUs already used by the product
func (s *productService) AddVariant(ctx context.Context, id string, input VariantInput) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	variant, err := buildVariant(input)
	if err != nil {
		return nil, err
	}
	if err := product.AddVariant(variant); err != nil {
		return nil, err
	}

	if err := s.productRepo.AddVariant(ctx, product.ID, variant); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

// AddImage attaches an image. A primary image replaces the current primary.
func (s *productService) AddImage(ctx context.Context, id string, input ImageInput) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	image, err := buildImage(input)
	if err != nil {
		return nil, err
	}
	product.AddImage(image)

	if err := s.productRepo.AddImage(ctx, product.ID, image); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *productService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return nil
}

func buildVariant(in VariantInput) (domain.ProductVariant, error) {
	size, err := domain.ParseSize(in.Size)
	if err != nil {
		return domain.ProductVariant{}, err
	}
	return domain.NewProductVariant(uuid.New(), in.SKU, size, in.Stock, in.Price, in.PurchasePrice)
}

func buildImage(in ImageInput) (domain.ProductImage, error) {
	return domain.NewProductImage(uuid.New(), in.URL, in.AltText, in.SortOrder, in.IsPrimary)
}
