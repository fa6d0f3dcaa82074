// Package memory implements the repository ports in process. It enforces the
// same uniqueness and reference rules as the PostgreSQL schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"catalog/internal/domain"
	"catalog/internal/repository"

	"github.com/google/uuid"
)

// Store holds categories and products behind one lock so that cross-entity
// rules (category in use, global SKU uniqueness) are checked atomically.
type Store struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*domain.Category
	products   map[uuid.UUID]*domain.Product
	now        func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		categories: make(map[uuid.UUID]*domain.Category),
		products:   make(map[uuid.UUID]*domain.Product),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Categories returns the category repository view of the store.
func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepository{s: s}
}

// Products returns the product repository view of the store.
func (s *Store) Products() repository.ProductRepository {
	return &productRepository{s: s}
}

type categoryRepository struct {
	s *Store
}

func (r *categoryRepository) FindAll(_ context.Context) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *categoryRepository) FindByName(_ context.Context, name string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (r *categoryRepository) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.categoryNameTaken(category.Name, category.ID) {
		return nil, repository.ErrCategoryAlreadyExists
	}

	stored := *category
	now := r.s.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.s.categories[stored.ID] = &stored

	cp := stored
	return &cp, nil
}

func (r *categoryRepository) Update(_ context.Context, category *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[category.ID]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	if r.s.categoryNameTaken(category.Name, category.ID) {
		return nil, repository.ErrCategoryAlreadyExists
	}

	existing.Name = category.Name
	existing.Slug = category.Slug
	existing.UpdatedAt = r.s.now()

	cp := *existing
	return &cp, nil
}

func (r *categoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return repository.ErrCategoryInUse
		}
	}
	delete(r.s.categories, id)
	return nil
}

type productRepository struct {
	s *Store
}

func (r *productRepository) FindAll(_ context.Context) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *productRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *productRepository) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *productRepository) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return nil, repository.ErrCategoryNotFound
	}
	if r.s.productTaken(product.Name, product.Slug, product.ID) {
		return nil, repository.ErrProductAlreadyExists
	}
	seen := make(map[string]bool, len(product.Variants))
	for _, v := range product.Variants {
		if seen[v.SKU] || r.s.skuTaken(v.SKU) {
			return nil, repository.ErrSKUAlreadyExists
		}
		seen[v.SKU] = true
	}

	stored := cloneProduct(product)
	now := r.s.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	for i := range stored.Variants {
		stored.Variants[i].CreatedAt, stored.Variants[i].UpdatedAt = now, now
	}
	for i := range stored.Images {
		stored.Images[i].CreatedAt = now
	}
	stored.Images = stored.SortedImages()
	r.s.products[stored.ID] = stored

	return cloneProduct(stored), nil
}

func (r *productRepository) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.products[product.ID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return nil, repository.ErrCategoryNotFound
	}
	if r.s.productTaken(product.Name, product.Slug, product.ID) {
		return nil, repository.ErrProductAlreadyExists
	}

	existing.Name = product.Name
	existing.Slug = product.Slug
	existing.Description = product.Description
	existing.Price = product.Price
	existing.PurchasePrice = product.PurchasePrice
	existing.ImageURL = product.ImageURL
	existing.CategoryID = product.CategoryID
	existing.UpdatedAt = r.s.now()

	return cloneProduct(existing), nil
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *productRepository) AddVariant(_ context.Context, productID uuid.UUID, variant domain.ProductVariant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if r.s.skuTaken(variant.SKU) {
		return repository.ErrSKUAlreadyExists
	}

	now := r.s.now()
	variant.CreatedAt, variant.UpdatedAt = now, now
	p.Variants = append(p.Variants, variant)
	return nil
}

func (r *productRepository) AddImage(_ context.Context, productID uuid.UUID, image domain.ProductImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}

	image.CreatedAt = r.s.now()
	p.AddImage(image)
	p.Images = p.SortedImages()
	return nil
}

func (r *productRepository) FindVariantByID(_ context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		for _, v := range p.Variants {
			if v.ID == id {
				cp := v
				return &cp, nil
			}
		}
	}
	return nil, repository.ErrVariantNotFound
}

func (r *productRepository) FindImageByID(_ context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		for _, img := range p.Images {
			if img.ID == id {
				cp := img
				return &cp, nil
			}
		}
	}
	return nil, repository.ErrImageNotFound
}

func (s *Store) categoryNameTaken(name string, self uuid.UUID) bool {
	for id, c := range s.categories {
		if id != self && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) productTaken(name, slug string, self uuid.UUID) bool {
	for id, p := range s.products {
		if id != self && (p.Name == name || p.Slug == slug) {
			return true
		}
	}
	return false
}

func (s *Store) skuTaken(sku string) bool {
	for _, p := range s.products {
		for _, v := range p.Variants {
			if v.SKU == sku {
				return true
			}
		}
	}
	return false
}

func cloneProduct(p *domain.Product) *domain.Product {
	cp := *p
	cp.Variants = append([]domain.ProductVariant{}, p.Variants...)
	cp.Images = append([]domain.ProductImage{}, p.Images...)
	return &cp
}
