package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog aggregate root. It owns its variants and images;
// CategoryID is a plain reference checked by the store.
type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	ImageURL      *string          `json:"imageUrl"`
	CategoryID    uuid.UUID        `json:"categoryId"`
	Images        []ProductImage   `json:"images"`
	Variants      []ProductVariant `json:"variants"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ProductParams holds the values needed to construct a Product.
type ProductParams struct {
	ID            uuid.UUID
	Name          string
	Slug          string
	Description   *string
	Price         decimal.Decimal
	PurchasePrice *decimal.Decimal
	ImageURL      *string
	CategoryID    uuid.UUID
	Images        []ProductImage
	Variants      []ProductVariant
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductUpdate carries a partial scalar update. Nil fields are left unchanged.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	PurchasePrice *decimal.Decimal
	ImageURL      *string
	CategoryID    *uuid.UUID
}

// NewProduct constructs a product. The only in-memory invariant checked here
// is price > 0; name and slug uniqueness belong to the store.
func NewProduct(p ProductParams) (*Product, error) {
	if !p.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than zero, got %s", ErrInvalidArgument, p.Price)
	}

	images := p.Images
	if images == nil {
		images = []ProductImage{}
	}
	variants := p.Variants
	if variants == nil {
		variants = []ProductVariant{}
	}

	return &Product{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		PurchasePrice: p.PurchasePrice,
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		Images:        images,
		Variants:      variants,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

// TotalStock is the sum of the stock of every variant.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// HasStock reports whether any variant has stock left.
func (p *Product) HasStock() bool {
	return p.TotalStock() > 0
}

// AddVariant appends v unless another variant already uses the same SKU.
func (p *Product) AddVariant(v ProductVariant) error {
	for _, existing := range p.Variants {
		if existing.SKU == v.SKU {
			return fmt.Errorf("%w: %q already exists on product %s", ErrDuplicateSKU, v.SKU, p.ID)
		}
	}
	p.Variants = append(p.Variants, v)
	return nil
}

// AddImage appends img. A primary image demotes the current primary and
// becomes the product's ImageURL.
func (p *Product) AddImage(img ProductImage) {
	if img.IsPrimary {
		for i := range p.Images {
			p.Images[i].IsPrimary = false
		}
		url := img.URL
		p.ImageURL = &url
	}
	p.Images = append(p.Images, img)
}

// PrimaryImage returns the primary image, if any.
func (p *Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return ProductImage{}, false
}

// SortedImages returns a copy of the images in gallery order.
func (p *Product) SortedImages() []ProductImage {
	out := make([]ProductImage, len(p.Images))
	copy(out, p.Images)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// Rename sets the name and derives the slug from it.
func (p *Product) Rename(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: product name must not be empty", ErrInvalidArgument)
	}
	slug := GenerateSlug(trimmed)
	if slug == "" {
		return fmt.Errorf("%w: product name %q yields an empty slug", ErrInvalidArgument, trimmed)
	}
	p.Name = trimmed
	p.Slug = slug
	return nil
}

// ApplyUpdate replaces the scalar fields present in u. Variants and images
// are only changed through AddVariant and AddImage.
func (p *Product) ApplyUpdate(u ProductUpdate) error {
	if u.Price != nil && !u.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero, got %s", ErrInvalidArgument, *u.Price)
	}
	if u.Name != nil {
		if err := p.Rename(*u.Name); err != nil {
			return err
		}
	}
	if u.Description != nil {
		p.Description = u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.PurchasePrice != nil {
		p.PurchasePrice = u.PurchasePrice
	}
	if u.ImageURL != nil {
		p.ImageURL = u.ImageURL
	}
	if u.CategoryID != nil {
		p.CategoryID = *u.CategoryID
	}
	return nil
}
